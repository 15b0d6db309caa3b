package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScheduleTime(t *testing.T) {
	tests := map[string]string{
		"2025-03-01T10:30:00Z":      "2025-03-01 10:30:00",
		"2025-03-01T10:30:00.123Z":  "2025-03-01 10:30:00",
		"2025-03-01 10:30":          "2025-03-01 10:30:00",
		"2025-03-01":                "2025-03-01 00:00:00",
		"  2025-03-01 09:00:00  ":   "2025-03-01 09:00:00",
		"next tuesday after lunch":  "next tuesday after lunch",
		"2025-01-02T10:00:00-05:00": "2025-01-02 10:00:00",
		"2025-01-02T10:00:00+0530":  "2025-01-02 10:00:00",
		"2025-01-02T10:00+01:00":    "2025-01-02 10:00:00",
		"2025-01-02T10:00:00":       "2025-01-02 10:00:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeScheduleTime(in), in)
	}
}

func TestIsValidPriority(t *testing.T) {
	assert.True(t, IsValidPriority("High"))
	assert.False(t, IsValidPriority("high"))
	assert.False(t, IsValidPriority("Urgent"))
}

func TestNumericRef(t *testing.T) {
	n, ok := NumericRef(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	_, ok = NumericRef("lead-42")
	assert.False(t, ok)
	_, ok = NumericRef("")
	assert.False(t, ok)
}

func TestNormalizeStateCode(t *testing.T) {
	assert.Equal(t, "TX", NormalizeStateCode("tx"))
	assert.Equal(t, "NY", NormalizeStateCode("new  york"))
	assert.Equal(t, "DC", NormalizeStateCode("District of Columbia"))
	assert.Equal(t, "", NormalizeStateCode("XX"))
	assert.Equal(t, "", NormalizeStateCode(""))
}

func TestMetersToMiles(t *testing.T) {
	assert.Equal(t, 1.0, MetersToMiles(1609.344))
	assert.Equal(t, 62.14, MetersToMiles(100000))
}

func TestTableSpec_InsertColumns(t *testing.T) {
	keep := TableSpec{Columns: []string{"id", "a"}, IDColumn: "id", PreserveIDs: true}
	drop := TableSpec{Columns: []string{"id", "a"}, IDColumn: "id"}

	assert.Equal(t, []string{"id", "a"}, keep.InsertColumns())
	assert.Equal(t, []string{"a"}, drop.InsertColumns())
}

func TestToolResultConstructors(t *testing.T) {
	ok := ToolSuccess("done", nil)
	assert.True(t, ok.IsSuccess())
	assert.NotNil(t, ok.Data)

	bad := ToolFailure(CodeNotFound, "missing", nil)
	assert.Equal(t, ToolStatusError, bad.Status)
	assert.Equal(t, CodeNotFound, bad.Code)

	unsure := ToolUnsure(CodeAmbiguous, "many", map[string]interface{}{"n": 2})
	assert.Equal(t, ToolStatusUnsure, unsure.Status)
	assert.Equal(t, 2, unsure.Data["n"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
}
