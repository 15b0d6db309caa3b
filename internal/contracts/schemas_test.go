package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKey(t *testing.T) {
	assert.Equal(t, "ToolExecutedEvent/1.0.0", EventKey("tool-executed", "v1"))
	assert.Equal(t, "EscalationRequestedEvent/2.0.0", EventKey("escalation-requested", "v2"))
	assert.Equal(t, "ToolExecutedEvent/1.0.0", keyFromPath("schemas/events/tool-executed/v1.json"))
	assert.Empty(t, keyFromPath("schemas/events/v1.json"))
}

func TestSchemasCompiled(t *testing.T) {
	assert.Contains(t, compiledSchemas, "ToolExecutedEvent/1.0.0")
	assert.Contains(t, compiledSchemas, "EscalationRequestedEvent/1.0.0")
}

func TestValidateEvent(t *testing.T) {
	valid := []byte(`{"session_id":"s1","lead_id":"7","tool":"car_retrieve","status":"success",
		"message":"Car retrieved.","duration_ms":12,"occurred_at":"2025-05-01T12:00:00Z"}`)
	require.NoError(t, ValidateEvent("ToolExecutedEvent", "1.0.0", valid))

	badStatus := []byte(`{"session_id":"s1","lead_id":"7","tool":"car_retrieve","status":"maybe",
		"message":"","duration_ms":12,"occurred_at":"2025-05-01T12:00:00Z"}`)
	assert.Error(t, ValidateEvent("ToolExecutedEvent", "1.0.0", badStatus))

	badTime := []byte(`{"session_id":"s1","lead_id":"7","to":"+1555","text":"help","delivered":true,"occurred_at":"yesterday"}`)
	assert.Error(t, ValidateEvent("EscalationRequestedEvent", "1.0.0", badTime))

	assert.Error(t, ValidateEvent("ToolExecutedEvent", "1.0.0", []byte(`not json`)))
	assert.Error(t, ValidateEvent("UnknownEvent", "1.0.0", valid))
}
