package auctioncsv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestReaderStatesAndAddresses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tx.csv"), "name,address_street,city,state,zip\n"+
		"Manheim Dallas,5333 W Kiest Blvd,Dallas,TX,75236\n"+
		"Manheim Austin,nan,Austin,TX,\n"+
		"Manheim Houston,,,,\n"+
		"Manheim San Antonio,2042 Ackerman Rd,San Antonio,TX,78219\n")
	writeFile(t, filepath.Join(dir, "CA.csv"), "name,address_street,city,state,zip\n")
	writeFile(t, filepath.Join(dir, "notes.csv"), "x\n")
	writeFile(t, filepath.Join(dir, "NV.txt"), "x\n")

	r := NewLocationsReader(dir)

	states, err := r.States(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CA", "TX"}, states)

	// Source ищет файл по коду в верхнем регистре
	require.NoError(t, os.Rename(filepath.Join(dir, "tx.csv"), filepath.Join(dir, "TX.csv")))

	addrs, err := r.Addresses(context.Background(), "tx", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"5333 W Kiest Blvd, Dallas, TX, 75236", "Austin, TX"}, addrs)

	all, err := r.Addresses(context.Background(), "TX", 25)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := r.Addresses(context.Background(), "CA", 25)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReaderMissingState(t *testing.T) {
	r := NewLocationsReader(t.TempDir())
	_, err := r.Addresses(context.Background(), "WY", 25)
	assert.ErrorIs(t, err, domain.ErrStateCSVMissing)

	states, err := NewLocationsReader(filepath.Join(t.TempDir(), "absent")).States(context.Background())
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestWriterRoundTripThroughReader(t *testing.T) {
	out := t.TempDir()
	w := NewLocationsWriter(out)
	ctx := context.Background()

	dallas := domain.AuctionLocation{Name: "Manheim Dallas", AddressStreet: "5333 W Kiest Blvd", City: "Dallas", State: "TX", Zip: "75236", Phone: "(214) 330-1800"}
	reno := domain.AuctionLocation{Name: "Manheim Nevada", AddressStreet: "1 Auction Way", City: "Reno", State: "NV", Zip: "89502"}

	require.NoError(t, w.WriteAll(ctx, []domain.AuctionLocation{dallas, reno}))
	require.NoError(t, w.WriteByState(ctx, map[string][]domain.AuctionLocation{"TX": {dallas}, "NV": {reno}}))
	require.NoError(t, w.WriteSummary(ctx, map[string]int{"TX": 1, "NV": 1, "CA": 3}))

	all, err := os.ReadFile(filepath.Join(out, AllLocationsFile))
	require.NoError(t, err)
	assert.Contains(t, string(all), "name,address_street,city,state,zip,phone,website,latitude,longitude\n")
	assert.Contains(t, string(all), "Manheim Dallas,5333 W Kiest Blvd,Dallas,TX,75236,(214) 330-1800,,,\n")

	summary, err := os.ReadFile(filepath.Join(out, SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, "state,count\nCA,3\nNV,1\nTX,1\n", string(summary))

	r := NewLocationsReader(filepath.Join(out, ByStateDir))
	states, err := r.States(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NV", "TX"}, states)

	addrs, err := r.Addresses(ctx, "NV", 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 Auction Way, Reno, NV, 89502"}, addrs)
}
