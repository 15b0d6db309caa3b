package auctioncsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
)

const (
	AllLocationsFile = "manheim_locations.csv"
	SummaryFile      = "state_summary.csv"
	ByStateDir       = "by_state_csv"
)

var locationHeader = []string{"name", "address_street", "city", "state", "zip", "phone", "website", "latitude", "longitude"}

// LocationsWriter пишет выгрузку скрапера в outDir
type LocationsWriter struct {
	outDir string
}

func NewLocationsWriter(outDir string) *LocationsWriter {
	return &LocationsWriter{outDir: outDir}
}

func locationRecord(l domain.AuctionLocation) []string {
	return []string{l.Name, l.AddressStreet, l.City, l.State, l.Zip, l.Phone, l.Website, l.Latitude, l.Longitude}
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func (w *LocationsWriter) WriteAll(ctx context.Context, locations []domain.AuctionLocation) error {
	records := make([][]string, 0, len(locations))
	for _, l := range locations {
		records = append(records, locationRecord(l))
	}
	path := filepath.Join(w.outDir, AllLocationsFile)
	if err := writeCSV(path, locationHeader, records); err != nil {
		return err
	}
	contextkeys.LoggerFromContext(ctx).Info("Locations written", port.Fields{"path": path, "rows": len(records)})
	return nil
}

func (w *LocationsWriter) WriteByState(ctx context.Context, byState map[string][]domain.AuctionLocation) error {
	for state, locations := range byState {
		if state == "" {
			continue
		}
		records := make([][]string, 0, len(locations))
		for _, l := range locations {
			records = append(records, locationRecord(l))
		}
		if err := writeCSV(filepath.Join(w.outDir, ByStateDir, state+".csv"), locationHeader, records); err != nil {
			return err
		}
	}
	contextkeys.LoggerFromContext(ctx).Info("Per-state files written", port.Fields{"states": len(byState)})
	return nil
}

// WriteSummary строки "state,count" по убыванию count, при равенстве по штату
func (w *LocationsWriter) WriteSummary(_ context.Context, counts map[string]int) error {
	states := make([]string, 0, len(counts))
	for st := range counts {
		if st != "" {
			states = append(states, st)
		}
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})

	records := make([][]string, 0, len(states))
	for _, st := range states {
		records = append(records, []string{st, strconv.Itoa(counts[st])})
	}
	return writeCSV(filepath.Join(w.outDir, SummaryFile), []string{"state", "count"}, records)
}
