package auctioncsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsamit27/ava/internal/core/domain"
)

// LocationsReader читает by_state_csv/<ST>.csv
type LocationsReader struct {
	dir string
}

func NewLocationsReader(dir string) *LocationsReader {
	return &LocationsReader{dir: dir}
}

// States коды штатов по файлам каталога: двухбуквенные имена, в верхнем регистре, по алфавиту
func (r *LocationsReader) States(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list auction csv dir: %w", err)
	}

	states := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if len(stem) == 2 {
			states = append(states, strings.ToUpper(stem))
		}
	}
	sort.Strings(states)
	return states, nil
}

func (r *LocationsReader) Source(state string) string {
	return filepath.Join(r.dir, strings.ToUpper(strings.TrimSpace(state))+".csv")
}

// Addresses до limit полных адресов штата: "street, city, ST, zip" без пустых и "nan" частей
func (r *LocationsReader) Addresses(_ context.Context, state string, limit int) ([]string, error) {
	path := r.Source(state)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no CSV file found for state '%s' at %s", domain.ErrStateCSVMissing, state, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	addrs := make([]string, 0)
	for limit <= 0 || len(addrs) < limit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		parts := make([]string, 0, 4)
		for _, name := range []string{"address_street", "city", "state", "zip"} {
			if v := field(rec, name); v != "" && !strings.EqualFold(v, "nan") {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			addrs = append(addrs, strings.Join(parts, ", "))
		}
	}
	return addrs, nil
}
