// Package csvsource extracts raw population rows from a UN data portal CSV
// export. Columns are matched by header name, so extra or reordered columns
// are tolerated.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/population-dashboard/internal/domain"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

var requiredColumns = []string{"Location", "Time", "Sex", "Age", "AgeStart", "AgeEnd", "Value"}

// Source reads a CSV file from disk.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the CSV at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Extract reads every row of the file.
func (s *Source) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	records, skipped, err := Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.logger.Info("csv extracted", "path", s.path, "rows", len(records), "malformed", skipped)
	return records, nil
}

// Read parses CSV rows from r. Rows that cannot be parsed or are too short are
// skipped and counted; a missing required column fails the whole read.
func Read(ctx context.Context, r io.Reader) (records []domain.RawRecord, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	width := 0
	for _, i := range idx {
		width = max(width, i+1)
	}

	for line := 0; ; line++ {
		if line%10000 == 0 && ctx.Err() != nil {
			return nil, skipped, ctx.Err()
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) || len(row) < width {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, err
		}

		records = append(records, domain.RawRecord{
			Location: row[idx["Location"]],
			Time:     row[idx["Time"]],
			Sex:      row[idx["Sex"]],
			Age:      row[idx["Age"]],
			AgeStart: row[idx["AgeStart"]],
			AgeEnd:   row[idx["AgeEnd"]],
			Value:    row[idx["Value"]],
		})
	}
	return records, skipped, nil
}

// columnIndex maps each required column to its position. A UTF-8 byte order
// mark on the first header cell is ignored.
func columnIndex(header []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	idx := make(map[string]int, len(requiredColumns))
	var missing []string
	for _, col := range requiredColumns {
		i, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}
