// Package artifact reads and writes the intermediate JSON file that carries
// normalized observations from ingestion to the dashboard.
package artifact

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/population-dashboard/internal/domain"
)

// Write encodes obs as a JSON array.
func Write(w io.Writer, obs []domain.Observation) error {
	if obs == nil {
		obs = []domain.Observation{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obs); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return nil
}

// WriteFile writes obs to path atomically: the data goes to a temporary file
// in the same directory, which is renamed over path once complete.
func WriteFile(path string, obs []domain.Observation) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, obs); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		return fmt.Errorf("flush artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}
	return nil
}

// record is the artifact row as read back. Numbers stay optional so a null or
// missing value reaches Normalize as blank and is dropped, not read as zero.
type record struct {
	Location string   `json:"Location"`
	Year     *int     `json:"Year"`
	Sex      string   `json:"Sex"`
	Age      string   `json:"Age"`
	AgeStart *float64 `json:"AgeStart"`
	AgeEnd   *float64 `json:"AgeEnd"`
	Value    *float64 `json:"Value"`
}

func (r record) raw() domain.RawRecord {
	return domain.RawRecord{
		Location: r.Location,
		Time:     formatInt(r.Year),
		Sex:      r.Sex,
		Age:      r.Age,
		AgeStart: formatFloat(r.AgeStart),
		AgeEnd:   formatFloat(r.AgeEnd),
		Value:    formatFloat(r.Value),
	}
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// Read decodes a JSON array of observations and normalizes it again, so rows
// edited by hand are validated and re-derived like freshly ingested ones.
// Derived fields in the file (label, category) are ignored.
func Read(r io.Reader) ([]domain.Observation, domain.NormalizeReport, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, domain.NormalizeReport{}, fmt.Errorf("decode artifact: %w", err)
	}
	raws := make([]domain.RawRecord, len(records))
	for i := range records {
		raws[i] = records[i].raw()
	}
	out, report := domain.Normalize(raws)
	return out, report, nil
}

// ReadFile reads the artifact at path.
func ReadFile(path string) ([]domain.Observation, domain.NormalizeReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NormalizeReport{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return Read(bufio.NewReader(f))
}

// FileLoader writes the artifact as an ingest pipeline sink.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader writing to path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Name identifies the loader in logs and metrics.
func (l *FileLoader) Name() string { return "artifact" }

// Load replaces the artifact with obs.
func (l *FileLoader) Load(ctx context.Context, obs []domain.Observation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteFile(l.path, obs)
}
