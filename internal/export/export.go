// Package export writes aggregated snapshots to local files.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/domain"
)

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// CSVSink writes each snapshot to a CSV file, replacing the previous contents.
// It implements pipeline.Sink.
type CSVSink struct {
	mu   sync.Mutex
	path string
}

// NewCSVSink returns a sink writing to the given file path.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

func (s *CSVSink) Name() string { return "csv" }

// Store writes the full snapshot. A missing wait_time becomes an empty cell.
func (s *CSVSink) Store(_ context.Context, ds dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(domain.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, sample := range ds.Samples {
		if err := w.Write(csvRecord(sample)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

func csvRecord(s domain.WaitSample) []string {
	wait := ""
	if s.WaitTime.Valid {
		wait = strconv.FormatFloat(s.WaitTime.Minutes, 'f', -1, 64)
	}
	return []string{
		s.AttractionName,
		s.DateID,
		strconv.Itoa(s.MonthOfYear),
		strconv.Itoa(s.HourOfDay),
		strconv.Itoa(s.MinuteOfDay),
		strconv.Itoa(s.YearOfCalendar),
		wait,
		s.ObservedAt.Format(time.RFC3339),
		s.FetchedAt.Format(time.RFC3339),
	}
}

// JSONSink writes each snapshot to a JSON file, replacing the previous
// contents. It implements pipeline.Sink.
type JSONSink struct {
	mu   sync.Mutex
	path string
}

// NewJSONSink returns a sink writing to the given file path.
func NewJSONSink(path string) *JSONSink {
	return &JSONSink{path: path}
}

func (s *JSONSink) Name() string { return "json" }

type jsonSnapshot struct {
	BuiltAt time.Time           `json:"built_at"`
	Rows    int                 `json:"rows"`
	Samples []domain.WaitSample `json:"samples"`
}

// Store writes the full snapshot as a single JSON document.
func (s *JSONSink) Store(_ context.Context, ds dataset.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureDir(s.path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	samples := ds.Samples
	if samples == nil {
		samples = []domain.WaitSample{}
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonSnapshot{
		BuiltAt: ds.BuiltAt,
		Rows:    len(samples),
		Samples: samples,
	}); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return f.Close()
}
