// Command validate performs end-to-end integrity checks across the wait-time
// fixtures generated by genfixtures: the per-attraction feed CSVs and the
// expected normalized JSON. It verifies row counts, the coalescing rule,
// derived calendar fields, and sentinel removal.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv-dir testdata/feeds \
//	  -expected testdata/expected_samples.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lcaslokonon/disney-wait-times/internal/domain"
	"github.com/lcaslokonon/disney-wait-times/internal/touringplans"
)

const sentinel = -999

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvDir := flag.String("csv-dir", "", "directory containing mock feed CSV files")
	expected := flag.String("expected", "", "path to the expected normalized JSON fixture")
	flag.Parse()

	if *csvDir == "" || *expected == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvDir, *expected); code != 0 {
		os.Exit(code)
	}
}

func run(csvDir, expectedPath string) int {
	fmt.Println("=== Wait-Time Fixture Validation ===")
	fmt.Println()

	feeds, err := loadFeeds(csvDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load feed CSVs: %v\n", err)
		return 1
	}

	samples, err := loadExpected(expectedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load expected JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFeedShape(feeds),
		validateRowCounts(feeds, samples),
		validateCoalescing(feeds, samples),
		validateDerivedFields(samples),
		validateOrdering(samples),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d feed rows across %d feeds, %d expected samples\n",
		countRows(feeds), len(feeds), len(samples))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// feedRow is one parsed row of a feed CSV.
type feedRow struct {
	lineNum  int
	datetime string
	actual   string
	posted   string
}

// loadFeeds loads one CSV per catalog source, keyed by attraction name.
func loadFeeds(dir string) (map[string][]feedRow, error) {
	feeds := make(map[string][]feedRow)
	for _, src := range touringplans.DefaultCatalog().Sources() {
		path := filepath.Join(dir, filepath.Base(src.URL))
		rows, err := loadFeed(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Attraction, err)
		}
		feeds[src.Attraction] = rows
	}
	return feeds, nil
}

func loadFeed(path string) ([]feedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"datetime", "SACTMIN", "SPOSTMIN"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q in %s", col, path)
		}
	}

	var rows []feedRow
	for i, row := range all[1:] {
		rows = append(rows, feedRow{
			lineNum:  i + 2,
			datetime: strings.TrimSpace(row[idx["datetime"]]),
			actual:   strings.TrimSpace(row[idx["SACTMIN"]]),
			posted:   strings.TrimSpace(row[idx["SPOSTMIN"]]),
		})
	}
	return rows, nil
}

func loadExpected(path string) ([]domain.WaitSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var samples []domain.WaitSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func countRows(feeds map[string][]feedRow) int {
	n := 0
	for _, rows := range feeds {
		n += len(rows)
	}
	return n
}

// ── Phase 1: Feed Shape ──
// Every feed parses, and every datetime uses the fixed layout.

func validateFeedShape(feeds map[string][]feedRow) *phase {
	p := &phase{name: "Phase 1: Feed Shape (CSV files)"}
	for attraction, rows := range feeds {
		for _, row := range rows {
			if _, err := time.Parse(domain.TimeLayout, row.datetime); err != nil {
				p.errorf("%s line %d: bad datetime %q", attraction, row.lineNum, row.datetime)
			}
		}
	}
	return p
}

// ── Phase 2: Row Counts ──
// Expected samples equal feed rows minus sentinel-valued rows, per attraction.

func validateRowCounts(feeds map[string][]feedRow, samples []domain.WaitSample) *phase {
	p := &phase{name: "Phase 2: Row Counts (sentinel removal)"}

	sampleCounts := map[string]int{}
	for i := range samples {
		sampleCounts[samples[i].AttractionName]++
	}

	for attraction, rows := range feeds {
		expected := 0
		for _, row := range rows {
			if coalesceCells(row) == strconv.Itoa(sentinel) {
				continue
			}
			expected++
		}
		if got := sampleCounts[attraction]; got != expected {
			p.errorf("%s: expected %d samples after sentinel removal, got %d", attraction, expected, got)
		}
	}

	for attraction := range sampleCounts {
		if _, ok := feeds[attraction]; !ok {
			p.errorf("expected JSON has samples for unknown attraction %q", attraction)
		}
	}
	return p
}

// coalesceCells applies the actual-over-posted preference to the raw cells.
func coalesceCells(row feedRow) string {
	if row.actual != "" {
		return row.actual
	}
	return row.posted
}

// ── Phase 3: Coalescing ──
// Each expected sample's wait_time matches the coalesced cell of its feed row.

func validateCoalescing(feeds map[string][]feedRow, samples []domain.WaitSample) *phase {
	p := &phase{name: "Phase 3: Coalescing (actual over posted)"}

	// Index feed rows by attraction and timestamp.
	type key struct{ attraction, datetime string }
	index := map[key]feedRow{}
	for attraction, rows := range feeds {
		for _, row := range rows {
			index[key{attraction, row.datetime}] = row
		}
	}

	for i := range samples {
		s := &samples[i]
		row, ok := index[key{s.AttractionName, s.ObservedAt.Format(domain.TimeLayout)}]
		if !ok {
			p.errorf("sample %d (%s): no feed row at %s", i, s.AttractionName, s.ObservedAt.Format(domain.TimeLayout))
			continue
		}

		cell := coalesceCells(row)
		if cell == "" {
			if s.WaitTime.Valid {
				p.errorf("sample %d (%s line %d): both cells empty but wait_time=%g", i, s.AttractionName, row.lineNum, s.WaitTime.Minutes)
			}
			continue
		}
		want, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			p.errorf("sample %d (%s line %d): unparseable cell %q", i, s.AttractionName, row.lineNum, cell)
			continue
		}
		if !s.WaitTime.Valid {
			p.errorf("sample %d (%s line %d): expected wait_time %g, got null", i, s.AttractionName, row.lineNum, want)
		} else if math.Abs(s.WaitTime.Minutes-want) > 1e-9 {
			p.errorf("sample %d (%s line %d): expected wait_time %g, got %g", i, s.AttractionName, row.lineNum, want, s.WaitTime.Minutes)
		}
	}
	return p
}

// ── Phase 4: Derived Fields ──
// Calendar fields must agree with the observed timestamp, and no sample may
// carry the sentinel value.

func validateDerivedFields(samples []domain.WaitSample) *phase {
	p := &phase{name: "Phase 4: Derived Fields (calendar)"}
	for i := range samples {
		s := &samples[i]
		ts := s.ObservedAt

		if s.DateID != ts.Format(domain.DateLayout) {
			p.errorf("sample %d: date_id %q, want %q", i, s.DateID, ts.Format(domain.DateLayout))
		}
		if s.MonthOfYear != int(ts.Month()) {
			p.errorf("sample %d: month_of_year %d, want %d", i, s.MonthOfYear, int(ts.Month()))
		}
		if s.HourOfDay != ts.Hour() {
			p.errorf("sample %d: hour_of_day %d, want %d", i, s.HourOfDay, ts.Hour())
		}
		if s.MinuteOfDay != ts.Minute() {
			p.errorf("sample %d: minute_of_day %d, want %d", i, s.MinuteOfDay, ts.Minute())
		}
		if s.YearOfCalendar != ts.Year() {
			p.errorf("sample %d: year_of_calendar %d, want %d", i, s.YearOfCalendar, ts.Year())
		}
		if s.WaitTime.Valid && s.WaitTime.Minutes == sentinel {
			p.errorf("sample %d (%s): sentinel value survived into wait_time", i, s.AttractionName)
		}
		if s.FetchedAt.IsZero() {
			p.errorf("sample %d: fetched_at is zero", i)
		}
	}
	return p
}

// ── Phase 5: Ordering ──
// Samples appear in catalog order, each attraction's block contiguous.

func validateOrdering(samples []domain.WaitSample) *phase {
	p := &phase{name: "Phase 5: Ordering (catalog order)"}

	rank := map[string]int{}
	for i, src := range touringplans.DefaultCatalog().Sources() {
		rank[src.Attraction] = i
	}

	prev := -1
	for i := range samples {
		r, ok := rank[samples[i].AttractionName]
		if !ok {
			continue // reported in Phase 2
		}
		if r < prev {
			p.errorf("sample %d (%s): appears after a later catalog entry", i, samples[i].AttractionName)
		}
		prev = r
	}
	return p
}
