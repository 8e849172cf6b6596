// Command genfixtures generates deterministic mock wait-time CSV files for
// every tracked attraction, plus the expected normalized output produced by
// running the same rows through the actual domain transformation. The pair
// keeps local mock servers and test assertions in sync with real pipeline
// behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures -csv-dir testdata/feeds -expected-out testdata/expected_samples.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lcaslokonon/disney-wait-times/internal/domain"
	"github.com/lcaslokonon/disney-wait-times/internal/touringplans"
)

var baseTime = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

const (
	rowsPerFeed = 12
	sentinel    = "-999"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvDir := flag.String("csv-dir", "", "output directory for mock feed CSV files")
	expectedOut := flag.String("expected-out", "", "output path for the expected normalized JSON fixture")
	flag.Parse()

	if *csvDir == "" || *expectedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv-dir, -expected-out")
	}

	// Fixed clock so FetchedAt is reproducible across runs.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	var expected []domain.WaitSample
	for i, src := range touringplans.DefaultCatalog().Sources() {
		rows := feedRows(i)

		if err := writeFeed(filepath.Join(*csvDir, filepath.Base(src.URL)), rows); err != nil {
			return fmt.Errorf("writing feed for %s: %w", src.Attraction, err)
		}

		samples, err := normalize(src.Attraction, rows)
		if err != nil {
			return fmt.Errorf("normalizing %s: %w", src.Attraction, err)
		}
		expected = append(expected, samples...)
		log.Printf("%s: %d rows, %d kept", src.Attraction, len(rows), len(samples))
	}

	if err := writeJSON(*expectedOut, expected); err != nil {
		return fmt.Errorf("writing expected fixture: %w", err)
	}
	log.Printf("total: %d expected samples, wrote %s", len(expected), *expectedOut)
	return nil
}

// feedRows builds the raw CSV rows for the i-th feed. Each feed gets the same
// shape of data at staggered times: plain posted waits, an actual wait
// overriding a posted one, blank cells, a -999 sentinel, and a negative but
// non-sentinel value.
func feedRows(feed int) [][]string {
	rows := [][]string{{"datetime", "SACTMIN", "SPOSTMIN"}}
	start := baseTime.Add(time.Duration(feed) * time.Minute)

	for r := 0; r < rowsPerFeed; r++ {
		ts := start.Add(time.Duration(r) * 15 * time.Minute).Format(domain.TimeLayout)
		actual, posted := "", strconv.Itoa(5*(r+1))
		switch r {
		case 3:
			actual = strconv.Itoa(7 * (feed + 2)) // measured wait masks the posted one
		case 5:
			posted = "" // no value in either column
		case 7:
			posted = sentinel
		case 9:
			actual = sentinel
		case 11:
			posted = "-998"
		}
		rows = append(rows, []string{ts, actual, posted})
	}
	return rows
}

// normalize runs rows through the domain transformation and drops the
// sentinel-flagged ones, matching aggregation behavior.
func normalize(attraction string, rows [][]string) ([]domain.WaitSample, error) {
	var samples []domain.WaitSample
	for _, row := range rows[1:] {
		raw := domain.RawRow{
			Datetime: row[0],
			Actual:   parseWait(row[1]),
			Posted:   parseWait(row[2]),
		}
		s, err := domain.Normalize(attraction, raw)
		if err != nil {
			return nil, err
		}
		if s.NoData {
			continue
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func parseWait(cell string) domain.Wait {
	if cell == "" {
		return domain.Wait{}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		log.Fatalf("bad generated cell %q: %v", cell, err)
	}
	return domain.WaitOf(v)
}

func writeFeed(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
