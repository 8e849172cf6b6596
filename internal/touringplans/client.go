package touringplans

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lcaslokonon/disney-wait-times/internal/domain"
)

// Column aliases: the CDN ships SACTMIN/SPOSTMIN, some dataset mirrors use the
// descriptive names. First match in the header wins.
var (
	actualAliases = []string{"SACTMIN", "actual_wait"}
	postedAliases = []string{"SPOSTMIN", "posted_wait"}
)

// Client downloads wait-time CSV datasets and normalizes them. One GET per
// Fetch call; no caching, no retry.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch performs one GET against the source URL and returns one normalized
// sample per CSV data row, in file order. Any transport, schema, or parse
// problem fails the whole fetch; there is no partial result.
func (c *Client) Fetch(ctx context.Context, src Source) ([]domain.WaitSample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &TransportError{URL: src.URL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: src.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TransportError{
			URL:    src.URL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
		}
	}

	samples, err := decode(resp.Body, src.Attraction)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.URL, err)
	}

	c.logger.Debug("fetched source", "attraction", src.Attraction, "rows", len(samples))
	return samples, nil
}

// columnIndex holds the resolved positions of the required columns.
type columnIndex struct {
	datetime int
	actual   int
	posted   int
}

// decode reads the CSV stream and normalizes every data row.
func decode(r io.Reader, attraction string) ([]domain.WaitSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-field below

	header, err := reader.Read()
	if err != nil {
		return nil, &SchemaError{Missing: "header", Err: err}
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var samples []domain.WaitSample
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Row: rowNum, Err: err}
		}

		raw := domain.RawRow{Datetime: field(record, cols.datetime)}
		if raw.Actual, err = parseWaitField(field(record, cols.actual)); err != nil {
			return nil, &ParseError{Row: rowNum, Err: err}
		}
		if raw.Posted, err = parseWaitField(field(record, cols.posted)); err != nil {
			return nil, &ParseError{Row: rowNum, Err: err}
		}

		sample, err := domain.Normalize(attraction, raw)
		if err != nil {
			return nil, &ParseError{Row: rowNum, Err: err}
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// resolveColumns locates the datetime and wait-time columns in the header.
func resolveColumns(header []string) (columnIndex, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			// Some exports carry a UTF-8 BOM on the first header cell.
			name = strings.TrimPrefix(name, "\ufeff")
		}
		idx[strings.TrimSpace(name)] = i
	}

	cols := columnIndex{datetime: -1, actual: -1, posted: -1}

	i, ok := idx["datetime"]
	if !ok {
		return cols, &SchemaError{Missing: "datetime"}
	}
	cols.datetime = i

	for _, alias := range actualAliases {
		if i, ok := idx[alias]; ok {
			cols.actual = i
			break
		}
	}
	if cols.actual < 0 {
		return cols, &SchemaError{Missing: actualAliases[0]}
	}

	for _, alias := range postedAliases {
		if i, ok := idx[alias]; ok {
			cols.posted = i
			break
		}
	}
	if cols.posted < 0 {
		return cols, &SchemaError{Missing: postedAliases[0]}
	}

	return cols, nil
}

// field returns the i-th cell or "" when the row is shorter than the header.
func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

// parseWaitField parses one wait-time cell. Empty and NA-style cells are a
// missing value; anything else must be numeric.
func parseWaitField(s string) (domain.Wait, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "null") {
		return domain.Wait{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Wait{}, fmt.Errorf("wait value %q is not numeric", s)
	}
	return domain.WaitOf(v), nil
}
