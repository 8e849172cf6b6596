package domain

import (
	"fmt"
	"strings"
	"time"
)

// sentinelNoData is the upstream marker for "no measurement available".
const sentinelNoData = -999

// Coalesce selects the actual wait when present, falling back to the posted
// wait. Returns a missing Wait when both are absent.
func Coalesce(actual, posted Wait) Wait {
	if actual.Valid {
		return actual
	}
	return posted
}

// Normalize converts one raw CSV row into a WaitSample for the given
// attraction. The datetime must match TimeLayout exactly; a malformed
// timestamp fails the row, and with it the whole fetch.
func Normalize(attraction string, row RawRow) (WaitSample, error) {
	ts, err := time.Parse(TimeLayout, strings.TrimSpace(row.Datetime))
	if err != nil {
		return WaitSample{}, fmt.Errorf("parse datetime %q: %w", row.Datetime, err)
	}

	sample := WaitSample{
		AttractionName: attraction,
		DateID:         ts.Format(DateLayout),
		MonthOfYear:    int(ts.Month()),
		HourOfDay:      ts.Hour(),
		MinuteOfDay:    ts.Minute(),
		YearOfCalendar: ts.Year(),
		ObservedAt:     ts,
		FetchedAt:      clock.Now().UTC(),
	}

	wait := Coalesce(row.Actual, row.Posted)
	if wait.Valid && wait.Minutes == sentinelNoData {
		// Decode the sentinel here so downstream logic sees an explicit
		// absence marker instead of a magic number.
		sample.NoData = true
		return sample, nil
	}

	sample.WaitTime = wait
	return sample, nil
}
