package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// TimeLayout is the fixed timestamp format of the wait-time feeds.
const TimeLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date format of the DateID field.
const DateLayout = "2006-01-02"

// Wait is a wait-time measurement in minutes. Valid is false when the source
// row carried no value in either candidate column.
type Wait struct {
	Minutes float64
	Valid   bool
}

// WaitOf returns a present Wait of the given number of minutes.
func WaitOf(minutes float64) Wait {
	return Wait{Minutes: minutes, Valid: true}
}

// MarshalJSON encodes a missing wait as JSON null, a present one as a number.
func (w Wait) MarshalJSON() ([]byte, error) {
	if !w.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(w.Minutes)
}

// UnmarshalJSON accepts either a number or null.
func (w *Wait) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*w = Wait{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = Wait{Minutes: v, Valid: true}
	return nil
}

// RawRow is one record of a wait-time CSV before normalization.
type RawRow struct {
	Datetime string
	Actual   Wait // wait measured in the queue (SACTMIN)
	Posted   Wait // wait advertised at the entrance (SPOSTMIN)
}

// WaitSample is the normalized observation shared by every source. Field order
// matches the fixed column order of the aggregated table.
type WaitSample struct {
	AttractionName string    `json:"attraction_name"`
	DateID         string    `json:"date_id"`
	MonthOfYear    int       `json:"month_of_year"`
	HourOfDay      int       `json:"hour_of_day"`
	MinuteOfDay    int       `json:"minute_of_day"`
	YearOfCalendar int       `json:"year_of_calendar"`
	WaitTime       Wait      `json:"wait_time"`
	ObservedAt     time.Time `json:"observed_at"`
	FetchedAt      time.Time `json:"fetched_at"`

	// NoData marks a row the feed explicitly flagged as having no measurement
	// (the upstream -999 sentinel), as opposed to a value that was merely
	// absent. Marked rows are dropped during aggregation.
	NoData bool `json:"-"`
}

// Columns is the fixed header of the aggregated table. Identical for every
// source and every output format.
func Columns() []string {
	return []string{
		"attraction_name",
		"date_id",
		"month_of_year",
		"hour_of_day",
		"minute_of_day",
		"year_of_calendar",
		"wait_time",
		"observed_at",
		"fetched_at",
	}
}
