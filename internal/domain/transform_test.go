package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcaslokonon/disney-wait-times/internal/domain"
)

func TestNormalize_DerivedCalendarFields(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.March, 16, 8, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	sample, err := domain.Normalize("Spaceship Earth", domain.RawRow{
		Datetime: "2024-03-15 14:27:00",
		Actual:   domain.WaitOf(35),
	})
	require.NoError(t, err)

	assert.Equal(t, "Spaceship Earth", sample.AttractionName)
	assert.Equal(t, "2024-03-15", sample.DateID)
	assert.Equal(t, 3, sample.MonthOfYear)
	assert.Equal(t, 14, sample.HourOfDay)
	assert.Equal(t, 27, sample.MinuteOfDay)
	assert.Equal(t, 2024, sample.YearOfCalendar)
	assert.True(t, sample.WaitTime.Valid)
	assert.Equal(t, 35.0, sample.WaitTime.Minutes)
	assert.Equal(t, fakeClock.Now().UTC(), sample.FetchedAt)
	assert.Equal(t, time.Date(2024, time.March, 15, 14, 27, 0, 0, time.UTC), sample.ObservedAt)
}

func TestNormalize_CoalesceLaw(t *testing.T) {
	tests := []struct {
		name   string
		actual domain.Wait
		posted domain.Wait
		want   domain.Wait
	}{
		{name: "actual wins over posted", actual: domain.WaitOf(12), posted: domain.WaitOf(45), want: domain.WaitOf(12)},
		{name: "posted fills in for missing actual", posted: domain.WaitOf(45), want: domain.WaitOf(45)},
		{name: "actual zero still wins", actual: domain.WaitOf(0), posted: domain.WaitOf(45), want: domain.WaitOf(0)},
		{name: "both missing stays missing", want: domain.Wait{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, err := domain.Normalize("DINOSAUR", domain.RawRow{
				Datetime: "2019-07-04 09:05:00",
				Actual:   tt.actual,
				Posted:   tt.posted,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, sample.WaitTime)
			assert.False(t, sample.NoData)
		})
	}
}

func TestNormalize_SentinelDecodedToNoData(t *testing.T) {
	sample, err := domain.Normalize("Soarin", domain.RawRow{
		Datetime: "2021-11-20 16:45:00",
		Posted:   domain.WaitOf(-999),
	})
	require.NoError(t, err)

	assert.True(t, sample.NoData)
	assert.False(t, sample.WaitTime.Valid, "sentinel must not survive as a value")
	// Calendar fields are still derived; the row is dropped later, not here.
	assert.Equal(t, "2021-11-20", sample.DateID)
}

func TestNormalize_SentinelOnlyMatchesExactValue(t *testing.T) {
	sample, err := domain.Normalize("Soarin", domain.RawRow{
		Datetime: "2021-11-20 16:52:00",
		Actual:   domain.WaitOf(-998),
	})
	require.NoError(t, err)

	assert.False(t, sample.NoData)
	assert.True(t, sample.WaitTime.Valid)
	assert.Equal(t, -998.0, sample.WaitTime.Minutes)
}

func TestNormalize_SentinelInActualMasksPosted(t *testing.T) {
	// Coalesce picks the actual column first, so a sentinel there marks the
	// whole row even when a posted value exists.
	sample, err := domain.Normalize("Expedition Everest", domain.RawRow{
		Datetime: "2021-11-20 17:00:00",
		Actual:   domain.WaitOf(-999),
		Posted:   domain.WaitOf(30),
	})
	require.NoError(t, err)
	assert.True(t, sample.NoData)
}

func TestNormalize_MalformedTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		datetime string
	}{
		{name: "empty", datetime: ""},
		{name: "date only", datetime: "2024-03-15"},
		{name: "wrong separator", datetime: "2024/03/15 14:27:00"},
		{name: "garbage", datetime: "not a timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.Normalize("DINOSAUR", domain.RawRow{Datetime: tt.datetime})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse datetime")
		})
	}
}

func TestNormalize_TrimsDatetimeWhitespace(t *testing.T) {
	sample, err := domain.Normalize("DINOSAUR", domain.RawRow{Datetime: " 2024-01-02 10:00:00 "})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", sample.DateID)
}

func TestWait_JSONRoundTrip(t *testing.T) {
	type payload struct {
		WaitTime domain.Wait `json:"wait_time"`
	}

	present, err := json.Marshal(payload{WaitTime: domain.WaitOf(17.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"wait_time":17.5}`, string(present))

	missing, err := json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"wait_time":null}`, string(missing))

	var back payload
	require.NoError(t, json.Unmarshal(present, &back))
	assert.Equal(t, domain.WaitOf(17.5), back.WaitTime)

	require.NoError(t, json.Unmarshal([]byte(`{"wait_time":null}`), &back))
	assert.False(t, back.WaitTime.Valid)
}

func TestColumns_FixedOrder(t *testing.T) {
	assert.Equal(t, []string{
		"attraction_name", "date_id", "month_of_year", "hour_of_day",
		"minute_of_day", "year_of_calendar", "wait_time", "observed_at", "fetched_at",
	}, domain.Columns())
}
