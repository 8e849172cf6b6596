// Package domain models touringplans.com attraction wait-time observations.
//
// # Data Source
//
// Wait-time histories are published as per-attraction CSV files on the
// touringplans.com CDN, e.g.
// https://cdn.touringplans.com/datasets/alien_saucers.csv. Each file covers one
// attraction with one row per observation interval.
//
// # Feed Conventions
//
// Timestamp format:
//
//	"YYYY-MM-DD HH:MM:SS" in the park's local time, e.g. "2024-03-15 14:27:00".
//	There is exactly one timestamp column, named "datetime". No other layout is
//	accepted; a malformed timestamp fails the whole fetch.
//
// Wait-time columns (minutes, float):
//
//	SACTMIN  - actual wait, measured by someone standing in the queue.
//	SPOSTMIN - posted wait, read off the sign at the attraction entrance.
//	Some mirrors of the datasets rename these to "actual_wait" and
//	"posted_wait"; both spellings are accepted. At most one of the two carries
//	a value for a given row. The normalized wait_time is the actual wait when
//	present, otherwise the posted wait, otherwise null.
//
// Sentinel:
//
//	-999 means "no measurement available" (attraction closed, data outage).
//	It is decoded into an explicit no-data marker during normalization, and
//	marked rows are removed when sources are aggregated. Every other value,
//	negative or not, is a real measurement and is kept.
//
// # Derived Calendar Fields
//
// date_id, month_of_year, hour_of_day, minute_of_day and year_of_calendar are
// pure functions of the parsed timestamp, precomputed so downstream consumers
// can group by calendar dimensions without re-parsing datetimes. minute_of_day
// is the minute within the hour; the name is kept for compatibility with the
// published dataset schema.
package domain
