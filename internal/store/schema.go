package store

const createSamplesTable = `
CREATE TABLE IF NOT EXISTS wait_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    attraction_name TEXT NOT NULL,
    date_id TEXT NOT NULL,
    month_of_year INTEGER NOT NULL,
    hour_of_day INTEGER NOT NULL,
    minute_of_day INTEGER NOT NULL,
    year_of_calendar INTEGER NOT NULL,
    wait_time REAL,
    observed_at TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_samples_attraction ON wait_samples(attraction_name);
CREATE INDEX IF NOT EXISTS idx_samples_date ON wait_samples(date_id);
`

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    built_at TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    dropped INTEGER NOT NULL
);
`

const deleteAllSamples = `DELETE FROM wait_samples`

const insertSample = `
INSERT INTO wait_samples (
    attraction_name, date_id, month_of_year, hour_of_day,
    minute_of_day, year_of_calendar, wait_time, observed_at, fetched_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertSnapshot = `
INSERT INTO snapshots (built_at, row_count, dropped) VALUES (?, ?, ?)
`

const countSamples = `SELECT COUNT(*) FROM wait_samples`

const selectByAttraction = `
SELECT attraction_name, date_id, month_of_year, hour_of_day,
       minute_of_day, year_of_calendar, wait_time, observed_at, fetched_at
FROM wait_samples
WHERE attraction_name = ?
ORDER BY id
`
