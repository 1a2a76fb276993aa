package store

import "time"

const schema = `
-- Persisted metric samples (24h / record-cap retention)
CREATE TABLE IF NOT EXISTS samples (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    ts        INTEGER NOT NULL,
    cpu_pct   REAL    NOT NULL,
    mem_pct   REAL    NOT NULL,
    gpu_pct   REAL,
    gpu_temp  REAL,
    gpu_mem   INTEGER
);

-- Created alerts (30d retention)
CREATE TABLE IF NOT EXISTS alert_log (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    alert_id  TEXT    NOT NULL,
    ts        INTEGER NOT NULL,
    category  TEXT    NOT NULL,
    severity  TEXT    NOT NULL,
    message   TEXT    NOT NULL,
    value     REAL    NOT NULL,
    threshold REAL    NOT NULL
);

-- Secondary indexes for time-range scans
CREATE INDEX IF NOT EXISTS idx_samples_ts ON samples(ts);
CREATE INDEX IF NOT EXISTS idx_alert_log_ts ON alert_log(ts);
`

func timeFromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
