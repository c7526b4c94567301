package sqlite

// Schema defines the SQLite database schema
const Schema = `
-- Monitoring sessions table
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	profile_id TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at DESC);

-- Per-cycle metric rows
CREATE TABLE IF NOT EXISTS cycles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	blink_rate REAL NOT NULL,
	head_forward BOOLEAN NOT NULL DEFAULT 0,
	breathing_rate REAL NOT NULL,
	load_score REAL NOT NULL,
	zone TEXT NOT NULL,
	face_detected BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_cycles_session_id ON cycles(session_id);
CREATE INDEX IF NOT EXISTS idx_cycles_zone ON cycles(zone);
CREATE INDEX IF NOT EXISTS idx_cycles_timestamp ON cycles(timestamp DESC);

-- Executed interventions
CREATE TABLE IF NOT EXISTS interventions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	recommendation TEXT NOT NULL DEFAULT '',
	used_fallback BOOLEAN NOT NULL DEFAULT 0,
	timestamp TIMESTAMP NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id)
);

CREATE INDEX IF NOT EXISTS idx_interventions_session_id ON interventions(session_id);
CREATE INDEX IF NOT EXISTS idx_interventions_kind ON interventions(kind);
CREATE INDEX IF NOT EXISTS idx_interventions_timestamp ON interventions(timestamp DESC);
`
