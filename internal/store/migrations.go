package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create sessions and statements",
		SQL: `
			CREATE TABLE sessions (
				id            TEXT PRIMARY KEY,
				topic         TEXT NOT NULL,
				participants  TEXT NOT NULL,
				status        TEXT NOT NULL DEFAULT 'active',
				created_at    TEXT NOT NULL DEFAULT (datetime('now')),
				ended_at      TEXT,
				metadata      TEXT
			);

			CREATE INDEX idx_sessions_status ON sessions (status);
			CREATE INDEX idx_sessions_created ON sessions (created_at);

			CREATE TABLE statements (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES sessions(id),
				agent       TEXT NOT NULL,
				type        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL DEFAULT (datetime('now')),
				metadata    TEXT
			);

			CREATE INDEX idx_statements_session ON statements (session_id, id);
			CREATE INDEX idx_statements_timestamp ON statements (timestamp);
			CREATE INDEX idx_statements_agent ON statements (agent);
			CREATE INDEX idx_statements_type ON statements (type);
		`,
	},
}
