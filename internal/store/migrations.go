package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS application_tracking (
	hash                    TEXT NOT NULL,
	user_id                 TEXT NOT NULL,
	fingerprint             TEXT NOT NULL,
	email_address           TEXT NOT NULL DEFAULT '',
	application_id          TEXT NOT NULL DEFAULT '',
	company_name            TEXT NOT NULL DEFAULT '',
	job_title               TEXT NOT NULL DEFAULT '',
	notification_message_id TEXT,
	current_status          TEXT NOT NULL DEFAULT '',
	last_updated            DATETIME NOT NULL,
	PRIMARY KEY (hash, user_id)
);

CREATE INDEX IF NOT EXISTS idx_tracking_user_fingerprint
	ON application_tracking(user_id, fingerprint);
CREATE INDEX IF NOT EXISTS idx_tracking_user_company
	ON application_tracking(user_id, company_name);
CREATE INDEX IF NOT EXISTS idx_tracking_user_updated
	ON application_tracking(user_id, last_updated);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS archived_updates (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	email_id     TEXT NOT NULL DEFAULT '',
	subject      TEXT NOT NULL DEFAULT '',
	sender       TEXT NOT NULL DEFAULT '',
	snippet      TEXT NOT NULL DEFAULT '',
	job_status   TEXT NOT NULL DEFAULT '',
	date         DATETIME NOT NULL,
	full_content TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_archived_user ON archived_updates(user_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
