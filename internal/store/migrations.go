package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "subjects: top-level study subjects",
		SQL: `
CREATE TABLE subjects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    exam_date   INTEGER,
    archived    INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);

CREATE INDEX idx_subjects_archived ON subjects(archived);
`,
	},
	{
		Version:     2,
		Description: "topics: learnable units with inlined memory state",
		SQL: `
CREATE TABLE topics (
    id            TEXT PRIMARY KEY,
    subject_id    TEXT NOT NULL,
    name          TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'untouched'
                  CHECK (status IN ('untouched', 'struggling', 'learning', 'mastered')),
    grades        TEXT NOT NULL DEFAULT '[]',
    material      TEXT NOT NULL DEFAULT '',

    -- Memory state; NULL columns mean the topic was never reviewed.
    stability     REAL CHECK (stability IS NULL OR stability > 0),
    difficulty    REAL CHECK (difficulty IS NULL OR (difficulty >= 1 AND difficulty <= 10)),
    last_review   INTEGER,
    review_count  INTEGER NOT NULL DEFAULT 0,

    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL,

    FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE
);

CREATE INDEX idx_topics_subject ON topics(subject_id);
CREATE INDEX idx_topics_status  ON topics(status);
`,
	},
	{
		Version:     3,
		Description: "review_events: append-only per-topic review log",
		SQL: `
CREATE TABLE review_events (
    id             INTEGER PRIMARY KEY,
    topic_id       TEXT NOT NULL,
    date           INTEGER NOT NULL,
    grade          INTEGER NOT NULL CHECK (grade BETWEEN 1 AND 4),
    prev_interval  INTEGER NOT NULL DEFAULT 0,
    new_interval   INTEGER NOT NULL,

    FOREIGN KEY (topic_id) REFERENCES topics(id) ON DELETE CASCADE
);

CREATE INDEX idx_reviews_topic ON review_events(topic_id);
CREATE INDEX idx_reviews_date  ON review_events(date DESC);
`,
	},
	{
		Version:     4,
		Description: "timer_sessions: immutable study-timer log, weak subject refs",
		SQL: `
CREATE TABLE timer_sessions (
    id          TEXT PRIMARY KEY,
    subject_id  TEXT NOT NULL,
    topic_id    TEXT,
    started_at  INTEGER NOT NULL,
    duration    INTEGER NOT NULL CHECK (duration > 0)
);

CREATE INDEX idx_sessions_started ON timer_sessions(started_at DESC);
CREATE INDEX idx_sessions_subject ON timer_sessions(subject_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
