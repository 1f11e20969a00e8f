package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/revisio/revisio/internal/model"
)

// AddSession records one finished study-timer run. Sessions are
// immutable once written; there is no update path.
func (db *DB) AddSession(subjectID, topicID string, startedAt time.Time, durationMinutes int) (*model.TimerSession, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("session duration must be positive, got %d", durationMinutes)
	}

	s := &model.TimerSession{
		ID:        model.NewID(),
		SubjectID: subjectID,
		TopicID:   topicID,
		StartedAt: startedAt,
		Duration:  durationMinutes,
	}

	var topic *string
	if topicID != "" {
		topic = &topicID
	}
	_, err := db.Exec(`
		INSERT INTO timer_sessions (id, subject_id, topic_id, started_at, duration)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, subjectID, topic, startedAt.UnixMilli(), durationMinutes)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

// ListSessions returns the full session log, oldest first.
func (db *DB) ListSessions() ([]model.TimerSession, error) {
	rows, err := db.Query(`
		SELECT id, subject_id, topic_id, started_at, duration
		FROM timer_sessions ORDER BY started_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.TimerSession
	for rows.Next() {
		var (
			s       model.TimerSession
			topic   sql.NullString
			started int64
		)
		if err := rows.Scan(&s.ID, &s.SubjectID, &topic, &started, &s.Duration); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.TopicID = topic.String
		s.StartedAt = time.UnixMilli(started)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
