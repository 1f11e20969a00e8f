package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/model"
)

// CreateTopic inserts a new topic under a subject. Memory state starts
// absent; it appears with the first grading event.
func (db *DB) CreateTopic(subjectID, name, material string) (*model.Topic, error) {
	now := time.Now()
	topic := &model.Topic{
		ID:        model.NewID(),
		SubjectID: subjectID,
		Name:      name,
		Status:    model.StatusUntouched,
		Material:  material,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := db.Exec(`
		INSERT INTO topics (id, subject_id, name, status, grades, material, created_at, updated_at)
		VALUES (?, ?, ?, ?, '[]', ?, ?, ?)
	`, topic.ID, subjectID, name, string(topic.Status), material, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert topic: %w", err)
	}
	return topic, nil
}

// GetTopic returns a topic by id, or nil if not found.
func (db *DB) GetTopic(id string) (*model.Topic, error) {
	row := db.QueryRow(topicSelect+` WHERE id = ?`, id)
	topic, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return topic, nil
}

// UpdateTopicStatus sets the coarse progress status.
func (db *DB) UpdateTopicStatus(id string, status model.TopicStatus) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("unknown topic status %q", status)
	}
	res, err := db.Exec(`UPDATE topics SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update topic status: %w", err)
	}
	return requireRow(res, "topic", id)
}

// AddQuizGrade appends a quiz score (2-6 scale) to the topic's history.
func (db *DB) AddQuizGrade(id string, grade float64) error {
	if grade < 2 || grade > 6 {
		return fmt.Errorf("quiz grade %v outside the 2-6 scale", grade)
	}

	topic, err := db.GetTopic(id)
	if err != nil {
		return err
	}
	if topic == nil {
		return fmt.Errorf("topic %s not found", id)
	}

	grades, err := json.Marshal(append(topic.Grades, grade))
	if err != nil {
		return fmt.Errorf("encode grades: %w", err)
	}
	_, err = db.Exec(`UPDATE topics SET grades = ?, updated_at = ? WHERE id = ?`,
		string(grades), time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update grades: %w", err)
	}
	return nil
}

// SetMaterial replaces the topic's study material.
func (db *DB) SetMaterial(id, material string) error {
	res, err := db.Exec(`UPDATE topics SET material = ?, updated_at = ? WHERE id = ?`,
		material, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("set material: %w", err)
	}
	return requireRow(res, "topic", id)
}

// DeleteTopic removes a topic; its review events cascade.
func (db *DB) DeleteTopic(id string) error {
	res, err := db.Exec(`DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return requireRow(res, "topic", id)
}

// SaveReview persists the outcome of a grading event: the topic's new
// memory state and the review-log entry, in one transaction. This is the
// storage half of the scheduler's single mutation path.
func (db *DB) SaveReview(topic *model.Topic, event *model.ReviewEvent) error {
	if topic.Memory == nil {
		return fmt.Errorf("save review for %s: no memory state", topic.ID)
	}
	if err := memory.CheckState(topic.Memory); err != nil {
		return fmt.Errorf("save review for %s: %w", topic.ID, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin save review: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE topics
		SET stability = ?, difficulty = ?, last_review = ?, review_count = ?, updated_at = ?
		WHERE id = ?
	`, topic.Memory.Stability, topic.Memory.Difficulty,
		topic.Memory.LastReview.UnixMilli(), topic.Memory.ReviewCount,
		topic.UpdatedAt.UnixMilli(), topic.ID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update memory state: %w", err)
	}
	if err := requireRow(res, "topic", topic.ID); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec(`
		INSERT INTO review_events (topic_id, date, grade, prev_interval, new_interval)
		VALUES (?, ?, ?, ?, ?)
	`, event.TopicID, event.Date.UnixMilli(), event.Grade, event.PrevInterval, event.NewInterval); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert review event: %w", err)
	}

	return tx.Commit()
}

// ListReviewEvents returns a topic's review log, oldest first.
func (db *DB) ListReviewEvents(topicID string) ([]model.ReviewEvent, error) {
	rows, err := db.Query(`
		SELECT id, topic_id, date, grade, prev_interval, new_interval
		FROM review_events WHERE topic_id = ? ORDER BY date ASC, id ASC
	`, topicID)
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	defer rows.Close()

	var events []model.ReviewEvent
	for rows.Next() {
		var e model.ReviewEvent
		var date int64
		if err := rows.Scan(&e.ID, &e.TopicID, &date, &e.Grade, &e.PrevInterval, &e.NewInterval); err != nil {
			return nil, fmt.Errorf("scan review event: %w", err)
		}
		e.Date = time.UnixMilli(date)
		events = append(events, e)
	}
	return events, rows.Err()
}

const topicSelect = `
	SELECT id, subject_id, name, status, grades, material,
	       stability, difficulty, last_review, review_count,
	       created_at, updated_at
	FROM topics`

// listTopics returns a subject's topics, oldest first.
func (db *DB) listTopics(subjectID string) ([]model.Topic, error) {
	rows, err := db.Query(topicSelect+` WHERE subject_id = ? ORDER BY created_at ASC, id ASC`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

func scanTopic(row rowScanner) (*model.Topic, error) {
	var (
		t          model.Topic
		status     string
		grades     string
		stability  sql.NullFloat64
		difficulty sql.NullFloat64
		lastReview sql.NullInt64
		reviews    int
		created    int64
		updated    int64
	)
	err := row.Scan(&t.ID, &t.SubjectID, &t.Name, &status, &grades, &t.Material,
		&stability, &difficulty, &lastReview, &reviews, &created, &updated)
	if err != nil {
		return nil, err
	}

	t.Status = model.TopicStatus(status)
	t.CreatedAt = time.UnixMilli(created)
	t.UpdatedAt = time.UnixMilli(updated)
	if err := json.Unmarshal([]byte(grades), &t.Grades); err != nil {
		return nil, fmt.Errorf("decode grades for %s: %w", t.ID, err)
	}

	if stability.Valid && difficulty.Valid && lastReview.Valid {
		t.Memory = &model.MemoryState{
			Stability:   stability.Float64,
			Difficulty:  difficulty.Float64,
			LastReview:  time.UnixMilli(lastReview.Int64),
			ReviewCount: reviews,
		}
	}
	return &t, nil
}
