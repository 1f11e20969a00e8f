package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/revisio/revisio/internal/model"
)

// CreateSubject inserts a new subject and returns it.
func (db *DB) CreateSubject(name string, examDate *time.Time) (*model.Subject, error) {
	sub := &model.Subject{
		ID:        model.NewID(),
		Name:      name,
		ExamDate:  examDate,
		CreatedAt: time.Now(),
	}

	var exam *int64
	if examDate != nil {
		ms := examDate.UnixMilli()
		exam = &ms
	}
	_, err := db.Exec(`
		INSERT INTO subjects (id, name, exam_date, archived, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, sub.ID, sub.Name, exam, sub.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert subject: %w", err)
	}
	return sub, nil
}

// GetSubject returns a subject with its topics, or nil if not found.
func (db *DB) GetSubject(id string) (*model.Subject, error) {
	row := db.QueryRow(`
		SELECT id, name, exam_date, archived, created_at
		FROM subjects WHERE id = ?
	`, id)

	sub, err := scanSubject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	topics, err := db.listTopics(sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Topics = topics
	return sub, nil
}

// ListSubjects returns all subjects with their topics, newest first.
// Archived subjects are included only when includeArchived is set.
func (db *DB) ListSubjects(includeArchived bool) ([]model.Subject, error) {
	q := `SELECT id, name, exam_date, archived, created_at FROM subjects`
	if !includeArchived {
		q += ` WHERE archived = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subs []model.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range subs {
		topics, err := db.listTopics(subs[i].ID)
		if err != nil {
			return nil, err
		}
		subs[i].Topics = topics
	}
	return subs, nil
}

// SetExamDate sets or clears a subject's exam date.
func (db *DB) SetExamDate(id string, examDate *time.Time) error {
	var exam *int64
	if examDate != nil {
		ms := examDate.UnixMilli()
		exam = &ms
	}
	res, err := db.Exec(`UPDATE subjects SET exam_date = ? WHERE id = ?`, exam, id)
	if err != nil {
		return fmt.Errorf("set exam date: %w", err)
	}
	return requireRow(res, "subject", id)
}

// SetArchived flips a subject's archived flag. Archived subjects drop out
// of dashboards; their topics and history stay intact.
func (db *DB) SetArchived(id string, archived bool) error {
	res, err := db.Exec(`UPDATE subjects SET archived = ? WHERE id = ?`, boolInt(archived), id)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	return requireRow(res, "subject", id)
}

// DeleteSubject removes a subject; topics and their review events cascade.
// Timer sessions reference subjects weakly and survive.
func (db *DB) DeleteSubject(id string) error {
	res, err := db.Exec(`DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return requireRow(res, "subject", id)
}

// LoadAll returns the full application snapshot the core packages
// consume: every non-archived subject with topics, plus the complete
// session log.
func (db *DB) LoadAll() (*model.AppData, error) {
	subjects, err := db.ListSubjects(true)
	if err != nil {
		return nil, err
	}
	sessions, err := db.ListSessions()
	if err != nil {
		return nil, err
	}
	return &model.AppData{Subjects: subjects, Sessions: sessions}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*model.Subject, error) {
	var (
		sub      model.Subject
		exam     sql.NullInt64
		archived int
		created  int64
	)
	if err := row.Scan(&sub.ID, &sub.Name, &exam, &archived, &created); err != nil {
		return nil, err
	}
	if exam.Valid {
		t := time.UnixMilli(exam.Int64)
		sub.ExamDate = &t
	}
	sub.Archived = archived != 0
	sub.CreatedAt = time.UnixMilli(created)
	return &sub, nil
}

func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
