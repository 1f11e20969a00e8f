package server

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/revisio/revisio/internal/analytics"
	"github.com/revisio/revisio/internal/memory"
	"github.com/revisio/revisio/internal/model"
	"github.com/revisio/revisio/internal/readiness"
	"github.com/revisio/revisio/internal/scheduler"
	"github.com/revisio/revisio/internal/stats"
)

// --- subjects ---

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "true"
	subs, err := s.db.ListSubjects(includeArchived)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subs})
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ExamDate string `json:"exam_date"` // YYYY-MM-DD, optional
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	var exam *time.Time
	if req.ExamDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.ExamDate, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "exam_date must be YYYY-MM-DD")
			return
		}
		exam = &t
	}

	sub, err := s.db.CreateSubject(req.Name, exam)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	sub, err := s.db.GetSubject(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subject not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteSubject(chi.URLParam(r, "subjectID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSetExamDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExamDate string `json:"exam_date"` // empty clears
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var exam *time.Time
	if req.ExamDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.ExamDate, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "exam_date must be YYYY-MM-DD")
			return
		}
		exam = &t
	}

	if err := s.db.SetExamDate(chi.URLParam(r, "subjectID"), exam); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSetArchived(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Archived bool `json:"archived"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.db.SetArchived(chi.URLParam(r, "subjectID"), req.Archived); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- topics ---

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")

	var req struct {
		Name     string `json:"name"`
		Material string `json:"material"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	sub, err := s.db.GetSubject(subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subject not found")
		return
	}

	topic, err := s.db.CreateTopic(subjectID, req.Name, req.Material)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteTopic(chi.URLParam(r, "topicID")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleTopicStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	status := model.TopicStatus(req.Status)
	if !model.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}
	if err := s.db.UpdateTopicStatus(chi.URLParam(r, "topicID"), status); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopicMaterial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Material string `json:"material"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.db.SetMaterial(chi.URLParam(r, "topicID"), req.Material); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddGrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Grade float64 `json:"grade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.db.AddQuizGrade(chi.URLParam(r, "topicID"), req.Grade); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// --- reviews ---

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	topicID := chi.URLParam(r, "topicID")

	var req struct {
		Grade string `json:"grade"` // again|hard|good|easy
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	grade, err := memory.ParseGrade(req.Grade)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topic, err := s.db.GetTopic(topicID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if topic == nil {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}

	res, err := scheduler.GradeTopic(*topic, grade, s.now())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, memory.ErrInvalidGrade) || errors.Is(err, memory.ErrInvalidState) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	if err := s.db.SaveReview(&res.Topic, &res.Event); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"topic":         res.Topic,
		"next_interval": res.Event.NewInterval,
	})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	events, err := s.db.ListReviewEvents(chi.URLParam(r, "topicID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": events})
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	subs, err := s.db.ListSubjects(false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scheduler.Classify(subs, asOf))
}

// --- timer sessions ---

func (s *Server) handleAddSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectID string `json:"subject_id"`
		TopicID   string `json:"topic_id"`
		StartedAt string `json:"started_at"` // RFC 3339; empty = now
		Duration  int    `json:"duration"`   // minutes
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SubjectID == "" {
		writeError(w, http.StatusBadRequest, "subject_id required")
		return
	}

	started := s.now()
	if req.StartedAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "started_at must be RFC 3339")
			return
		}
		started = t
	}

	sess, err := s.db.AddSession(req.SubjectID, req.TopicID, started, req.Duration)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.ListSessions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// --- stats ---

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > 365 {
			writeError(w, http.StatusBadRequest, "days must be 1-365")
			return
		}
	}

	sessions, err := s.db.ListSessions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": stats.MinutesByDay(sessions, days, asOf)})
}

func (s *Server) handleSubjectStats(w http.ResponseWriter, r *http.Request) {
	data, err := s.db.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	breakdown := stats.MinutesBySubject(data.Sessions, data.ActiveSubjects())
	writeJSON(w, http.StatusOK, map[string]any{"subjects": breakdown})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	sessions, err := s.db.ListSessions()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": stats.CurrentStreak(sessions, asOf),
		"longest": stats.LongestStreak(sessions),
	})
}

// --- readiness ---

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	sub, err := s.db.GetSubject(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subject not found")
		return
	}
	writeJSON(w, http.StatusOK, readiness.Evaluate(sub, asOf))
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	sub, err := s.db.GetSubject(chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subject not found")
		return
	}

	trials := 1000
	if raw := r.URL.Query().Get("trials"); raw != "" {
		trials, err = strconv.Atoi(raw)
		if err != nil || trials < 1 || trials > 100000 {
			writeError(w, http.StatusBadRequest, "trials must be 1-100000")
			return
		}
	}

	// Production runs use a time-seeded source; the core takes any
	// seeded source for reproducible tests.
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	writeJSON(w, http.StatusOK, readiness.Simulate(sub, trials, rng))
}

// --- dashboard ---

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	asOf, err := s.asOfParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
		return
	}
	data, err := s.db.LoadAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dash := analytics.Build(data, asOf, analytics.Options{
		GoalMinutes: s.cfg.Goals.DailyMinutes,
	})
	writeJSON(w, http.StatusOK, dash)
}

// --- quiz generation ---

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	if s.quiz == nil {
		writeError(w, http.StatusServiceUnavailable, "quiz provider not configured")
		return
	}

	topic, err := s.db.GetTopic(chi.URLParam(r, "topicID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if topic == nil {
		writeError(w, http.StatusNotFound, "topic not found")
		return
	}
	if !topic.HasMaterial() {
		writeError(w, http.StatusBadRequest, "topic has no material")
		return
	}

	count := s.cfg.Quiz.Questions
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil || count < 1 || count > 50 {
			writeError(w, http.StatusBadRequest, "count must be 1-50")
			return
		}
	}

	questions, err := s.quiz.Generate(r.Context(), topic.Material, count)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}
