package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/revisio/revisio/internal/quiz"
)

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func createSubject(t *testing.T, srv *Server, name, examDate string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"exam_date":%q}`, name, examDate)
	w := doJSON(t, srv, "POST", "/api/subjects", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create subject: status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatalf("create subject: no id in %s", w.Body.String())
	}
	return id
}

func createTopic(t *testing.T, srv *Server, subjectID, name, material string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"material":%q}`, name, material)
	w := doJSON(t, srv, "POST", "/api/subjects/"+subjectID+"/topics", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create topic: status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatalf("create topic: no id in %s", w.Body.String())
	}
	return id
}

func TestSubjectLifecycle(t *testing.T) {
	srv := testServer(t)

	id := createSubject(t, srv, "Mathematik", "2026-04-20")

	w := doJSON(t, srv, "GET", "/api/subjects/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get subject: status = %d", w.Code)
	}

	// Archive and check it falls out of the default listing.
	w = doJSON(t, srv, "PUT", "/api/subjects/"+id+"/archive", `{"archived":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("archive: status = %d; body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/subjects", "")
	var list struct {
		Subjects []map[string]any `json:"subjects"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Subjects) != 0 {
		t.Errorf("active subjects = %d, want 0", len(list.Subjects))
	}

	w = doJSON(t, srv, "GET", "/api/subjects?archived=true", "")
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Subjects) != 1 {
		t.Errorf("all subjects = %d, want 1", len(list.Subjects))
	}

	w = doJSON(t, srv, "DELETE", "/api/subjects/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	w = doJSON(t, srv, "GET", "/api/subjects/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCreateSubjectValidation(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "POST", "/api/subjects", `{"exam_date":"2026-04-20"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doJSON(t, srv, "POST", "/api/subjects", `{"name":"Bio","exam_date":"20.04.2026"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad exam_date: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReviewFlow(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Chemie", "")
	topicID := createTopic(t, srv, subjID, "Redoxreaktionen", "")

	w := doJSON(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"grade":"good"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("review: status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		NextInterval int `json:"next_interval"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NextInterval < 1 {
		t.Errorf("next_interval = %d, want >= 1", resp.NextInterval)
	}

	w = doJSON(t, srv, "GET", "/api/topics/"+topicID+"/reviews", "")
	var history struct {
		Reviews []map[string]any `json:"reviews"`
	}
	json.Unmarshal(w.Body.Bytes(), &history)
	if len(history.Reviews) != 1 {
		t.Errorf("reviews = %d, want 1", len(history.Reviews))
	}

	w = doJSON(t, srv, "POST", "/api/topics/"+topicID+"/review", `{"grade":"brilliant"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad grade: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReviewUnknownTopic(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "POST", "/api/topics/nope/review", `{"grade":"good"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestReviewQueue(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Physik", "")
	createTopic(t, srv, subjID, "Optik", "")

	w := doJSON(t, srv, "GET", "/api/review/queue", "")
	if w.Code != http.StatusOK {
		t.Fatalf("queue: status = %d", w.Code)
	}
	var queue struct {
		NeverReviewed []map[string]any `json:"never_reviewed"`
	}
	json.Unmarshal(w.Body.Bytes(), &queue)
	if len(queue.NeverReviewed) != 1 {
		t.Errorf("never_reviewed = %d, want 1", len(queue.NeverReviewed))
	}
}

func TestSessionsAndStreak(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Englisch", "")

	body := fmt.Sprintf(`{"subject_id":%q,"duration":45}`, subjID)
	w := doJSON(t, srv, "POST", "/api/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("add session: status = %d; body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/sessions", fmt.Sprintf(`{"subject_id":%q,"duration":0}`, subjID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero duration: status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doJSON(t, srv, "GET", "/api/stats/streak", "")
	var streak struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	}
	json.Unmarshal(w.Body.Bytes(), &streak)
	if streak.Current != 1 || streak.Longest != 1 {
		t.Errorf("streak = %d/%d, want 1/1", streak.Current, streak.Longest)
	}
}

func TestDailyStatsRange(t *testing.T) {
	srv := testServer(t)

	w := doJSON(t, srv, "GET", "/api/stats/daily?days=7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("daily: status = %d", w.Code)
	}
	var resp struct {
		Days []map[string]any `json:"days"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Days) != 7 {
		t.Errorf("days = %d, want 7", len(resp.Days))
	}

	w = doJSON(t, srv, "GET", "/api/stats/daily?days=0", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("days=0: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReadinessAndSimulate(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Geschichte", "2026-03-17")
	createTopic(t, srv, subjID, "Weimarer Republik", "")

	w := doJSON(t, srv, "GET", "/api/subjects/"+subjID+"/readiness", "")
	if w.Code != http.StatusOK {
		t.Fatalf("readiness: status = %d; body: %s", w.Code, w.Body.String())
	}
	var report map[string]any
	json.Unmarshal(w.Body.Bytes(), &report)
	if report["status"] == "" {
		t.Errorf("readiness report missing status: %s", w.Body.String())
	}

	w = doJSON(t, srv, "GET", "/api/subjects/"+subjID+"/simulate?trials=200", "")
	if w.Code != http.StatusOK {
		t.Fatalf("simulate: status = %d; body: %s", w.Code, w.Body.String())
	}
	var band struct {
		Trials int `json:"trials"`
	}
	json.Unmarshal(w.Body.Bytes(), &band)
	if band.Trials != 200 {
		t.Errorf("trials = %d, want 200", band.Trials)
	}
}

func TestDashboard(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Latein", "")
	createTopic(t, srv, subjID, "Ablativus absolutus", "")
	doJSON(t, srv, "POST", "/api/sessions", fmt.Sprintf(`{"subject_id":%q,"duration":30}`, subjID))

	w := doJSON(t, srv, "GET", "/api/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard: status = %d; body: %s", w.Code, w.Body.String())
	}
	var dash struct {
		TotalMinutes int `json:"total_minutes"`
		Queue        struct {
			NeverReviewed int `json:"never_reviewed"`
		} `json:"queue"`
		Readiness []map[string]any `json:"readiness"`
	}
	json.Unmarshal(w.Body.Bytes(), &dash)
	if dash.TotalMinutes != 30 {
		t.Errorf("total_minutes = %d, want 30", dash.TotalMinutes)
	}
	if dash.Queue.NeverReviewed != 1 {
		t.Errorf("never_reviewed = %d, want 1", dash.Queue.NeverReviewed)
	}
	if len(dash.Readiness) != 1 {
		t.Errorf("readiness reports = %d, want 1", len(dash.Readiness))
	}
}

func TestQuizGeneration(t *testing.T) {
	srv := testServer(t)
	srv.SetQuizClient(&quiz.MockClient{})

	subjID := createSubject(t, srv, "Informatik", "")
	withMaterial := createTopic(t, srv, subjID, "Sortierverfahren", "Quicksort partitioniert um ein Pivotelement.")
	bare := createTopic(t, srv, subjID, "Rekursion", "")

	w := doJSON(t, srv, "POST", "/api/topics/"+withMaterial+"/quiz?count=3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("quiz: status = %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Questions []map[string]any `json:"questions"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(resp.Questions))
	}

	w = doJSON(t, srv, "POST", "/api/topics/"+bare+"/quiz", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("no material: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestQuizGrades(t *testing.T) {
	srv := testServer(t)
	subjID := createSubject(t, srv, "Deutsch", "")
	topicID := createTopic(t, srv, subjID, "Faust I", "")

	w := doJSON(t, srv, "POST", "/api/topics/"+topicID+"/grades", `{"grade":5.5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add grade: status = %d; body: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, srv, "POST", "/api/topics/"+topicID+"/grades", `{"grade":7}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("out-of-range grade: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
