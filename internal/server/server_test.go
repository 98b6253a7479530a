package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tasklist/internal/manager"
	"tasklist/internal/storage"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []taskView {
	t.Helper()
	var views []taskView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid response %q: %v", rec.Body.String(), err)
	}
	return views
}

func TestTaskLifecycle(t *testing.T) {
	tm := manager.NewTaskManagerWithStorage(storage.NewMemoryStorage())
	r := NewRouter(tm)

	rec := do(t, r, http.MethodPost, "/tasks", `{"name":"A","description":"d1","due_date":"2024-01-10"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /tasks: %d %s", rec.Code, rec.Body.String())
	}
	do(t, r, http.MethodPost, "/tasks", `{"name":"B","description":"d2","due_date":"2024-01-05"}`)

	if rec := do(t, r, http.MethodPost, "/tasks/sort", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("sort: %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/tasks/1/complete", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("complete: %d", rec.Code)
	}

	views := decodeList(t, do(t, r, http.MethodGet, "/tasks", ""))
	if len(views) != 2 || views[0].Name != "B" || !views[0].IsCompleted || views[1].Name != "A" {
		t.Fatalf("unexpected list: %+v", views)
	}
	if !views[1].DueDate.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date = %v", views[1].DueDate)
	}

	pending := decodeList(t, do(t, r, http.MethodGet, "/tasks?completed=false", ""))
	if len(pending) != 1 || pending[0].ID != 2 || pending[0].Name != "A" {
		t.Errorf("filtered list: %+v", pending)
	}
	if tm.Len() != 2 {
		t.Error("GET с фильтром не должен менять список")
	}

	if rec := do(t, r, http.MethodDelete, "/tasks/1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	views = decodeList(t, do(t, r, http.MethodGet, "/tasks", ""))
	if len(views) != 1 || views[0].Name != "A" || views[0].ID != 1 {
		t.Errorf("after delete: %+v", views)
	}

	if rec := do(t, r, http.MethodPost, "/save", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("save: %d", rec.Code)
	}
	do(t, r, http.MethodDelete, "/tasks/1", "")
	rec = do(t, r, http.MethodPost, "/load", "")
	if rec.Code != http.StatusOK || tm.Len() != 1 {
		t.Errorf("load: %d %s", rec.Code, rec.Body.String())
	}
}

func TestErrors(t *testing.T) {
	r := NewRouter(manager.NewTaskManager())

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodPost, "/tasks", `{bad json`, http.StatusBadRequest},
		{http.MethodPost, "/tasks", `{"name":"A","due_date":"someday"}`, http.StatusBadRequest},
		{http.MethodPost, "/tasks/1/complete", "", http.StatusNotFound},
		{http.MethodPost, "/tasks/x/complete", "", http.StatusBadRequest},
		{http.MethodDelete, "/tasks/0", "", http.StatusNotFound},
		{http.MethodGet, "/tasks?completed=maybe", "", http.StatusBadRequest},
		{http.MethodGet, "/export?format=xml", "", http.StatusBadRequest},
		{http.MethodPost, "/save", "", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if rec := do(t, r, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Errorf("%s %s: got %d, want %d (%s)", tc.method, tc.path, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestExportAndMetrics(t *testing.T) {
	tm := manager.NewTaskManager()
	tm.AddTask("A", "d1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	r := NewRouter(tm)

	rec := do(t, r, http.MethodGet, "/export?format=csv", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("export: %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "1,A,d1,2024-01-10,false") {
		t.Errorf("csv body: %q", rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "tasklist_operations_total") {
		t.Errorf("metrics endpoint does not expose task metrics")
	}
}
