package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tasklist/internal/export"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
)

// taskView - задача в ответе API вместе с ее текущим номером
type taskView struct {
	ID          int       `json:"id"`
	Name        string    `json:"Name"`
	Description string    `json:"Description"`
	DueDate     time.Time `json:"DueDate"`
	IsCompleted bool      `json:"IsCompleted"`
}

func newTaskView(ordinal int, task models.Task) taskView {
	return taskView{
		ID:          ordinal,
		Name:        task.Name,
		Description: task.Description,
		DueDate:     task.DueDate,
		IsCompleted: task.IsCompleted,
	}
}

func NewRouter(tm *manager.TaskManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/tasks", listTasksHandler(tm))
	r.Post("/tasks", addTaskHandler(tm))
	r.Post("/tasks/sort", sortTasksHandler(tm))
	r.Post("/tasks/{id}/complete", completeTaskHandler(tm))
	r.Delete("/tasks/{id}", deleteTaskHandler(tm))
	r.Post("/save", saveHandler(tm))
	r.Post("/load", loadHandler(tm))
	r.Get("/export", exportHandler(tm))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug(r.Context(), "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"latency", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), err, "Ошибка записи ответа")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// listTasksHandler: GET /tasks[?completed=true|false]. Фильтр не меняет список.
func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var completed *bool
		if raw := r.URL.Query().Get("completed"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, errors.New("completed must be true or false"))
				return
			}
			completed = &v
		}

		// номера считаются по полному списку, даже если часть задач скрыта фильтром
		views := []taskView{}
		for i, task := range tm.GetAllTasks() {
			if completed == nil || task.IsCompleted == *completed {
				views = append(views, newTaskView(i+1, task))
			}
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTaskRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		defer r.Body.Close()

		dueDate, err := models.ParseDueDate(req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		id := tm.AddTask(req.Name, req.Description, dueDate)
		writeJSON(w, http.StatusCreated, map[string]int{"id": id})
	}
}

func sortTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tm.SortByDueDate()
		w.WriteHeader(http.StatusNoContent)
	}
}

func ordinalParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("task id must be a number"))
		return 0, false
	}
	return id, true
}

func writeOrdinalError(w http.ResponseWriter, err error) {
	if errors.Is(err, manager.ErrInvalidOrdinal) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func completeTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ordinalParam(w, r)
		if !ok {
			return
		}
		if err := tm.MarkCompleted(id); err != nil {
			writeOrdinalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ordinalParam(w, r)
		if !ok {
			return
		}
		if err := tm.DeleteTask(id); err != nil {
			writeOrdinalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func saveHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tm.Save(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loadHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := tm.Load(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": tm.Len()})
	}
}

func exportHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = export.FormatJSON
		}

		data, err := export.Export(tm.GetAllTasks(), format)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		w.Header().Set("Content-Type", export.ContentType(format))
		w.Write(data)
	}
}
