// Package api serves the task, list and tag REST API over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/models"
)

// maxRequestBodySize bounds every JSON request body.
const maxRequestBodySize = 1 << 20

// Store is the persistence the API needs. *db.DB satisfies it.
type Store interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, fn func(models.Task) (models.Task, error)) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	AddSubtask(ctx context.Context, taskID, title string) (models.Task, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Task, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, error)

	CreateList(ctx context.Context, l models.List) (models.List, error)
	ListLists(ctx context.Context) ([]models.List, error)
	UpdateList(ctx context.Context, l models.List) (models.List, error)
	DeleteList(ctx context.Context, id string) error
	ListCount(ctx context.Context) (int, error)

	CreateTag(ctx context.Context, t models.Tag) (models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// Config holds what a Server needs.
type Config struct {
	Store    Store
	Logger   *log.Logger
	Location *time.Location   // zone that decides what "today" is
	Now      func() time.Time // defaults to time.Now
	Version  string
}

// Server routes API requests to the store.
type Server struct {
	store   Store
	logger  *log.Logger
	loc     *time.Location
	now     func() time.Time
	version string
	handler http.Handler
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("api: store is required")
	}

	s := &Server{
		store:   cfg.Store,
		logger:  cfg.Logger,
		loc:     cfg.Location,
		now:     cfg.Now,
		version: cfg.Version,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.version == "" {
		s.version = "dev"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/{$}", s.handleRoot)
	mux.HandleFunc("GET /api/persian-date", s.handlePersianDate)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)

	mux.HandleFunc("POST /api/tasks/{id}/subtasks", s.handleAddSubtask)
	mux.HandleFunc("PUT /api/tasks/{id}/subtasks/{subId}", s.handleUpdateSubtask)
	mux.HandleFunc("DELETE /api/tasks/{id}/subtasks/{subId}", s.handleDeleteSubtask)

	mux.HandleFunc("GET /api/lists", s.handleListLists)
	mux.HandleFunc("POST /api/lists", s.handleCreateList)
	mux.HandleFunc("PUT /api/lists/{id}", s.handleUpdateList)
	mux.HandleFunc("DELETE /api/lists/{id}", s.handleDeleteList)

	mux.HandleFunc("GET /api/tags", s.handleListTags)
	mux.HandleFunc("POST /api/tags", s.handleCreateTag)
	mux.HandleFunc("DELETE /api/tags/{id}", s.handleDeleteTag)

	mux.HandleFunc("GET /api/stats", s.handleStats)

	s.handler = s.logRequests(mux)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("api server started", "address", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// today is the current civil date in the server's zone.
func (s *Server) today() calendar.Date {
	return calendar.Today(s.now(), s.loc)
}
