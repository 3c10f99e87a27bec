package api

import (
	"net/http"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

// recentTaskCount is how many pending tasks the dashboard shows.
const recentTaskCount = 5

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, rootResponse{Message: "Persian Todo API is running", Version: s.version})
}

func (s *Server) handlePersianDate(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, calendar.InfoAt(s.now(), s.loc))
}

// handleStats recomputes statistics from the full task collection.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lists, err := s.store.ListCount(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, models.StatsReport{
		Stats:       domain.ComputeStats(tasks, s.today()),
		TotalLists:  lists,
		RecentTasks: domain.RecentPending(tasks, recentTaskCount),
	})
}
