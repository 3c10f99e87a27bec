package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
)

// taskInput is the POST /api/tasks body.
type taskInput struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	DueDate     *string        `json:"due_date"`
	DueTime     *string        `json:"due_time"`
	ListID      *string        `json:"list_id"`
	Tags        []string       `json:"tags"`
	Subtasks    []subtaskInput `json:"subtasks"`
}

type subtaskInput struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed"`
}

func (in taskInput) task() (models.Task, error) {
	t := models.Task{
		Title:    in.Title,
		Status:   models.Status(in.Status),
		Priority: models.Priority(in.Priority),
		DueTime:  in.DueTime,
		ListID:   in.ListID,
		Tags:     in.Tags,
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.DueDate != nil {
		d, err := domain.ParseDueDate(*in.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		t.DueDate = d
	}
	for _, s := range in.Subtasks {
		t.Subtasks = append(t.Subtasks, models.Subtask{Title: s.Title, Completed: s.Completed != nil && *s.Completed})
	}
	return domain.ValidateTask(t)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	params, err := query.ParamsFromValues(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, query.Filter(tasks, params))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := in.task()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.store.CreateTask(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("task created", "id", task.ID)
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.store.UpdateTask(r.Context(), r.PathValue("id"), func(t models.Task) (models.Task, error) {
		return domain.ApplyPatch(t, patch, s.now())
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	task, err := s.store.UpdateTask(r.Context(), id, func(t models.Task) (models.Task, error) {
		next, ok := domain.ToggleStatus(t, s.now())
		if !ok {
			return t, fmt.Errorf("%w: task %s is %s", domain.ErrConflict, id, t.Status)
		}
		return next, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "تسک با موفقیت حذف شد"})
}

func (s *Server) handleAddSubtask(w http.ResponseWriter, r *http.Request) {
	var in subtaskInput
	if err := decode(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.store.AddSubtask(r.Context(), r.PathValue("id"), in.Title)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

// handleUpdateSubtask takes completed from the JSON body, or from the
// ?completed= query parameter when there is no body.
func (s *Server) handleUpdateSubtask(w http.ResponseWriter, r *http.Request) {
	completed, err := subtaskCompleted(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.store.SetSubtaskCompleted(r.Context(), r.PathValue("id"), r.PathValue("subId"), completed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.DeleteSubtask(r.Context(), r.PathValue("id"), r.PathValue("subId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func subtaskCompleted(w http.ResponseWriter, r *http.Request) (bool, error) {
	if v := strings.TrimSpace(r.URL.Query().Get("completed")); v != "" && r.ContentLength <= 0 {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%w: completed must be true or false", domain.ErrValidation)
		}
		return completed, nil
	}

	var in subtaskInput
	if err := decode(w, r, &in); err != nil {
		return false, err
	}
	if in.Completed == nil {
		return false, fmt.Errorf("%w: completed is required", domain.ErrValidation)
	}
	return *in.Completed, nil
}
