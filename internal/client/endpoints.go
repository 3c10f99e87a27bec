package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
)

// Health is the GET /api/ response.
type Health struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type message struct {
	Message string `json:"message"`
}

// Health checks that the API is up.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/api/", nil, nil, &h)
	return h, err
}

// PersianDate returns the server's current date in both calendars.
func (c *Client) PersianDate(ctx context.Context) (calendar.Info, error) {
	var info calendar.Info
	err := c.do(ctx, http.MethodGet, "/api/persian-date", nil, nil, &info)
	return info, err
}

// ListTasks returns the tasks matching p, newest first.
func (c *Client) ListTasks(ctx context.Context, p query.Params) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", p.Values(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	var t models.Task
	err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, nil, &t)
	return t, err
}

// CreateTask stores a new task. The server assigns ids and timestamps.
func (c *Client) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, t, &out)
	return out, err
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), nil, patch, &out)
	return out, err
}

// ToggleTask flips a task between pending and completed. Cancelled tasks
// yield domain.ErrConflict.
func (c *Client) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil, nil, &out)
	return out, err
}

// DeleteTask removes a task and its subtasks.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, &message{})
}

// AddSubtask appends a subtask and returns the updated task.
func (c *Client) AddSubtask(ctx context.Context, taskID, title string) (models.Task, error) {
	var out models.Task
	body := map[string]string{"title": title}
	err := c.do(ctx, http.MethodPost, subtasksPath(taskID), nil, body, &out)
	return out, err
}

// SetSubtaskCompleted marks a subtask done or not done.
func (c *Client) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Task, error) {
	var out models.Task
	body := map[string]bool{"completed": completed}
	err := c.do(ctx, http.MethodPut, subtasksPath(taskID)+"/"+url.PathEscape(subtaskID), nil, body, &out)
	return out, err
}

// DeleteSubtask removes a subtask and returns the updated task.
func (c *Client) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, http.MethodDelete, subtasksPath(taskID)+"/"+url.PathEscape(subtaskID), nil, nil, &out)
	return out, err
}

// ListLists returns all lists with their task counts.
func (c *Client) ListLists(ctx context.Context) ([]models.List, error) {
	var lists []models.List
	if err := c.do(ctx, http.MethodGet, "/api/lists", nil, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateList creates a list; empty color and icon get defaults.
func (c *Client) CreateList(ctx context.Context, l models.List) (models.List, error) {
	var out models.List
	err := c.do(ctx, http.MethodPost, "/api/lists", nil, listBody(l), &out)
	return out, err
}

// UpdateList renames or restyles l.ID.
func (c *Client) UpdateList(ctx context.Context, l models.List) (models.List, error) {
	var out models.List
	err := c.do(ctx, http.MethodPut, "/api/lists/"+url.PathEscape(l.ID), nil, listBody(l), &out)
	return out, err
}

// DeleteList removes a list. Its tasks are kept without a list.
func (c *Client) DeleteList(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/lists/"+url.PathEscape(id), nil, nil, &message{})
}

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a tag; an empty color gets the default.
func (c *Client) CreateTag(ctx context.Context, t models.Tag) (models.Tag, error) {
	var out models.Tag
	body := map[string]string{"name": t.Name, "color": t.Color}
	err := c.do(ctx, http.MethodPost, "/api/tags", nil, body, &out)
	return out, err
}

// DeleteTag removes a tag. Tasks keep the id.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tags/"+url.PathEscape(id), nil, nil, &message{})
}

// Stats returns dashboard statistics.
func (c *Client) Stats(ctx context.Context) (models.StatsReport, error) {
	var report models.StatsReport
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, nil, &report)
	return report, err
}

func subtasksPath(taskID string) string {
	return "/api/tasks/" + url.PathEscape(taskID) + "/subtasks"
}

func listBody(l models.List) map[string]string {
	return map[string]string{"name": l.Name, "color": l.Color, "icon": l.Icon}
}
