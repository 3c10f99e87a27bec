package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

var tehran = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Tehran")
	if err != nil {
		panic(err)
	}
	return loc
}()

// fixedNow is 2024-10-14 12:00 in Tehran, 1403/07/23 in the Persian calendar.
var fixedNow = time.Date(2024, 10, 14, 12, 0, 0, 0, tehran)

type testServer struct {
	t     *testing.T
	srv   *httptest.Server
	store *db.DB
	logs  *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return newTestServerWithStore(t, store)
}

func newTestServerWithStore(t *testing.T, store Store) *testServer {
	t.Helper()

	logs := &bytes.Buffer{}
	s, err := New(Config{
		Store:    store,
		Logger:   log.NewWithOptions(logs, log.Options{Level: log.DebugLevel}),
		Location: tehran,
		Now:      func() time.Time { return fixedNow },
		Version:  "test",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	ts := &testServer{t: t, srv: srv, logs: logs}
	if d, ok := store.(*db.DB); ok {
		ts.store = d
	}
	return ts
}

// do sends body (JSON-encoded unless nil) and decodes the response into out
// when out is non-nil. It returns the status code.
func (ts *testServer) do(method, path string, body, out any) int {
	ts.t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, r)
	require.NoError(ts.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	assert.Equal(ts.t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(ts.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) createTask(body map[string]any) models.Task {
	ts.t.Helper()
	var task models.Task
	require.Equal(ts.t, http.StatusOK, ts.do(http.MethodPost, "/api/tasks", body, &task))
	return task
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)

	var got rootResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/", nil, &got))
	assert.Equal(t, "test", got.Version)
	assert.NotEmpty(t, got.Message)
}

func TestPersianDate(t *testing.T) {
	ts := newTestServer(t)

	var got calendar.Info
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/persian-date", nil, &got))
	assert.Equal(t, "1403/07/23", got.PersianDate)
	assert.Equal(t, "2024-10-14", got.GregorianDate)
	assert.Equal(t, "مهر", got.MonthName)
	assert.Equal(t, "دوشنبه", got.DayName)
	assert.Equal(t, "12:00", got.PersianTime)
}

func TestCreateAndGetTask(t *testing.T) {
	ts := newTestServer(t)

	created := ts.createTask(map[string]any{
		"title":       "  Read ",
		"description": nil,
		"priority":    "high",
		"due_date":    "2024-10-20",
		"due_time":    "8:15",
		"tags":        []string{"t1", "t1", "t2"},
		"subtasks":    []map[string]any{{"title": "chapter 1"}},
	})
	assert.Equal(t, "Read", created.Title)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.Equal(t, "2024-10-20", created.DueDate.String())
	assert.Equal(t, "08:15", *created.DueTime)
	assert.Equal(t, []string{"t1", "t2"}, created.Tags)
	require.Len(t, created.Subtasks, 1)
	assert.NotEmpty(t, created.Subtasks[0].ID)

	var got models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks/"+created.ID, nil, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Read", got.Title)
}

func TestTaskJSONShape(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createTask(map[string]any{"title": "shape"})

	var raw map[string]any
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks/"+created.ID, nil, &raw))
	for _, key := range []string{"id", "title", "description", "status", "priority", "due_date", "due_time",
		"list_id", "tags", "subtasks", "created_at", "updated_at", "completed_at"} {
		assert.Contains(t, raw, key)
	}
	assert.Nil(t, raw["due_date"])
	assert.Equal(t, []any{}, raw["tags"])
	assert.Equal(t, []any{}, raw["subtasks"])
}

func TestCreateTask_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"blank title", map[string]any{"title": "   "}},
		{"bad due date", map[string]any{"title": "x", "due_date": "14/10/2024"}},
		{"bad due time", map[string]any{"title": "x", "due_time": "25:00"}},
		{"blank subtask", map[string]any{"title": "x", "subtasks": []map[string]any{{"title": ""}}}},
		{"wrong type", map[string]any{"title": 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorResponse
			assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/tasks", tt.body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}

	var tasks []models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks", nil, &tasks))
	assert.Empty(t, tasks)
}

func TestCreateTask_EmptyBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.srv.URL+"/api/tasks", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTask_UnknownEnumsFallBack(t *testing.T) {
	ts := newTestServer(t)

	task := ts.createTask(map[string]any{"title": "x", "priority": "urgent", "status": "done"})
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusPending, task.Status)
}

func TestListTasks_Filters(t *testing.T) {
	ts := newTestServer(t)

	var list models.List
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/lists", listInput{Name: "Home"}, &list))

	ts.createTask(map[string]any{"title": "Apple", "priority": "high", "list_id": list.ID})
	ts.createTask(map[string]any{"title": "banana", "status": "completed"})
	ts.createTask(map[string]any{"title": "Cherry", "description": "red fruit"})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Cherry", "banana", "Apple"}},
		{"?search=A", []string{"banana", "Apple"}},
		{"?search=FRUIT", []string{"Cherry"}},
		{"?status=completed", []string{"banana"}},
		{"?status=all&priority=high", []string{"Apple"}},
		{"?list_id=" + list.ID, []string{"Apple"}},
		{"?list_id=" + list.ID + "&status=completed", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var tasks []models.Task
			require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks"+tt.query, nil, &tasks))
			var titles []string
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestListTasks_UnknownFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.createTask(map[string]any{"title": "Apple"})

	for _, q := range []string{"?status=bogus", "?priority=urgent"} {
		var e errorResponse
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/tasks"+q, nil, &e), q)
		assert.Contains(t, e.Error, "unknown", q)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	ts := newTestServer(t)

	var e errorResponse
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/tasks/missing", nil, &e))
	assert.Contains(t, e.Error, "not found")
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/tasks/missing", map[string]any{"title": "x"}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/tasks/missing", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/tasks/missing/toggle", nil, nil))
}

func TestUpdateTask(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createTask(map[string]any{"title": "draft", "due_date": "2024-10-01", "due_time": "10:00"})

	var updated models.Task
	status := ts.do(http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"title":    "final",
		"status":   "completed",
		"due_date": "",
	}, &updated)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "10:00", *updated.DueTime, "absent fields are kept")

	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/api/tasks/"+created.ID,
		map[string]any{"title": "lost", "priority": "urgent"}, &e))

	var got models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks/"+created.ID, nil, &got))
	assert.Equal(t, "final", got.Title, "rejected patch leaves the task unchanged")
}

func TestToggleTask(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createTask(map[string]any{"title": "flip"})

	var got models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/tasks/"+task.ID+"/toggle", nil, &got))
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/tasks/"+task.ID+"/toggle", nil, &got))
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	cancelled := ts.createTask(map[string]any{"title": "nope", "status": "cancelled"})
	var e errorResponse
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPost, "/api/tasks/"+cancelled.ID+"/toggle", nil, &e))
	assert.NotEmpty(t, e.Error)
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createTask(map[string]any{"title": "bye"})

	var msg messageResponse
	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/tasks/"+task.ID, nil, &msg))
	assert.NotEmpty(t, msg.Message)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/tasks/"+task.ID, nil, nil))
}

func TestSubtasks(t *testing.T) {
	ts := newTestServer(t)
	task := ts.createTask(map[string]any{"title": "trip"})

	var got models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/tasks/"+task.ID+"/subtasks", map[string]any{"title": "book"}, &got))
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/tasks/"+task.ID+"/subtasks", map[string]any{"title": "pack"}, &got))
	require.Len(t, got.Subtasks, 2)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/tasks/"+task.ID+"/subtasks", map[string]any{"title": " "}, nil))

	book := got.Subtasks[0].ID
	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/tasks/"+task.ID+"/subtasks/"+book, map[string]any{"completed": true}, &got))
	assert.Equal(t, domain.Progress{Completed: 1, Total: 2, Ratio: 0.5}, domain.SubtaskProgress(got))

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/tasks/"+task.ID+"/subtasks/"+book+"?completed=false", nil, &got))
	assert.False(t, got.Subtasks[0].Completed)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/api/tasks/"+task.ID+"/subtasks/"+book, map[string]any{}, nil))
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/api/tasks/"+task.ID+"/subtasks/"+book+"?completed=maybe", nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/tasks/"+task.ID+"/subtasks/missing", map[string]any{"completed": true}, nil))

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/tasks/"+task.ID+"/subtasks/"+book, nil, &got))
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, "pack", got.Subtasks[0].Title)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/tasks/"+task.ID+"/subtasks/"+book, nil, nil))
}

func TestLists(t *testing.T) {
	ts := newTestServer(t)

	var list models.List
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/lists", listInput{Name: "Work"}, &list))
	assert.Equal(t, models.DefaultListColor, list.Color)
	assert.Equal(t, models.DefaultListIcon, list.Icon)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/lists", listInput{Name: ""}, nil))

	ts.createTask(map[string]any{"title": "report", "list_id": list.ID})

	var lists []models.List
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/lists", nil, &lists))
	require.Len(t, lists, 1)
	assert.Equal(t, 1, lists[0].TaskCount)

	require.Equal(t, http.StatusOK, ts.do(http.MethodPut, "/api/lists/"+list.ID, listInput{Name: "Office", Icon: "💼"}, &list))
	assert.Equal(t, "Office", list.Name)
	assert.Equal(t, "💼", list.Icon)
	assert.Equal(t, 1, list.TaskCount)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/lists/missing", listInput{Name: "x"}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/lists/missing", nil, nil))
}

func TestDeleteList_KeepsTasks(t *testing.T) {
	ts := newTestServer(t)

	var list models.List
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/lists", listInput{Name: "Errands"}, &list))
	for i := 0; i < 3; i++ {
		ts.createTask(map[string]any{"title": fmt.Sprintf("errand %d", i), "list_id": list.ID})
	}

	var before models.StatsReport
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/stats", nil, &before))
	require.Equal(t, 3, before.TotalTasks)
	require.Equal(t, 1, before.TotalLists)

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/lists/"+list.ID, nil, nil))

	var after models.StatsReport
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/stats", nil, &after))
	assert.Equal(t, 3, after.TotalTasks)
	assert.Zero(t, after.TotalLists)

	var tasks []models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks", nil, &tasks))
	require.Len(t, tasks, 3)
	for _, task := range tasks {
		assert.Nil(t, task.ListID)
	}
}

func TestTags(t *testing.T) {
	ts := newTestServer(t)

	var tag models.Tag
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/tags", tagInput{Name: "urgent"}, &tag))
	assert.Equal(t, models.DefaultTagColor, tag.Color)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/tags", tagInput{Color: "#000"}, nil))

	task := ts.createTask(map[string]any{"title": "tagged", "tags": []string{tag.ID}})

	require.Equal(t, http.StatusOK, ts.do(http.MethodDelete, "/api/tags/"+tag.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/tags/"+tag.ID, nil, nil))

	var tags []models.Tag
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tags", nil, &tags))
	assert.Empty(t, tags)

	var got models.Task
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/tasks/"+task.ID, nil, &got))
	assert.Equal(t, []string{tag.ID}, got.Tags, "dangling tag ids are kept")
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	var empty models.StatsReport
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/stats", nil, &empty))
	assert.Zero(t, empty.CompletionRate)
	assert.NotNil(t, empty.RecentTasks)

	ts.createTask(map[string]any{"title": "a", "priority": "high", "due_date": "2024-10-14"})
	ts.createTask(map[string]any{"title": "b", "priority": "high", "status": "completed", "due_date": "2024-10-14"})
	ts.createTask(map[string]any{"title": "c", "priority": "low"})
	ts.createTask(map[string]any{"title": "d", "status": "cancelled", "due_date": "2024-10-14"})

	var got models.StatsReport
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/stats", nil, &got))
	assert.Equal(t, models.Stats{
		TotalTasks:     4,
		CompletedTasks: 1,
		PendingTasks:   2,
		CompletionRate: 25,
		DueToday:       2,
		HighPriority:   2,
		MediumPriority: 1,
		LowPriority:    1,
	}, got.Stats)
	require.Len(t, got.RecentTasks, 2)
	for _, task := range got.RecentTasks {
		assert.Equal(t, models.StatusPending, task.Status)
	}
}

func TestRequestsAreLogged(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/api/tasks/missing", nil, nil)

	out := ts.logs.String()
	assert.Contains(t, out, "path=/api/tasks/missing")
	assert.Contains(t, out, "status=404")
}

// failingStore fails every task read with err.
type failingStore struct {
	Store
	err error
}

func (f failingStore) ListTasks(context.Context) ([]models.Task, error) {
	return nil, f.err
}

func TestStoreFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"transient", fmt.Errorf("list tasks: %w: disk I/O error", domain.ErrTransient), http.StatusServiceUnavailable},
		{"unexpected", errors.New("secret detail"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServerWithStore(t, failingStore{err: tt.err})

			var e errorResponse
			assert.Equal(t, tt.status, ts.do(http.MethodGet, "/api/tasks", nil, &e))
			assert.Equal(t, http.StatusText(tt.status), e.Error)
			assert.Equal(t, tt.status, ts.do(http.MethodGet, "/api/stats", nil, nil))
			assert.Contains(t, ts.logs.String(), "request failed")
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("x: %w", domain.ErrValidation)))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrConflict))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(domain.ErrTransient))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, err := New(Config{Store: failingStore{}, Logger: log.NewWithOptions(io.Discard, log.Options{})})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
