package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

const taskColumns = `id, title, description, status, priority, due_date, due_time, list_id,
	created_at, updated_at, completed_at`

// CreateTask validates t, assigns ids and timestamps, and stores it with its
// tags and subtasks
func (db *DB) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t, err := domain.ValidateTask(t)
	if err != nil {
		return models.Task{}, err
	}

	now := db.now()
	t.ID = db.newID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == models.StatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	for i := range t.Subtasks {
		t.Subtasks[i].ID = db.newID()
		t.Subtasks[i].CreatedAt = now
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (`+taskColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
			dueDateValue(t.DueDate), nullString(t.DueTime), nullString(t.ListID),
			t.CreatedAt, t.UpdatedAt, nullTime(t.CompletedAt))
		if err != nil {
			return err
		}
		if err := writeTaskTags(ctx, tx, t.ID, t.Tags); err != nil {
			return err
		}
		for i, s := range t.Subtasks {
			if err := insertSubtask(ctx, tx, t.ID, i, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, storeErr("create task", err)
	}

	return db.GetTask(ctx, t.ID)
}

// GetTask retrieves a task by ID with its tags and subtasks
func (db *DB) GetTask(ctx context.Context, id string) (models.Task, error) {
	t, err := getTask(ctx, db, id)
	if err != nil {
		return models.Task{}, storeErr("get task", err)
	}
	return t, nil
}

// ListTasks returns all tasks, newest first
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks, err := listTasks(ctx, db)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

// UpdateTask loads the task, passes it to fn and writes back the result, all
// in one transaction. An error from fn rolls back and is returned as is.
// Subtasks are owned by the subtask methods and are not rewritten here.
func (db *DB) UpdateTask(ctx context.Context, id string, fn func(models.Task) (models.Task, error)) (models.Task, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		next, err = domain.ValidateTask(next)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
				due_time = ?, list_id = ?, updated_at = ?, completed_at = ?
			WHERE id = ?
		`, next.Title, next.Description, string(next.Status), string(next.Priority),
			dueDateValue(next.DueDate), nullString(next.DueTime), nullString(next.ListID),
			db.now(), nullTime(next.CompletedAt), id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = ?", id); err != nil {
			return err
		}
		return writeTaskTags(ctx, tx, id, next.Tags)
	})
	if err != nil {
		return models.Task{}, storeErr("update task", err)
	}

	return db.GetTask(ctx, id)
}

// DeleteTask deletes a task along with its tags and subtasks
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return storeErr("delete task", err)
	}
	return nil
}

// TaskCount returns the number of stored tasks
func (db *DB) TaskCount(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		return 0, storeErr("count tasks", err)
	}
	return n, nil
}

func getTask(ctx context.Context, q querier, id string) (models.Task, error) {
	row := q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err != nil {
		return models.Task{}, err
	}

	if t.Tags, err = taskTags(ctx, q, id); err != nil {
		return models.Task{}, err
	}
	if t.Subtasks, err = taskSubtasks(ctx, q, id); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func listTasks(ctx context.Context, q querier) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		t.Tags = []string{}
		t.Subtasks = []models.Subtask{}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Load tags and subtasks for all tasks in one query each
	tagRows, err := q.QueryContext(ctx, "SELECT task_id, tag_id FROM task_tags ORDER BY task_id, position")
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var taskID, tagID string
		if err := tagRows.Scan(&taskID, &tagID); err != nil {
			return nil, err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tagID)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}
	tagRows.Close()

	subRows, err := q.QueryContext(ctx, `
		SELECT task_id, id, title, completed, created_at
		FROM subtasks ORDER BY task_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()
	for subRows.Next() {
		var taskID string
		var s models.Subtask
		if err := subRows.Scan(&taskID, &s.ID, &s.Title, &s.Completed, &s.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Subtasks = append(tasks[i].Subtasks, s)
		}
	}
	return tasks, subRows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t                      models.Task
		status, priority       string
		dueDate, dueTime, list sql.NullString
		completedAt            sql.NullTime
	)
	err := s.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &dueDate, &dueTime, &list,
		&t.CreatedAt, &t.UpdatedAt, &completedAt)
	if err != nil {
		return models.Task{}, err
	}

	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	if dueDate.Valid && dueDate.String != "" {
		d, err := calendar.Parse(dueDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	t.DueTime = stringPtr(dueTime)
	t.ListID = stringPtr(list)
	t.CompletedAt = timePtr(completedAt)
	return t, nil
}

func dueDateValue(d *calendar.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func taskTags(ctx context.Context, q querier, taskID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT tag_id FROM task_tags WHERE task_id = ? ORDER BY position", taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tags = append(tags, id)
	}
	return tags, rows.Err()
}

func writeTaskTags(ctx context.Context, q querier, taskID string, tags []string) error {
	for i, tagID := range tags {
		_, err := q.ExecContext(ctx,
			"INSERT INTO task_tags (task_id, tag_id, position) VALUES (?, ?, ?)", taskID, tagID, i)
		if err != nil {
			return err
		}
	}
	return nil
}
