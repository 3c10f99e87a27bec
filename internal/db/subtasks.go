package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

// AddSubtask appends a subtask to a task and returns the updated task
func (db *DB) AddSubtask(ctx context.Context, taskID, title string) (models.Task, error) {
	title, err := domain.ValidateSubtaskTitle(title)
	if err != nil {
		return models.Task{}, err
	}

	now := db.now()
	s := models.Subtask{ID: db.newID(), Title: title, CreatedAt: now}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchTask(ctx, tx, taskID, now); err != nil {
			return err
		}
		var next int
		err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(position) + 1, 0) FROM subtasks WHERE task_id = ?", taskID).Scan(&next)
		if err != nil {
			return err
		}
		return insertSubtask(ctx, tx, taskID, next, s)
	})
	if err != nil {
		return models.Task{}, storeErr("add subtask", err)
	}

	return db.GetTask(ctx, taskID)
}

// SetSubtaskCompleted marks a subtask done or not done and returns the
// updated task
func (db *DB) SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Task, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE subtasks SET completed = ? WHERE id = ? AND task_id = ?", completed, subtaskID, taskID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return touchTask(ctx, tx, taskID, db.now())
	})
	if err != nil {
		return models.Task{}, storeErr("update subtask", err)
	}

	return db.GetTask(ctx, taskID)
}

// DeleteSubtask removes a subtask from a task and returns the updated task
func (db *DB) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM subtasks WHERE id = ? AND task_id = ?", subtaskID, taskID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return touchTask(ctx, tx, taskID, db.now())
	})
	if err != nil {
		return models.Task{}, storeErr("delete subtask", err)
	}

	return db.GetTask(ctx, taskID)
}

func insertSubtask(ctx context.Context, q querier, taskID string, position int, s models.Subtask) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO subtasks (id, task_id, position, title, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, taskID, position, s.Title, s.Completed, s.CreatedAt)
	return err
}

func taskSubtasks(ctx context.Context, q querier, taskID string) ([]models.Subtask, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, completed, created_at
		FROM subtasks WHERE task_id = ? ORDER BY position
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subtasks := []models.Subtask{}
	for rows.Next() {
		var s models.Subtask
		if err := rows.Scan(&s.ID, &s.Title, &s.Completed, &s.CreatedAt); err != nil {
			return nil, err
		}
		subtasks = append(subtasks, s)
	}
	return subtasks, rows.Err()
}

// touchTask bumps updated_at, failing with domain.ErrNotFound when the task
// does not exist.
func touchTask(ctx context.Context, q querier, taskID string, now time.Time) error {
	res, err := q.ExecContext(ctx, "UPDATE tasks SET updated_at = ? WHERE id = ?", now, taskID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
