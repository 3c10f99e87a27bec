package db

import (
	"context"
	"database/sql"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

// CreateList creates a new list
func (db *DB) CreateList(ctx context.Context, l models.List) (models.List, error) {
	l, err := domain.ValidateList(l)
	if err != nil {
		return models.List{}, err
	}
	l.ID = db.newID()
	l.CreatedAt = db.now()

	_, err = db.ExecContext(ctx, `
		INSERT INTO lists (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)
	`, l.ID, l.Name, l.Color, l.Icon, l.CreatedAt)
	if err != nil {
		return models.List{}, storeErr("create list", err)
	}

	return db.GetList(ctx, l.ID)
}

// GetList retrieves a list by ID with its task count
func (db *DB) GetList(ctx context.Context, id string) (models.List, error) {
	var l models.List
	err := db.QueryRowContext(ctx, `
		SELECT l.id, l.name, l.color, l.icon, l.created_at, COUNT(t.id)
		FROM lists l
		LEFT JOIN tasks t ON t.list_id = l.id
		WHERE l.id = ?
		GROUP BY l.id
	`, id).Scan(&l.ID, &l.Name, &l.Color, &l.Icon, &l.CreatedAt, &l.TaskCount)
	if err != nil {
		return models.List{}, storeErr("get list", err)
	}
	return l, nil
}

// ListLists returns all lists in creation order with their task counts
func (db *DB) ListLists(ctx context.Context) ([]models.List, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT l.id, l.name, l.color, l.icon, l.created_at, COUNT(t.id)
		FROM lists l
		LEFT JOIN tasks t ON t.list_id = l.id
		GROUP BY l.id
		ORDER BY l.created_at, l.rowid
	`)
	if err != nil {
		return nil, storeErr("list lists", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Name, &l.Color, &l.Icon, &l.CreatedAt, &l.TaskCount); err != nil {
			return nil, storeErr("list lists", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list lists", err)
	}
	return lists, nil
}

// UpdateList renames or restyles a list. Empty color or icon fall back to
// the defaults.
func (db *DB) UpdateList(ctx context.Context, l models.List) (models.List, error) {
	l, err := domain.ValidateList(l)
	if err != nil {
		return models.List{}, err
	}

	res, err := db.ExecContext(ctx,
		"UPDATE lists SET name = ?, color = ?, icon = ? WHERE id = ?", l.Name, l.Color, l.Icon, l.ID)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return models.List{}, storeErr("update list", err)
	}

	return db.GetList(ctx, l.ID)
}

// DeleteList deletes a list. Tasks in the list are kept and lose their list.
func (db *DB) DeleteList(ctx context.Context, id string) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE tasks SET list_id = NULL WHERE list_id = ?", id)
		return err
	})
	if err != nil {
		return storeErr("delete list", err)
	}
	return nil
}

// ListCount returns the number of lists
func (db *DB) ListCount(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lists").Scan(&n); err != nil {
		return 0, storeErr("count lists", err)
	}
	return n, nil
}
