package db

import (
	"context"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

// CreateTag creates a new tag
func (db *DB) CreateTag(ctx context.Context, t models.Tag) (models.Tag, error) {
	t, err := domain.ValidateTag(t)
	if err != nil {
		return models.Tag{}, err
	}
	t.ID = db.newID()
	t.CreatedAt = db.now()

	_, err = db.ExecContext(ctx, "INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		t.ID, t.Name, t.Color, t.CreatedAt)
	if err != nil {
		return models.Tag{}, storeErr("create tag", err)
	}

	return db.GetTag(ctx, t.ID)
}

// GetTag retrieves a tag by ID
func (db *DB) GetTag(ctx context.Context, id string) (models.Tag, error) {
	var t models.Tag
	err := db.QueryRowContext(ctx, "SELECT id, name, color, created_at FROM tags WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		return models.Tag{}, storeErr("get tag", err)
	}
	return t, nil
}

// ListTags returns all tags ordered by name
func (db *DB) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, color, created_at FROM tags ORDER BY name, rowid")
	if err != nil {
		return nil, storeErr("list tags", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, storeErr("list tags", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list tags", err)
	}
	return tags, nil
}

// DeleteTag deletes a tag. Tasks keep the id in their tag list; readers
// skip ids that no longer resolve.
func (db *DB) DeleteTag(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return storeErr("delete tag", err)
	}
	return nil
}
