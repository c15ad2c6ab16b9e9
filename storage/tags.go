package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"diginotes/models"
)

// TagStore persists tags. Tag creation is idempotent per (owner, name): the
// upsert makes concurrent duplicate creates converge on one row instead of
// racing a read-then-write.
type TagStore struct {
	db *sql.DB
}

func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) FindByUser(ctx context.Context, userID int64) ([]models.Tag, error) {
	query := `
		SELECT id, name, user_id, created_at
		FROM tags WHERE user_id = $1 ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for user '%d': %w", userID, err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.UserID, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *TagStore) FindByID(ctx context.Context, id int64) (*models.Tag, error) {
	tag := &models.Tag{}
	query := `SELECT id, name, user_id, created_at FROM tags WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&tag.ID, &tag.Name, &tag.UserID, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag '%d': %w", id, err)
	}
	return tag, nil
}

// Upsert returns the user's tag with the given name, creating it if needed.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
func (s *TagStore) Upsert(ctx context.Context, userID int64, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name, UserID: userID}
	query := `
		INSERT INTO tags (name, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, user_id, created_at
	`
	err := s.db.QueryRowContext(ctx, query, name, userID).
		Scan(&tag.ID, &tag.Name, &tag.UserID, &tag.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tag %q for user '%d': %w", name, userID, err)
	}
	return tag, nil
}

// Delete removes the tag and its note associations atomically. The notes
// themselves are untouched.
func (s *TagStore) Delete(ctx context.Context, id int64) error {
	return execTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE tag_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete tag associations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete tag '%d': %w", id, err)
		}
		return nil
	})
}

// Popular returns the user's most used tags, usage count descending with
// alphabetical tiebreak.
func (s *TagStore) Popular(ctx context.Context, userID int64, limit int) ([]models.Tag, error) {
	queryBuilder := squirrel.
		Select("t.id", "t.name", "t.user_id", "t.created_at", "COUNT(nt.note_id) AS usage_count").
		From("tags t").
		LeftJoin("note_tags nt ON t.id = nt.tag_id").
		Where(squirrel.Eq{"t.user_id": userID}).
		GroupBy("t.id").
		OrderBy("usage_count DESC", "t.name").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err = rows.Scan(&tag.ID, &tag.Name, &tag.UserID, &tag.CreatedAt, &tag.UsageCount); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
