package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"diginotes/models"
)

// FolderStore persists folders. Deleting a folder never deletes its notes;
// the notes.folder_id foreign key nulls their reference instead.
type FolderStore struct {
	db *sql.DB
}

func NewFolderStore(db *sql.DB) *FolderStore {
	return &FolderStore{db: db}
}

func (s *FolderStore) FindByUser(ctx context.Context, userID int64) ([]models.Folder, error) {
	query := `
		SELECT id, name, color, user_id, created_at, updated_at
		FROM folders WHERE user_id = $1 ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query folders for user '%d': %w", userID, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		var folder models.Folder
		if err = rows.Scan(&folder.ID, &folder.Name, &folder.Color, &folder.UserID,
			&folder.CreatedAt, &folder.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, folder)
	}
	return folders, rows.Err()
}

func (s *FolderStore) FindByID(ctx context.Context, id int64) (*models.Folder, error) {
	folder := &models.Folder{}
	query := `
		SELECT id, name, color, user_id, created_at, updated_at
		FROM folders WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&folder.ID, &folder.Name, &folder.Color, &folder.UserID,
		&folder.CreatedAt, &folder.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder '%d': %w", id, err)
	}
	return folder, nil
}

func (s *FolderStore) Create(ctx context.Context, name, color string, userID int64) (*models.Folder, error) {
	if color == "" {
		color = models.DefaultFolderColor
	}

	folder := &models.Folder{Name: name, Color: color, UserID: userID}
	query := `
		INSERT INTO folders (name, color, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, name, color, userID).
		Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return folder, nil
}

func (s *FolderStore) Update(ctx context.Context, id int64, name, color string) (*models.Folder, error) {
	query := `
		UPDATE folders SET name = $1, color = $2, updated_at = NOW() WHERE id = $3
	`
	if _, err := s.db.ExecContext(ctx, query, name, color, id); err != nil {
		return nil, fmt.Errorf("failed to update folder '%d': %w", id, err)
	}
	return s.FindByID(ctx, id)
}

func (s *FolderStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete folder '%d': %w", id, err)
	}
	return nil
}
