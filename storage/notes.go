package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"diginotes/models"
)

// NoteStore persists notes and their tag associations. Every multi-table
// write runs in a single transaction; on failure nothing is committed.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

// noteQuery builds the annotated note select: folder name/color joined in and
// tag names aggregated per note.
func noteQuery() squirrel.SelectBuilder {
	return squirrel.
		Select(
			"n.id", "n.title", "n.content", "n.user_id", "n.folder_id",
			"n.is_pinned", "n.is_archived", "n.created_at", "n.updated_at",
			"f.name AS folder_name", "f.color AS folder_color",
			"COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags",
		).
		From("notes n").
		LeftJoin("folders f ON n.folder_id = f.id").
		LeftJoin("note_tags nt ON n.id = nt.note_id").
		LeftJoin("tags t ON nt.tag_id = t.id").
		GroupBy("n.id", "f.id").
		PlaceholderFormat(squirrel.Dollar)
}

func scanNote(row squirrel.RowScanner) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID, &note.Title, &note.Content, &note.UserID, &note.FolderID,
		&note.IsPinned, &note.IsArchived, &note.CreatedAt, &note.UpdatedAt,
		&note.FolderName, &note.FolderColor, pq.Array(&note.Tags),
	)
	if err != nil {
		return nil, err
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

// FindByUser returns every note the user owns, pinned first, then most
// recently updated first.
func (s *NoteStore) FindByUser(ctx context.Context, userID int64) ([]models.Note, error) {
	query, args, err := noteQuery().
		Where(squirrel.Eq{"n.user_id": userID}).
		OrderBy("n.is_pinned DESC", "n.updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes for user '%d': %w", userID, err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	return notes, rows.Err()
}

func (s *NoteStore) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	query, args, err := noteQuery().Where(squirrel.Eq{"n.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	note, err := scanNote(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note '%d': %w", id, err)
	}
	return note, nil
}

// Create inserts the note and resolves its tags in one transaction, then
// returns the note annotated with folder and tag names.
func (s *NoteStore) Create(ctx context.Context, input models.NoteInput, userID int64) (*models.Note, error) {
	var noteID int64
	err := execTx(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO notes (title, content, user_id, folder_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, query, input.Title, input.Content, userID, input.FolderID).
			Scan(&noteID); err != nil {
			return fmt.Errorf("failed to create note: %w", err)
		}
		return replaceNoteTags(ctx, tx, noteID, userID, input.Tags)
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(ctx, noteID)
}

// Update replaces title, content and folder. A non-nil update.Tags replaces
// the full association set; nil leaves the existing tags untouched.
func (s *NoteStore) Update(ctx context.Context, id int64, update models.NoteUpdate) (*models.Note, error) {
	err := execTx(ctx, s.db, func(tx *sql.Tx) error {
		query := `
			UPDATE notes SET title = $1, content = $2, folder_id = $3, updated_at = NOW()
			WHERE id = $4
		`
		if _, err := tx.ExecContext(ctx, query, update.Title, update.Content, update.FolderID, id); err != nil {
			return fmt.Errorf("failed to update note '%d': %w", id, err)
		}

		if update.Tags != nil {
			var userID int64
			if err := tx.QueryRowContext(ctx, `SELECT user_id FROM notes WHERE id = $1`, id).
				Scan(&userID); err != nil {
				return fmt.Errorf("failed to get note owner: %w", err)
			}
			return replaceNoteTags(ctx, tx, id, userID, *update.Tags)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(ctx, id)
}

// Delete removes the note's tag associations and the note atomically.
func (s *NoteStore) Delete(ctx context.Context, id int64) error {
	return execTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete note associations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete note '%d': %w", id, err)
		}
		return nil
	})
}

// TogglePin flips the pinned flag in place.
func (s *NoteStore) TogglePin(ctx context.Context, id int64) (*models.Note, error) {
	return s.toggle(ctx, id, "is_pinned")
}

// ToggleArchive flips the archived flag in place.
func (s *NoteStore) ToggleArchive(ctx context.Context, id int64) (*models.Note, error) {
	return s.toggle(ctx, id, "is_archived")
}

func (s *NoteStore) toggle(ctx context.Context, id int64, column string) (*models.Note, error) {
	query := fmt.Sprintf(`UPDATE notes SET %s = NOT %s, updated_at = NOW() WHERE id = $1`, column, column)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return nil, fmt.Errorf("failed to toggle %s on note '%d': %w", column, id, err)
	}
	return s.FindByID(ctx, id)
}

// replaceNoteTags drops the note's association set and rebuilds it from the
// given names. Tags are resolved with the same atomic upsert the TagStore
// uses, scoped to the note's owner. Blank names are ignored.
func replaceNoteTags(ctx context.Context, tx *sql.Tx, noteID, userID int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("failed to clear note tags: %w", err)
	}

	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var tagID int64
		upsert := `
			INSERT INTO tags (name, user_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, upsert, name, userID).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}

		join := `
			INSERT INTO note_tags (note_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, join, noteID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}
	return nil
}
