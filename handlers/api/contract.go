package api

import (
	"context"

	"diginotes/models"
)

type (
	UserStore interface {
		Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
		FindByEmail(ctx context.Context, email string) (*models.User, error)
		FindByID(ctx context.Context, id int64) (*models.User, error)
		Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	}

	NoteStore interface {
		FindByUser(ctx context.Context, userID int64) ([]models.Note, error)
		FindByID(ctx context.Context, id int64) (*models.Note, error)
		Create(ctx context.Context, input models.NoteInput, userID int64) (*models.Note, error)
		Update(ctx context.Context, id int64, update models.NoteUpdate) (*models.Note, error)
		Delete(ctx context.Context, id int64) error
		TogglePin(ctx context.Context, id int64) (*models.Note, error)
		ToggleArchive(ctx context.Context, id int64) (*models.Note, error)
	}

	FolderStore interface {
		FindByUser(ctx context.Context, userID int64) ([]models.Folder, error)
		FindByID(ctx context.Context, id int64) (*models.Folder, error)
		Create(ctx context.Context, name, color string, userID int64) (*models.Folder, error)
		Update(ctx context.Context, id int64, name, color string) (*models.Folder, error)
		Delete(ctx context.Context, id int64) error
	}

	TagStore interface {
		FindByUser(ctx context.Context, userID int64) ([]models.Tag, error)
		FindByID(ctx context.Context, id int64) (*models.Tag, error)
		Upsert(ctx context.Context, userID int64, name string) (*models.Tag, error)
		Delete(ctx context.Context, id int64) error
		Popular(ctx context.Context, userID int64, limit int) ([]models.Tag, error)
	}
)
