package models

import "time"

// Note is a user-owned note annotated with its folder's name/color and the
// names of its tags. FolderID is nil for notes outside any folder.
type Note struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	UserID      int64     `json:"userId"`
	FolderID    *int64    `json:"folderId"`
	FolderName  *string   `json:"folderName"`
	FolderColor *string   `json:"folderColor"`
	IsPinned    bool      `json:"isPinned"`
	IsArchived  bool      `json:"isArchived"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NoteInput is the payload for creating a note.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	FolderID *int64   `json:"folderId"`
	Tags     []string `json:"tags"`
}

// NoteUpdate is the payload for replacing a note's fields. A nil Tags slice
// leaves the existing tag associations untouched; a non-nil slice (empty
// included) replaces the full set.
type NoteUpdate struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	FolderID *int64    `json:"folderId"`
	Tags     *[]string `json:"tags"`
}
