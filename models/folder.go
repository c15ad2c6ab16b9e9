package models

import "time"

// DefaultFolderColor is applied when a folder is created without a color.
const DefaultFolderColor = "bg-gray-500"

// Folder is a named, colored container for notes owned by one user.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
