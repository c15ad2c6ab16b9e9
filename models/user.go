package models

import "time"

// User represents a registered account. PasswordHash is only populated by
// lookups that need credential verification and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfilePic   *string   `json:"profile_pic"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserPatch carries the sparse fields of a profile update. Nil means
// "leave untouched".
type UserPatch struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	ProfilePic *string `json:"profile_pic"`
}

// Empty reports whether the patch carries no fields at all.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.ProfilePic == nil
}
