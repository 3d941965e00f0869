package domain

import "time"

// Role separates administrators from regular users.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a bot user. The ID is the Telegram user id.
type User struct {
	ID        int64
	LastName  *string // Nullable, encrypted at rest
	FirstName *string // Nullable, encrypted at rest
	Username  *string // Nullable, encrypted at rest
	CreatedAt time.Time
}

// DisplayName returns the first name, or an empty string.
func (u *User) DisplayName() string {
	if u == nil || u.FirstName == nil {
		return ""
	}
	return *u.FirstName
}
