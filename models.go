package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. It carries the password hash and must never be
// handed to callers directly, use Public.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	Email         string     `bun:"email,notnull,unique"`
	PasswordHash  string     `bun:"password_hash,notnull"`
	FirstName     string     `bun:"first_name,notnull"`
	LastName      string     `bun:"last_name,notnull"`
	IsActive      *bool      `bun:"is_active"`
	Role          UserRole   `bun:"user_role,notnull"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Active reports whether the account may authenticate. Only an explicit
// false disables it; an unset flag counts as active.
func (u *User) Active() bool {
	if u == nil {
		return false
	}
	return u.IsActive == nil || *u.IsActive
}

// Public returns the projection of the user that is safe to return to
// callers.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	p := PublicUser{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.IsActive != nil {
		active := *u.IsActive
		p.IsActive = &active
	}
	return p
}

// PublicUser is the user projection without secrets
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	IsActive  *bool      `json:"is_active,omitempty"`
	Role      UserRole   `json:"role,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AuthResponse is returned by every token issuing operation
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

func boolPtr(v bool) *bool {
	return &v
}
