package auth

import "strings"

// UserRole is the user's role
type UserRole string

const (
	// RoleUser is the default role for self registered accounts
	RoleUser UserRole = "user"
	// RoleAdmin can manage other accounts
	RoleAdmin UserRole = "admin"
)

var roleHierarchy = map[UserRole]int{
	RoleUser:  0,
	RoleAdmin: 1,
}

// IsValid checks if the role is one of the predefined roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level.
// Unknown roles never do.
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	current, ok := roleHierarchy[r]
	if !ok {
		return false
	}
	min, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}
	return current >= min
}

// ParseRole parses a role name, case insensitive
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	return role, role.IsValid()
}
