package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/nexotv/nexo-auth"
)

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole(" Admin ")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("owner")
	assert.False(t, ok)
}

func TestUserRoleIsAtLeast(t *testing.T) {
	tests := []struct {
		role auth.UserRole
		min  auth.UserRole
		want bool
	}{
		{auth.RoleAdmin, auth.RoleUser, true},
		{auth.RoleAdmin, auth.RoleAdmin, true},
		{auth.RoleUser, auth.RoleUser, true},
		{auth.RoleUser, auth.RoleAdmin, false},
		{auth.UserRole("guest"), auth.RoleUser, false},
		{auth.RoleAdmin, auth.UserRole("root"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.role.IsAtLeast(tt.min), "%s >= %s", tt.role, tt.min)
	}
}
