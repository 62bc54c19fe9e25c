package auth

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the logging contract used across the package. Messages are
// followed by key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// PasswordAuthenticator hashes and compares passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// UserStore is the persistence surface the auth workflow borrows users from
type UserStore interface {
	Create(ctx context.Context, input SignupInput) (*User, error)
	FindOneByEmail(ctx context.Context, email string) (*User, error)
	FindOneByID(ctx context.Context, id string) (*User, error)
}

// TokenSigner issues signed tokens for a user id
type TokenSigner interface {
	Sign(userID string) (string, error)
}

// Authenticator exposes the account workflow
type Authenticator interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	ValidateUser(ctx context.Context, id string) (PublicUser, error)
	RevalidateToken(user PublicUser) (*AuthResponse, error)
	SessionFromToken(raw string) (*JWTClaims, error)
}

type defLogger struct{}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + formatLine(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + formatLine(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + formatLine(msg, args...))
}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + formatLine(msg, args...))
}

func formatLine(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	b.WriteString("\n")
	return b.String()
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}
