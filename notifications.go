package auth

import "context"

// NotificationKind identifies a transactional email
type NotificationKind string

const (
	// NotificationWelcome is sent after signup
	NotificationWelcome NotificationKind = "welcome"
	// NotificationLogin is sent after a successful login
	NotificationLogin NotificationKind = "login"
)

// Notification is a request to email a user
type Notification struct {
	Kind NotificationKind `json:"kind"`
	User PublicUser       `json:"user"`
}

// To returns the recipient address
func (n Notification) To() string {
	return n.User.Email
}

// Notifier delivers notifications. Implementations decide whether the
// delivery happens inline, on a goroutine or through a queue.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error {
	return nil
}
