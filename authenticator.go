package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Auther runs the account workflow: signup, login, token revalidation and
// user validation. It holds no per request state.
type Auther struct {
	store        UserStore
	hasher       PasswordAuthenticator
	signer       TokenSigner
	validator    TokenValidator
	notifier     Notifier
	logger       Logger
	activitySink ActivitySink

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(store UserStore, tokens *TokenService) *Auther {
	return &Auther{
		store:        store,
		hasher:       NewBcryptHasher(0),
		signer:       tokens,
		validator:    tokens,
		notifier:     noopNotifier{},
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	return s
}

// WithHasher sets the hasher used to compare login passwords
func (s *Auther) WithHasher(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithNotifier sets the notifier used for welcome and login emails
func (s *Auther) WithNotifier(notifier Notifier) *Auther {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	s.notifier = notifier
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// fallbackHash is hashed once with the configured hasher so its cost
// matches the stored hashes.
func (s *Auther) fallbackHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.HashPassword("nexo-auth-unknown-identity")
		if err != nil {
			s.logger.Error("hash fallback password error", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Signup creates the account, signs a token and sends the welcome email.
// Email delivery is best effort: a failure is logged and the account and
// token are still returned.
func (s *Auther) Signup(ctx context.Context, input SignupInput) (*AuthResponse, error) {
	input = input.Normalized()
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.Create(ctx, input)
	if err != nil {
		s.logger.Error("signup create user error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventSignupFailure, "", map[string]any{
			"email": NormalizeEmail(input.Email),
			"error": err.Error(),
		})
		return nil, err
	}

	token, err := s.signer.Sign(user.ID.String())
	if err != nil {
		s.logger.Error("signup sign token error", "error", err)
		return nil, err
	}

	public := user.Public()
	s.notify(ctx, Notification{Kind: NotificationWelcome, User: public})

	s.emitAuthEvent(ctx, ActivityEventSignupSuccess, public.ID, nil)

	return &AuthResponse{
		Token: token,
		User:  public,
	}, nil
}

// Login checks the credentials, signs a token and sends the login
// notification. Unknown emails and wrong passwords fail the same way.
func (s *Auther) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	if err := input.Validate(); err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.FindOneByEmail(ctx, input.Email)
	if err != nil {
		if goerrors.Is(err, ErrIdentityNotFound) {
			// keep the unknown email path as slow as a password mismatch
			_ = s.hasher.ComparePasswordAndHash(input.Password, s.fallbackHash())
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
				"email": NormalizeEmail(input.Email),
				"error": "unknown email",
			})
			return nil, ErrMismatchedHashAndPassword
		}
		s.logger.Error("login find user error", "error", err)
		return nil, err
	}

	if err := s.hasher.ComparePasswordAndHash(input.Password, user.PasswordHash); err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"email": user.Email,
			"error": "password mismatch",
		})
		if goerrors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrMismatchedHashAndPassword
		}
		s.logger.Error("login compare password error", "error", err)
		return nil, ErrMismatchedHashAndPassword
	}

	token, err := s.signer.Sign(user.ID.String())
	if err != nil {
		s.logger.Error("login sign token error", "error", err)
		return nil, err
	}

	public := user.Public()
	s.notify(ctx, Notification{Kind: NotificationLogin, User: public})

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, public.ID, nil)

	return &AuthResponse{
		Token: token,
		User:  public,
	}, nil
}

// ValidateUser resolves the user behind a token. Accounts whose active
// flag is explicitly false are rejected; an unset flag counts as active.
func (s *Auther) ValidateUser(ctx context.Context, id string) (PublicUser, error) {
	user, err := s.store.FindOneByID(ctx, id)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventValidationFailure, id, map[string]any{
			"error": err.Error(),
		})
		return PublicUser{}, err
	}

	if !user.Active() {
		s.emitAuthEvent(ctx, ActivityEventValidationFailure, id, map[string]any{
			"error": ErrUserInactive.Message,
		})
		return PublicUser{}, ErrUserInactive
	}

	return user.Public(), nil
}

// RevalidateToken issues a fresh token for an already authenticated user
func (s *Auther) RevalidateToken(user PublicUser) (*AuthResponse, error) {
	token, err := s.signer.Sign(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  user,
	}, nil
}

// SessionFromToken validates a raw token and returns its claims
func (s *Auther) SessionFromToken(raw string) (*JWTClaims, error) {
	if s.validator == nil {
		return nil, ErrUnableToDecodeSession
	}

	claims, err := s.validator.Validate(raw)
	if err != nil {
		s.logger.Debug("session from token validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// UserFromToken validates a raw token and resolves the active user it
// belongs to.
func (s *Auther) UserFromToken(ctx context.Context, raw string) (PublicUser, error) {
	claims, err := s.SessionFromToken(raw)
	if err != nil {
		return PublicUser{}, err
	}
	return s.ValidateUser(ctx, claims.UserID())
}

func (s *Auther) notify(ctx context.Context, n Notification) {
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.NotificationFailed(ctx, n, err)
	}
}

// NotificationFailed logs a failed delivery and records it on the activity
// sink. Notifiers that deliver in the background report through it.
func (s *Auther) NotificationFailed(ctx context.Context, n Notification, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("notification dispatch failed",
		"kind", n.Kind,
		"to", n.To(),
		"error", err,
	)
	s.emitAuthEvent(ctx, ActivityEventNotificationFailure, n.User.ID, map[string]any{
		"kind":  string(n.Kind),
		"error": err.Error(),
	})
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)
