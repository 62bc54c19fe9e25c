package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// Users is the user store backed by bun
type Users interface {
	UserStore

	CreateTx(ctx context.Context, tx bun.IDB, input SignupInput) (*User, error)
	FindOneByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
}

type users struct {
	repo      repository.Repository[*User]
	db        *bun.DB
	hasher    PasswordAuthenticator
	useHashid bool
	now       func() time.Time
}

var _ Users = (*users)(nil)

type UsersOption func(*users)

// WithUsersHasher overrides the password hasher used on create
func WithUsersHasher(h PasswordAuthenticator) UsersOption {
	return func(u *users) {
		if h != nil {
			u.hasher = h
		}
	}
}

// WithHashidIDs derives user ids from their email instead of random UUIDs
func WithHashidIDs(enabled bool) UsersOption {
	return func(u *users) {
		u.useHashid = enabled
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	u := &users{
		repo:   repo,
		db:     db,
		hasher: NewBcryptHasher(0),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}

	return u
}

func (a *users) Create(ctx context.Context, input SignupInput) (*User, error) {
	var created *User
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		created, err = a.CreateTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, input SignupInput) (*User, error) {
	input = input.Normalized()

	if _, err := a.FindOneByEmailTx(ctx, tx, input.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !goerrors.Is(err, ErrIdentityNotFound) {
		return nil, err
	}

	hash, err := a.hasher.HashPassword(input.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := a.now()
	record := &User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     boolPtr(true),
		Role:         RoleUser,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
	a.assignID(record)

	created, err := a.repo.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return created, nil
}

func (a *users) FindOneByEmail(ctx context.Context, email string) (*User, error) {
	return a.FindOneByEmailTx(ctx, a.db, email)
}

func (a *users) FindOneByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrIdentityNotFound
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find user by email")
	}

	return record, nil
}

func (a *users) FindOneByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	record, err := a.repo.GetByID(ctx, uid.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find user by id")
	}

	return record, nil
}

// SetActive toggles the account flag. It is an administrative action and
// not part of the authentication workflow.
func (a *users) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("is_active = ?", active).
		Set("updated_at = ?", a.now()).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user status")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrIdentityNotFound
	}

	return a.FindOneByID(ctx, uid.String())
}

func (a *users) assignID(record *User) {
	if a.useHashid {
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
			return
		}
	}
	record.ID = uuid.New()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
