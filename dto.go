package auth

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// MaxNameLength bounds first and last names
const MaxNameLength = 40

// SignupInput is the registration payload
type SignupInput struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// Validate will run validation rules
func (r SignupInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			DefaultPasswordPolicy.Rule(),
		),
		validation.Field(
			&r.FirstName,
			validation.Required,
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(
			&r.LastName,
			validation.Required,
			validation.RuneLength(1, MaxNameLength),
		),
	)
}

// Normalized returns a copy with trimmed names and a canonical email
func (r SignupInput) Normalized() SignupInput {
	r.Email = NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return r
}

// LoginInput is the login payload. The password is compared as is.
type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Validate will run validation rules
func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// NormalizeEmail trims and lower cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidationFields extracts the per field messages of a validation error.
// It returns nil when err does not come from input validation.
func ValidationFields(err error) map[string]string {
	var verrs validation.Errors
	if !goerrors.As(err, &verrs) {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Metadata != nil {
			if fields, ok := richErr.Metadata["fields"].(map[string]any); ok {
				out := make(map[string]string, len(fields))
				for k, v := range fields {
					out[k] = fmt.Sprint(v)
				}
				return out
			}
		}
		return nil
	}

	out := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if ferr == nil {
			continue
		}
		out[field] = ferr.Error()
	}
	return out
}

func validationError(err error) error {
	fields := ValidationFields(err)
	if fields == nil {
		return err
	}

	md := make(map[string]any, len(fields))
	for k, v := range fields {
		md[k] = v
	}

	return goerrors.Wrap(err, ErrValidation.Category, ErrValidation.Message).
		WithTextCode(ErrValidation.TextCode).
		WithCode(ErrValidation.Code).
		WithMetadata(map[string]any{"fields": md})
}
