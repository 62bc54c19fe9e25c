package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation         = "VALIDATION_FAILED"
	TextCodeEmailExists        = "EMAIL_ALREADY_EXISTS"
	TextCodeInvalidCreds       = "INVALID_CREDENTIALS"
	TextCodeIdentityNotFound   = "IDENTITY_NOT_FOUND"
	TextCodeAccountInactive    = "ACCOUNT_INACTIVE"
	TextCodeEmailDelivery      = "EMAIL_DELIVERY_FAILED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeSessionNotFound    = "SESSION_NOT_FOUND"
	TextCodeSessionDecodeError = "SESSION_DECODE_ERROR"
	TextCodeInsufficientRole   = "INSUFFICIENT_ROLE"
)

// ErrValidation is returned when an input DTO fails validation
var ErrValidation = goerrors.New("invalid input", goerrors.CategoryValidation).
	WithTextCode(TextCodeValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrEmailAlreadyExists is returned when signing up with a registered email
var ErrEmailAlreadyExists = goerrors.New("email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeConflict)

// ErrMismatchedHashAndPassword is the generic login failure. It does not
// disclose whether the email or the password was wrong.
var ErrMismatchedHashAndPassword = goerrors.New("email or password do not match", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrUserInactive is returned for accounts explicitly deactivated
var ErrUserInactive = goerrors.New("user is inactive, talk with an admin", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrInsufficientRole is returned when the user's role is below the one a route requires
var ErrInsufficientRole = goerrors.New("insufficient permissions", goerrors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(goerrors.CodeForbidden)

// ErrEmailDelivery wraps transport failures when sending notifications
var ErrEmailDelivery = goerrors.New("unable to deliver email notification", goerrors.CategoryOperation).
	WithTextCode(TextCodeEmailDelivery).
	WithCode(goerrors.CodeInternal)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password can not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned for tokens past their expiration
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we can not parse or verify
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode claims from token
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
