package auth

import (
	"context"
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/nexotv/nexo-auth/middleware/jwtware"
)

// RouteAuthenticator guards router routes with a bearer token and resolves
// the active user behind it.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler router.ErrorHandler
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) *RouteAuthenticator {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}
	a.AuthErrorHandler = a.defaultAuthErrHandler
	return a
}

// ProtectedRoute returns the JWT middleware. The resolved PublicUser is
// stored in Locals under the configured context key and in the request's
// standard context.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: a.AuthErrorHandler,
		ContextKey:   a.cfg.GetContextKey(),
		TokenLookup:  a.cfg.GetTokenLookup(),
		AuthScheme:   a.cfg.GetAuthScheme(),
		TokenValidator: jwtware.ValidatorFunc(func(raw string) (jwtware.Claims, error) {
			claims, err := a.auth.SessionFromToken(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		UserResolver: func(ctx context.Context, claims jwtware.Claims) (any, error) {
			user, err := a.auth.ValidateUser(ctx, claims.UserID())
			if err != nil {
				return nil, err
			}
			return user, nil
		},
		ContextEnricher: func(ctx context.Context, claims jwtware.Claims, user any) context.Context {
			if u, ok := user.(PublicUser); ok {
				ctx = WithContext(ctx, u)
			}
			if jc, ok := claims.(*JWTClaims); ok {
				ctx = WithClaimsContext(ctx, jc)
			}
			return ctx
		},
	})
}

// CurrentUser returns the user resolved by ProtectedRoute
func (a *RouteAuthenticator) CurrentUser(c router.Context) (PublicUser, bool) {
	return UserFromLocals(c, a.cfg.GetContextKey())
}

// RequireRole must run after ProtectedRoute. It answers 403 when the
// resolved user's role is below minRole.
func (a *RouteAuthenticator) RequireRole(minRole UserRole) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			user, ok := a.CurrentUser(c)
			if !ok {
				return writeError(c, http.StatusUnauthorized, ErrUnableToFindSession)
			}
			if !user.Role.IsAtLeast(minRole) {
				a.Logger.Debug("role check failed", "user", user.ID, "role", user.Role, "required", minRole)
				return writeError(c, http.StatusForbidden, ErrInsufficientRole)
			}
			return c.Next()
		}
	}
}

// defaultAuthErrHandler answers every token failure with 401. A token whose
// user no longer exists is an authentication failure, not a 404.
func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return writeError(c, http.StatusUnauthorized, ErrUnableToFindSession)
	}

	if HTTPStatus(err) == http.StatusInternalServerError {
		a.Logger.Error("protected route user resolution error", "error", err)
		return writeError(c, http.StatusInternalServerError, err)
	}

	a.Logger.Debug("protected route token rejected", "error", err)
	return writeError(c, http.StatusUnauthorized, err)
}

// HTTPStatus maps an error to the status code the API answers with. An
// explicit code on the error wins over its category.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeError(c router.Context, status int, err error) error {
	body := errorBody{Message: err.Error()}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		body.Code = richErr.TextCode
		body.Message = richErr.Message
	}

	if status >= http.StatusInternalServerError {
		body.Message = "internal server error"
	}

	if fields := ValidationFields(err); len(fields) > 0 {
		body.Fields = fields
	}

	return c.JSON(status, map[string]any{"error": body})
}
