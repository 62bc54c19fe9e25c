package auth

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the auth API on the given router
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("auth.signup.post")
	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	protected := controller.Guard.ProtectedRoute()
	app.Get(controller.Routes.Revalidate, controller.RevalidateGet, protected).
		SetName("auth.revalidate.get")
	app.Get(controller.Routes.Me, controller.MeGet, protected).
		SetName("auth.me.get")

	return controller
}

type AuthControllerRoutes struct {
	Signup     string
	Login      string
	Revalidate string
	Me         string
}

type AuthController struct {
	Debug  bool
	Logger Logger
	Routes *AuthControllerRoutes
	Auther Authenticator
	Guard  *RouteAuthenticator
	// ErrorHandler renders workflow errors. It receives the status that
	// HTTPStatus picked for the error.
	ErrorHandler func(c router.Context, status int, err error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerGuard(guard *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Guard = guard
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerPrefix(prefix string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = &AuthControllerRoutes{
			Signup:     prefix + "/signup",
			Login:      prefix + "/login",
			Revalidate: prefix + "/revalidate",
			Me:         prefix + "/me",
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ErrorHandler: writeError,
		Routes: &AuthControllerRoutes{
			Signup:     "/auth/signup",
			Login:      "/auth/login",
			Revalidate: "/auth/revalidate",
			Me:         "/auth/me",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Guard == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// SignupPost handles POST /auth/signup
func (a *AuthController) SignupPost(c router.Context) error {
	payload := new(SignupInput)
	if err := c.Bind(payload); err != nil {
		return a.fail(c, http.StatusBadRequest, ErrValidation)
	}

	if a.Debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload.Normalized().Email))
		fmt.Println("==========================")
	}

	res, err := a.Auther.Signup(c.Context(), *payload)
	if err != nil {
		return a.fail(c, HTTPStatus(err), err)
	}

	return c.JSON(http.StatusCreated, res)
}

// LoginPost handles POST /auth/login
func (a *AuthController) LoginPost(c router.Context) error {
	payload := new(LoginInput)
	if err := c.Bind(payload); err != nil {
		return a.fail(c, http.StatusBadRequest, ErrValidation)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(NormalizeEmail(payload.Email)))
		fmt.Println("=========================")
	}

	res, err := a.Auther.Login(c.Context(), *payload)
	if err != nil {
		return a.fail(c, HTTPStatus(err), err)
	}

	return c.JSON(http.StatusOK, res)
}

// RevalidateGet handles GET /auth/revalidate
func (a *AuthController) RevalidateGet(c router.Context) error {
	user, ok := a.Guard.CurrentUser(c)
	if !ok {
		return a.fail(c, http.StatusUnauthorized, ErrUnableToFindSession)
	}

	res, err := a.Auther.RevalidateToken(user)
	if err != nil {
		return a.fail(c, HTTPStatus(err), err)
	}

	return c.JSON(http.StatusOK, res)
}

// MeGet handles GET /auth/me
func (a *AuthController) MeGet(c router.Context) error {
	user, ok := a.Guard.CurrentUser(c)
	if !ok {
		return a.fail(c, http.StatusUnauthorized, ErrUnableToFindSession)
	}

	if a.Debug {
		fmt.Println("======= AUTH ME ======")
		fmt.Println(print.MaybePrettyJSON(user))
		fmt.Println("======================")
	}

	return c.JSON(http.StatusOK, user)
}

func (a *AuthController) fail(c router.Context, status int, err error) error {
	if status >= http.StatusInternalServerError {
		a.Logger.Error("auth request failed", "path", c.Path(), "error", err)
	} else {
		a.Logger.Debug("auth request rejected", "path", c.Path(), "status", status, "error", err)
	}
	return a.ErrorHandler(c, status, err)
}
