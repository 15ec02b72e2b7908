package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"sketchbin/internal/handler"
)

// Register wires routes and middleware. Session tokens are opaque bearer
// values resolved inside the services, so there is no auth middleware; every
// handler passes the Authorization header through.
func Register(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Auth
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.POST("/verify", authHandler.Verify)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)

	// Projects
	api.GET("/projects/featured", projectHandler.Featured)
	api.GET("/projects/:code", projectHandler.Get)
	api.POST("/projects", projectHandler.Save)
	api.DELETE("/projects/:code", projectHandler.Delete)
	api.POST("/projects/:code/thumbnail", projectHandler.SaveThumbnail)
	api.GET("/users/:name/projects", projectHandler.UserProjects)

	// Admin
	api.GET("/admin/projects", projectHandler.Admin)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
