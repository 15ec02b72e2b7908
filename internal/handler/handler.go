package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"sketchbin/internal/apperr"
)

// bearerToken extracts the session token from the Authorization header.
// Returns "" for anonymous requests.
func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
}

// respondError renders a domain error as its stable HTTP shape.
func respondError(c echo.Context, err error) error {
	he := apperr.MapErrorToHTTP(err)
	return c.JSON(he.StatusCode, he.ToErrorResponse())
}

func respondMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": message})
}
