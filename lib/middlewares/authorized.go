package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/letsco/splithub/lib/tokens"
)

// Authorized : rejects requests without a valid bearer token with an empty 401
func Authorized(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(auth, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				return c.NoContent(http.StatusUnauthorized)
			}

			clientID, err := tokens.ParseAccessToken(secret, token)
			if err != nil {
				return c.NoContent(http.StatusUnauthorized)
			}

			c.Set("ClientID", clientID)

			return next(c)
		}
	}
}
