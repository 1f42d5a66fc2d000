package middleware

import (
	"net/http"
	"strings"
	"time"

	"causalUplift/internal/rest"
	"causalUplift/pkg/logger"
	"causalUplift/pkg/utils"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware checks a bearer JWT signed with secret and stores the
// caller's id and role on the context.
func AuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, rest.ResponseError{Message: "missing authorization header"})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, rest.ResponseError{Message: "invalid authorization format"})
			}

			claims, err := utils.ParseJWT(tokenParts[1], secret)
			if err != nil {
				logger.Debug("rejecting token", "error", err)
				return c.JSON(http.StatusUnauthorized, rest.ResponseError{Message: "invalid token"})
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || expAt == nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusForbidden, rest.ResponseError{Message: "token expired"})
			}

			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// AnalystOrAdmin limits a route to callers allowed to trigger evaluation runs.
func AnalystOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok {
				return c.JSON(http.StatusForbidden, rest.ResponseError{Message: "invalid role"})
			}
			switch strings.ToUpper(roleStr) {
			case utils.RoleAnalyst, utils.RoleAdmin:
				return next(c)
			}
			return c.JSON(http.StatusForbidden, rest.ResponseError{Message: "analyst access required"})
		}
	}
}
