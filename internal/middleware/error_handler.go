package middleware

import (
	"errors"
	"net/http"

	"causalUplift/internal/rest"
	"causalUplift/pkg/logger"

	"github.com/labstack/echo/v4"
)

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := rest.StatusFor(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.Path(), "status", code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, rest.ResponseError{Message: msg})
	}
	if err != nil {
		logger.Error("write error response", "error", err)
	}
}
