package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/handler"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that renders every
// error in the response envelope. Unexpected errors are logged with the
// request context and reach the client only as "internal server error".
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, internal := handler.ResolveError(err)
		if internal {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}

		env := handler.Envelope{Status: code, Message: msg, Success: false}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, env)
	}
}
