package middleware // reusable HTTP middleware for the echo server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-favorites/internal/utils"
)

// JWTAuth validates the Bearer access token on every request and stores the
// authenticated user id (uint64) under UserIDKey.  Expired, forged and
// malformed tokens all get the same 401 body so callers cannot tell which
// check failed; the precise cause is only logged.
func JWTAuth(secret string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			uid, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				log.Debug().Err(err).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("token rejected")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(UserIDKey, uid)
			return next(c)
		}
	}
}
