package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
)

const principalKey = "principal"

// Auth validates the bearer token and injects the verified principal into
// the context.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "missing authorization header", nil)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return unauthorized(c, "invalid authorization header", nil)
			}

			principal, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return unauthorized(c, "invalid token", err)
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal set by Auth.
func Principal(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok && !p.IsZero()
}

func unauthorized(c echo.Context, msg string, cause error) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	he := echo.NewHTTPError(http.StatusUnauthorized, msg)
	if cause != nil {
		he = he.SetInternal(cause)
	}
	return he
}
