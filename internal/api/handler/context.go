package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/api/middleware"
	"github.com/carbonwallet/leads-service/internal/core/domain"
)

// principalFrom returns the caller verified by the Auth middleware, or the
// zero Principal for unauthenticated requests. Services reject the zero value.
func principalFrom(c echo.Context) domain.Principal {
	p, _ := middleware.Principal(c)
	return p
}
