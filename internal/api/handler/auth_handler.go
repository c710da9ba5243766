package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// loginRequest is the OAuth2 password-grant form.
type loginRequest struct {
	Username  string `form:"username"   json:"username"   validate:"required"`
	Password  string `form:"password"   json:"password"   validate:"required"`
	GrantType string `form:"grant_type" json:"grant_type" validate:"omitempty,oneof=password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Login exchanges the admin credential for a bearer token.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username    formData  string  true   "Admin username"
// @Param        password    formData  string  true   "Admin password"
// @Param        grant_type  formData  string  false  "Must be \"password\" when present"
// @Success      200         {object}  tokenResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Failure      503         {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresIn:   max(0, int64(time.Until(token.ExpiresAt).Round(time.Second)/time.Second)),
	})
}
