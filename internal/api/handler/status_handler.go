package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/metrics"
)

type StatusHandler struct {
	statusService ports.StatusService
}

func NewStatusHandler(statusService ports.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

// Create records a status check.
//
// @Summary      Record a status check
// @Tags         status
// @Accept       json
// @Produce      json
// @Param        body  body      statusCheckRequest  true  "Caller identity"
// @Success      200   {object}  domain.StatusCheck
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /status [post]
func (h *StatusHandler) Create(c echo.Context) error {
	var req statusCheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	check, err := h.statusService.Record(c.Request().Context(), req.ClientName)
	if err != nil {
		return err
	}
	metrics.StatusChecksTotal.WithLabelValues("api").Inc()
	return c.JSON(http.StatusOK, check)
}

// List returns recorded status checks.
//
// @Summary      List status checks
// @Tags         status
// @Produce      json
// @Success      200  {array}   domain.StatusCheck
// @Failure      500  {object}  errorResponse
// @Router       /status [get]
func (h *StatusHandler) List(c echo.Context) error {
	checks, err := h.statusService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checks)
}
