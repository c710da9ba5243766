package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
)

// HeaderIdempotencyKey lets a client retry a lead submission safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type LeadHandler struct {
	leadService ports.LeadService
}

func NewLeadHandler(leadService ports.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// Create submits a lead from the public form.
//
// @Summary      Submit a lead
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                 false  "Replay-safe submission key"
// @Param        body             body      ports.SubmitLeadInput  true   "Lead form"
// @Success      201              {object}  domain.Lead
// @Success      200              {object}  domain.Lead  "Replayed submission"
// @Failure      400              {object}  errorResponse
// @Failure      409              {object}  errorResponse  "Same key still in progress"
// @Failure      500              {object}  errorResponse
// @Router       /leads [post]
func (h *LeadHandler) Create(c echo.Context) error {
	var req ports.SubmitLeadInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.IdempotencyKey = strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))

	res, err := h.leadService.Submit(c.Request().Context(), req)
	if err != nil {
		return err
	}

	if res.Replayed {
		return c.JSON(http.StatusOK, res.Lead)
	}
	return c.JSON(http.StatusCreated, res.Lead)
}

// List returns a page of leads, newest first.
//
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Security     BearerAuth
// @Param        skip   query     int  false  "Items to skip"     default(0)   minimum(0)
// @Param        limit  query     int  false  "Page size"         default(50)  minimum(1)  maximum(100)
// @Success      200    {object}  domain.Page
// @Failure      400    {object}  errorResponse
// @Failure      401    {object}  errorResponse
// @Failure      500    {object}  errorResponse
// @Router       /leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	in := ports.ListLeadsInput{
		Skip:   0,
		Limit:  ports.DefaultLeadsLimit,
		Caller: principalFrom(c),
	}

	err := echo.QueryParamsBinder(c).
		Int("skip", &in.Skip).
		Int("limit", &in.Limit).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) {
			return domain.NewValidationError(be.Field, be.Field+" must be an integer")
		}
		return err
	}

	page, err := h.leadService.List(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
