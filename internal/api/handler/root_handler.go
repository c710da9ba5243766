package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type messageResponse struct {
	Message string `json:"message"`
}

// Root answers the API root.
//
// @Summary      API root
// @Tags         meta
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "Hello World"})
}
