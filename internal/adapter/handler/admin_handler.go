package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"essay-auth/internal/usecase"
)

// AdminHandler serves the administrative surface. Routes using it must sit
// behind the session gate with the admin role required.
type AdminHandler struct {
	list *usecase.ListPrincipals
}

func NewAdminHandler(list *usecase.ListPrincipals) *AdminHandler {
	return &AdminHandler{list: list}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	principals, err := h.list.Execute(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, principals)
}
