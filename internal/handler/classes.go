package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/course-booking/internal/service"
)

// CatalogHandler serves the flattened class catalog.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	if catalog == nil {
		panic("nil catalog service passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog}
}

// List handles GET /classes?search=&count=.
func (h *CatalogHandler) List(c echo.Context) error {
	limit, err := queryLimit(c)
	if err != nil {
		return fail(c, err)
	}
	classes, err := h.Catalog.ListClasses(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, classes)
}

// Total handles GET /classes/total.
func (h *CatalogHandler) Total(c echo.Context) error {
	n, err := h.Catalog.CountClasses(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"totalClasses": n})
}

// Top handles GET /classes/top.
func (h *CatalogHandler) Top(c echo.Context) error {
	top, err := h.Catalog.TopClasses(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, top)
}
