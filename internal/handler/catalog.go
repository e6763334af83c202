package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sonicalchemist/api/internal/catalog"
	"github.com/sonicalchemist/api/pkg/response"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// List handles GET /api/catalog
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	return response.OK(c, h.catalog)
}
