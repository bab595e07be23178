package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/content"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

// ContentHandler serves the static site pages (rules, lore, guide).
type ContentHandler struct {
	library *content.Library
}

// NewContentHandler constructs handler.
func NewContentHandler(library *content.Library) *ContentHandler {
	return &ContentHandler{library: library}
}

// List GET /content.
func (h *ContentHandler) List(c *fiber.Ctx) error {
	pages := h.library.List()
	items := make([]fiber.Map, 0, len(pages))
	for _, page := range pages {
		items = append(items, fiber.Map{
			"slug":    page.Slug,
			"title":   page.Title,
			"summary": page.Summary,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /content/:slug.
func (h *ContentHandler) Get(c *fiber.Ctx) error {
	page, ok := h.library.Get(c.Params("slug"))
	if !ok {
		return apperrors.NewNotFound("page", map[string]any{"slug": c.Params("slug")})
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"slug":    page.Slug,
		"title":   page.Title,
		"summary": page.Summary,
		"html":    page.HTML,
	}})
}
