package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/service"
)

// CategoriesHandler exposes the distinct category lookups.
type CategoriesHandler struct {
	service *service.TicketService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(ticketService *service.TicketService) *CategoriesHandler {
	return &CategoriesHandler{service: ticketService}
}

// ListCategories GET /categories.
func (h *CategoriesHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// ListSubcategories GET /categories/:category/subcategories.
func (h *CategoriesHandler) ListSubcategories(c *fiber.Ctx) error {
	subcategories, err := h.service.GetAllSubCategories(c.UserContext(), c.Params("category"))
	if err != nil {
		return err
	}
	return c.JSON(subcategories)
}
