package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/api/dto"
	"github.com/RorolRoro/tkg-site/internal/service"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

// StaffTicketsHandler handles the staff ticket surface. Coarse staff gating
// happens in middleware; per-category access is enforced by the service.
type StaffTicketsHandler struct {
	tickets *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: ticketService}
}

// ListCategories GET /api/staff/categories.
func (h *StaffTicketsHandler) ListCategories(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	options := h.tickets.ListManagedCategories(principal)
	items := make([]dto.CategoryOption, 0, len(options))
	for _, option := range options {
		items = append(items, dto.CategoryOption{
			Code:        option.Code,
			Label:       option.Label,
			Description: option.Description,
			SubCategory: option.SubCategory,
			Group:       option.Group,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListStaffTickets GET /api/staff/tickets.
func (h *StaffTicketsHandler) ListStaffTickets(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.ListStaffTickets(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetStaffTicket GET /api/staff/tickets/:id.
func (h *StaffTicketsHandler) GetStaffTicket(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicketForStaff(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// UpdateStatus PATCH /api/staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), principal, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AddStaffMessage POST /api/staff/tickets/:id/messages.
func (h *StaffTicketsHandler) AddStaffMessage(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.AddStaffMessage(c.UserContext(), principal, c.Params("id"), req.Content, attachmentsFromRequest(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// EditMessage PATCH /api/staff/tickets/:id/messages/:messageId.
func (h *StaffTicketsHandler) EditMessage(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.EditMessage(c.UserContext(), principal, c.Params("id"), c.Params("messageId"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}
