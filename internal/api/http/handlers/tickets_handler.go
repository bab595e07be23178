package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/api/dto"
	"github.com/RorolRoro/tkg-site/internal/auth"
	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/service"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListCategories GET /api/categories.
func (h *TicketsHandler) ListCategories(c *fiber.Ctx) error {
	options := h.service.ListCategories()
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

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), principal, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Attachments: attachmentsFromRequest(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListOwnTickets(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicketForUser(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// AddMessage POST /api/tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.AddUserMessage(c.UserContext(), principal, c.Params("id"), req.Content, attachmentsFromRequest(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func callerPrincipal(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func attachmentsFromRequest(in []dto.AttachmentRequest) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, att := range in {
		out = append(out, domain.Attachment{
			Type: att.Type,
			URL:  att.URL,
			Name: att.Name,
		})
	}
	return out
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Category:     ticket.Category,
		Status:       ticket.Status,
		OwnerID:      ticket.OwnerID,
		OwnerName:    ticket.Owner.DisplayName,
		MessageCount: len(ticket.Messages),
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	msgs := make([]dto.MessageResponse, 0, len(ticket.Messages))
	for i := range ticket.Messages {
		msgs = append(msgs, messageResponse(&ticket.Messages[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category,
		Status:      ticket.Status,
		OwnerID:     ticket.OwnerID,
		Owner: dto.OwnerResponse{
			DisplayName:     ticket.Owner.DisplayName,
			Email:           ticket.Owner.Email,
			DiscordID:       ticket.Owner.DiscordID,
			DiscordUsername: ticket.Owner.DiscordUsername,
		},
		Messages:  msgs,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			Type: att.Type,
			URL:  att.URL,
			Name: att.Name,
		})
	}
	return dto.MessageResponse{
		ID:                    msg.ID,
		Content:               msg.Content,
		Sender:                msg.Sender,
		SenderName:            msg.SenderName,
		SenderDiscordID:       msg.SenderDiscordID,
		SenderDiscordUsername: msg.SenderDiscordUsername,
		Timestamp:             msg.Timestamp,
		Attachments:           attachments,
	}
}
