package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/events"
	"github.com/RorolRoro/tkg-site/internal/policy"
	"github.com/RorolRoro/tkg-site/internal/repository"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

// TicketService coordinates ticket workflows. It is the enforcing layer:
// the repository below it performs no validation and no permission checks.
type TicketService struct {
	tickets    repository.TicketRepository
	registry   *policy.Registry
	resolver   *policy.Resolver
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Registry   *policy.Registry
	Resolver   *policy.Resolver
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.CategoryCode
	Attachments []domain.Attachment
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		registry:   deps.Registry,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// ListCategories returns the submission form options. Submission is open to
// every authenticated caller; tiers gate visibility, not creation.
func (s *TicketService) ListCategories() []policy.CreationOption {
	return s.registry.ListForCreation()
}

// ListManagedCategories returns the categories whose tickets the caller may
// manage, backing the staff view's category filter.
func (s *TicketService) ListManagedCategories(principal *domain.Principal) []policy.CreationOption {
	permitted := make(map[domain.CategoryCode]struct{})
	for _, code := range s.resolver.PermittedCategories(principal.DiscordID, principal.Role) {
		permitted[code] = struct{}{}
	}

	options := s.registry.ListForCreation()
	out := make([]policy.CreationOption, 0, len(options))
	for _, option := range options {
		if _, ok := permitted[option.Code]; ok {
			out = append(out, option)
		}
	}
	return out
}

// CreateTicket validates input and creates a ticket owned by the caller.
// The description becomes the thread's first message.
func (s *TicketService) CreateTicket(ctx context.Context, principal *domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if _, ok := s.registry.Lookup(input.Category); !ok {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{
			"category": string(input.Category),
		})
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:          generateTicketID(),
		Title:       title,
		Description: description,
		Category:    input.Category,
		Status:      domain.TicketStatusOpen,
		OwnerID:     principal.DiscordID,
		Owner: domain.OwnerSnapshot{
			DisplayName:     principal.DisplayName,
			Email:           principal.Email,
			DiscordID:       principal.DiscordID,
			DiscordUsername: principal.Username,
		},
		Messages: []domain.Message{
			{
				ID:                    generateMessageID(),
				Content:               description,
				Sender:                domain.SenderUser,
				SenderName:            principal.DisplayName,
				SenderDiscordID:       principal.DiscordID,
				SenderDiscordUsername: principal.Username,
				Timestamp:             now,
				Attachments:           input.Attachments,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFromPrincipal(principal),
		Payload: events.TicketCreatedPayload{
			Category: ticket.Category,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// ListOwnTickets returns every ticket the caller created.
func (s *TicketService) ListOwnTickets(ctx context.Context, principal *domain.Principal) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByOwner(ctx, principal.DiscordID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, principal *domain.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != principal.DiscordID {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	return ticket, nil
}

// AddUserMessage appends a message by the ticket owner. Closed tickets
// reject appends here; the store itself stays permissive.
func (s *TicketService) AddUserMessage(ctx context.Context, principal *domain.Principal, ticketID, content string, attachments []domain.Attachment) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != principal.DiscordID {
		return nil, apperrors.NewForbidden("not your ticket")
	}
	return s.appendMessage(ctx, principal, ticket, content, attachments, domain.SenderUser)
}

// ListStaffTickets returns the tickets whose category the caller may manage.
// This is a linear filter over the full snapshot.
func (s *TicketService) ListStaffTickets(ctx context.Context, principal *domain.Principal) ([]domain.Ticket, error) {
	all, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	visible := make([]domain.Ticket, 0, len(all))
	for _, ticket := range all {
		if s.resolver.CanAccess(principal.DiscordID, principal.Role, ticket.Category) {
			visible = append(visible, ticket)
		}
	}
	return visible, nil
}

// GetTicketForStaff fetches a ticket ensuring category access.
func (s *TicketService) GetTicketForStaff(ctx context.Context, principal *domain.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.resolver.CanAccess(principal.DiscordID, principal.Role, ticket.Category) {
		return nil, apperrors.NewForbidden("category not accessible")
	}
	return ticket, nil
}

// UpdateStatus sets a ticket's status. Transitions are caller-driven; the
// only constraint is membership in the status enumeration, so re-closing a
// closed ticket is an idempotent no-op.
func (s *TicketService) UpdateStatus(ctx context.Context, principal *domain.Principal, ticketID string, newStatus domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{
			"status": string(newStatus),
		})
	}
	ticket, err := s.GetTicketForStaff(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	updated, err := s.tickets.Update(ctx, ticket.ID, repository.TicketPatch{Status: &newStatus})
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if oldStatus != newStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    actorFromPrincipal(principal),
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: newStatus,
			},
		})
	}
	return updated, nil
}

// AddStaffMessage appends a staff reply to a ticket the caller may manage.
func (s *TicketService) AddStaffMessage(ctx context.Context, principal *domain.Principal, ticketID, content string, attachments []domain.Attachment) (*domain.Ticket, error) {
	ticket, err := s.GetTicketForStaff(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	return s.appendMessage(ctx, principal, ticket, content, attachments, domain.SenderStaff)
}

// EditMessage replaces a message's content in place. Only staff-authored
// messages on non-closed tickets are editable; the restriction lives here,
// server-side, not just in the UI.
func (s *TicketService) EditMessage(ctx context.Context, principal *domain.Principal, ticketID, messageID, newContent string) (*domain.Ticket, error) {
	newContent = strings.TrimSpace(newContent)
	if newContent == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}

	ticket, err := s.GetTicketForStaff(ctx, principal, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}

	var target *domain.Message
	for i := range ticket.Messages {
		if ticket.Messages[i].ID == messageID {
			target = &ticket.Messages[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewNotFound("message", map[string]any{"message_id": messageID})
	}
	if target.Sender != domain.SenderStaff {
		return nil, apperrors.NewForbidden("only staff messages can be edited")
	}

	updated, err := s.tickets.EditMessage(ctx, ticket.ID, messageID, newContent)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageEdited,
		TicketID: ticket.ID,
		Actor:    actorFromPrincipal(principal),
		Payload:  events.TicketMessageEditedPayload{MessageID: messageID},
	})
	return updated, nil
}

func (s *TicketService) appendMessage(ctx context.Context, principal *domain.Principal, ticket *domain.Ticket, content string, attachments []domain.Attachment, sender domain.MessageSender) (*domain.Ticket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("content required", nil)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}

	msg := &domain.Message{
		ID:                    generateMessageID(),
		Content:               content,
		Sender:                sender,
		SenderName:            principal.DisplayName,
		SenderDiscordID:       principal.DiscordID,
		SenderDiscordUsername: principal.Username,
		Timestamp:             time.Now().UTC(),
		Attachments:           attachments,
	}

	updated, err := s.tickets.AppendMessage(ctx, ticket.ID, msg)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    actorFromPrincipal(principal),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			Sender:      sender,
			BodyPreview: stringPreview(content, 120),
		},
	})
	return updated, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return ticket, nil
}

func (s *TicketService) mapRepoError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", nil)
	}
	return apperrors.MapError(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFromPrincipal(principal *domain.Principal) events.Actor {
	return events.Actor{
		DiscordID: principal.DiscordID,
		Name:      principal.DisplayName,
		Role:      principal.Role,
	}
}

func generateTicketID() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func generateMessageID() string {
	return "MSG-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// stringPreview truncates to max runes, never splitting a multi-byte
// character.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
