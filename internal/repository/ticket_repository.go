package repository

import (
	"context"
	"errors"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// ErrNotFound is returned when the requested ticket or message id does not
// exist. Repositories never panic for expected conditions.
var ErrNotFound = errors.New("not found")

// TicketPatch carries the fields a ticket update may change. Nil fields are
// left untouched; updated_at is always refreshed.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *domain.CategoryCode
	Status      *domain.TicketStatus
}

// TicketRepository encapsulates ticket persistence. It performs no
// validation and no permission checks; callers enforce both before invoking
// it. Filtering beyond owner is the caller's responsibility.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error)
	Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error)
	AppendMessage(ctx context.Context, id string, msg *domain.Message) (*domain.Ticket, error)
	EditMessage(ctx context.Context, id, messageID, newContent string) (*domain.Ticket, error)
}
