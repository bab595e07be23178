package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/events"
	"github.com/RorolRoro/tkg-site/internal/policy"
	"github.com/RorolRoro/tkg-site/internal/repository"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

func newTicketService(t *testing.T) (*TicketService, repository.TicketRepository) {
	t.Helper()
	repo := repository.NewFileTicketRepository(filepath.Join(t.TempDir(), "tickets.json"), zap.NewNop())
	pol := policy.Default()
	pol.TopAllowList = []string{"top-member"}
	registry := policy.NewRegistry(pol)
	return NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Registry:   registry,
		Resolver:   policy.NewResolver(registry, pol),
		Dispatcher: events.NewInMemoryDispatcher(),
	}), repo
}

func player(id string) *domain.Principal {
	return &domain.Principal{
		DiscordID:   id,
		Username:    "player_" + id,
		DisplayName: "Player " + id,
		Role:        domain.RolePlayer,
	}
}

func staff(id string) *domain.Principal {
	return &domain.Principal{
		DiscordID:   id,
		Username:    "staff_" + id,
		DisplayName: "Staff " + id,
		Role:        domain.RoleStaff,
	}
}

func admin(id string) *domain.Principal {
	return &domain.Principal{
		DiscordID:   id,
		Username:    "admin_" + id,
		DisplayName: "Admin " + id,
		Role:        domain.RoleAdmin,
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, code, domainErr.Code)
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _ := newTicketService(t)
	owner := player("owner-1")

	ticket, err := svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "  Besoin d'aide  ",
		Description: "Je ne trouve pas le salon de présentation.",
		Category:    domain.CategoryQuestions,
	})
	require.NoError(t, err)

	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, "Besoin d'aide", ticket.Title)
	require.Equal(t, owner.DiscordID, ticket.OwnerID)
	require.Equal(t, owner.DisplayName, ticket.Owner.DisplayName)

	// The description seeds the thread as its first message.
	require.Len(t, ticket.Messages, 1)
	require.Equal(t, ticket.Description, ticket.Messages[0].Content)
	require.Equal(t, domain.SenderUser, ticket.Messages[0].Sender)
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	owner := player("owner-1")

	_, err := svc.CreateTicket(ctx, owner, TicketCreateInput{
		Title:    "Sans description",
		Category: domain.CategoryQuestions,
	})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.CreateTicket(ctx, owner, TicketCreateInput{
		Title:       "Catégorie inconnue",
		Description: "corps",
		Category:    domain.CategoryCode("BOGUS"),
	})
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestGetTicketForUserOwnership(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	owner := player("owner-1")

	ticket, err := svc.CreateTicket(ctx, owner, TicketCreateInput{
		Title:       "Question",
		Description: "corps",
		Category:    domain.CategoryQuestions,
	})
	require.NoError(t, err)

	got, err := svc.GetTicketForUser(ctx, owner, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, got.ID)

	_, err = svc.GetTicketForUser(ctx, player("owner-2"), ticket.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = svc.GetTicketForUser(ctx, owner, "TCK-MISSING")
	requireCode(t, err, "NOT_FOUND")
}

func TestClosedTicketRejectsAppendAtServiceLayer(t *testing.T) {
	svc, repo := newTicketService(t)
	ctx := context.Background()
	owner := player("owner-1")

	ticket, err := svc.CreateTicket(ctx, owner, TicketCreateInput{
		Title:       "Plainte",
		Description: "corps",
		Category:    domain.CategoryPlainte,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, admin("admin-1"), ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)

	_, err = svc.AddUserMessage(ctx, owner, ticket.ID, "encore un mot", nil)
	requireCode(t, err, "CONFLICT")

	_, err = svc.AddStaffMessage(ctx, staff("staff-1"), ticket.ID, "réponse tardive", nil)
	requireCode(t, err, "CONFLICT")

	// The store below stays permissive: the rule lives in the service.
	_, err = repo.AppendMessage(ctx, ticket.ID, &domain.Message{
		ID:      "MSG-DIRECT01",
		Content: "écrit en direct",
		Sender:  domain.SenderStaff,
	})
	require.NoError(t, err)
}

func TestUpdateStatusIdempotentClose(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, player("owner-1"), TicketCreateInput{
		Title:       "Question",
		Description: "corps",
		Category:    domain.CategoryQuestions,
	})
	require.NoError(t, err)

	actor := staff("staff-1")
	closed, err := svc.UpdateStatus(ctx, actor, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, closed.Status)

	again, err := svc.UpdateStatus(ctx, actor, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, again.Status)

	_, err = svc.UpdateStatus(ctx, actor, ticket.ID, domain.TicketStatus("ARCHIVED"))
	requireCode(t, err, "VALIDATION_FAILED")
}

func TestStaffVisibilityFollowsTiers(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()

	create := func(category domain.CategoryCode) *domain.Ticket {
		ticket, err := svc.CreateTicket(ctx, player("owner-1"), TicketCreateInput{
			Title:       "Ticket " + string(category),
			Description: "corps",
			Category:    category,
		})
		require.NoError(t, err)
		return ticket
	}
	base := create(domain.CategoryPlainte)
	top := create(domain.CategoryRPKCK)

	contains := func(tickets []domain.Ticket, id string) bool {
		for _, ticket := range tickets {
			if ticket.ID == id {
				return true
			}
		}
		return false
	}

	fromStaff, err := svc.ListStaffTickets(ctx, staff("staff-1"))
	require.NoError(t, err)
	require.True(t, contains(fromStaff, base.ID))
	require.False(t, contains(fromStaff, top.ID))

	fromAdmin, err := svc.ListStaffTickets(ctx, admin("admin-1"))
	require.NoError(t, err)
	require.True(t, contains(fromAdmin, base.ID))
	require.True(t, contains(fromAdmin, top.ID))

	allowListed := player("top-member")
	fromAllowed, err := svc.ListStaffTickets(ctx, allowListed)
	require.NoError(t, err)
	require.True(t, contains(fromAllowed, top.ID))

	_, err = svc.GetTicketForStaff(ctx, staff("staff-1"), top.ID)
	requireCode(t, err, "FORBIDDEN")
}

func TestEditMessageRestrictions(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	owner := player("owner-1")
	actor := staff("staff-1")

	ticket, err := svc.CreateTicket(ctx, owner, TicketCreateInput{
		Title:       "Question",
		Description: "corps",
		Category:    domain.CategoryQuestions,
	})
	require.NoError(t, err)

	// The opening message belongs to the user: not editable.
	userMsgID := ticket.Messages[0].ID
	_, err = svc.EditMessage(ctx, actor, ticket.ID, userMsgID, "réécrit")
	requireCode(t, err, "FORBIDDEN")

	withReply, err := svc.AddStaffMessage(ctx, actor, ticket.ID, "première réponse", nil)
	require.NoError(t, err)
	staffMsg := withReply.Messages[len(withReply.Messages)-1]

	edited, err := svc.EditMessage(ctx, actor, ticket.ID, staffMsg.ID, "réponse corrigée")
	require.NoError(t, err)
	got := edited.Messages[len(edited.Messages)-1]
	require.Equal(t, "réponse corrigée", got.Content)
	require.Equal(t, staffMsg.ID, got.ID)
	require.Equal(t, staffMsg.Timestamp, got.Timestamp)

	_, err = svc.EditMessage(ctx, actor, ticket.ID, "MSG-MISSING", "peu importe")
	requireCode(t, err, "NOT_FOUND")

	_, err = svc.UpdateStatus(ctx, actor, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	_, err = svc.EditMessage(ctx, actor, ticket.ID, staffMsg.ID, "trop tard")
	requireCode(t, err, "CONFLICT")
}

func TestListCategoriesOrderedByTier(t *testing.T) {
	svc, _ := newTicketService(t)

	options := svc.ListCategories()
	require.Len(t, options, 9)
	require.Equal(t, domain.CategoryCandidatureClan, options[0].Code)
	require.Equal(t, domain.CategoryQuestions, options[len(options)-1].Code)
}

func TestListManagedCategories(t *testing.T) {
	svc, _ := newTicketService(t)

	codes := func(options []policy.CreationOption) []domain.CategoryCode {
		out := make([]domain.CategoryCode, 0, len(options))
		for _, option := range options {
			out = append(out, option.Code)
		}
		return out
	}

	staffCodes := codes(svc.ListManagedCategories(staff("staff-1")))
	require.Len(t, staffCodes, 7)
	require.NotContains(t, staffCodes, domain.CategoryRPKCK)
	require.NotContains(t, staffCodes, domain.CategoryCandidatureClan)
	require.Contains(t, staffCodes, domain.CategoryPlainte)

	require.Len(t, svc.ListManagedCategories(admin("admin-1")), 9)
	require.Len(t, svc.ListManagedCategories(player("top-member")), 9)
	require.Empty(t, svc.ListManagedCategories(player("someone")))
}

func TestStringPreviewKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("é", 200)
	preview := stringPreview(long, 120)
	require.True(t, utf8.ValidString(preview))
	require.True(t, strings.HasSuffix(preview, "..."))
	require.Equal(t, 120, utf8.RuneCountInString(preview))

	short := "Réclamation déposée"
	require.Equal(t, short, stringPreview(short, 120))
}
