package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the pgx-backed repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

const ticketColumns = `id, title, description, category, status, owner_id,
       owner_name, owner_email, owner_discord_id, owner_discord_username,
       created_at, updated_at`

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (id, title, description, category, status, owner_id,
            owner_name, owner_email, owner_discord_id, owner_discord_username)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.OwnerID,
		ticket.Owner.DisplayName,
		ticket.Owner.Email,
		ticket.Owner.DiscordID,
		ticket.Owner.DiscordUsername,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	for i := range ticket.Messages {
		if err := insertMessage(ctx, tx, ticket.ID, &ticket.Messages[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	msgs, err := r.loadMessages(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	ticket.Messages = msgs[id]
	return ticket, nil
}

func (r *postgresTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets ORDER BY created_at DESC`, ticketColumns)
	return r.listTickets(ctx, query)
}

func (r *postgresTicketRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE owner_id=$1 ORDER BY created_at DESC`, ticketColumns)
	return r.listTickets(ctx, query, ownerID)
}

func (r *postgresTicketRepository) Update(ctx context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	if patch.Category != nil {
		args = append(args, *patch.Category)
		sets = append(sets, fmt.Sprintf("category=$%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresTicketRepository) AppendMessage(ctx context.Context, id string, msg *domain.Message) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if err := insertMessage(ctx, tx, id, msg); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresTicketRepository) EditMessage(ctx context.Context, id, messageID, newContent string) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx,
		`UPDATE ticket_messages SET content=$1 WHERE ticket_id=$2 AND id=$3`,
		newContent, id, messageID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if _, err := tx.Exec(ctx, `UPDATE tickets SET updated_at=NOW() WHERE id=$1`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postgresTicketRepository) listTickets(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	var ids []string
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
		ids = append(ids, ticket.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return tickets, nil
	}

	msgs, err := r.loadMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tickets {
		tickets[i].Messages = msgs[tickets[i].ID]
	}
	return tickets, nil
}

func (r *postgresTicketRepository) loadMessages(ctx context.Context, ticketIDs []string) (map[string][]domain.Message, error) {
	const query = `
        SELECT ticket_id, id, content, sender, sender_name, sender_discord_id,
               sender_discord_username, attachments, created_at
        FROM ticket_messages WHERE ticket_id = ANY($1) ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Message, len(ticketIDs))
	for rows.Next() {
		var ticketID string
		var msg domain.Message
		var attachments []byte
		if err := rows.Scan(
			&ticketID,
			&msg.ID,
			&msg.Content,
			&msg.Sender,
			&msg.SenderName,
			&msg.SenderDiscordID,
			&msg.SenderDiscordUsername,
			&attachments,
			&msg.Timestamp,
		); err != nil {
			return nil, err
		}
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &msg.Attachments); err != nil {
				return nil, fmt.Errorf("decode attachments for message %s: %w", msg.ID, err)
			}
		}
		out[ticketID] = append(out[ticketID], msg)
	}
	return out, rows.Err()
}

func insertMessage(ctx context.Context, tx pgx.Tx, ticketID string, msg *domain.Message) error {
	attachments, err := json.Marshal(msg.Attachments)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_messages (id, ticket_id, content, sender, sender_name,
            sender_discord_id, sender_discord_username, attachments, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = tx.Exec(ctx, query,
		msg.ID,
		ticketID,
		msg.Content,
		msg.Sender,
		msg.SenderName,
		msg.SenderDiscordID,
		msg.SenderDiscordUsername,
		attachments,
		msg.Timestamp,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Status,
		&ticket.OwnerID,
		&ticket.Owner.DisplayName,
		&ticket.Owner.Email,
		&ticket.Owner.DiscordID,
		&ticket.Owner.DiscordUsername,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
