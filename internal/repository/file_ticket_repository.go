package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// fileTicketRepository keeps the authoritative ticket collection in memory
// and mirrors it to a single JSON file after every mutation. It backs
// deployments without a Postgres DSN and preserves the site's historical
// persistence format: one array of ticket records, rewritten wholesale.
//
// Flushes are best-effort. A failed flush is logged and absorbed; the
// in-memory state stays authoritative for the rest of the process lifetime.
type fileTicketRepository struct {
	mu      sync.RWMutex
	path    string
	logger  *zap.Logger
	records []ticketRecord
}

// NewFileTicketRepository loads prior state from path when present. A
// missing or unreadable file falls back to the seed records instead of
// failing startup.
func NewFileTicketRepository(path string, logger *zap.Logger) TicketRepository {
	r := &fileTicketRepository{path: path, logger: logger}
	r.load()
	return r
}

// ticketRecord is the on-disk shape. Field names match the historical JSON
// file, including the legacy "type" field some old records carry instead of
// "category".
type ticketRecord struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	LegacyType  string          `json:"type,omitempty"`
	Status      string          `json:"status"`
	OwnerID     string          `json:"ownerId"`
	Owner       ownerRecord     `json:"owner"`
	Messages    []messageRecord `json:"messages"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ownerRecord struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email,omitempty"`
	DiscordID       string `json:"discordId,omitempty"`
	DiscordUsername string `json:"discordUsername,omitempty"`
}

type messageRecord struct {
	ID                    string             `json:"id"`
	Content               string             `json:"content"`
	Sender                string             `json:"sender"`
	SenderName            string             `json:"senderName,omitempty"`
	SenderDiscordID       string             `json:"senderDiscordId,omitempty"`
	SenderDiscordUsername string             `json:"senderDiscordUsername,omitempty"`
	Timestamp             time.Time          `json:"timestamp"`
	Attachments           []attachmentRecord `json:"attachments,omitempty"`
}

type attachmentRecord struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

func (r *fileTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now

	r.records = append(r.records, toRecord(ticket))
	r.flush()
	return nil
}

func (r *fileTicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.records {
		if r.records[i].ID == id {
			return fromRecord(&r.records[i]), nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileTicketRepository) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Ticket, 0, len(r.records))
	for i := range r.records {
		out = append(out, *fromRecord(&r.records[i]))
	}
	return out, nil
}

func (r *fileTicketRepository) ListByOwner(_ context.Context, ownerID string) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Ticket
	for i := range r.records {
		if r.records[i].OwnerID == ownerID {
			out = append(out, *fromRecord(&r.records[i]))
		}
	}
	return out, nil
}

func (r *fileTicketRepository) Update(_ context.Context, id string, patch TicketPatch) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Description != nil {
		record.Description = *patch.Description
	}
	if patch.Category != nil {
		record.Category = string(*patch.Category)
		record.LegacyType = ""
	}
	if patch.Status != nil {
		record.Status = string(*patch.Status)
	}
	record.UpdatedAt = time.Now().UTC()

	r.flush()
	return fromRecord(record), nil
}

func (r *fileTicketRepository) AppendMessage(_ context.Context, id string, msg *domain.Message) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return nil, ErrNotFound
	}

	record.Messages = append(record.Messages, toMessageRecord(msg))
	record.UpdatedAt = time.Now().UTC()

	r.flush()
	return fromRecord(record), nil
}

func (r *fileTicketRepository) EditMessage(_ context.Context, id, messageID, newContent string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := r.find(id)
	if record == nil {
		return nil, ErrNotFound
	}

	edited := false
	for i := range record.Messages {
		if record.Messages[i].ID == messageID {
			record.Messages[i].Content = newContent
			edited = true
			break
		}
	}
	if !edited {
		return nil, ErrNotFound
	}
	record.UpdatedAt = time.Now().UTC()

	r.flush()
	return fromRecord(record), nil
}

// find returns a pointer into the records slice; callers hold the lock.
func (r *fileTicketRepository) find(id string) *ticketRecord {
	for i := range r.records {
		if r.records[i].ID == id {
			return &r.records[i]
		}
	}
	return nil
}

func (r *fileTicketRepository) load() {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn("unable to read ticket file, starting from seed data",
				zap.String("path", r.path), zap.Error(err))
		}
		r.records = seedRecords()
		return
	}

	var records []ticketRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		r.logger.Warn("ticket file is not valid JSON, starting from seed data",
			zap.String("path", r.path), zap.Error(err))
		r.records = seedRecords()
		return
	}
	r.records = records
	r.logger.Info("loaded tickets from file",
		zap.String("path", r.path), zap.Int("count", len(records)))
}

// flush serializes the whole collection back to disk; callers hold the lock.
func (r *fileTicketRepository) flush() {
	raw, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		r.logger.Warn("unable to serialize tickets", zap.Error(err))
		return
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.logger.Warn("unable to create ticket directory",
				zap.String("dir", dir), zap.Error(err))
			return
		}
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		r.logger.Warn("unable to write ticket file",
			zap.String("path", r.path), zap.Error(err))
	}
}

func toRecord(ticket *domain.Ticket) ticketRecord {
	record := ticketRecord{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    string(ticket.Category),
		Status:      string(ticket.Status),
		OwnerID:     ticket.OwnerID,
		Owner: ownerRecord{
			DisplayName:     ticket.Owner.DisplayName,
			Email:           ticket.Owner.Email,
			DiscordID:       ticket.Owner.DiscordID,
			DiscordUsername: ticket.Owner.DiscordUsername,
		},
		Messages:  make([]messageRecord, 0, len(ticket.Messages)),
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
	for i := range ticket.Messages {
		record.Messages = append(record.Messages, toMessageRecord(&ticket.Messages[i]))
	}
	return record
}

func toMessageRecord(msg *domain.Message) messageRecord {
	record := messageRecord{
		ID:                    msg.ID,
		Content:               msg.Content,
		Sender:                string(msg.Sender),
		SenderName:            msg.SenderName,
		SenderDiscordID:       msg.SenderDiscordID,
		SenderDiscordUsername: msg.SenderDiscordUsername,
		Timestamp:             msg.Timestamp,
	}
	for _, att := range msg.Attachments {
		record.Attachments = append(record.Attachments, attachmentRecord{
			Type: string(att.Type),
			URL:  att.URL,
			Name: att.Name,
		})
	}
	return record
}

// fromRecord maps a stored record to the domain type, normalizing the legacy
// "type" field into Category. Nothing above the repository ever sees "type".
func fromRecord(record *ticketRecord) *domain.Ticket {
	category := record.Category
	if category == "" {
		category = record.LegacyType
	}

	ticket := &domain.Ticket{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		Category:    domain.CategoryCode(category),
		Status:      domain.TicketStatus(record.Status),
		OwnerID:     record.OwnerID,
		Owner: domain.OwnerSnapshot{
			DisplayName:     record.Owner.DisplayName,
			Email:           record.Owner.Email,
			DiscordID:       record.Owner.DiscordID,
			DiscordUsername: record.Owner.DiscordUsername,
		},
		Messages:  make([]domain.Message, 0, len(record.Messages)),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	for i := range record.Messages {
		msgRecord := &record.Messages[i]
		msg := domain.Message{
			ID:                    msgRecord.ID,
			Content:               msgRecord.Content,
			Sender:                domain.MessageSender(msgRecord.Sender),
			SenderName:            msgRecord.SenderName,
			SenderDiscordID:       msgRecord.SenderDiscordID,
			SenderDiscordUsername: msgRecord.SenderDiscordUsername,
			Timestamp:             msgRecord.Timestamp,
		}
		for _, att := range msgRecord.Attachments {
			msg.Attachments = append(msg.Attachments, domain.Attachment{
				Type: domain.AttachmentType(att.Type),
				URL:  att.URL,
				Name: att.Name,
			})
		}
		ticket.Messages = append(ticket.Messages, msg)
	}
	return ticket
}

// seedRecords are the sample tickets a fresh deployment starts with.
func seedRecords() []ticketRecord {
	created := time.Date(2024, time.March, 12, 18, 30, 0, 0, time.UTC)
	return []ticketRecord{
		{
			ID:          "TCK-SEED0001",
			Title:       "Question sur les règles de combat",
			Description: "Bonjour, je ne comprends pas la règle sur les combats de masse. Pouvez-vous m'expliquer ?",
			Category:    string(domain.CategoryQuestions),
			Status:      string(domain.TicketStatusOpen),
			OwnerID:     "100000000000000001",
			Owner: ownerRecord{
				DisplayName:     "Aldric",
				DiscordID:       "100000000000000001",
				DiscordUsername: "aldric_rp",
			},
			Messages: []messageRecord{
				{
					ID:         "MSG-SEED0001",
					Content:    "Bonjour, je ne comprends pas la règle sur les combats de masse. Pouvez-vous m'expliquer ?",
					Sender:     string(domain.SenderUser),
					SenderName: "Aldric",
					Timestamp:  created,
				},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			ID:          "TCK-SEED0002",
			Title:       "Réclamation suite à un avertissement",
			Description: "Je conteste l'avertissement reçu lors de l'événement de samedi.",
			LegacyType:  string(domain.CategoryReclamation),
			Status:      string(domain.TicketStatusClosed),
			OwnerID:     "100000000000000002",
			Owner: ownerRecord{
				DisplayName:     "Mira",
				DiscordID:       "100000000000000002",
				DiscordUsername: "mira_von_dale",
			},
			Messages: []messageRecord{
				{
					ID:         "MSG-SEED0002",
					Content:    "Je conteste l'avertissement reçu lors de l'événement de samedi.",
					Sender:     string(domain.SenderUser),
					SenderName: "Mira",
					Timestamp:  created.Add(time.Hour),
				},
				{
					ID:         "MSG-SEED0003",
					Content:    "Après vérification, l'avertissement est maintenu. N'hésite pas à rouvrir un ticket si besoin.",
					Sender:     string(domain.SenderStaff),
					SenderName: "Staff",
					Timestamp:  created.Add(2 * time.Hour),
				},
			},
			CreatedAt: created.Add(time.Hour),
			UpdatedAt: created.Add(2 * time.Hour),
		},
	}
}
