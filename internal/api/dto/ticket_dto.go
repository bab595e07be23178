package dto

import (
	"time"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    domain.CategoryCode `json:"category"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// EditMessageRequest payload.
type EditMessageRequest struct {
	Content string `json:"content"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AttachmentRequest describes attachment input.
type AttachmentRequest struct {
	Type domain.AttachmentType `json:"type"`
	URL  string                `json:"url"`
	Name string                `json:"name"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Category     domain.CategoryCode `json:"category"`
	Status       domain.TicketStatus `json:"status"`
	OwnerID      string              `json:"owner_id"`
	OwnerName    string              `json:"owner_name"`
	MessageCount int                 `json:"message_count"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Category    domain.CategoryCode `json:"category"`
	Status      domain.TicketStatus `json:"status"`
	OwnerID     string              `json:"owner_id"`
	Owner       OwnerResponse       `json:"owner"`
	Messages    []MessageResponse   `json:"messages"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OwnerResponse is the denormalized submitter snapshot.
type OwnerResponse struct {
	DisplayName     string `json:"display_name"`
	Email           string `json:"email,omitempty"`
	DiscordID       string `json:"discord_id,omitempty"`
	DiscordUsername string `json:"discord_username,omitempty"`
}

// MessageResponse represents a thread message.
type MessageResponse struct {
	ID                    string               `json:"id"`
	Content               string               `json:"content"`
	Sender                domain.MessageSender `json:"sender"`
	SenderName            string               `json:"sender_name,omitempty"`
	SenderDiscordID       string               `json:"sender_discord_id,omitempty"`
	SenderDiscordUsername string               `json:"sender_discord_username,omitempty"`
	Timestamp             time.Time            `json:"timestamp"`
	Attachments           []AttachmentResponse `json:"attachments,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	Type domain.AttachmentType `json:"type"`
	URL  string                `json:"url"`
	Name string                `json:"name,omitempty"`
}

// CategoryOption is one entry of the submission form listing.
type CategoryOption struct {
	Code        domain.CategoryCode `json:"code"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	SubCategory string              `json:"sub_category,omitempty"`
	Group       string              `json:"group"`
}
