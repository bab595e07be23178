package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// ValidStatus reports whether s is a member of the closed status enumeration.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// OwnerSnapshot captures the submitter's identity at creation time.
// It is denormalized on purpose and never re-synced with Discord.
type OwnerSnapshot struct {
	DisplayName     string
	Email           string
	DiscordID       string
	DiscordUsername string
}

// Ticket is the aggregate for support requests and applications.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Category    CategoryCode
	Status      TicketStatus
	OwnerID     string
	Owner       OwnerSnapshot
	Messages    []Message
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
