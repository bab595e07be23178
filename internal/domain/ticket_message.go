package domain

import "time"

// MessageSender is the coarse origin tag on a thread message.
type MessageSender string

const (
	SenderUser  MessageSender = "user"
	SenderStaff MessageSender = "staff"
)

// AttachmentType enumerates supported attachment kinds.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentLink  AttachmentType = "link"
)

// Attachment is a descriptive reference to external media. The URL is not
// fetched or validated against its declared type.
type Attachment struct {
	Type AttachmentType
	URL  string
	Name string
}

// Message is a single entry in a ticket thread. Content may be edited in
// place; every other field is immutable after creation.
type Message struct {
	ID                    string
	Content               string
	Sender                MessageSender
	SenderName            string
	SenderDiscordID       string
	SenderDiscordUsername string
	Timestamp             time.Time
	Attachments           []Attachment
}
