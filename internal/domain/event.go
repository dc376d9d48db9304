package domain

import "time"

// Event is one tracked message.
type Event struct {
	ID        int64
	UserID    int64 // internal user id
	Title     string
	Payload   Payload
	EventTime time.Time // UTC
	MessageID int64     // Telegram message id, unique per user
}

// Payload is the structured data stored alongside an event.
type Payload struct {
	Text         string   `json:"text"`
	Title        string   `json:"tracker_title"`
	Tags         []string `json:"tracker_tags"`
	MessageID    int64    `json:"message_id"`
	ChatID       int64    `json:"chat_id"`
	BotMessageID *int     `json:"bot_message_id"`
}

// Row is the projection of an event used by the day log and the report.
type Row struct {
	At    time.Time
	Title string
	Tags  []string
}

// Apply re-extracts title and tags from text and stores them on the event.
func (e *Event) Apply(text string) {
	title, tags := ExtractTags(text)
	e.Title = title
	e.Payload.Text = text
	e.Payload.Title = title
	e.Payload.Tags = tags
}
