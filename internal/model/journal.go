// Package model defines the core journal data types.
package model

import "time"

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ValidRoles are the roles a Message may carry.
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleAssistant: true,
}

// Message is one immutable chat turn in a day's log.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// JournalEntry is a finalized journal document, one per day.
type JournalEntry struct {
	Date      string    `json:"date"`
	Size      int       `json:"size"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info returns the listing projection of the entry.
func (e JournalEntry) Info() EntryInfo {
	return EntryInfo{Date: e.Date, Size: e.Size, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

// EntryInfo is a journal entry without its content.
type EntryInfo struct {
	Date      string    `json:"date"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchHit is one ranked full-text match.
type SearchHit struct {
	Date    string  `json:"date"`
	Snippet string  `json:"snippet"`
	Rank    float64 `json:"rank"`
}

// ContentSize is the stored size of content: its UTF-8 byte length.
func ContentSize(content string) int {
	return len(content)
}
