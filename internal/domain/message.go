package domain

import (
	"fmt"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single conversation turn. Content may be empty but is never
// absent from a stored record.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the message against the stored-record invariants.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("domain: unknown role %q", m.Role)
	}
	return nil
}

func NewUserMessage(content string, at time.Time) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: at}
}

func NewAssistantMessage(content string, at time.Time) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: at}
}

// NewSystemMessage builds the transient system turn placed at the head of a
// provider request. System messages are assembled per request and never
// persisted, so they carry no timestamp.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}
