package domain

// Conversation is the ordered message history owned by a single session.
// Insertion order is chronological order; normal operation only ever appends.
type Conversation struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// Append adds a message to the end of the history.
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// Len returns the number of messages in the history.
func (c *Conversation) Len() int {
	return len(c.Messages)
}
