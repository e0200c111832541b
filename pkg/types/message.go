package types

import "time"

// Message is the normalized representation of a single mailbox message.
// The sequence inside a Conversation is sorted by Timestamp on
// construction; source order is never trusted.
type Message struct {
	ID              string    `json:"id"`
	Sender          string    `json:"sender"`
	Recipients      []string  `json:"recipients"`
	Timestamp       time.Time `json:"timestamp"`
	Subject         string    `json:"subject"`
	Body            string    `json:"body"`
	ConversationID  string    `json:"conversation_id"`
	AttachmentCount int       `json:"attachment_count"`
	Read            bool      `json:"read"`
	Flagged         bool      `json:"flagged"`
}

// LifecycleState classifies a conversation by recency of its last message.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateArchived LifecycleState = "archived"
)

// Conversation owns an ordered (oldest-first) sequence of messages
// sharing one conversation identifier.
type Conversation struct {
	ID           string         `json:"id"`
	Messages     []Message      `json:"messages"`
	Participants []string       `json:"participants"`
	DomainFlags  []string       `json:"domain_flags"`
	State        LifecycleState `json:"state"`
}

// LastMessage returns the most recent message in the conversation.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// FirstMessage returns the oldest message in the conversation.
func (c *Conversation) FirstMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[0]
}

// HasFlag reports whether a domain flag is set on the conversation.
func (c *Conversation) HasFlag(flag string) bool {
	for _, f := range c.DomainFlags {
		if f == flag {
			return true
		}
	}
	return false
}
