package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Store provides methods for storing and retrieving data from the cache
type Store struct {
	cache  *Cache
	logger *logrus.Logger
}

// NewStore creates a new store instance
func NewStore(cache *Cache, logger *logrus.Logger) *Store {
	return &Store{
		cache:  cache,
		logger: logger,
	}
}

// UpsertMessage upserts a message in the cache
func (s *Store) UpsertMessage(msg *types.Message) error {
	recipientsJSON, err := json.Marshal(msg.Recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients: %w", err)
	}

	query := `
		INSERT INTO messages (message_id, conversation_id, sender, recipients, subject, body, sent_at, attachment_count, read, flagged)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			sender = excluded.sender,
			recipients = excluded.recipients,
			subject = excluded.subject,
			body = excluded.body,
			sent_at = excluded.sent_at,
			attachment_count = excluded.attachment_count,
			read = excluded.read,
			flagged = excluded.flagged,
			cached_at = CURRENT_TIMESTAMP
	`
	_, err = s.cache.db.Exec(query,
		msg.ID,
		msg.ConversationID,
		msg.Sender,
		string(recipientsJSON),
		msg.Subject,
		msg.Body,
		msg.Timestamp.UTC().Format(time.RFC3339),
		msg.AttachmentCount,
		msg.Read,
		msg.Flagged,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message: %w", err)
	}

	return nil
}

// ListMessages returns all cached messages ordered by send time.
func (s *Store) ListMessages() ([]types.Message, error) {
	query := `
		SELECT message_id, conversation_id, sender, recipients, subject, body, sent_at, attachment_count, read, flagged
		FROM messages
		ORDER BY sent_at
	`
	rows, err := s.cache.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}

	return messages, nil
}

// UpsertSummary upserts a conversation summary in the cache
func (s *Store) UpsertSummary(summary *types.ConversationSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `
		INSERT INTO summaries (conversation_id, lifecycle_state, priority_score, priority_level, response_needed, summary_json, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(conversation_id) DO UPDATE SET
			lifecycle_state = excluded.lifecycle_state,
			priority_score = excluded.priority_score,
			priority_level = excluded.priority_level,
			response_needed = excluded.response_needed,
			summary_json = excluded.summary_json,
			analyzed_at = CURRENT_TIMESTAMP
	`
	_, err = s.cache.db.Exec(query,
		summary.ID,
		string(summary.LifecycleState),
		summary.Priority.Score,
		string(summary.Priority.Level),
		summary.Insight.ResponseNeeded,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert summary: %w", err)
	}

	return nil
}

// GetSummary retrieves a conversation summary by conversation id
func (s *Store) GetSummary(conversationID string) (*types.ConversationSummary, error) {
	var summaryJSON string
	err := s.cache.db.QueryRow(
		"SELECT summary_json FROM summaries WHERE conversation_id = ?", conversationID,
	).Scan(&summaryJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("summary not found: %s", conversationID)
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	var summary types.ConversationSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// ListSummaries returns cached summaries ordered by priority score descending
func (s *Store) ListSummaries(limit int) ([]*types.ConversationSummary, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.cache.db.Query(
		"SELECT summary_json FROM summaries ORDER BY priority_score DESC, conversation_id LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*types.ConversationSummary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		var summary types.ConversationSummary
		if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}

	return summaries, nil
}

// MessageIDsForConversation returns the ids of all cached messages of a
// conversation.
func (s *Store) MessageIDsForConversation(conversationID string) ([]string, error) {
	rows, err := s.cache.db.Query(
		"SELECT message_id FROM messages WHERE conversation_id = ? ORDER BY sent_at", conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation messages: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HasMessages checks if there are any cached messages
func (s *Store) HasMessages() (bool, error) {
	var count int
	err := s.cache.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check messages count: %w", err)
	}
	return count > 0, nil
}

func scanMessage(rows *sql.Rows) (*types.Message, error) {
	var msg types.Message
	var recipientsJSON string
	var sentAt string

	err := rows.Scan(
		&msg.ID,
		&msg.ConversationID,
		&msg.Sender,
		&recipientsJSON,
		&msg.Subject,
		&msg.Body,
		&sentAt,
		&msg.AttachmentCount,
		&msg.Read,
		&msg.Flagged,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	msg.Timestamp, err = time.Parse(time.RFC3339, sentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if err := json.Unmarshal([]byte(recipientsJSON), &msg.Recipients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipients: %w", err)
	}

	return &msg, nil
}
