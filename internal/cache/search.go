package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// SearchResult is one full-text search hit over cached messages.
type SearchResult struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	Sender         string    `json:"sender"`
	Subject        string    `json:"subject"`
	Date           time.Time `json:"date"`
	Snippet        string    `json:"snippet"`
}

// SearchMessages performs a full-text search over cached messages using FTS5
func (s *Store) SearchMessages(query string, limit int) ([]SearchResult, error) {
	// Escape query for FTS5
	query = strings.ReplaceAll(query, "\"", "\"\"")
	query = strings.ReplaceAll(query, "'", "''")

	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	sqlQuery := `
		SELECT m.message_id, m.conversation_id, m.sender, m.subject, m.sent_at, m.body
		FROM messages m
		WHERE m.id IN (SELECT rowid FROM messages_fts WHERE messages_fts MATCH ?)
		ORDER BY m.sent_at DESC
		LIMIT ?
	`
	rows, err := s.cache.db.Query(sqlQuery, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to perform FTS search: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var result SearchResult
		var dateStr, body string

		err := rows.Scan(
			&result.MessageID,
			&result.ConversationID,
			&result.Sender,
			&result.Subject,
			&dateStr,
			&body,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		result.Date, err = time.Parse(time.RFC3339, dateStr)
		if err != nil {
			result.Date, err = time.Parse("2006-01-02 15:04:05", dateStr)
			if err != nil {
				result.Date = time.Time{}
			}
		}

		if len(body) > 0 {
			snippet := []rune(body)
			if len(snippet) > 200 {
				result.Snippet = string(snippet[:200]) + "..."
			} else {
				result.Snippet = body
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// SummariesByState counts cached summaries per lifecycle state.
func (s *Store) SummariesByState() (map[types.LifecycleState]int, error) {
	rows, err := s.cache.db.Query(
		"SELECT lifecycle_state, COUNT(*) FROM summaries GROUP BY lifecycle_state",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count summaries: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.LifecycleState]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[types.LifecycleState(state)] = count
	}
	return counts, nil
}
