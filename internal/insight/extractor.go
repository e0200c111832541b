package insight

import (
	"regexp"
	"strings"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Extractor derives response-ownership signals, a bounded conversation
// flow excerpt, and tagged discussion highlights from a conversation's
// message sequence.
type Extractor struct {
	cfg *config.Config
}

// NewExtractor creates a new insight extractor.
func NewExtractor(cfg *config.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract computes the insight for one conversation. Empty or
// unparseable bodies degrade to no-signal values; the result is always a
// valid Insight, never an error.
func (e *Extractor) Extract(conv *types.Conversation) types.Insight {
	result := types.Insight{}
	last := conv.LastMessage()
	if last == nil {
		return result
	}

	result.LastResponder = last.Sender
	result.ResponseNeeded = e.responseNeeded(last)
	result.WaitingOn = e.waitingOn(conv)
	result.Flow = e.flow(conv)
	result.DiscussionPoints = e.discussionPoints(conv)
	return result
}

// responseNeeded is true when the last message carries an interrogative
// marker or request phrase and was not sent by the configured self
// identity. A self-authored question never needs a self-response.
func (e *Extractor) responseNeeded(last *types.Message) bool {
	if strings.EqualFold(last.Sender, e.cfg.SelfIdentity) {
		return false
	}
	text := last.Subject + " " + last.Body
	if strings.Contains(text, "?") {
		return true
	}
	return e.cfg.Lexicons.Matches(text, config.CategoryRequest)
}

// waitingOn scans the last message (or the second-to-last when the last
// body is empty) for dependency phrases and returns the first matching
// sentence, trimmed to the configured snippet length.
func (e *Extractor) waitingOn(conv *types.Conversation) string {
	body := conv.LastMessage().Body
	if strings.TrimSpace(body) == "" && len(conv.Messages) > 1 {
		body = conv.Messages[len(conv.Messages)-2].Body
	}

	for _, sentence := range splitSentences(body) {
		if e.cfg.Lexicons.Matches(sentence, config.CategoryWaiting) {
			return truncate(collapse(sentence), e.cfg.SnippetLength)
		}
	}
	return ""
}

// flow returns the last N messages in reverse chronological order, each
// reduced to a timestamped preview.
func (e *Extractor) flow(conv *types.Conversation) []types.FlowEntry {
	n := e.cfg.FlowWindow
	if n > len(conv.Messages) {
		n = len(conv.Messages)
	}

	entries := make([]types.FlowEntry, 0, n)
	for i := len(conv.Messages) - 1; i >= len(conv.Messages)-n; i-- {
		msg := conv.Messages[i]
		entries = append(entries, types.FlowEntry{
			Timestamp: msg.Timestamp,
			Sender:    msg.Sender,
			Preview:   truncate(collapse(msg.Body), e.cfg.PreviewLength),
		})
	}
	return entries
}

// discussionPoints retains every sentence containing a category keyword,
// tagged with the first matching category and the originating sender.
// Output follows chronological message order; near-identical sentences
// are suppressed, keeping the first occurrence.
func (e *Extractor) discussionPoints(conv *types.Conversation) []types.DiscussionPoint {
	var points []types.DiscussionPoint
	seen := make(map[string]struct{})

	for _, msg := range conv.Messages {
		for _, sentence := range splitSentences(msg.Body) {
			cat := e.firstCategory(sentence)
			if cat == "" {
				continue
			}
			norm := strings.ToLower(collapse(sentence))
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			points = append(points, types.DiscussionPoint{
				Category: string(cat),
				Sender:   msg.Sender,
				Text:     collapse(sentence),
			})
		}
	}
	return points
}

func (e *Extractor) firstCategory(sentence string) config.Category {
	for _, cat := range config.DiscussionCategories {
		if e.cfg.Lexicons.Matches(sentence, cat) {
			return cat
		}
	}
	return ""
}

// splitSentences splits text on sentence-terminal punctuation and drops
// blank fragments.
func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// collapse trims text and folds runs of whitespace into single spaces.
func collapse(text string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(text), " ")
}

// truncate bounds text to limit characters, never splitting a multi-byte
// character.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
