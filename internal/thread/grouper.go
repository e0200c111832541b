package thread

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Grouper partitions a flat message collection into conversations by
// conversation identifier.
type Grouper struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewGrouper creates a new grouper.
func NewGrouper(cfg *config.Config, logger *logrus.Logger) *Grouper {
	return &Grouper{
		cfg:    cfg,
		logger: logger,
	}
}

// Group partitions messages into conversations. Groups smaller than the
// configured minimum size are dropped entirely. Every retained message
// belongs to exactly one conversation.
//
// Messages missing a timestamp or sender are excluded with a recorded
// warning, never silently merged. A message with an empty conversation
// identifier becomes a singleton group keyed by its own id so it is never
// absorbed into an unrelated group; singletons are still subject to the
// minimum-size filter.
func (g *Grouper) Group(messages []types.Message) map[string]*types.Conversation {
	groups := make(map[string][]types.Message)

	for _, msg := range messages {
		if msg.Timestamp.IsZero() || msg.Sender == "" {
			g.logger.WithFields(logrus.Fields{
				"message_id": msg.ID,
				"subject":    msg.Subject,
			}).Warn("Excluding malformed message from grouping")
			continue
		}

		key := msg.ConversationID
		if key == "" {
			key = msg.ID
			if key == "" {
				key = uuid.NewString()
			}
		}
		groups[key] = append(groups[key], msg)
	}

	conversations := make(map[string]*types.Conversation)
	for id, msgs := range groups {
		if len(msgs) < g.cfg.MinThreadSize {
			continue
		}
		conversations[id] = g.buildConversation(id, msgs)
	}

	g.logger.WithFields(logrus.Fields{
		"conversations": len(conversations),
		"groups":        len(groups),
		"min_size":      g.cfg.MinThreadSize,
	}).Info("Grouped messages into conversations")

	return conversations
}

// buildConversation sorts the group oldest-first and derives participants
// and domain flags. The sort is stable: ties keep original arrival order.
func (g *Grouper) buildConversation(id string, msgs []types.Message) *types.Conversation {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})

	var participants []string
	seen := make(map[string]struct{})
	for _, msg := range msgs {
		if _, ok := seen[msg.Sender]; !ok {
			seen[msg.Sender] = struct{}{}
			participants = append(participants, msg.Sender)
		}
	}

	return &types.Conversation{
		ID:           id,
		Messages:     msgs,
		Participants: participants,
		DomainFlags:  g.domainFlags(msgs),
		State:        types.StateActive,
	}
}

// domainFlags derives the conversation's tag set from keyword matches
// across all subjects and bodies.
func (g *Grouper) domainFlags(msgs []types.Message) []string {
	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(msg.Subject)
		b.WriteString(" ")
		b.WriteString(msg.Body)
		b.WriteString(" ")
	}
	text := b.String()

	var flags []string
	for _, cat := range []config.Category{
		config.CategoryUrgent,
		config.CategoryDelay,
		config.CategoryTransport,
		config.CategoryCustoms,
	} {
		if g.cfg.Lexicons.Matches(text, cat) {
			flags = append(flags, string(cat))
		}
	}
	return flags
}
