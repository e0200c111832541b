package analyzer

import (
	"fmt"
	"strings"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Summarizer produces an executive summary for a conversation. The
// heuristic implementation is always used; an external machine-learning
// summarizer may be supplied as an optional enrichment, but scoring and
// template selection never depend on it.
type Summarizer interface {
	Summarize(conv *types.Conversation, ins types.Insight) (string, error)
}

// HeuristicSummarizer builds a deterministic rule-based summary from the
// conversation metadata and insight signals.
type HeuristicSummarizer struct{}

// NewHeuristicSummarizer creates the rule-based summarizer.
func NewHeuristicSummarizer() *HeuristicSummarizer {
	return &HeuristicSummarizer{}
}

// Summarize never fails; the error return satisfies the Summarizer
// interface shared with external implementations.
func (h *HeuristicSummarizer) Summarize(conv *types.Conversation, ins types.Insight) (string, error) {
	first := conv.FirstMessage()
	last := conv.LastMessage()
	if first == nil || last == nil {
		return "Empty conversation.", nil
	}

	days := int(last.Timestamp.Sub(first.Timestamp).Hours() / 24)
	parts := []string{
		fmt.Sprintf("Conversation with %d messages over %d days involving %d participants.",
			len(conv.Messages), days, len(conv.Participants)),
	}

	if conv.HasFlag(string(config.CategoryUrgent)) {
		parts = append(parts, "Thread contains urgent items.")
	}
	if conv.HasFlag(string(config.CategoryDelay)) {
		parts = append(parts, "Thread discusses delays.")
	}
	if ins.ResponseNeeded {
		parts = append(parts, fmt.Sprintf("A response to %s is outstanding.", ins.LastResponder))
	}
	if issues := countIssues(ins); issues > 0 {
		parts = append(parts, fmt.Sprintf("Identified %d potential issues requiring attention.", issues))
	}

	return strings.Join(parts, " "), nil
}

func countIssues(ins types.Insight) int {
	n := 0
	for _, point := range ins.DiscussionPoints {
		if point.Category == string(config.CategoryIssue) {
			n++
		}
	}
	return n
}
