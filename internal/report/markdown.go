package report

import (
	"fmt"
	"strings"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

const timeLayout = "2006-01-02 15:04"

// FormatMarkdown renders one conversation summary as a Markdown document.
// It is pure presentation: every section is populated from the summary
// record without additional computation.
func FormatMarkdown(s *types.ConversationSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversation %s\n\n", s.ID)

	b.WriteString("## Thread Information\n\n")
	fmt.Fprintf(&b, "- **Messages**: %d\n", s.MessageCount)
	fmt.Fprintf(&b, "- **Participants**: %s\n", strings.Join(s.Participants, ", "))
	fmt.Fprintf(&b, "- **Date Range**: %s to %s\n", s.DateRange.Start.Format(timeLayout), s.DateRange.End.Format(timeLayout))
	fmt.Fprintf(&b, "- **State**: %s\n", s.LifecycleState)
	if len(s.DomainFlags) > 0 {
		fmt.Fprintf(&b, "- **Flags**: %s\n", strings.Join(s.DomainFlags, " | "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Priority: %s (%d/100)\n\n", s.Priority.Level, s.Priority.Score)
	for _, factor := range s.Priority.Factors {
		fmt.Fprintf(&b, "- %s\n", factor)
	}
	if s.Priority.HotSoon {
		b.WriteString("- deadline approaching\n")
	}
	b.WriteString("\n")

	if s.ExecutiveSummary != "" {
		b.WriteString("## Executive Summary\n\n")
		b.WriteString(s.ExecutiveSummary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Conversation Insights\n\n")
	if s.Insight.ResponseNeeded {
		b.WriteString("**Response needed**\n\n")
	}
	if s.Insight.LastResponder != "" {
		fmt.Fprintf(&b, "**Last Response From**: %s\n\n", s.Insight.LastResponder)
	}
	if s.Insight.WaitingOn != "" {
		fmt.Fprintf(&b, "**Waiting On**: %s\n\n", s.Insight.WaitingOn)
	}

	if len(s.Insight.Flow) > 0 {
		b.WriteString("### Recent Conversation Flow\n\n")
		for _, entry := range s.Insight.Flow {
			fmt.Fprintf(&b, "**%s** - %s\n", entry.Timestamp.Format(timeLayout), entry.Sender)
			fmt.Fprintf(&b, "> %s\n\n", entry.Preview)
		}
	}

	if len(s.Insight.DiscussionPoints) > 0 {
		b.WriteString("### Key Discussion Points\n\n")
		for _, point := range s.Insight.DiscussionPoints {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", point.Category, point.Sender, point.Text)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Suggested Reply Template\n\n")
	fmt.Fprintf(&b, "Variant: %s\n\n", s.ReplyTemplate.Variant)
	fmt.Fprintf(&b, "Subject: %s\n\n", s.ReplyTemplate.Subject)
	b.WriteString("```\n")
	b.WriteString(s.ReplyTemplate.Body)
	b.WriteString("\n```\n")

	return b.String()
}
