package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// WriteOverview renders a terminal table of the analyzed conversations,
// one row per summary, in the order supplied.
func WriteOverview(w io.Writer, summaries []*types.ConversationSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Conversation", "Level", "Score", "State", "Msgs", "Last Responder", "Response", "Hot"})
	table.SetAutoWrapText(false)

	for _, s := range summaries {
		table.Append([]string{
			shorten(s.ID, 40),
			string(s.Priority.Level),
			fmt.Sprintf("%d", s.Priority.Score),
			string(s.LifecycleState),
			fmt.Sprintf("%d", s.MessageCount),
			shorten(s.Insight.LastResponder, 30),
			yesNo(s.Insight.ResponseNeeded),
			yesNo(s.Priority.HotSoon),
		})
	}

	table.Render()
}

func shorten(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
