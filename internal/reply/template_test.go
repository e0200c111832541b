package reply

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		SelfIdentity:   "me@company.com",
		FlowWindow:     5,
		PreviewLength:  150,
		SnippetLength:  120,
		HotSoonHorizon: 24 * time.Hour,
		Lexicons:       config.DefaultLexicons(),
	}
}

func conv(flags []string, messages ...types.Message) *types.Conversation {
	return &types.Conversation{ID: "conv-1", DomainFlags: flags, Messages: messages}
}

func msg(subject, body string) types.Message {
	return types.Message{
		ID:        "m1",
		Sender:    "partner@x.com",
		Timestamp: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Subject:   subject,
		Body:      body,
	}
}

func TestSelectQuestionResponse(t *testing.T) {
	c := conv(nil, msg("Slot booking", "Can you resend the reference?"))
	ins := types.Insight{ResponseNeeded: true}

	tpl := NewSelector(testConfig()).Select(c, ins, types.PriorityScore{})

	assert.Equal(t, VariantQuestionResponse, tpl.Variant)
	assert.Contains(t, tpl.Body, "[Address the specific question raised above]")
}

func TestSelectQuestionBeatsUrgentFlag(t *testing.T) {
	c := conv([]string{"urgent"}, msg("Slot booking", "Urgent: can you resend the reference?"))
	ins := types.Insight{ResponseNeeded: true}

	tpl := NewSelector(testConfig()).Select(c, ins, types.PriorityScore{})
	assert.Equal(t, VariantQuestionResponse, tpl.Variant)
}

func TestSelectFollowUpWhenWaitingWithoutResponse(t *testing.T) {
	c := conv(nil, msg("Export docs", "We are waiting for the clearance papers."))
	ins := types.Insight{WaitingOn: "We are waiting for the clearance papers"}

	tpl := NewSelector(testConfig()).Select(c, ins, types.PriorityScore{})

	assert.Equal(t, VariantFollowUp, tpl.Variant)
	assert.Contains(t, tpl.Body, "Regarding: We are waiting for the clearance papers")
}

func TestSelectResponseNeededSuppressesFollowUp(t *testing.T) {
	c := conv(nil, msg("Export docs", "We are waiting for the papers, can you chase them?"))
	ins := types.Insight{ResponseNeeded: true, WaitingOn: "We are waiting for the papers"}

	tpl := NewSelector(testConfig()).Select(c, ins, types.PriorityScore{})
	assert.Equal(t, VariantQuestionResponse, tpl.Variant)
}

func TestSelectUrgentFlag(t *testing.T) {
	c := conv([]string{"urgent"}, msg("Breakdown", "Truck broke down, urgent."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})

	assert.Equal(t, VariantUrgent, tpl.Variant)
	assert.Contains(t, tpl.Body, "prioritize accordingly")
}

func TestSelectDelayFlag(t *testing.T) {
	c := conv([]string{"delay"}, msg("Schedule", "Pickup is delayed by a day."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})
	assert.Equal(t, VariantDelay, tpl.Variant)
}

func TestSelectUrgentBeatsDelay(t *testing.T) {
	c := conv([]string{"delay", "urgent"}, msg("Schedule", "Urgent: pickup is delayed."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})
	assert.Equal(t, VariantUrgent, tpl.Variant)
}

func TestSelectConfirmationFallback(t *testing.T) {
	c := conv(nil, msg("Weekly plan", "Plan attached for next week."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})

	assert.Equal(t, VariantConfirmation, tpl.Variant)
	assert.Contains(t, tpl.Body, "acknowledge receipt")
}

func TestSelectBodySkeleton(t *testing.T) {
	c := conv(nil, msg("Weekly plan", "Plan attached."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})

	assert.True(t, strings.HasPrefix(tpl.Body, "Hi team,\n\n"))
	assert.True(t, strings.HasSuffix(tpl.Body, "Best regards,\n[Your name]"))
}

func TestSelectSubjectStripsPrefixes(t *testing.T) {
	c := conv(nil, msg("RE: FW: Shipment plan", "See below."))

	tpl := NewSelector(testConfig()).Select(c, types.Insight{}, types.PriorityScore{})
	assert.Equal(t, "Re: Shipment plan", tpl.Subject)
}

func TestSelectEmptyConversation(t *testing.T) {
	tpl := NewSelector(testConfig()).Select(&types.Conversation{ID: "empty"}, types.Insight{}, types.PriorityScore{})

	assert.Equal(t, VariantConfirmation, tpl.Variant)
	assert.Equal(t, "Re:", tpl.Subject)
}
