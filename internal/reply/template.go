package reply

import (
	"strings"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Template variants in selection priority order.
const (
	VariantQuestionResponse = "question-response"
	VariantFollowUp         = "follow-up"
	VariantUrgent           = "urgent"
	VariantDelay            = "delay"
	VariantConfirmation     = "confirmation"
)

var subjectPrefixes = []string{"RE:", "FW:", "FWD:", "Re:", "Fw:", "Fwd:"}

// Selector chooses and fills a reply template from conversation state.
type Selector struct {
	cfg *config.Config
}

// NewSelector creates a new template selector.
func NewSelector(cfg *config.Config) *Selector {
	return &Selector{cfg: cfg}
}

// Select evaluates the variant rules top to bottom; the first match wins
// and the confirmation variant is the guaranteed fallback. The selector
// never fails.
func (s *Selector) Select(conv *types.Conversation, ins types.Insight, score types.PriorityScore) types.ReplyTemplate {
	variant := VariantConfirmation
	switch {
	case ins.ResponseNeeded && s.hasQuestion(conv):
		variant = VariantQuestionResponse
	case ins.WaitingOn != "" && !ins.ResponseNeeded:
		variant = VariantFollowUp
	case conv.HasFlag(string(config.CategoryUrgent)):
		variant = VariantUrgent
	case conv.HasFlag(string(config.CategoryDelay)):
		variant = VariantDelay
	}

	return types.ReplyTemplate{
		Variant: variant,
		Subject: s.subject(conv),
		Body:    bodyFor(variant, ins),
	}
}

func (s *Selector) hasQuestion(conv *types.Conversation) bool {
	last := conv.LastMessage()
	if last == nil {
		return false
	}
	return strings.Contains(last.Subject+" "+last.Body, "?")
}

// subject builds "Re: <subject>" from the first message, stripping
// accumulated reply and forward prefixes.
func (s *Selector) subject(conv *types.Conversation) string {
	first := conv.FirstMessage()
	if first == nil {
		return "Re:"
	}
	clean := first.Subject
	for _, prefix := range subjectPrefixes {
		clean = strings.ReplaceAll(clean, prefix, "")
	}
	return "Re: " + strings.TrimSpace(clean)
}

// bodyFor returns the fixed skeleton of a variant. Bracketed spans are
// placeholder guidance for downstream presentation to fill or keep.
func bodyFor(variant string, ins types.Insight) string {
	var b strings.Builder
	b.WriteString("Hi team,\n\n")

	switch variant {
	case VariantQuestionResponse:
		b.WriteString("Thank you for your message.\n\n")
		b.WriteString("[Address the specific question raised above]\n\n")
	case VariantFollowUp:
		b.WriteString("Following up on this thread.\n\n")
		if ins.WaitingOn != "" {
			b.WriteString("Regarding: " + ins.WaitingOn + "\n\n")
		}
		b.WriteString("[Ask for a status update on the pending item]\n\n")
	case VariantUrgent:
		b.WriteString("Thank you for flagging this.\n\n")
		b.WriteString("I understand this is urgent and will prioritize accordingly.\n\n")
		b.WriteString("[Describe the immediate next step being taken]\n\n")
	case VariantDelay:
		b.WriteString("Thank you for the update.\n\n")
		b.WriteString("Regarding the delay mentioned, I will look into this and provide an update.\n\n")
		b.WriteString("[Add revised timing or mitigation details]\n\n")
	default:
		b.WriteString("Thank you for the update on this thread.\n\n")
		b.WriteString("[Confirm the current state or acknowledge receipt]\n\n")
	}

	b.WriteString("Please let me know if you need any additional information.\n\n")
	b.WriteString("Best regards,\n[Your name]")
	return b.String()
}
