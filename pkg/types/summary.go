package types

import "time"

// DateRange is the first/last timestamp span of a conversation.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FlowEntry is one step of the recent conversation flow.
type FlowEntry struct {
	Timestamp time.Time `json:"ts"`
	Sender    string    `json:"sender"`
	Preview   string    `json:"preview"`
}

// DiscussionPoint is a sentence tagged with a semantic category and the
// sender it originated from.
type DiscussionPoint struct {
	Category string `json:"category"`
	Sender   string `json:"sender"`
	Text     string `json:"text"`
}

// Insight holds the conversational signals derived from a conversation's
// message sequence. It is recomputed on every analysis pass and carries
// no identity of its own.
type Insight struct {
	ResponseNeeded   bool              `json:"response_needed"`
	LastResponder    string            `json:"last_responder"`
	WaitingOn        string            `json:"waiting_on,omitempty"`
	Flow             []FlowEntry       `json:"flow"`
	DiscussionPoints []DiscussionPoint `json:"discussion_points"`
}

// PriorityLevel is the discrete label mapped from a priority score.
type PriorityLevel string

const (
	LevelLow      PriorityLevel = "Low"
	LevelMedium   PriorityLevel = "Medium"
	LevelHigh     PriorityLevel = "High"
	LevelCritical PriorityLevel = "Critical"
)

// PriorityScore is the heuristic urgency value for a conversation.
type PriorityScore struct {
	Score          int           `json:"score"`
	Level          PriorityLevel `json:"level"`
	HotSoon        bool          `json:"hot_soon"`
	ResponseNeeded bool          `json:"response_needed"`
	Factors        []string      `json:"factors"`
	AgeHours       float64       `json:"age_hours"`
}

// ReplyTemplate is a pre-structured response skeleton selected from the
// conversation state.
type ReplyTemplate struct {
	Variant string `json:"variant"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ConversationSummary is the structured record handed to external
// renderers. Field names and nesting are the output contract.
type ConversationSummary struct {
	ID               string         `json:"id"`
	Participants     []string       `json:"participants"`
	MessageCount     int            `json:"message_count"`
	DateRange        DateRange      `json:"date_range"`
	LifecycleState   LifecycleState `json:"lifecycle_state"`
	DomainFlags      []string       `json:"domain_flags"`
	Insight          Insight        `json:"insight"`
	Priority         PriorityScore  `json:"priority"`
	ReplyTemplate    ReplyTemplate  `json:"reply_template"`
	ExecutiveSummary string         `json:"executive_summary,omitempty"`
}
