package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category names a keyword lexicon. Adding a category or language is a
// data change, not a code change.
type Category string

const (
	CategoryUrgent       Category = "urgent"
	CategoryDelay        Category = "delay"
	CategoryTransport    Category = "transport"
	CategoryCustoms      Category = "customs"
	CategoryDecision     Category = "decision"
	CategoryAgreement    Category = "agreement"
	CategoryConfirmation Category = "confirmation"
	CategoryIssue        Category = "issue"
	CategorySolution     Category = "solution"
	CategoryAction       Category = "action"
	CategoryDeadline     Category = "deadline"
	CategoryRequest      Category = "request"
	CategoryWaiting      Category = "waiting"
	CategoryDueDate      Category = "duedate"
)

// DiscussionCategories is the fixed tagging order for discussion points.
// A sentence is tagged with the first category that matches.
var DiscussionCategories = []Category{
	CategoryDecision,
	CategoryAgreement,
	CategoryConfirmation,
	CategoryIssue,
	CategorySolution,
	CategoryAction,
	CategoryDeadline,
}

// Lexicons maps categories to their keyword sets. Matching is
// case-insensitive substring containment.
type Lexicons map[Category][]string

// DefaultLexicons returns the built-in keyword sets.
func DefaultLexicons() Lexicons {
	return Lexicons{
		CategoryUrgent:       {"urgent", "asap", "emergency", "critical", "immediate"},
		CategoryDelay:        {"delay", "delayed", "postponed", "late", "waiting"},
		CategoryTransport:    {"truck", "driver", "transport", "delivery", "shipment", "pickup", "arrival"},
		CategoryCustoms:      {"customs", "carinska", "border", "clearance"},
		CategoryDecision:     {"decision", "decided", "rejected"},
		CategoryAgreement:    {"agreed", "agree", "approved"},
		CategoryConfirmation: {"confirmed", "confirm"},
		CategoryIssue:        {"issue", "problem", "error", "mistake", "wrong", "missing"},
		CategorySolution:     {"solution", "resolved", "fixed"},
		CategoryAction:       {"action", "required", "must"},
		CategoryDeadline:     {"deadline", "due", "eod", "cob"},
		CategoryRequest: {
			"please confirm", "could you", "can you", "would you",
			"let us know", "please provide", "please send", "need your",
		},
		CategoryWaiting: {"waiting for", "waiting on", "pending", "awaiting", "need from you"},
		CategoryDueDate: {
			"eod", "end of day", "cob", "close of business",
			"today", "tonight", "tomorrow",
		},
	}
}

// Matches reports whether text contains any term of the category.
func (l Lexicons) Matches(text string, cat Category) bool {
	return l.FirstMatch(text, cat) != ""
}

// FirstMatch returns the first term of the category found in text, or ""
// when none matches.
func (l Lexicons) FirstMatch(text string, cat Category) string {
	lower := strings.ToLower(text)
	for _, term := range l[cat] {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

// Merge returns a copy of l with non-empty categories of other overriding.
func (l Lexicons) Merge(other Lexicons) Lexicons {
	merged := make(Lexicons, len(l))
	for cat, terms := range l {
		merged[cat] = terms
	}
	for cat, terms := range other {
		if len(terms) > 0 {
			merged[cat] = terms
		}
	}
	return merged
}

// Validate checks that every known category has at least one term and
// that no term is blank.
func (l Lexicons) Validate() error {
	for cat, terms := range l {
		if len(terms) == 0 {
			return fmt.Errorf("category %s has no terms", cat)
		}
		for _, term := range terms {
			if strings.TrimSpace(term) == "" {
				return fmt.Errorf("category %s contains a blank term", cat)
			}
		}
	}
	return nil
}

// LoadLexiconFile loads category keyword overrides from a YAML file of
// the form `category: [term, term]`.
func LoadLexiconFile(path string) (Lexicons, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	lexicons := make(Lexicons, len(raw))
	for cat, terms := range raw {
		lowered := make([]string, 0, len(terms))
		for _, term := range terms {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(term)))
		}
		lexicons[Category(cat)] = lowered
	}
	return lexicons, nil
}
