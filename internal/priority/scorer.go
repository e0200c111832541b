package priority

import (
	"fmt"
	"regexp"
	"time"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Weighted contributions of the scoring heuristic. Each signal is counted
// at most once.
const (
	weightUrgent        = 30
	weightResponse      = 25
	weightRecent        = 20
	weightDelay         = 15
	weightParticipants  = 10
	weightMessageVolume = 10
	weightCustoms       = 5
	weightTransport     = 5
	penaltyStale        = 10

	recentAge = 48 * time.Hour
	staleAge  = 7 * 24 * time.Hour
)

// explicitDate matches numeric dates like 12/05/2026, 12.05.26 or 12-5-2026.
var explicitDate = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`)

// Scorer computes a bounded urgency score for a conversation. Identical
// inputs always yield an identical score.
type Scorer struct {
	cfg *config.Config
}

// NewScorer creates a new priority scorer.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score accumulates the weighted signal contributions, clamps the sum to
// [0, 100] and maps it to a discrete level.
func (s *Scorer) Score(conv *types.Conversation, ins types.Insight, ref time.Time) types.PriorityScore {
	last := conv.LastMessage()
	if last == nil {
		return types.PriorityScore{Level: types.LevelLow, Factors: []string{}}
	}

	age := ref.Sub(last.Timestamp)
	score := 0
	var factors []string

	urgent := s.cfg.Lexicons.Matches(last.Subject+" "+last.Body, config.CategoryUrgent)
	if urgent {
		score += weightUrgent
		factors = append(factors, fmt.Sprintf("urgency keyword in subject or last message (+%d)", weightUrgent))
	}
	if ins.ResponseNeeded {
		score += weightResponse
		factors = append(factors, fmt.Sprintf("response needed (+%d)", weightResponse))
	}
	if age <= recentAge {
		score += weightRecent
		factors = append(factors, fmt.Sprintf("last message within 2 days (+%d)", weightRecent))
	}
	if conv.HasFlag(string(config.CategoryDelay)) {
		score += weightDelay
		factors = append(factors, fmt.Sprintf("delay keywords present (+%d)", weightDelay))
	}
	if len(conv.Participants) > 3 {
		score += weightParticipants
		factors = append(factors, fmt.Sprintf("more than 3 participants (+%d)", weightParticipants))
	}
	if len(conv.Messages) > 10 {
		score += weightMessageVolume
		factors = append(factors, fmt.Sprintf("more than 10 messages (+%d)", weightMessageVolume))
	}
	if conv.HasFlag(string(config.CategoryCustoms)) {
		score += weightCustoms
		factors = append(factors, fmt.Sprintf("customs flag (+%d)", weightCustoms))
	}
	if conv.HasFlag(string(config.CategoryTransport)) {
		score += weightTransport
		factors = append(factors, fmt.Sprintf("transport flag (+%d)", weightTransport))
	}
	if age > staleAge && !urgent && !ins.ResponseNeeded {
		score -= penaltyStale
		factors = append(factors, fmt.Sprintf("stale, no urgency or response signal (-%d)", penaltyStale))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	if factors == nil {
		factors = []string{}
	}

	return types.PriorityScore{
		Score:          score,
		Level:          LevelFor(score),
		HotSoon:        s.hotSoon(last, ref),
		ResponseNeeded: ins.ResponseNeeded,
		Factors:        factors,
		AgeHours:       age.Hours(),
	}
}

// LevelFor maps a clamped score onto the fixed level partition.
func LevelFor(score int) types.PriorityLevel {
	switch {
	case score >= 80:
		return types.LevelCritical
	case score >= 60:
		return types.LevelHigh
	case score >= 40:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}

// hotSoon reports whether the last message implies a deadline within the
// configured horizon of the reference time.
func (s *Scorer) hotSoon(last *types.Message, ref time.Time) bool {
	text := last.Subject + " " + last.Body
	deadline, ok := s.impliedDeadline(text, ref)
	if !ok {
		return false
	}
	return !deadline.Before(ref) && deadline.Sub(ref) <= s.cfg.HotSoonHorizon
}

// impliedDeadline resolves a due-date phrase or explicit numeric date to
// a point in time. Relative phrases resolve against the reference time:
// end-of-day phrases mean the end of the reference day, "tomorrow" means
// one day after the reference time.
func (s *Scorer) impliedDeadline(text string, ref time.Time) (time.Time, bool) {
	if m := explicitDate.FindStringSubmatch(text); m != nil {
		if t, ok := parseNumericDate(m[1], m[2], m[3], ref.Location()); ok {
			return endOfDay(t), true
		}
	}

	term := s.cfg.Lexicons.FirstMatch(text, config.CategoryDueDate)
	switch term {
	case "":
		return time.Time{}, false
	case "tomorrow":
		return ref.Add(24 * time.Hour), true
	default:
		// eod, end of day, cob, close of business, today, tonight
		return endOfDay(ref), true
	}
}

// parseNumericDate interprets a day/month/year triple. Two-digit years
// are taken as 20xx.
func parseNumericDate(dayStr, monthStr, yearStr string, loc *time.Location) (time.Time, bool) {
	day := atoi(dayStr)
	month := atoi(monthStr)
	year := atoi(yearStr)
	if year < 100 {
		year += 2000
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
