package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

func testConfig() *config.Config {
	return &config.Config{
		SelfIdentity:     "me@company.com",
		MinThreadSize:    2,
		ArchiveThreshold: 60 * 24 * time.Hour,
		FlowWindow:       5,
		PreviewLength:    150,
		SnippetLength:    120,
		HotSoonHorizon:   24 * time.Hour,
		Lexicons:         config.DefaultLexicons(),
	}
}

func msg(id, sender string, ts time.Time, subject, body string) types.Message {
	return types.Message{ID: id, Sender: sender, Timestamp: ts, Subject: subject, Body: body}
}

func TestScoreUrgentRecentResponseNeeded(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID:           "conv-1",
		Participants: []string{"me@company.com", "partner@x.com"},
		Messages: []types.Message{
			msg("m1", "me@company.com", ref.Add(-3*time.Hour), "Slot booking", "Booked."),
			msg("m2", "partner@x.com", ref.Add(-time.Hour), "Slot booking", "Urgent, can you resend the booking reference?"),
		},
	}
	ins := types.Insight{ResponseNeeded: true}

	score := NewScorer(testConfig()).Score(conv, ins, ref)

	assert.Equal(t, 75, score.Score)
	assert.Equal(t, types.LevelHigh, score.Level)
	assert.True(t, score.ResponseNeeded)
	assert.Len(t, score.Factors, 3)
}

func TestScoreDeterministic(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID:          "conv-1",
		DomainFlags: []string{"delay", "transport"},
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-30*time.Hour), "Delivery", "The delivery is late."),
		},
	}
	ins := types.Insight{}

	scorer := NewScorer(testConfig())
	first := scorer.Score(conv, ins, ref)
	second := scorer.Score(conv, ins, ref)

	assert.Equal(t, first, second)
}

func TestScoreUrgencyKeywordRaisesScore(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	scorer := NewScorer(testConfig())

	plain := &types.Conversation{
		ID: "plain",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Schedule", "See attached."),
		},
	}
	flagged := &types.Conversation{
		ID: "flagged",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Schedule", "See attached, this is urgent."),
		},
	}

	base := scorer.Score(plain, types.Insight{}, ref)
	raised := scorer.Score(flagged, types.Insight{}, ref)

	assert.Greater(t, raised.Score, base.Score)
	assert.Equal(t, base.Score+30, raised.Score)
}

func TestScoreGroupSizeAndVolumeBonuses(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	messages := make([]types.Message, 0, 11)
	for i := 0; i < 11; i++ {
		messages = append(messages, msg(
			string(rune('a'+i)), "a@x.com", ref.Add(time.Duration(i-100)*time.Hour),
			"Planning", "Nothing noteworthy."))
	}
	conv := &types.Conversation{
		ID:           "busy",
		Participants: []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"},
		Messages:     messages,
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)

	// 11 messages, 4 participants, last message 90h old: only the two
	// structural bonuses apply.
	assert.Equal(t, 20, score.Score)
	assert.Equal(t, types.LevelLow, score.Level)
}

func TestScoreStalePenalty(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID:          "stale",
		DomainFlags: []string{"delay"},
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-8*24*time.Hour), "Old delay", "Shipment was postponed."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)

	// delay +15, stale -10
	assert.Equal(t, 5, score.Score)
	assert.Contains(t, score.Factors[len(score.Factors)-1], "stale")
}

func TestScoreClampsAtZero(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "quiet",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-30*24*time.Hour), "Ancient", "Nothing."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, types.LevelLow, score.Level)
}

func TestScoreEmptyConversation(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	score := NewScorer(testConfig()).Score(&types.Conversation{ID: "empty"}, types.Insight{}, ref)

	assert.Equal(t, 0, score.Score)
	assert.Equal(t, types.LevelLow, score.Level)
	assert.NotNil(t, score.Factors)
}

func TestLevelForBoundaries(t *testing.T) {
	cases := []struct {
		score int
		level types.PriorityLevel
	}{
		{100, types.LevelCritical},
		{80, types.LevelCritical},
		{79, types.LevelHigh},
		{60, types.LevelHigh},
		{59, types.LevelMedium},
		{40, types.LevelMedium},
		{39, types.LevelLow},
		{0, types.LevelLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, LevelFor(c.score), "score %d", c.score)
	}
}

func TestHotSoonTomorrowWithinHorizon(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "We need the papers by tomorrow."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.True(t, score.HotSoon)
}

func TestHotSoonEndOfDay(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "Send the manifest by EOD please."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.True(t, score.HotSoon)
}

func TestHotSoonExplicitDateBeyondHorizon(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "Customs inspection booked for 20/03/2026."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.False(t, score.HotSoon)
}

func TestHotSoonExplicitDateWithinHorizon(t *testing.T) {
	ref := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "Inspection is on 11.03.26 at the terminal."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.True(t, score.HotSoon)
}

func TestHotSoonPastDateIgnored(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "Inspection was on 01/03/2026."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.False(t, score.HotSoon)
}

func TestHotSoonNoDeadline(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-time.Hour), "Loading", "All fine, no rush."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	assert.False(t, score.HotSoon)
}

func TestScoreAgeHoursReported(t *testing.T) {
	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv := &types.Conversation{
		ID: "conv-1",
		Messages: []types.Message{
			msg("m1", "a@x.com", ref.Add(-6*time.Hour), "Loading", "Noted."),
		},
	}

	score := NewScorer(testConfig()).Score(conv, types.Insight{}, ref)
	require.InDelta(t, 6.0, score.AgeHours, 0.001)
}
