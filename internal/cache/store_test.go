package cache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	c, err := NewCache(filepath.Join(t.TempDir(), "cache.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return NewStore(c, logger)
}

func testMessage(id, convID string, ts time.Time) *types.Message {
	return &types.Message{
		ID:             id,
		ConversationID: convID,
		Sender:         "alice@x.com",
		Recipients:     []string{"bob@x.com"},
		Timestamp:      ts,
		Subject:        "Customs paperwork",
		Body:           "The clearance documents are attached.",
	}
}

func TestUpsertAndListMessages(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertMessage(testMessage("m2", "conv-1", base.Add(time.Hour))))
	require.NoError(t, store.UpsertMessage(testMessage("m1", "conv-1", base)))

	messages, err := store.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "m2", messages[1].ID)
	assert.Equal(t, []string{"bob@x.com"}, messages[0].Recipients)
	assert.Equal(t, base, messages[0].Timestamp)
}

func TestUpsertMessageOverwrites(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	msg := testMessage("m1", "conv-1", base)
	require.NoError(t, store.UpsertMessage(msg))

	msg.Subject = "Customs paperwork (updated)"
	require.NoError(t, store.UpsertMessage(msg))

	messages, err := store.ListMessages()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Customs paperwork (updated)", messages[0].Subject)
}

func TestHasMessages(t *testing.T) {
	store := testStore(t)

	has, err := store.HasMessages()
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.UpsertMessage(testMessage("m1", "conv-1", time.Now())))

	has, err = store.HasMessages()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestMessageIDsForConversation(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertMessage(testMessage("m1", "conv-1", base)))
	require.NoError(t, store.UpsertMessage(testMessage("m2", "conv-1", base.Add(time.Hour))))
	require.NoError(t, store.UpsertMessage(testMessage("m3", "conv-2", base)))

	ids, err := store.MessageIDsForConversation("conv-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, ids)
}

func testSummary(id string, score int, state types.LifecycleState) *types.ConversationSummary {
	return &types.ConversationSummary{
		ID:             id,
		Participants:   []string{"alice@x.com", "bob@x.com"},
		MessageCount:   3,
		LifecycleState: state,
		Insight: types.Insight{
			ResponseNeeded:   true,
			LastResponder:    "bob@x.com",
			Flow:             []types.FlowEntry{},
			DiscussionPoints: []types.DiscussionPoint{},
		},
		Priority: types.PriorityScore{
			Score:   score,
			Level:   types.LevelMedium,
			Factors: []string{"response needed (+25)"},
		},
		ReplyTemplate: types.ReplyTemplate{Variant: "confirmation", Subject: "Re: Plan"},
	}
}

func TestUpsertAndGetSummary(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.UpsertSummary(testSummary("conv-1", 45, types.StateActive)))

	got, err := store.GetSummary("conv-1")
	require.NoError(t, err)
	assert.Equal(t, 45, got.Priority.Score)
	assert.True(t, got.Insight.ResponseNeeded)
	assert.Equal(t, "confirmation", got.ReplyTemplate.Variant)

	_, err = store.GetSummary("missing")
	assert.Error(t, err)
}

func TestListSummariesOrderedByScore(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.UpsertSummary(testSummary("low", 10, types.StateActive)))
	require.NoError(t, store.UpsertSummary(testSummary("high", 80, types.StateActive)))
	require.NoError(t, store.UpsertSummary(testSummary("mid", 45, types.StateArchived)))

	summaries, err := store.ListSummaries(0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "high", summaries[0].ID)
	assert.Equal(t, "mid", summaries[1].ID)
	assert.Equal(t, "low", summaries[2].ID)
}

func TestSummariesByState(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.UpsertSummary(testSummary("a", 10, types.StateActive)))
	require.NoError(t, store.UpsertSummary(testSummary("b", 20, types.StateActive)))
	require.NoError(t, store.UpsertSummary(testSummary("c", 30, types.StateArchived)))

	counts, err := store.SummariesByState()
	require.NoError(t, err)
	assert.Equal(t, 2, counts[types.StateActive])
	assert.Equal(t, 1, counts[types.StateArchived])
}

func TestSearchMessages(t *testing.T) {
	store := testStore(t)
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertMessage(testMessage("m1", "conv-1", base)))
	other := testMessage("m2", "conv-2", base.Add(time.Hour))
	other.Subject = "Fuel invoice"
	other.Body = "March fuel costs attached."
	require.NoError(t, store.UpsertMessage(other))

	results, err := store.SearchMessages("clearance", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m1", results[0].MessageID)
	assert.Contains(t, results[0].Snippet, "clearance documents")

	results, err = store.SearchMessages("nosuchword", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchSnippetKeepsMultibyteCharactersIntact(t *testing.T) {
	store := testStore(t)

	msg := testMessage("m1", "conv-1", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	msg.Body = "clearance " + strings.Repeat("š", 300)
	require.NoError(t, store.UpsertMessage(msg))

	results, err := store.SearchMessages("clearance", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, utf8.ValidString(results[0].Snippet))
	assert.Equal(t, 203, utf8.RuneCountInString(results[0].Snippet))
	assert.True(t, strings.HasSuffix(results[0].Snippet, "..."))
}
