package analyzer

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/internal/insight"
	"github.com/qaaph-zyld/outlook-threads/internal/priority"
	"github.com/qaaph-zyld/outlook-threads/internal/reply"
	"github.com/qaaph-zyld/outlook-threads/internal/thread"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Analyzer runs the full per-conversation derivation pipeline: grouping,
// lifecycle classification, insight extraction, priority scoring and
// reply template selection.
type Analyzer struct {
	cfg       *config.Config
	logger    *logrus.Logger
	grouper   *thread.Grouper
	extractor *insight.Extractor
	scorer    *priority.Scorer
	selector  *reply.Selector
	heuristic Summarizer
	enricher  Summarizer
}

// New creates a new analyzer.
func New(cfg *config.Config, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		logger:    logger,
		grouper:   thread.NewGrouper(cfg, logger),
		extractor: insight.NewExtractor(cfg),
		scorer:    priority.NewScorer(cfg),
		selector:  reply.NewSelector(cfg),
		heuristic: NewHeuristicSummarizer(),
	}
}

// WithEnricher attaches an optional external summarizer whose output, if
// any, replaces the heuristic executive summary. It is never a dependency
// of scoring or template selection.
func (a *Analyzer) WithEnricher(s Summarizer) *Analyzer {
	a.enricher = s
	return a
}

// AnalyzeAll groups the messages and derives a summary for every retained
// conversation. Independent conversations are processed in parallel;
// a failure in one conversation degrades that conversation only and
// never aborts the batch. Results are ordered by score descending, id
// ascending for equal scores.
func (a *Analyzer) AnalyzeAll(messages []types.Message, ref time.Time) []*types.ConversationSummary {
	conversations := a.grouper.Group(messages)

	jobs := make(chan *types.Conversation)
	results := make([]*types.ConversationSummary, 0, len(conversations))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := runtime.NumCPU()
	if workers > len(conversations) {
		workers = len(conversations)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for conv := range jobs {
				summary := a.analyzeSafe(conv, ref)
				mu.Lock()
				results = append(results, summary)
				mu.Unlock()
			}
		}()
	}

	for _, conv := range conversations {
		jobs <- conv
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Priority.Score != results[j].Priority.Score {
			return results[i].Priority.Score > results[j].Priority.Score
		}
		return results[i].ID < results[j].ID
	})

	a.logger.WithField("count", len(results)).Info("Analyzed conversations")
	return results
}

// analyzeSafe derives one conversation's summary, recovering any panic at
// the conversation boundary and substituting a degraded summary so the
// batch continues. The degraded path still runs the scorer and selector,
// so it is guarded too: if the failure originated there it recurs, and
// the conversation falls through to a minimal summary built without any
// component calls.
func (a *Analyzer) analyzeSafe(conv *types.Conversation, ref time.Time) *types.ConversationSummary {
	if summary := a.recoverable(conv, "Conversation analysis failed, emitting degraded summary",
		func() *types.ConversationSummary { return a.Analyze(conv, ref) }); summary != nil {
		return summary
	}
	if summary := a.recoverable(conv, "Degraded analysis failed, emitting minimal summary",
		func() *types.ConversationSummary { return a.degraded(conv, ref) }); summary != nil {
		return summary
	}
	return a.minimal(conv)
}

// recoverable runs fn, converting a panic into a nil summary.
func (a *Analyzer) recoverable(conv *types.Conversation, msg string, fn func() *types.ConversationSummary) (summary *types.ConversationSummary) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.WithFields(logrus.Fields{
				"conversation_id": conv.ID,
				"message_count":   len(conv.Messages),
				"panic":           r,
			}).Error(msg)
			summary = nil
		}
	}()
	return fn()
}

// Analyze derives the full summary record for one conversation.
func (a *Analyzer) Analyze(conv *types.Conversation, ref time.Time) *types.ConversationSummary {
	conv.State = thread.Classify(conv, ref, a.cfg.ArchiveThreshold)

	ins := a.extractor.Extract(conv)
	score := a.scorer.Score(conv, ins, ref)
	template := a.selector.Select(conv, ins, score)

	exec, _ := a.heuristic.Summarize(conv, ins)
	if a.enricher != nil {
		if enriched, err := a.enricher.Summarize(conv, ins); err != nil {
			a.logger.WithError(err).WithField("conversation_id", conv.ID).
				Warn("External summarizer failed, keeping heuristic summary")
		} else if enriched != "" {
			exec = enriched
		}
	}

	return &types.ConversationSummary{
		ID:               conv.ID,
		Participants:     conv.Participants,
		MessageCount:     len(conv.Messages),
		DateRange:        dateRange(conv),
		LifecycleState:   conv.State,
		DomainFlags:      conv.DomainFlags,
		Insight:          ins,
		Priority:         score,
		ReplyTemplate:    template,
		ExecutiveSummary: exec,
	}
}

// degraded builds the minimal summary used when deriving a conversation
// failed: empty insight defaults, a floor priority from the signals that
// cannot throw, and the guaranteed confirmation template.
func (a *Analyzer) degraded(conv *types.Conversation, ref time.Time) *types.ConversationSummary {
	state := thread.Classify(conv, ref, a.cfg.ArchiveThreshold)
	ins := types.Insight{Flow: []types.FlowEntry{}, DiscussionPoints: []types.DiscussionPoint{}}
	score := a.scorer.Score(conv, ins, ref)
	return &types.ConversationSummary{
		ID:             conv.ID,
		Participants:   conv.Participants,
		MessageCount:   len(conv.Messages),
		DateRange:      dateRange(conv),
		LifecycleState: state,
		DomainFlags:    conv.DomainFlags,
		Insight:        ins,
		Priority:       score,
		ReplyTemplate:  a.selector.Select(conv, ins, score),
	}
}

// minimal is the last-resort summary shape: conversation metadata only,
// floor priority, no derived signals and no component calls.
func (a *Analyzer) minimal(conv *types.Conversation) *types.ConversationSummary {
	return &types.ConversationSummary{
		ID:             conv.ID,
		Participants:   conv.Participants,
		MessageCount:   len(conv.Messages),
		DateRange:      dateRange(conv),
		LifecycleState: types.StateActive,
		DomainFlags:    conv.DomainFlags,
		Insight:        types.Insight{Flow: []types.FlowEntry{}, DiscussionPoints: []types.DiscussionPoint{}},
		Priority:       types.PriorityScore{Level: types.LevelLow, Factors: []string{}},
		ReplyTemplate:  types.ReplyTemplate{Variant: reply.VariantConfirmation, Subject: "Re:"},
	}
}

func dateRange(conv *types.Conversation) types.DateRange {
	first := conv.FirstMessage()
	last := conv.LastMessage()
	if first == nil || last == nil {
		return types.DateRange{}
	}
	return types.DateRange{Start: first.Timestamp, End: last.Timestamp}
}
