package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qaaph-zyld/outlook-threads/internal/analyzer"
	"github.com/qaaph-zyld/outlook-threads/internal/cache"
	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/internal/mailstore"
	"github.com/qaaph-zyld/outlook-threads/internal/report"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

var (
	version     = "dev"
	showVersion = flag.Bool("version", false, "Show version information")
	offline     = flag.Bool("offline", false, "Analyze cached messages instead of fetching from the mail store")
	archiveOld  = flag.Bool("archive", false, "Move archived conversations to the archive folder")
	searchQuery = flag.String("search", "", "Full-text search over cached messages and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("threadmgr version %s\n", version)
		os.Exit(0)
	}
	// Set up logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting thread manager")

	// Initialize cache
	msgCache, err := cache.NewCache(cfg.CachePath, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize cache")
	}
	defer msgCache.Close()

	cacheStore := cache.NewStore(msgCache, logger)

	if *searchQuery != "" {
		runSearch(cacheStore, *searchQuery, logger)
		return
	}

	// Gather messages
	messages, store := loadMessages(cfg, cacheStore, logger)
	if store != nil {
		defer store.Close()
	}

	// Analyze
	ref := time.Now()
	summaries := analyzer.New(cfg, logger).AnalyzeAll(messages, ref)

	// Persist and render
	for _, summary := range summaries {
		if err := cacheStore.UpsertSummary(summary); err != nil {
			logger.WithError(err).WithField("conversation_id", summary.ID).Warn("Failed to cache summary")
		}
		if err := writeReport(cfg.ReportDir, summary); err != nil {
			logger.WithError(err).WithField("conversation_id", summary.ID).Warn("Failed to write report")
		}
	}

	report.WriteOverview(os.Stdout, summaries)

	if *archiveOld && store != nil {
		archiveConversations(cfg, store, cacheStore, summaries, logger)
	}

	logger.WithField("count", len(summaries)).Info("Thread manager finished")
}

// loadMessages fetches messages from the mail store, caching each one, or
// replays the cache in offline mode. The returned store is nil offline.
func loadMessages(cfg *config.Config, cacheStore *cache.Store, logger *logrus.Logger) ([]types.Message, *mailstore.IMAPStore) {
	if *offline {
		messages, err := cacheStore.ListMessages()
		if err != nil {
			logger.WithError(err).Fatal("Failed to load cached messages")
		}
		return messages, nil
	}

	if err := cfg.ValidateAccount(); err != nil {
		logger.WithError(err).Fatal("Invalid mail store configuration")
	}

	store := mailstore.NewIMAPStore(&cfg.Account, logger)
	messages, err := store.FetchMessages(cfg.Account.InboxFolder)
	if err != nil {
		logger.WithError(err).Fatal("Failed to fetch messages")
	}

	for i := range messages {
		if err := cacheStore.UpsertMessage(&messages[i]); err != nil {
			logger.WithError(err).WithField("message_id", messages[i].ID).Warn("Failed to cache message")
		}
	}
	return messages, store
}

func runSearch(cacheStore *cache.Store, query string, logger *logrus.Logger) {
	results, err := cacheStore.SearchMessages(query, 50)
	if err != nil {
		logger.WithError(err).Fatal("Search failed")
	}
	for _, r := range results {
		fmt.Printf("%s  %-30s  %s\n    %s\n", r.Date.Format("2006-01-02"), r.Sender, r.Subject, r.Snippet)
	}
	logger.WithField("hits", len(results)).Info("Search finished")
}

func writeReport(dir string, summary *types.ConversationSummary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, safeFileName(summary.ID)+".md")
	if err := os.WriteFile(path, []byte(report.FormatMarkdown(summary)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// safeFileName replaces path-hostile characters in a conversation id.
func safeFileName(id string) string {
	out := []rune(id)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '@', ' ':
			out[i] = '_'
		}
	}
	const maxLen = 60
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return string(out)
}

func archiveConversations(cfg *config.Config, store *mailstore.IMAPStore, cacheStore *cache.Store, summaries []*types.ConversationSummary, logger *logrus.Logger) {
	for _, summary := range summaries {
		if summary.LifecycleState != types.StateArchived {
			continue
		}
		ids, err := cacheStore.MessageIDsForConversation(summary.ID)
		if err != nil {
			logger.WithError(err).WithField("conversation_id", summary.ID).Warn("Failed to resolve conversation messages")
			continue
		}
		if err := store.ArchiveMessages(cfg.Account.InboxFolder, ids); err != nil {
			logger.WithError(err).WithField("conversation_id", summary.ID).Warn("Failed to archive conversation")
		}
	}
}
