package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration. All thresholds and keyword
// lexicons are supplied here and passed into components explicitly; no
// component reads ambient state.
type Config struct {
	// Identity of the mailbox owner, used to suppress self-response signals
	SelfIdentity string

	// Thread grouping
	MinThreadSize int

	// Lifecycle
	ArchiveThreshold time.Duration

	// Insight extraction
	FlowWindow    int
	PreviewLength int
	SnippetLength int

	// Priority scoring
	HotSoonHorizon time.Duration

	// Keyword lexicons per category
	Lexicons Lexicons

	// Cache and reporting
	CachePath string
	ReportDir string
	LogLevel  string

	// Mail store account
	Account AccountConfig
}

// AccountConfig holds the IMAP settings of the analyzed mailbox.
type AccountConfig struct {
	Name          string
	IMAPHost      string
	IMAPPort      int
	IMAPUsername  string
	IMAPPassword  string
	InboxFolder   string
	ArchiveFolder string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		SelfIdentity:     getEnv("SELF_IDENTITY", ""),
		MinThreadSize:    getEnvInt("MIN_THREAD_SIZE", 2),
		ArchiveThreshold: time.Duration(getEnvInt("ARCHIVE_THRESHOLD_DAYS", 60)) * 24 * time.Hour,
		FlowWindow:       getEnvInt("FLOW_WINDOW", 5),
		PreviewLength:    getEnvInt("PREVIEW_LENGTH", 150),
		SnippetLength:    getEnvInt("SNIPPET_LENGTH", 120),
		HotSoonHorizon:   time.Duration(getEnvInt("HOT_SOON_HORIZON_HOURS", 24)) * time.Hour,
		CachePath:        getEnv("CACHE_PATH", "/data/thread_cache.db"),
		ReportDir:        getEnv("REPORT_DIR", "output/threads"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Account: AccountConfig{
			Name:          getEnv("ACCOUNT_NAME", "default"),
			IMAPHost:      getEnv("IMAP_HOST", ""),
			IMAPPort:      getEnvInt("IMAP_PORT", 993),
			IMAPUsername:  getEnv("IMAP_USERNAME", ""),
			IMAPPassword:  getEnv("IMAP_PASSWORD", ""),
			InboxFolder:   getEnv("INBOX_FOLDER", "INBOX"),
			ArchiveFolder: getEnv("ARCHIVE_FOLDER", "Archive"),
		},
	}

	lexicons := DefaultLexicons()
	if path := getEnv("LEXICON_FILE", ""); path != "" {
		loaded, err := LoadLexiconFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon file: %w", err)
		}
		lexicons = lexicons.Merge(loaded)
	}
	cfg.Lexicons = lexicons

	return cfg, nil
}

// Validate validates the configuration. Errors here are fatal at startup
// and are never deferred into per-conversation failures.
func (c *Config) Validate() error {
	if c.SelfIdentity == "" {
		return fmt.Errorf("SELF_IDENTITY is required")
	}
	if c.MinThreadSize < 1 {
		return fmt.Errorf("MIN_THREAD_SIZE must be at least 1")
	}
	if c.ArchiveThreshold <= 0 {
		return fmt.Errorf("ARCHIVE_THRESHOLD_DAYS must be positive")
	}
	if c.FlowWindow < 1 {
		return fmt.Errorf("FLOW_WINDOW must be at least 1")
	}
	if c.PreviewLength < 1 || c.PreviewLength > 1000 {
		return fmt.Errorf("PREVIEW_LENGTH must be between 1 and 1000")
	}
	if c.SnippetLength < 1 || c.SnippetLength > 1000 {
		return fmt.Errorf("SNIPPET_LENGTH must be between 1 and 1000")
	}
	if c.HotSoonHorizon <= 0 {
		return fmt.Errorf("HOT_SOON_HORIZON_HOURS must be positive")
	}
	if c.CachePath == "" {
		return fmt.Errorf("CACHE_PATH is required")
	}
	if err := c.Lexicons.Validate(); err != nil {
		return fmt.Errorf("invalid lexicons: %w", err)
	}
	return nil
}

// ValidateAccount validates the mail store account settings. Kept separate
// from Validate so the analysis core can run against cached messages
// without a configured account.
func (c *Config) ValidateAccount() error {
	acc := &c.Account
	if acc.IMAPHost == "" {
		return fmt.Errorf("account %s: IMAP_HOST is required", acc.Name)
	}
	if acc.IMAPUsername == "" {
		return fmt.Errorf("account %s: IMAP_USERNAME is required", acc.Name)
	}
	if acc.IMAPPort < 1 || acc.IMAPPort > 65535 {
		return fmt.Errorf("account %s: invalid IMAP_PORT", acc.Name)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
