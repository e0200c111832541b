package mailstore

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/sirupsen/logrus"

	"github.com/qaaph-zyld/outlook-threads/internal/config"
	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

var subjectPrefixes = []string{"re:", "fw:", "fwd:"}

// IMAPStore is a MailStore backed by an IMAP mailbox.
type IMAPStore struct {
	config    *config.AccountConfig
	client    *client.Client
	logger    *logrus.Logger
	connected bool
}

// NewIMAPStore creates a new IMAP mail store (does not connect immediately).
func NewIMAPStore(cfg *config.AccountConfig, logger *logrus.Logger) *IMAPStore {
	return &IMAPStore{
		config: cfg,
		logger: logger,
	}
}

// Connect establishes a connection to the IMAP server.
func (s *IMAPStore) Connect() error {
	if s.connected && s.client != nil {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.IMAPHost, s.config.IMAPPort)
	cl, err := client.DialTLS(addr, &tls.Config{
		ServerName: s.config.IMAPHost,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	s.client = cl

	if err := s.client.Login(s.config.IMAPUsername, s.config.IMAPPassword); err != nil {
		s.logger.WithError(err).Error("Failed to login to IMAP server")
		s.client.Logout() //nolint:errcheck
		s.client = nil
		return fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	s.connected = true
	s.logger.WithField("account", s.config.Name).Info("Connected to IMAP server")
	return nil
}

// Close closes the IMAP connection.
func (s *IMAPStore) Close() error {
	if s.client != nil {
		if err := s.client.Logout(); err != nil {
			return err
		}
		s.client = nil
		s.connected = false
	}
	return nil
}

// FetchMessages fetches the messages of a folder as normalized records.
func (s *IMAPStore) FetchMessages(folder string) ([]types.Message, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	mbox, err := s.client.Select(folder, false)
	if err != nil {
		return nil, fmt.Errorf("failed to select folder: %w", err)
	}
	if mbox.Messages == 0 {
		return []types.Message{}, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(1, mbox.Messages)

	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, imap.FetchUid, imap.FetchRFC822}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)

	go func() {
		done <- s.client.Fetch(seqSet, items, messages)
	}()

	var result []types.Message
	for msg := range messages {
		result = append(result, s.parseMessage(msg))
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"folder": folder,
		"count":  len(result),
	}).Info("Fetched messages")
	return result, nil
}

// ArchiveMessages moves the identified messages into the archive folder.
// Servers without MOVE support are handled with copy, delete and expunge.
func (s *IMAPStore) ArchiveMessages(folder string, messageIDs []string) error {
	if err := s.Connect(); err != nil {
		return err
	}
	if _, err := s.client.Select(folder, false); err != nil {
		return fmt.Errorf("failed to select folder: %w", err)
	}

	seqSet := new(imap.SeqSet)
	found := 0
	for _, id := range messageIDs {
		criteria := imap.NewSearchCriteria()
		criteria.Header.Add("Message-Id", id)
		nums, err := s.client.Search(criteria)
		if err != nil {
			s.logger.WithError(err).WithField("message_id", id).Warn("Search failed, skipping message")
			continue
		}
		for _, n := range nums {
			seqSet.AddNum(n)
			found++
		}
	}
	if found == 0 {
		return nil
	}

	if err := s.client.Copy(seqSet, s.config.ArchiveFolder); err != nil {
		return fmt.Errorf("failed to copy messages to archive: %w", err)
	}
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := s.client.Store(seqSet, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
		return fmt.Errorf("failed to mark messages deleted: %w", err)
	}
	if err := s.client.Expunge(nil); err != nil {
		return fmt.Errorf("failed to expunge: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"folder":  folder,
		"archive": s.config.ArchiveFolder,
		"count":   found,
	}).Info("Archived messages")
	return nil
}

// parseMessage converts an IMAP message into our Message type.
func (s *IMAPStore) parseMessage(msg *imap.Message) types.Message {
	result := types.Message{
		Recipients: []string{},
	}

	if msg.Envelope != nil {
		result.ID = msg.Envelope.MessageId
		result.Subject = msg.Envelope.Subject
		result.Timestamp = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			result.Sender = msg.Envelope.From[0].Address()
		}
		for _, to := range msg.Envelope.To {
			result.Recipients = append(result.Recipients, to.Address())
		}
		for _, cc := range msg.Envelope.Cc {
			result.Recipients = append(result.Recipients, cc.Address())
		}
	}

	for _, flag := range msg.Flags {
		switch flag {
		case imap.SeenFlag:
			result.Read = true
		case imap.FlaggedFlag:
			result.Flagged = true
		}
	}

	var references string
	if body := s.readBody(msg); len(body) > 0 {
		env, err := enmime.ReadEnvelope(bytes.NewReader(body))
		if err != nil {
			s.logger.WithError(err).Debug("Failed to parse MIME envelope, using raw body")
			result.Body = string(body)
		} else {
			result.Body = env.Text
			if result.Body == "" && env.HTML != "" {
				if text, err := html2text.FromString(env.HTML); err == nil {
					result.Body = text
				}
			}
			result.AttachmentCount = len(env.Attachments)
			references = env.GetHeader("References")
		}
	}

	result.ConversationID = conversationID(references, msg.Envelope)
	return result
}

// conversationID derives the thread identifier of a message: the root of
// its References chain when present, then In-Reply-To, then the message's
// own id for thread starters. Subject-only sources fall back to the
// normalized subject.
func conversationID(references string, envelope *imap.Envelope) string {
	if refs := strings.Fields(references); len(refs) > 0 {
		return refs[0]
	}
	if envelope == nil {
		return ""
	}
	if envelope.InReplyTo != "" {
		return envelope.InReplyTo
	}
	if envelope.MessageId != "" && !isReply(envelope.Subject) {
		return envelope.MessageId
	}
	return normalizeSubject(envelope.Subject)
}

func isReply(subject string) bool {
	lower := strings.ToLower(strings.TrimSpace(subject))
	for _, prefix := range subjectPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// normalizeSubject strips reply/forward prefixes and folds whitespace so
// subject-threaded replies land in one group.
func normalizeSubject(subject string) string {
	lower := strings.ToLower(strings.TrimSpace(subject))
	for changed := true; changed; {
		changed = false
		for _, prefix := range subjectPrefixes {
			if strings.HasPrefix(lower, prefix) {
				lower = strings.TrimSpace(strings.TrimPrefix(lower, prefix))
				changed = true
			}
		}
	}
	return strings.Join(strings.Fields(lower), " ")
}

// readBody reads the RFC822 literal of a fetched message.
func (s *IMAPStore) readBody(msg *imap.Message) []byte {
	if msg.Body == nil {
		return nil
	}

	var literal imap.Literal
	if l, ok := msg.Body[nil]; ok {
		literal = l
	} else {
		for _, l := range msg.Body {
			literal = l
			break
		}
	}
	if literal == nil {
		return nil
	}

	data, err := io.ReadAll(literal)
	if err != nil {
		s.logger.WithError(err).Error("Error reading message body")
		return nil
	}
	return data
}
