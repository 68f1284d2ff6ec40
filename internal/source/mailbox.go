package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
)

// MailboxSource retrieves PDF attachments from an IMAP mailbox. Each
// fetch opens one connection, drains it, and closes it; connections are
// never shared across fetches.
type MailboxSource struct {
	cfg    common.MailboxConfig
	logger *slog.Logger
}

func NewMailboxSource(cfg common.MailboxConfig, logger *slog.Logger) *MailboxSource {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = os.TempDir()
	}
	return &MailboxSource{cfg: cfg, logger: logger}
}

// fetchedMessage is one listed message, reduced to what the spool loop
// needs.
type fetchedMessage struct {
	seq     uint32
	date    time.Time
	subject string
	raw     []byte
}

// Fetch lists INBOX messages matching the configured criterion, filters
// by subject marker, and spools each PDF attachment to a temporary file.
// Messages are processed newest-first; attachments keep their original
// order within a message. The configured fetch limit bounds the total
// number of payloads, stopping mid-message when reached.
func (s *MailboxSource) Fetch(ctx context.Context) ([]*Payload, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, common.NewSourceIOError("connect mailbox", err)
	}
	defer func() {
		if err := client.Logout().Wait(); err != nil {
			s.logger.Warn("source.mailbox.logout_error", "error", err)
		}
		_ = client.Close()
	}()

	if err := client.Login(s.cfg.Username, s.cfg.Password).Wait(); err != nil {
		return nil, common.NewSourceIOError("mailbox login", err)
	}
	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return nil, common.NewSourceIOError("select INBOX", err)
	}

	criteria := &imap.SearchCriteria{}
	if s.cfg.UnseenOnly {
		criteria.NotFlag = []imap.Flag{imap.FlagSeen}
	}
	searchData, err := client.Search(criteria, nil).Wait()
	if err != nil {
		return nil, common.NewSourceIOError("search messages", err)
	}
	nums := searchData.AllSeqNums()
	if len(nums) == 0 {
		s.logger.Info("source.mailbox.empty", "unseen_only", s.cfg.UnseenOnly)
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}
	msgs, err := client.Fetch(imap.SeqSetNum(nums...), fetchOpts).Collect()
	if err != nil {
		return nil, common.NewSourceIOError("fetch messages", err)
	}

	// A message without an envelope can be neither date-ordered nor
	// subject-filtered; drop it here so the spool loop only sees
	// envelope-backed messages.
	items := make([]fetchedMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Envelope == nil {
			continue
		}
		items = append(items, fetchedMessage{
			seq:     msg.SeqNum,
			date:    msg.Envelope.Date,
			subject: msg.Envelope.Subject,
			raw:     msg.FindBodySection(bodySection),
		})
	}
	return s.spool(ctx, items)
}

// spool orders msgs newest first, filters by subject marker, and writes
// each PDF attachment to a temporary file. An abort mid-run releases
// every file spooled so far: a failed fetch must not leak temp files.
func (s *MailboxSource) spool(ctx context.Context, msgs []fetchedMessage) ([]*Payload, error) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].date.After(msgs[j].date)
	})

	limit := s.cfg.FetchLimit
	batch := time.Now().UnixMilli()

	var payloads []*Payload
	abort := func(message string, cause error) ([]*Payload, error) {
		for _, p := range payloads {
			if err := p.Cleanup(); err != nil {
				s.logger.Warn("source.mailbox.cleanup_error", "payload", p.Name, "error", err)
			}
		}
		return nil, common.NewSourceIOError(message, cause)
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return abort("fetch canceled", err)
		}
		if limit > 0 && len(payloads) >= limit {
			break
		}
		if !strings.Contains(msg.subject, s.cfg.SubjectMarker) {
			continue
		}
		if msg.raw == nil {
			continue
		}

		atts, err := s.pdfAttachments(msg.raw)
		if err != nil {
			s.logger.Warn("source.mailbox.parse_error", "seq", msg.seq, "error", err)
			continue
		}
		for _, att := range atts {
			path := filepath.Join(s.cfg.TmpDir, fmt.Sprintf("work_order_%d_%d.pdf", batch, len(payloads)))
			if err := os.WriteFile(path, att, 0o600); err != nil {
				return abort("spool attachment", err)
			}
			payloads = append(payloads, NewPayload(att, path, func() error { return os.Remove(path) }))
			if limit > 0 && len(payloads) >= limit {
				break
			}
		}
	}

	s.logger.Info("source.mailbox.fetched",
		"messages", len(msgs),
		"payloads", len(payloads),
		"limit", limit,
	)
	return payloads, nil
}

// pdfAttachments parses a raw RFC 5322 message and returns the bytes of
// every application/pdf attachment, in original order.
func (s *MailboxSource) pdfAttachments(raw []byte) ([][]byte, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("create mail reader: %w", err)
	}

	var atts [][]byte
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return atts, fmt.Errorf("next part: %w", err)
		}
		header, ok := part.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil || contentType != "application/pdf" {
			continue
		}
		data, err := io.ReadAll(part.Body)
		if err != nil {
			return atts, fmt.Errorf("read attachment: %w", err)
		}
		atts = append(atts, data)
	}
	return atts, nil
}
