package source

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
)

type fixtureAttachment struct {
	contentType string
	filename    string
	content     []byte
}

// rawMessage builds an RFC 5322 message carrying the given attachments.
func rawMessage(t *testing.T, atts ...fixtureAttachment) []byte {
	t.Helper()
	var buf bytes.Buffer
	var h mail.Header
	h.SetSubject("Work Order 914578")

	mw, err := mail.CreateWriter(&buf, h)
	require.NoError(t, err)
	for _, att := range atts {
		var ah mail.AttachmentHeader
		ah.SetFilename(att.filename)
		ah.SetContentType(att.contentType, nil)
		w, err := mw.CreateAttachment(ah)
		require.NoError(t, err)
		_, err = w.Write(att.content)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	require.NoError(t, mw.Close())
	return buf.Bytes()
}

func pdfFixture(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	return rawMessage(t, fixtureAttachment{contentType: "application/pdf", filename: name, content: content})
}

func testMailbox(t *testing.T, limit int) *MailboxSource {
	t.Helper()
	return NewMailboxSource(common.MailboxConfig{
		SubjectMarker: "Work Order",
		FetchLimit:    limit,
		TmpDir:        t.TempDir(),
	}, nil)
}

func cleanupAll(t *testing.T, payloads []*Payload) {
	t.Helper()
	for _, p := range payloads {
		require.NoError(t, p.Cleanup())
	}
}

func TestPDFAttachments(t *testing.T) {
	src := testMailbox(t, 0)

	raw := rawMessage(t,
		fixtureAttachment{contentType: "application/pdf", filename: "first.pdf", content: []byte("%PDF first")},
		fixtureAttachment{contentType: "text/plain", filename: "notes.txt", content: []byte("not a pdf")},
		fixtureAttachment{contentType: "application/pdf", filename: "second.pdf", content: []byte("%PDF second")},
	)

	atts, err := src.pdfAttachments(raw)
	require.NoError(t, err)
	require.Len(t, atts, 2, "non-pdf attachments are skipped")
	assert.Equal(t, []byte("%PDF first"), atts[0])
	assert.Equal(t, []byte("%PDF second"), atts[1])
}

func TestPDFAttachments_MalformedMessage(t *testing.T) {
	src := testMailbox(t, 0)
	_, err := src.pdfAttachments([]byte("not an rfc 5322 message"))
	assert.Error(t, err)
}

func TestSpool_NewestFirst(t *testing.T) {
	src := testMailbox(t, 0)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	payloads, err := src.spool(context.Background(), []fetchedMessage{
		{seq: 1, date: base, subject: "Work Order old", raw: pdfFixture(t, "old.pdf", []byte("old"))},
		{seq: 2, date: base.Add(time.Hour), subject: "Work Order new", raw: pdfFixture(t, "new.pdf", []byte("new"))},
	})
	require.NoError(t, err)
	defer cleanupAll(t, payloads)

	require.Len(t, payloads, 2)
	assert.Equal(t, []byte("new"), payloads[0].Raw)
	assert.Equal(t, []byte("old"), payloads[1].Raw)
}

func TestSpool_SubjectMarkerFilter(t *testing.T) {
	src := testMailbox(t, 0)
	now := time.Now()

	payloads, err := src.spool(context.Background(), []fetchedMessage{
		{seq: 1, date: now, subject: "Invoice 4471", raw: pdfFixture(t, "invoice.pdf", []byte("invoice"))},
		{seq: 2, date: now, subject: "Work Order 914578", raw: pdfFixture(t, "order.pdf", []byte("order"))},
	})
	require.NoError(t, err)
	defer cleanupAll(t, payloads)

	require.Len(t, payloads, 1)
	assert.Equal(t, []byte("order"), payloads[0].Raw)
}

func TestSpool_LimitStopsMidMessage(t *testing.T) {
	src := testMailbox(t, 2)

	raw := rawMessage(t,
		fixtureAttachment{contentType: "application/pdf", filename: "a.pdf", content: []byte("a")},
		fixtureAttachment{contentType: "application/pdf", filename: "b.pdf", content: []byte("b")},
		fixtureAttachment{contentType: "application/pdf", filename: "c.pdf", content: []byte("c")},
	)
	payloads, err := src.spool(context.Background(), []fetchedMessage{
		{seq: 1, date: time.Now(), subject: "Work Order", raw: raw},
	})
	require.NoError(t, err)
	defer cleanupAll(t, payloads)

	require.Len(t, payloads, 2)
	assert.Equal(t, []byte("a"), payloads[0].Raw)
	assert.Equal(t, []byte("b"), payloads[1].Raw)
}

func TestSpool_SkipsUnparsableMessages(t *testing.T) {
	src := testMailbox(t, 0)
	now := time.Now()

	payloads, err := src.spool(context.Background(), []fetchedMessage{
		{seq: 1, date: now.Add(time.Hour), subject: "Work Order bad", raw: []byte("garbage")},
		{seq: 2, date: now.Add(30 * time.Minute), subject: "Work Order empty", raw: nil},
		{seq: 3, date: now, subject: "Work Order good", raw: pdfFixture(t, "order.pdf", []byte("good"))},
	})
	require.NoError(t, err)
	defer cleanupAll(t, payloads)

	require.Len(t, payloads, 1)
	assert.Equal(t, []byte("good"), payloads[0].Raw)
}

func TestSpool_WritesAndRemovesTempFiles(t *testing.T) {
	src := testMailbox(t, 0)

	payloads, err := src.spool(context.Background(), []fetchedMessage{
		{seq: 1, date: time.Now(), subject: "Work Order", raw: pdfFixture(t, "order.pdf", []byte("content"))},
	})
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	data, err := os.ReadFile(payloads[0].Name)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, payloads[0].Cleanup())
	_, err = os.Stat(payloads[0].Name)
	assert.True(t, os.IsNotExist(err))
}

// staleContext reports cancellation after a fixed number of checks, so
// an abort can be forced partway through a run.
type staleContext struct {
	context.Context
	checksLeft int
}

func (c *staleContext) Err() error {
	if c.checksLeft <= 0 {
		return context.Canceled
	}
	c.checksLeft--
	return nil
}

func TestSpool_AbortReleasesSpooledFiles(t *testing.T) {
	src := testMailbox(t, 0)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// The first message spools a file, then cancellation hits before the
	// second; the already-spooled file must be removed.
	ctx := &staleContext{Context: context.Background(), checksLeft: 1}
	payloads, err := src.spool(ctx, []fetchedMessage{
		{seq: 1, date: base.Add(time.Hour), subject: "Work Order a", raw: pdfFixture(t, "a.pdf", []byte("a"))},
		{seq: 2, date: base, subject: "Work Order b", raw: pdfFixture(t, "b.pdf", []byte("b"))},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSourceIO)
	assert.Empty(t, payloads)

	entries, err := os.ReadDir(src.cfg.TmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "aborted fetch must not leave temp files behind")
}

func TestSpool_CanceledBeforeAnyWork(t *testing.T) {
	src := testMailbox(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	payloads, err := src.spool(ctx, []fetchedMessage{
		{seq: 1, date: time.Now(), subject: "Work Order", raw: pdfFixture(t, "a.pdf", []byte("a"))},
	})
	assert.ErrorIs(t, err, common.ErrSourceIO)
	assert.Empty(t, payloads)
}
