package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/workorder-tracker/internal/common"
)

// PDFTextExtractor converts PDF bytes to plain text.
type PDFTextExtractor struct {
	logger *slog.Logger
}

func NewPDFTextExtractor(logger *slog.Logger) *PDFTextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTextExtractor{logger: logger}
}

// ToText extracts the text of every page, in order. Malformed input is
// reported as an extraction error; the pdf library panics on some
// corrupt cross-reference tables, so the call is recover-guarded.
func (e *PDFTextExtractor) ToText(ctx context.Context, raw []byte) (text string, err error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = common.NewExtractionError("pdf reader panic", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", common.NewExtractionError("open pdf", err)
	}

	body, err := r.GetPlainText()
	if err != nil {
		return "", common.NewExtractionError("read pdf text", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", common.NewExtractionError("read pdf text", err)
	}

	e.logger.Debug("extract.pdf.ok",
		"pages", r.NumPage(),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.String(), nil
}
