package source

import "context"

// Submission is a structured direct submission (web form). No extraction
// stage runs for these.
type Submission struct {
	Project             string `json:"project" validate:"required"`
	WorkOrderNumber     string `json:"wo" validate:"required"`
	PurchaseOrderNumber string `json:"po,omitempty"`
	Region              string `json:"state,omitempty"`
	Status              string `json:"status,omitempty"`
	ScheduledDate       string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProjectManager      string `json:"pm,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// Payload is one unit of work yielded by a document source. Exactly one
// of Submission and Raw is set: structured direct submissions skip the
// extraction stage, raw document payloads go through it.
type Payload struct {
	Submission *Submission
	Raw        []byte
	// Name labels the payload for logs: a spool file path for mailbox
	// payloads, "direct" otherwise.
	Name string

	cleanup func() error
	cleaned bool
}

// NewPayload wraps raw document bytes with a cleanup for their backing
// artifact. Cleanup may be nil.
func NewPayload(raw []byte, name string, cleanup func() error) *Payload {
	return &Payload{Raw: raw, Name: name, cleanup: cleanup}
}

// NeedsExtraction reports whether the payload carries raw document bytes.
func (p *Payload) NeedsExtraction() bool {
	return p.Submission == nil
}

// Cleanup releases the payload's backing artifact. It runs the
// underlying cleanup at most once; later calls are no-ops.
func (p *Payload) Cleanup() error {
	if p.cleaned || p.cleanup == nil {
		p.cleaned = true
		return nil
	}
	p.cleaned = true
	return p.cleanup()
}

// Source yields payloads for the pipeline.
type Source interface {
	Fetch(ctx context.Context) ([]*Payload, error)
}

// DirectSource wraps a single caller-supplied submission.
type DirectSource struct {
	sub Submission
}

func NewDirectSource(sub Submission) *DirectSource {
	return &DirectSource{sub: sub}
}

func (s *DirectSource) Fetch(_ context.Context) ([]*Payload, error) {
	sub := s.sub
	return []*Payload{{Submission: &sub, Name: "direct"}}, nil
}
