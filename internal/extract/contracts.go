package extract

import "context"

// TextExtractor is Stage 1: raw document payload -> plain text.
type TextExtractor interface {
	ToText(ctx context.Context, raw []byte) (string, error)
}

// Fields is the candidate record produced by Stage 2. Missing fields
// resolve to empty strings; extraction never fails.
type Fields struct {
	Project             string `json:"project"`
	WorkOrderNumber     string `json:"wo"`
	PurchaseOrderNumber string `json:"po"`
	Region              string `json:"state"`
	Notes               string `json:"notes"`
	ProjectManager      string `json:"pm"`
}
