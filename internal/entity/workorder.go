package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrder is the canonical work-order record shared by all pipeline
// stages and the serving layer.
type WorkOrder struct {
	ID                  uuid.UUID `json:"id"`
	Project             string    `json:"project"`
	WorkOrderNumber     string    `json:"wo"`
	PurchaseOrderNumber string    `json:"po,omitempty"`
	Region              string    `json:"state,omitempty"`
	Status              string    `json:"status,omitempty"`
	ScheduledDate       string    `json:"date,omitempty"` // ISO calendar date (YYYY-MM-DD)
	ProjectManager      string    `json:"pm,omitempty"`
	Notes               string    `json:"notes,omitempty"`

	// OwnerID is the submitting principal. Assigned at persistence time,
	// never sent to the board.
	OwnerID uuid.UUID `json:"owner_id"`

	// RemoteItemID is the board's key for this record. Its presence is the
	// durable witness that the remote push succeeded.
	RemoteItemID string `json:"remote_item_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Title is the display title sent to the board.
func (w *WorkOrder) Title() string {
	project := w.Project
	if project == "" {
		project = "Work Order"
	}
	return project + " - WO#" + w.WorkOrderNumber
}
