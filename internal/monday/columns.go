package monday

import (
	"github.com/joseph-ayodele/workorder-tracker/constants"
	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
)

// Board column ids. These are fixed keys of the target board's schema.
const (
	colProject = "text_mkvp3tbt"
	colWO      = "numeric_mkvpgyf4"
	colPO      = "numeric_mkvpmh9a"
	colNotes   = "long_text_mkvp79an"
	colRegion  = "dropdown_mkvppn8"
	colStatus  = "status"
	colDate    = "date4"
)

// ColumnValues maps a work order onto the board's columns. Optional
// fields that are absent are omitted entirely: the board rejects empty
// values for its typed columns (date, single-select, dropdown), so an
// empty string must never be sent for them.
func ColumnValues(w *entity.WorkOrder) map[string]any {
	values := map[string]any{
		colProject: w.Project,
		colWO:      w.WorkOrderNumber,
	}
	if w.PurchaseOrderNumber != "" {
		values[colPO] = w.PurchaseOrderNumber
	}
	if w.Notes != "" {
		values[colNotes] = w.Notes
	}
	if w.Region != "" {
		values[colRegion] = map[string]any{"labels": []string{w.Region}}
	}
	if w.Status != "" {
		values[colStatus] = map[string]any{"label": constants.BoardLabel(constants.Status(w.Status))}
	}
	if w.ScheduledDate != "" {
		values[colDate] = map[string]any{"date": w.ScheduledDate}
	}
	return values
}
