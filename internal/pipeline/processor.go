// Package pipeline sequences source -> extract -> validate -> sync ->
// persist -> cleanup for each unit of work, enforcing the commit
// ordering invariant: the local store is written only after the remote
// board accepted the record.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/workorder-tracker/constants"
	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
	"github.com/joseph-ayodele/workorder-tracker/internal/extract"
	"github.com/joseph-ayodele/workorder-tracker/internal/source"
)

// State is a pipeline stage reached by a unit of work.
type State string

const (
	StateFetched   State = "Fetched"
	StateExtracted State = "Extracted"
	StateValidated State = "Validated"
	StateSynced    State = "Synced"
	StatePersisted State = "Persisted"
	StateCleanedUp State = "CleanedUp"

	// Terminal failure states.
	StateRejected   State = "Rejected"   // validation failed, no side effects attempted
	StateSyncFailed State = "SyncFailed" // remote push failed, local store untouched
)

// Syncer pushes a canonical record to the remote board.
type Syncer interface {
	Push(ctx context.Context, w *entity.WorkOrder) (string, error)
}

// Store persists synced records.
type Store interface {
	Insert(ctx context.Context, w *entity.WorkOrder) (uuid.UUID, error)
}

// UnitResult is the outcome of one payload's state-machine run. State is
// the furthest stage reached (or a terminal failure state); Err is nil
// only when the unit persisted.
type UnitResult struct {
	State     State
	WorkOrder *entity.WorkOrder
	Err       error
}

// BatchResult aggregates per-unit outcomes of a batch run.
type BatchResult struct {
	Results   []UnitResult
	Succeeded int
	Failed    int
}

// Processor coordinates the pipeline stages.
type Processor struct {
	logger *slog.Logger
	text   extract.TextExtractor
	fields *extract.FieldExtractor
	sync   Syncer
	store  Store
}

func NewProcessor(logger *slog.Logger, text extract.TextExtractor, fields *extract.FieldExtractor, sync Syncer, store Store) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if fields == nil {
		fields = extract.NewFieldExtractor(nil)
	}
	return &Processor{logger: logger, text: text, fields: fields, sync: sync, store: store}
}

// ProcessUnit runs one payload through the full state machine. The
// payload's cleanup runs exactly once, whatever stage the unit dies in:
// a spooled attachment must not leak even when sync fails. Direct
// submissions have nothing to clean.
func (p *Processor) ProcessUnit(ctx context.Context, payload *source.Payload, ownerID uuid.UUID) UnitResult {
	defer func() {
		if err := payload.Cleanup(); err != nil {
			p.logger.Warn("pipeline.cleanup.failed", "payload", payload.Name, "error", err)
		}
	}()

	w, err := p.buildRecord(ctx, payload)
	if err != nil {
		p.logger.Warn("pipeline.extract.failed", "payload", payload.Name, "error", err)
		return UnitResult{State: StateFetched, Err: err}
	}

	// Extracted -> Validated
	if w.Project == "" || w.WorkOrderNumber == "" {
		err := common.NewValidationError("project and wo are required")
		p.logger.Warn("pipeline.validate.rejected", "payload", payload.Name, "project", w.Project, "wo", w.WorkOrderNumber)
		return UnitResult{State: StateRejected, WorkOrder: w, Err: err}
	}

	// Validated -> Synced. On failure the local store is never written.
	remoteID, err := p.sync.Push(ctx, w)
	if err != nil {
		if !errors.Is(err, common.ErrRemoteSync) {
			err = common.NewRemoteSyncError("remote push failed", err)
		}
		p.logger.Error("pipeline.sync.failed", "payload", payload.Name, "wo", w.WorkOrderNumber, "error", err)
		return UnitResult{State: StateSyncFailed, WorkOrder: w, Err: err}
	}
	w.RemoteItemID = remoteID

	// Synced -> Persisted. A failure here leaves the board holding an
	// item we do not: fatal inconsistency, reported distinctly.
	w.OwnerID = ownerID
	if _, err := p.store.Insert(ctx, w); err != nil {
		perr := common.NewPersistenceError("local write failed after remote push", err)
		p.logger.Error("pipeline.persist.inconsistency",
			"payload", payload.Name,
			"wo", w.WorkOrderNumber,
			"remote_item_id", w.RemoteItemID,
			"error", err,
		)
		return UnitResult{State: StateSynced, WorkOrder: w, Err: perr}
	}

	p.logger.Info("pipeline.unit.persisted",
		"payload", payload.Name,
		"id", w.ID,
		"wo", w.WorkOrderNumber,
		"remote_item_id", w.RemoteItemID,
	)
	if err := payload.Cleanup(); err != nil {
		p.logger.Warn("pipeline.cleanup.failed", "payload", payload.Name, "error", err)
	}
	return UnitResult{State: StateCleanedUp, WorkOrder: w}
}

// buildRecord produces the transient canonical record: field extraction
// for document payloads, a straight mapping for direct submissions.
func (p *Processor) buildRecord(ctx context.Context, payload *source.Payload) (*entity.WorkOrder, error) {
	if !payload.NeedsExtraction() {
		sub := payload.Submission
		status := sub.Status
		if status == "" {
			status = string(constants.StatusPending)
		}
		return &entity.WorkOrder{
			Project:             sub.Project,
			WorkOrderNumber:     sub.WorkOrderNumber,
			PurchaseOrderNumber: sub.PurchaseOrderNumber,
			Region:              sub.Region,
			Status:              status,
			ScheduledDate:       sub.ScheduledDate,
			ProjectManager:      sub.ProjectManager,
			Notes:               sub.Notes,
		}, nil
	}

	text, err := p.text.ToText(ctx, payload.Raw)
	if err != nil {
		if !errors.Is(err, common.ErrExtraction) {
			err = common.NewExtractionError("text extraction failed", err)
		}
		return nil, err
	}

	f := p.fields.Extract(text)
	// Status stays absent on extracted submissions.
	return &entity.WorkOrder{
		Project:             f.Project,
		WorkOrderNumber:     f.WorkOrderNumber,
		PurchaseOrderNumber: f.PurchaseOrderNumber,
		Region:              f.Region,
		ProjectManager:      f.ProjectManager,
		Notes:               f.Notes,
	}, nil
}

// ProcessBatch fetches payloads from src and runs each through the state
// machine sequentially. One payload's failure never aborts the rest;
// failures are collected per payload. A source fetch failure aborts the
// whole batch before any unit ran.
func (p *Processor) ProcessBatch(ctx context.Context, src source.Source, ownerID uuid.UUID) (BatchResult, error) {
	payloads, err := src.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrSourceIO) {
			err = common.NewSourceIOError("fetch payloads", err)
		}
		return BatchResult{}, err
	}

	var batch BatchResult
	for _, payload := range payloads {
		res := p.ProcessUnit(ctx, payload, ownerID)
		batch.Results = append(batch.Results, res)
		if res.Err != nil {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}

	p.logger.Info("pipeline.batch.done",
		"units", len(batch.Results),
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
	)
	return batch, nil
}
