package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/workorder-tracker/internal/entity"
)

// ErrNotFound is returned when a record does not exist for the caller.
var ErrNotFound = errors.New("not found")

// WorkOrderRepository persists canonical work orders. Records are
// immutable once inserted; there is no update path.
type WorkOrderRepository interface {
	// Insert persists a synced record, assigning its id and created_at.
	// The record must carry a remote item id: the store never holds a
	// record the board does not have.
	Insert(ctx context.Context, w *entity.WorkOrder) (uuid.UUID, error)
	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.WorkOrder, error)
	// GetByID is scoped strictly to the owner: another owner's record
	// reports ErrNotFound, never leaks.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.WorkOrder, error)
}

type workOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWorkOrderRepository(db *sql.DB, logger *slog.Logger) WorkOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &workOrderRepository{db: db, logger: logger}
}

const workOrderColumns = `id, project, wo, po, state, status, date, pm, notes, remote_item_id, owner_id, created_at`

func (r *workOrderRepository) Insert(ctx context.Context, w *entity.WorkOrder) (uuid.UUID, error) {
	if w.Project == "" || w.WorkOrderNumber == "" {
		return uuid.Nil, errors.New("project and wo are required")
	}
	if w.RemoteItemID == "" {
		return uuid.Nil, errors.New("refusing to persist record without a remote item id")
	}
	if w.OwnerID == uuid.Nil {
		return uuid.Nil, errors.New("owner id is required")
	}

	w.ID = uuid.New()
	w.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workorders (`+workOrderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.Project, w.WorkOrderNumber, w.PurchaseOrderNumber,
		w.Region, w.Status, w.ScheduledDate, w.ProjectManager, w.Notes,
		w.RemoteItemID, w.OwnerID.String(), w.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		r.logger.Error("repository.workorder.insert_failed", "owner_id", w.OwnerID, "error", err)
		return uuid.Nil, fmt.Errorf("insert work order: %w", err)
	}
	return w.ID, nil
}

func (r *workOrderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.WorkOrder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workOrderColumns+` FROM workorders WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("repository.workorder.rows_close_error", "error", err)
		}
	}()

	var out []*entity.WorkOrder
	for rows.Next() {
		w, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	return out, nil
}

func (r *workOrderRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.WorkOrder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+workOrderColumns+` FROM workorders WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String(),
	)
	w, err := scanWorkOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get work order: %w", err)
	}
	return w, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkOrder(row rowScanner) (*entity.WorkOrder, error) {
	var w entity.WorkOrder
	var id, owner, createdAt string
	if err := row.Scan(
		&id, &w.Project, &w.WorkOrderNumber, &w.PurchaseOrderNumber,
		&w.Region, &w.Status, &w.ScheduledDate, &w.ProjectManager, &w.Notes,
		&w.RemoteItemID, &owner, &createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	if w.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse work order id: %w", err)
	}
	if w.OwnerID, err = uuid.Parse(owner); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	if w.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &w, nil
}
