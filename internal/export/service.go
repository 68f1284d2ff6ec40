package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
)

// Service is a tiny façade over the work-order repository that produces
// XLSX bytes for exports.
type Service struct {
	workOrders repository.WorkOrderRepository
	logger     *slog.Logger
}

func NewService(workOrders repository.WorkOrderRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{workOrders: workOrders, logger: logger}
}

// ExportWorkOrdersXLSX returns an XLSX workbook (as bytes) with the
// owner's work orders, newest first.
func (s *Service) ExportWorkOrdersXLSX(ctx context.Context, ownerID uuid.UUID) ([]byte, error) {
	start := time.Now()

	orders, err := s.workOrders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query work orders: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Work Orders"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Project",
		"WO#",
		"PO#",
		"State",
		"Status",
		"Scheduled Date",
		"Project Manager",
		"Notes",
		"Remote Item",
		"Created",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, order := range orders {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, order.Project)
		write(2, order.WorkOrderNumber)
		write(3, order.PurchaseOrderNumber)
		write(4, order.Region)
		write(5, order.Status)
		write(6, order.ScheduledDate)
		write(7, order.ProjectManager)
		write(8, order.Notes)
		write(9, order.RemoteItemID)
		write(10, order.CreatedAt.Format("2006-01-02"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.workorders.ok",
		"owner_id", ownerID,
		"rows", len(orders),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
