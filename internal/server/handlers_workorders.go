package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/workorder-tracker/constants"
	"github.com/joseph-ayodele/workorder-tracker/internal/common"
	"github.com/joseph-ayodele/workorder-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
	"github.com/joseph-ayodele/workorder-tracker/internal/source"
)

// maxUploadBytes bounds a single PDF upload.
const maxUploadBytes = 20 << 20

func (s *Server) handleListWorkOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := s.workOrders.ListByOwner(r.Context(), principal.ID)
	if err != nil {
		s.logger.Error("server.workorders.list_failed", "owner_id", principal.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list work orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workorders": orders})
}

func (s *Server) handleGetWorkOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid work order id")
		return
	}

	order, err := s.workOrders.GetByID(r.Context(), id, principal.ID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "work order not found")
		return
	}
	if err != nil {
		s.logger.Error("server.workorders.get_failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load work order")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"workorder": order})
}

func (s *Server) handleCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var sub source.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(sub); err != nil {
		writeError(w, http.StatusBadRequest, "project and wo are required")
		return
	}
	if sub.Region != "" && !constants.IsRegion(sub.Region) {
		writeError(w, http.StatusBadRequest, "unknown state code")
		return
	}
	if sub.Status != "" && !constants.IsStatus(sub.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	batch, err := s.processor.ProcessBatch(r.Context(), source.NewDirectSource(sub), principal.ID)
	if err != nil {
		s.logger.Error("server.workorders.create_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create work order")
		return
	}
	s.respondUnitResult(w, batch.Results[0], http.StatusCreated, "work order created successfully")
}

func (s *Server) handleUploadWorkOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "pdf file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		writeError(w, http.StatusBadRequest, "only pdf files are allowed")
		return
	}
	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	payload := source.NewPayload(raw, header.Filename, nil)
	res := s.processor.ProcessUnit(r.Context(), payload, principal.ID)
	s.respondUnitResult(w, res, http.StatusCreated, "work order extracted and created successfully")
}

// respondUnitResult maps a pipeline outcome to an HTTP response,
// distinguishing the pipeline failure kinds.
func (s *Server) respondUnitResult(w http.ResponseWriter, res pipeline.UnitResult, okStatus int, okMessage string) {
	switch {
	case res.Err == nil:
		writeJSON(w, okStatus, map[string]any{
			"message":   okMessage,
			"id":        res.WorkOrder.ID,
			"workorder": res.WorkOrder,
		})
	case errors.Is(res.Err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, "project and wo are required")
	case errors.Is(res.Err, common.ErrExtraction):
		writeError(w, http.StatusBadRequest, "could not extract data from the document")
	case errors.Is(res.Err, common.ErrRemoteSync):
		writeError(w, http.StatusBadGateway, fmt.Sprintf("failed to send to board: %v", res.Err))
	case errors.Is(res.Err, common.ErrPersistence):
		// The board holds an item the store does not. Surface loudly.
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("inconsistent state: record synced remotely but not stored locally: %v", res.Err))
	default:
		writeError(w, http.StatusInternalServerError, "failed to process work order")
	}
}

func (s *Server) handleExportWorkOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	data, err := s.exporter.ExportWorkOrdersXLSX(r.Context(), principal.ID)
	if err != nil {
		s.logger.Error("server.workorders.export_failed", "owner_id", principal.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export work orders")
		return
	}

	filename := fmt.Sprintf("workorders_%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
