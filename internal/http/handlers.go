package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"finca/internal/core"
	"finca/internal/report"
	"finca/internal/storage"
)

const maxMessageBody = 64 * 1024

type createMessageRequest struct {
	Message         string `json:"message"`
	FarmID          string `json:"farm_id"`
	SourceMessageID string `json:"source_message_id"`
	RefDate         string `json:"ref_date"`
}

type transactionResponse struct {
	ID              string   `json:"id"`
	FarmID          string   `json:"farm_id"`
	Date            string   `json:"date"`
	Category        string   `json:"activitycategory"`
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Quantity        *float64 `json:"quantity,omitempty"`
	Unit            *string  `json:"unit,omitempty"`
	UnitPrice       *int64   `json:"unit_price,omitempty"`
	TotalValue      *int64   `json:"total_value,omitempty"`
	Currency        string   `json:"currency"`
	SourceMessageID *string  `json:"source_message_id,omitempty"`
}

func toResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID.String(),
		FarmID:      tx.FarmID.String(),
		Date:        tx.Date.ISO(),
		Category:    string(tx.Category),
		Type:        string(tx.Type),
		Description: tx.Description,
		Quantity:    tx.Quantity,
		Unit:        tx.Unit,
		UnitPrice:   tx.UnitPrice,
		TotalValue:  tx.TotalValue,
		Currency:    tx.Currency,
	}
	if tx.SourceMessageID != nil {
		s := tx.SourceMessageID.String()
		resp.SourceMessageID = &s
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req createMessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	farmID := s.defaultFarmID
	if raw := strings.TrimSpace(req.FarmID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "farm_id must be a UUID")
			return
		}
		farmID = id
	}

	var msgID *uuid.UUID
	if raw := strings.TrimSpace(req.SourceMessageID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "source_message_id must be a UUID")
			return
		}
		msgID = &id
	}

	ref := core.DateOf(s.now())
	if raw := strings.TrimSpace(req.RefDate); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ref_date must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	tx, err := s.transactions.ProcessMessage(r.Context(), farmID, msgID, req.Message, ref)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toResponse(tx))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()

	periodLabel := strings.TrimSpace(q.Get("period"))
	if periodLabel == "" {
		writeError(w, http.StatusBadRequest, "period is required")
		return
	}

	farmID := s.defaultFarmID
	if raw := strings.TrimSpace(q.Get("farm_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "farm_id must be a UUID")
			return
		}
		farmID = id
	}

	ref := core.DateOf(s.now())
	if raw := strings.TrimSpace(q.Get("ref_date")); raw != "" {
		parsed, err := core.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "ref_date must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	text, err := s.reports.BuildReport(r.Context(), periodLabel, farmID, ref)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "transaction id must be a UUID")
		return
	}

	tx, err := s.transactions.GetTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(toResponse(tx))
}

// writeDomainError maps pipeline failures to status codes: bad input data is
// 422, an unknown period label is 400, everything else is 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *core.ValidationError
	var pErr *report.UnsupportedPeriodError
	var sErr *storage.StoreError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusUnprocessableEntity, vErr.Error())
	case errors.As(err, &pErr):
		writeError(w, http.StatusBadRequest, pErr.Error())
	case errors.As(err, &sErr):
		s.logger.ErrorContext(r.Context(), "Storage failure", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
