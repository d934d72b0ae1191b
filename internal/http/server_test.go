package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"finca/internal/core"
	"finca/internal/log"
	"finca/internal/normalize"
	"finca/internal/report"
	"finca/internal/services"
)

type stubExtractor struct {
	raw map[string]any
	err error
}

func (s *stubExtractor) Extract(context.Context, string) (map[string]any, error) {
	return s.raw, s.err
}

type stubStore struct {
	saved   []core.Transaction
	saveErr error
	sums    map[core.TxnType]int64
	sumErr  error
}

func (s *stubStore) Save(_ context.Context, tx core.Transaction) (uuid.UUID, error) {
	if s.saveErr != nil {
		return uuid.Nil, s.saveErr
	}
	tx.ID = uuid.New()
	s.saved = append(s.saved, tx)
	return tx.ID, nil
}

func (s *stubStore) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	for _, tx := range s.saved {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, sql.ErrNoRows
}

func (s *stubStore) SumByType(_ context.Context, _ uuid.UUID, txType core.TxnType, _, _ core.Date) (int64, error) {
	if s.sumErr != nil {
		return 0, s.sumErr
	}
	return s.sums[txType], nil
}

func (s *stubStore) PendingLedgerSync(context.Context, int) ([]uuid.UUID, error) { return nil, nil }
func (s *stubStore) MarkLedgerSynced(context.Context, uuid.UUID) error           { return nil }
func (s *stubStore) MarkLedgerSyncError(context.Context, uuid.UUID) error        { return nil }
func (s *stubStore) Close() error                                                { return nil }

func goodRaw() map[string]any {
	return map[string]any{
		"date":             "2024-05-10",
		"activitycategory": "venta",
		"type":             "ingreso",
		"description":      "venta de café",
		"quantity":         50.0,
		"unit":             "kilos",
		"total_value":      400000.0,
	}
}

func newTestServer(ex services.Extractor, store *stubStore) *Server {
	logger := log.New(log.DefaultConfig())
	txSvc := services.NewTransactionService(ex, normalize.NewService(uuid.New()), store, nil)
	reportSvc := services.NewReportService(report.NewEngine(store))

	srv := NewServer(":0", txSvc, reportSvc, uuid.New(), logger)
	srv.now = func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) }
	return srv
}

func TestCreateMessage(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, store)

	body := strings.NewReader(`{"message": "vendí 50 kilos de café por 400.000"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	rec := httptest.NewRecorder()

	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" || resp.ID == uuid.Nil.String() {
		t.Error("response should carry the assigned transaction id")
	}
	if resp.Date != "2024-05-10" {
		t.Errorf("date = %s, want 2024-05-10", resp.Date)
	}
	if resp.Currency != "COP" {
		t.Errorf("currency = %s, want COP", resp.Currency)
	}
	if resp.UnitPrice == nil || *resp.UnitPrice != 8000 {
		t.Errorf("unit_price = %v, want derived 8000", resp.UnitPrice)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved = %d transactions, want 1", len(store.saved))
	}
}

func TestCreateMessageValidationError(t *testing.T) {
	raw := goodRaw()
	raw["activitycategory"] = "minería"
	srv := newTestServer(&stubExtractor{raw: raw}, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"message": "gasté en minería"}`))
	rec := httptest.NewRecorder()

	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422; body: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateMessageWithFarmID(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, store)

	farmID := uuid.NewString()
	body := strings.NewReader(`{"message": "vendí café", "farm_id": "` + farmID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.FarmID != farmID {
		t.Errorf("farm_id = %s, want the requested %s", resp.FarmID, farmID)
	}
}

func TestCreateMessageWithSourceMessageID(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, store)

	msgID := uuid.NewString()
	body := strings.NewReader(`{"message": "vendí café", "source_message_id": "` + msgID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SourceMessageID == nil || *resp.SourceMessageID != msgID {
		t.Errorf("source_message_id = %v, want the requested %s", resp.SourceMessageID, msgID)
	}
}

func TestCreateMessageWithRefDate(t *testing.T) {
	raw := goodRaw()
	delete(raw, "date")
	srv := newTestServer(&stubExtractor{raw: raw}, &stubStore{})

	body := strings.NewReader(`{"message": "vendí café", "ref_date": "2024-03-01"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Date != "2024-03-01" {
		t.Errorf("date = %s, want the requested reference date 2024-03-01", resp.Date)
	}
}

func TestCreateMessageBadBody(t *testing.T) {
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, &stubStore{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{`},
		{"empty message", `{"message": "  "}`},
		{"bad farm id", `{"message": "vendí café", "farm_id": "abc"}`},
		{"bad source message id", `{"message": "vendí café", "source_message_id": "abc"}`},
		{"bad ref date", `{"message": "vendí café", "ref_date": "15-05-2024"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Server.Handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateMessageMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestCreateMessageExtractionFailure(t *testing.T) {
	srv := newTestServer(&stubExtractor{err: errors.New("model timeout")}, &stubStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"message": "hola"}`))
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGetReport(t *testing.T) {
	store := &stubStore{sums: map[core.TxnType]int64{
		core.TxnIncome:  700000,
		core.TxnExpense: 300000,
	}}
	srv := newTestServer(&stubExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?period=semanal&ref_date=2024-05-15", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, line := range []string{
		"[ Reporte semanal ]",
		"Rango: 2024-05-13 - 2024-05-19",
		"Ingresos = 700.000 COP",
		"Gastos = 300.000 COP",
		"Total Ganancias = 400.000 COP",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("report missing %q:\n%s", line, body)
		}
	}
}

func TestGetReportDefaultsRefDateToToday(t *testing.T) {
	store := &stubStore{sums: map[core.TxnType]int64{}}
	srv := newTestServer(&stubExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?period=mensual", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Rango: 2024-05-01 - 2024-05-31") {
		t.Errorf("range should come from the fixed clock:\n%s", rec.Body.String())
	}
}

func TestGetReportBadRequests(t *testing.T) {
	srv := newTestServer(&stubExtractor{}, &stubStore{})

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing period", "/api/reports", http.StatusBadRequest},
		{"unsupported period", "/api/reports?period=decada", http.StatusBadRequest},
		{"bad farm id", "/api/reports?period=semanal&farm_id=abc", http.StatusBadRequest},
		{"bad ref date", "/api/reports?period=semanal&ref_date=15-05-2024", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			srv.Server.Handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestGetReportStoreFailure(t *testing.T) {
	store := &stubStore{sumErr: errors.New("connection reset")}
	srv := newTestServer(&stubExtractor{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/reports?period=anual", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestGetTransaction(t *testing.T) {
	store := &stubStore{}
	srv := newTestServer(&stubExtractor{raw: goodRaw()}, store)

	create := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"message": "vendí café"}`))
	createRec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(createRec, create)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("setup save failed: %d", createRec.Code)
	}
	id := store.saved[0].ID

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != id.String() {
		t.Errorf("id = %s, want %s", resp.ID, id)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	srv := newTestServer(&stubExtractor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetTransactionBadID(t *testing.T) {
	srv := newTestServer(&stubExtractor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/abc", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubExtractor{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s, want status ok", rec.Body.String())
	}
}
