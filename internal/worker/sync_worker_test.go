package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"finca/internal/amqp"
	"finca/internal/core"
	"finca/internal/ledger/memory"
)

// fakeStore implements just enough of storage.TransactionStore for the
// worker paths under test.
type fakeStore struct {
	txs        map[uuid.UUID]core.Transaction
	pending    []uuid.UUID
	synced     []uuid.UUID
	syncErrors []uuid.UUID
	getErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: map[uuid.UUID]core.Transaction{}}
}

func (f *fakeStore) add(tx core.Transaction) uuid.UUID {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	f.txs[tx.ID] = tx
	f.pending = append(f.pending, tx.ID)
	return tx.ID
}

func (f *fakeStore) Save(_ context.Context, tx core.Transaction) (uuid.UUID, error) {
	return f.add(tx), nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	if f.getErr != nil {
		return core.Transaction{}, f.getErr
	}
	tx, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, errors.New("not found")
	}
	return tx, nil
}

func (f *fakeStore) SumByType(context.Context, uuid.UUID, core.TxnType, core.Date, core.Date) (int64, error) {
	return 0, nil
}

func (f *fakeStore) PendingLedgerSync(_ context.Context, limit int) ([]uuid.UUID, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeStore) MarkLedgerSynced(_ context.Context, id uuid.UUID) error {
	f.synced = append(f.synced, id)
	f.removePending(id)
	return nil
}

func (f *fakeStore) MarkLedgerSyncError(_ context.Context, id uuid.UUID) error {
	f.syncErrors = append(f.syncErrors, id)
	f.removePending(id)
	return nil
}

func (f *fakeStore) removePending(id uuid.UUID) {
	out := f.pending[:0]
	for _, p := range f.pending {
		if p != id {
			out = append(out, p)
		}
	}
	f.pending = out
}

func (f *fakeStore) Close() error { return nil }

func validTransaction() core.Transaction {
	total := int64(120000)
	return core.Transaction{
		FarmID:      uuid.New(),
		Date:        core.NewDate(2024, 5, 10),
		Category:    core.CategorySale,
		Type:        core.TxnIncome,
		Description: "venta de plátano",
		TotalValue:  &total,
		Currency:    core.CurrencyCOP,
	}
}

func TestHandleSyncMessage(t *testing.T) {
	store := newFakeStore()
	appender := memory.New()
	w := NewSyncWorker(store, appender, 10)

	id := store.add(validTransaction())

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(id)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	if got := appender.Items(); len(got) != 1 || got[0].ID != id {
		t.Errorf("ledger items = %v, want one entry with id %s", got, id)
	}
	if len(store.synced) != 1 || store.synced[0] != id {
		t.Errorf("synced = %v, want [%s]", store.synced, id)
	}
	if len(store.syncErrors) != 0 {
		t.Errorf("syncErrors = %v, want none", store.syncErrors)
	}
}

func TestHandleSyncMessageStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("database locked")
	w := NewSyncWorker(store, memory.New(), 10)

	id := store.add(validTransaction())

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(id)); err == nil {
		t.Fatal("HandleSyncMessage should fail when the store read fails")
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != id {
		t.Errorf("syncErrors = %v, want [%s]", store.syncErrors, id)
	}
}

func TestHandleSyncMessageAppendFailure(t *testing.T) {
	store := newFakeStore()
	w := NewSyncWorker(store, memory.New(), 10)

	tx := validTransaction()
	tx.Category = "categoría inválida"
	id := store.add(tx)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(id)); err == nil {
		t.Fatal("HandleSyncMessage should fail when the ledger rejects the row")
	}
	if len(store.syncErrors) != 1 {
		t.Errorf("syncErrors = %v, want one entry", store.syncErrors)
	}
}

func TestProcessPending(t *testing.T) {
	store := newFakeStore()
	appender := memory.New()
	w := NewSyncWorker(store, appender, 10)

	first := store.add(validTransaction())
	second := store.add(validTransaction())

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}

	if got := appender.Items(); len(got) != 2 {
		t.Fatalf("ledger items = %d, want 2", len(got))
	}
	if len(store.synced) != 2 {
		t.Errorf("synced = %v, want both %s and %s", store.synced, first, second)
	}
	if len(store.pending) != 0 {
		t.Errorf("pending = %v, want empty after processing", store.pending)
	}
}

func TestProcessPendingEmpty(t *testing.T) {
	w := NewSyncWorker(newFakeStore(), memory.New(), 10)
	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending with nothing pending: %v", err)
	}
}

func TestStartupSyncCheckContinuesPastFailures(t *testing.T) {
	store := newFakeStore()
	appender := memory.New()
	w := NewSyncWorker(store, appender, 10)

	bad := validTransaction()
	bad.Category = "categoría inválida"
	store.add(bad)
	good := store.add(validTransaction())

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}

	if got := appender.Items(); len(got) != 1 || got[0].ID != good {
		t.Errorf("ledger items = %v, want only the valid transaction %s", got, good)
	}
	if len(store.syncErrors) != 1 {
		t.Errorf("syncErrors = %v, want the invalid transaction marked", store.syncErrors)
	}
}
