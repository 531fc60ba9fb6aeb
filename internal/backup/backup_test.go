package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agristock/internal/model"
	"agristock/internal/repository"
	"agristock/pkg/database"
)

type fakeReplicator struct {
	mu   sync.Mutex
	sent []Record
	fail error
}

func (f *fakeReplicator) Replicate(_ context.Context, rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, rec)
	return nil
}

func (f *fakeReplicator) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeReplicator) types() []RecordType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordType, len(f.sent))
	for i, r := range f.sent {
		out[i] = r.Type
	}
	return out
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestFromInvoice(t *testing.T) {
	id := uuid.New()
	inv := &model.Invoice{
		DisplayID:     "INV-0007",
		Date:          "2025-06-15",
		CustomerName:  "Ravi",
		CustomerPhone: "9000000001",
		TotalAmount:   decimal.RequireFromString("1586"),
		Items: []model.InvoiceItem{
			{ProductID: &id, Name: "Urea", Quantity: 2, Price: decimal.RequireFromString("118")},
			{ProductID: &id, Name: "DAP", Quantity: 1, Price: decimal.RequireFromString("1350.5")},
		},
	}

	rec := FromInvoice(TypeSale, inv, "₹")
	assert.Equal(t, TypeSale, rec.Type)
	assert.Equal(t, "INV-0007", rec.ID)
	assert.Equal(t, "Ravi", rec.PartyName)
	assert.Equal(t, "Urea (2 x ₹118), DAP (1 x ₹1350.5)", rec.Items)

	row := rec.Row()
	require.Len(t, row, len(Header))
	assert.Equal(t, "SALE", row[0])
	assert.Equal(t, 1586.0, row[7])
}

func TestFromPurchase_CarriesReference(t *testing.T) {
	p := &model.Purchase{
		DisplayID:    "PUR-1",
		SupplierName: "Agro Traders",
		InvoiceNo:    "AT/778",
		Items:        []model.PurchaseItem{{Name: "Potash", Quantity: 10, RateIncl: decimal.RequireFromString("105")}},
	}
	rec := FromPurchase(TypePurchaseUpdate, p, "₹")
	assert.Equal(t, "AT/778", rec.ReferenceNo)
	assert.Equal(t, "Potash (10 x ₹105)", rec.Items)
}

func TestDeletionAndProductRecords(t *testing.T) {
	at := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	del := Deletion(TypeDeleteSale, "INV-0001", at)
	assert.Equal(t, "Unknown", del.PartyName)
	assert.Equal(t, "2025-06-15", del.Date)

	p := &model.Product{Name: "Urea", Category: "Fertilizer", Unit: "Bag", Stock: 4, PurchasePrice: decimal.RequireFromString("90")}
	rec := FromProduct(TypeProduct, p, at)
	assert.Equal(t, "Fertilizer", rec.PartyName)
	assert.True(t, rec.Total.Equal(decimal.RequireFromString("90")))
	assert.Equal(t, "Urea: 4 Bag in stock", rec.Items)
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	r := &fakeReplicator{}
	d := NewDispatcher(r, nil)

	d.Dispatch(Record{Type: TypeCustomer, ID: "a"})
	d.Dispatch(Record{Type: TypeSupplier, ID: "b"})
	d.Wait()

	assert.ElementsMatch(t, []RecordType{TypeCustomer, TypeSupplier}, r.types())
}

func TestDispatcher_DisabledIsNoop(t *testing.T) {
	d := NewDispatcher(nil, nil)
	assert.False(t, d.Enabled())
	d.Dispatch(Record{Type: TypeSale})
	d.Wait()

	var nilDispatcher *Dispatcher
	assert.False(t, nilDispatcher.Enabled())
}

func TestDispatcher_PersistsFailuresAndRetries(t *testing.T) {
	db := newTestDB(t)
	failures := repository.NewReplicationFailureRepo(db)
	r := &fakeReplicator{fail: errors.New("sheet unavailable")}
	d := NewDispatcher(r, failures)

	d.Dispatch(Record{Type: TypeSale, ID: "INV-0001", Total: decimal.NewFromInt(236)})
	d.Wait()

	pending, err := failures.FindUnresolved(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "SALE", pending[0].Type)
	assert.Equal(t, "INV-0001", pending[0].RecordID)
	assert.Equal(t, "sheet unavailable", pending[0].Error)

	n, err := d.RetryFailures(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	pending, err = failures.FindUnresolved(0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)

	r.setFail(nil)
	n, err = d.RetryFailures(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, r.sent, 1)
	assert.Equal(t, "INV-0001", r.sent[0].ID)

	pending, err = failures.FindUnresolved(0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncer_RunsCollectionsInOrder(t *testing.T) {
	db := newTestDB(t)
	products := repository.NewProductRepo(db)
	directory := repository.NewDirectoryRepo(db)
	purchases := repository.NewPurchaseRepo(db)
	invoices := repository.NewInvoiceRepo(db)

	require.NoError(t, directory.UpsertCustomer(nil, &model.Customer{Key: "ravi", Name: "Ravi"}))
	require.NoError(t, directory.UpsertSupplier(nil, &model.Supplier{Key: "agro", Name: "Agro"}))
	p := &model.Product{Name: "Urea", PurchasePrice: decimal.NewFromInt(90)}
	require.NoError(t, products.Create(nil, p))
	require.NoError(t, purchases.Create(db, &model.Purchase{
		DisplayID: "PUR-1", Date: "2025-06-01", SupplierName: "Agro",
		Items: []model.PurchaseItem{{ProductID: &p.ID, Name: "Urea", Quantity: 1}},
	}))
	require.NoError(t, invoices.Create(db, &model.Invoice{
		DisplayID: "INV-0001", Sequence: 1, Date: "2025-06-02", CustomerName: "Ravi",
		Items: []model.InvoiceItem{{ProductID: &p.ID, Name: "Urea", Quantity: 1, Price: decimal.NewFromInt(118)}},
	}))

	r := &fakeReplicator{}
	s := NewSyncer(r, directory, products, purchases, invoices, "₹")
	s.Delay = 0

	var progress []string
	n, err := s.Run(context.Background(), func(msg string) { progress = append(progress, msg) })
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []RecordType{TypeCustomer, TypeSupplier, TypeProduct, TypePurchase, TypeSale}, r.types())
	assert.Equal(t, "Fetching Customers...", progress[0])
	assert.Equal(t, "Backup Complete!", progress[len(progress)-1])

	r.setFail(errors.New("quota"))
	n, err = s.Run(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestSyncer_ScheduleRejectsBadSpec(t *testing.T) {
	s := NewSyncer(&fakeReplicator{}, nil, nil, nil, nil, "₹")
	_, err := s.Schedule("every day")
	assert.Error(t, err)

	c, err := s.Schedule("0 2 * * *")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}

func TestWebhookReplicator(t *testing.T) {
	var got Record
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil || got.Type == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.ID == "reject" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhookReplicator(srv.URL, time.Second)
	require.NoError(t, w.Replicate(context.Background(), Record{Type: TypeCustomer, ID: "ravi", PartyName: "Ravi", Total: decimal.Zero}))
	assert.Equal(t, "Ravi", got.PartyName)

	err := w.Replicate(context.Background(), Record{Type: TypeCustomer, ID: "reject", Total: decimal.Zero})
	assert.Error(t, err)
}

func TestSpreadsheetID(t *testing.T) {
	id, err := SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = SpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}
