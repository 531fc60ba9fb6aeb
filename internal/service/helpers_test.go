package service

import (
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agristock/internal/backup"
	"agristock/internal/model"
	"agristock/internal/repository"
	"agristock/internal/ws"
	"agristock/pkg/database"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

type recordingBackup struct {
	mu      sync.Mutex
	records []backup.Record
}

func (r *recordingBackup) Dispatch(rec backup.Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

func (r *recordingBackup) types() []backup.RecordType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]backup.RecordType, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Type
	}
	return out
}

type recordingNotifier struct {
	mu        sync.Mutex
	published []ws.Collection
}

func (n *recordingNotifier) Publish(cs ...ws.Collection) {
	n.mu.Lock()
	n.published = append(n.published, cs...)
	n.mu.Unlock()
}

type testEnv struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	counterRepo repository.CounterRepository
	dirRepo     repository.DirectoryRepository
	moveRepo    repository.MovementRepository

	ledger    StockLedger
	products  ProductService
	invoices  InvoiceService
	purchases PurchaseService
	directory DirectoryService
	reports   ReportService

	backup   *recordingBackup
	notifier *recordingNotifier
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: the in-memory database lives on it and transactions queue for it
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:          db,
		productRepo: repository.NewProductRepo(db),
		counterRepo: repository.NewCounterRepo(db),
		dirRepo:     repository.NewDirectoryRepo(db),
		moveRepo:    repository.NewMovementRepo(db),
		backup:      &recordingBackup{},
		notifier:    &recordingNotifier{},
	}
	invoiceRepo := repository.NewInvoiceRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)
	hooks := Hooks{Notifier: env.notifier, Backup: env.backup, Currency: "₹", Now: func() time.Time { return fixedNow }}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	env.ledger = NewStockLedger(db, env.productRepo, env.moveRepo)
	env.directory = NewDirectoryService(env.dirRepo, invoiceRepo, purchaseRepo, hooks)
	env.products = NewProductService(env.productRepo, env.moveRepo, env.ledger, hooks)
	env.invoices = NewInvoiceService(db, invoiceRepo, env.productRepo, env.counterRepo, env.ledger, env.directory, hooks)
	env.purchases = NewPurchaseService(db, purchaseRepo, env.productRepo, env.ledger, env.directory, node, hooks)
	env.reports = NewReportService(invoiceRepo, purchaseRepo, env.productRepo, env.moveRepo, func() time.Time { return fixedNow })
	return env
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Sub(got).Abs().LessThanOrEqual(d("0.01")), append([]interface{}{"want %s, got %s", want, got}, msgAndArgs...)...)
}

func (e *testEnv) seedProduct(t *testing.T, name string, stock int, price string) *model.Product {
	t.Helper()
	p, err := e.products.Create(&model.Product{
		Name:          name,
		GST:           d("18"),
		Stock:         stock,
		PurchasePrice: d(price),
		MinStock:      2,
	}, SystemActor)
	require.NoError(t, err)
	return p
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.Unscoped().First(&p, "id = ?", id).Error)
	return p.Stock
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

func saleLine(p *model.Product, qty int, price string) model.InvoiceItem {
	return model.InvoiceItem{ProductID: ref(p.ID), Name: p.Name, GST: p.GST, Price: d(price), Quantity: qty}
}

func newInvoice(customer, phone, address string, items ...model.InvoiceItem) *model.Invoice {
	return &model.Invoice{
		Date:            "2025-06-15",
		CustomerName:    customer,
		CustomerPhone:   phone,
		CustomerAddress: address,
		PaymentMode:     model.PaymentCash,
		Items:           items,
	}
}

func purchaseLine(p *model.Product, qty int, rateIncl string) model.PurchaseItem {
	return model.PurchaseItem{ProductID: ref(p.ID), Name: p.Name, GST: d("18"), RateIncl: d(rateIncl), Quantity: qty}
}

func newPurchase(supplier string, items ...model.PurchaseItem) *model.Purchase {
	return &model.Purchase{Date: "2025-06-10", SupplierName: supplier, InvoiceNo: "SUP-1", Items: items}
}
