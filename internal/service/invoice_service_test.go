package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agristock/internal/backup"
	"agristock/internal/model"
)

func TestInvoiceCreate_DecrementsStockAndNumbers(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	inv, err := env.invoices.Create(newInvoice("Ravi", "9000000001", "Village A", saleLine(urea, 2, "118")), SystemActor)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv.DisplayID)
	assert.Equal(t, int64(1), inv.Sequence)
	assertDecimal(t, "236", inv.TotalAmount)
	assert.Equal(t, 8, env.stockOf(t, urea.ID))

	require.True(t, inv.Items[0].CostPrice.Valid, "cost snapshot is taken at create")
	assertDecimal(t, "90", inv.Items[0].CostPrice.Decimal)
	assert.Equal(t, model.DefaultUnit, inv.Items[0].Unit)

	stored, err := env.invoices.Get(inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Urea", stored.Items[0].Name)

	moves, err := env.invoices.Movements(inv.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, model.MovementOut, moves[0].Type)
	assert.Equal(t, model.ReasonSale, moves[0].Reason)
	assert.Equal(t, 8, moves[0].StockAfter)

	assert.Contains(t, env.backup.types(), backup.TypeSale)
}

func TestInvoiceCreate_ThenDeleteRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")
	dap := env.seedProduct(t, "DAP", 5, "1200")

	inv, err := env.invoices.Create(newInvoice("Ravi", "", "", saleLine(urea, 3, "300"), saleLine(dap, 1, "1350"), saleLine(urea, 1, "300")), SystemActor)
	require.NoError(t, err)
	assert.Equal(t, 6, env.stockOf(t, urea.ID))
	assert.Equal(t, 4, env.stockOf(t, dap.ID))

	require.NoError(t, env.invoices.Delete(inv.ID, SystemActor))
	assert.Equal(t, 10, env.stockOf(t, urea.ID))
	assert.Equal(t, 5, env.stockOf(t, dap.ID))

	_, err = env.invoices.Get(inv.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	err = env.invoices.Delete(inv.ID, SystemActor)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Equal(t, 10, env.stockOf(t, urea.ID), "a second delete must not move stock")
}

func TestInvoiceUpdate_SameItemsLeavesStock(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	inv, err := env.invoices.Create(newInvoice("Ravi", "", "", saleLine(urea, 4, "118")), SystemActor)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = env.invoices.Update(inv.ID, newInvoice("Ravi", "", "", saleLine(urea, 4, "118")), SystemActor)
		require.NoError(t, err)
		assert.Equal(t, 6, env.stockOf(t, urea.ID))
	}
}

func TestInvoiceUpdate_ReconcilesChangedLines(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")
	dap := env.seedProduct(t, "DAP", 10, "1200")

	inv, err := env.invoices.Create(newInvoice("Ravi", "", "", saleLine(urea, 3, "118")), SystemActor)
	require.NoError(t, err)

	updated, err := env.invoices.Update(inv.ID, newInvoice("Ravi", "", "", saleLine(urea, 1, "118"), saleLine(dap, 2, "1350")), SystemActor)
	require.NoError(t, err)

	assert.Equal(t, inv.DisplayID, updated.DisplayID, "the number survives edits")
	assert.Equal(t, 9, env.stockOf(t, urea.ID))
	assert.Equal(t, 8, env.stockOf(t, dap.ID))
	assertDecimal(t, "2818", updated.TotalAmount)

	stored, err := env.invoices.Get(inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "Urea", stored.Items[0].Name)
	assert.Equal(t, "DAP", stored.Items[1].Name)
}

func TestInvoiceUpdate_MissingInvoice(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	_, err := env.invoices.Update(uuid.New(), newInvoice("Ravi", "", "", saleLine(urea, 1, "118")), SystemActor)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
	assert.Equal(t, 10, env.stockOf(t, urea.ID))
}

func TestInvoiceCreate_UnknownProductRollsBack(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")
	ghost := &model.Product{Name: "Ghost"}
	ghost.ID = uuid.New()

	dispatched := len(env.backup.types())

	_, err := env.invoices.Create(newInvoice("Ravi", "9000000001", "", saleLine(urea, 2, "118"), saleLine(ghost, 1, "10")), SystemActor)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var ledgerErr *LedgerError
	assert.ErrorAs(t, err, &ledgerErr)

	assert.Equal(t, 10, env.stockOf(t, urea.ID))
	seq, err := env.counterRepo.Current(model.InvoiceCounterName)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq, "counter increment is rolled back")

	customers, err := env.directory.ListCustomers()
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.Len(t, env.backup.types(), dispatched, "nothing is replicated for a rolled back sale")
}

func TestInvoiceCreate_ValidationRejectsBeforeWriting(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	tests := []struct {
		name  string
		inv   *model.Invoice
		field string
	}{
		{"blank customer", newInvoice("  ", "", "", saleLine(urea, 1, "10")), "customer_name"},
		{"no items", newInvoice("Ravi", "", ""), "items"},
		{"zero quantity", newInvoice("Ravi", "", "", saleLine(urea, 0, "10")), "items[0].quantity"},
		{"negative price", newInvoice("Ravi", "", "", saleLine(urea, 1, "-1")), "items[0].price"},
		{"bad payment mode", func() *model.Invoice {
			inv := newInvoice("Ravi", "", "", saleLine(urea, 1, "10"))
			inv.PaymentMode = "Cheque"
			return inv
		}(), "payment_mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.invoices.Create(tt.inv, SystemActor)
			require.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	seq, err := env.counterRepo.Current(model.InvoiceCounterName)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
	assert.Equal(t, 10, env.stockOf(t, urea.ID))
}

func TestInvoiceCreate_ConcurrentGetDistinctNumbers(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	const n = 3
	var wg sync.WaitGroup
	results := make([]*model.Invoice, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.invoices.Create(newInvoice(fmt.Sprintf("Buyer %d", i), "", "", saleLine(urea, 1, "118")), SystemActor)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		seen[results[i].DisplayID] = true
	}
	assert.Equal(t, map[string]bool{"INV-0001": true, "INV-0002": true, "INV-0003": true}, seen)
	assert.Equal(t, 7, env.stockOf(t, urea.ID))
}

func TestInvoiceDelete_SkipsDeletedProduct(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")
	dap := env.seedProduct(t, "DAP", 10, "1200")

	inv, err := env.invoices.Create(newInvoice("Ravi", "", "", saleLine(urea, 2, "118"), saleLine(dap, 2, "1350")), SystemActor)
	require.NoError(t, err)
	require.NoError(t, env.products.Delete(dap.ID, SystemActor))

	require.NoError(t, env.invoices.Delete(inv.ID, SystemActor))
	assert.Equal(t, 10, env.stockOf(t, urea.ID))
	assert.Equal(t, 8, env.stockOf(t, dap.ID), "deleted product is left alone")
}

func TestInvoiceCreate_MergesCustomerDirectory(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	_, err := env.invoices.Create(newInvoice("Ravi", "9000000001", "Village A", saleLine(urea, 1, "118")), SystemActor)
	require.NoError(t, err)
	_, err = env.invoices.Create(newInvoice("Ravi Kumar", "9000000001", "Village B", saleLine(urea, 1, "118")), SystemActor)
	require.NoError(t, err)
	_, err = env.invoices.Create(newInvoice("Ravi Kumar", "9000000001", "", saleLine(urea, 1, "118")), SystemActor)
	require.NoError(t, err)

	customers, err := env.directory.ListCustomers()
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "9000000001", customers[0].Key)
	assert.Equal(t, "Ravi Kumar", customers[0].Name)
	assert.Equal(t, "Village B", customers[0].Address, "a blank address keeps the stored one")
	require.NotNil(t, customers[0].LastVisit)

	history, err := env.directory.CustomerHistory("9000000001")
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestInvoiceList_FinancialYearFilter(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	for _, date := range []string{"2025-03-31", "2025-04-01", "2026-03-31"} {
		inv := newInvoice("Ravi", "", "", saleLine(urea, 1, "118"))
		inv.Date = date
		_, err := env.invoices.Create(inv, SystemActor)
		require.NoError(t, err)
	}

	list, err := env.invoices.List(ListFilter{FinancialYear: "2025-2026"})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "INV-0003", list[0].DisplayID, "newest first")

	_, err = env.invoices.List(ListFilter{Start: "yesterday"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceUpdate_KeepsSavedLineSnapshots(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "50")
	dap := env.seedProduct(t, "DAP", 5, "1200")

	inv, err := env.invoices.Create(newInvoice("Ravi", "9000000001", "Village A", saleLine(urea, 2, "118")), SystemActor)
	require.NoError(t, err)
	assertDecimal(t, "50", inv.Items[0].CostPrice.Decimal)

	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", urea.ID).
		Updates(map[string]interface{}{"purchase_price": d("80"), "gst": d("5")}).Error)

	// the client resends the bill without snapshot fields and a new address
	edit := newInvoice("Ravi", "9000000001", "Village B",
		model.InvoiceItem{ProductID: ref(urea.ID), Price: d("118"), Quantity: 2},
		model.InvoiceItem{ProductID: ref(dap.ID), Price: d("1350"), Quantity: 1},
	)
	updated, err := env.invoices.Update(inv.ID, edit, SystemActor)
	require.NoError(t, err)

	stored, err := env.invoices.Get(updated.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)

	kept := stored.Items[0]
	assert.Equal(t, "Urea", kept.Name)
	require.True(t, kept.CostPrice.Valid)
	assertDecimal(t, "50", kept.CostPrice.Decimal)
	assertDecimal(t, "18", kept.GST)

	added := stored.Items[1]
	assert.Equal(t, "DAP", added.Name)
	assertDecimal(t, "1200", added.CostPrice.Decimal)
	assertDecimal(t, "18", added.GST)

	assert.Equal(t, 8, env.stockOf(t, urea.ID))
	assert.Equal(t, 4, env.stockOf(t, dap.ID))
}

func TestInvoiceCreate_FillsTaxRateFromProduct(t *testing.T) {
	env := newTestEnv(t)
	urea := env.seedProduct(t, "Urea", 10, "90")

	inv, err := env.invoices.Create(newInvoice("Ravi", "", "",
		model.InvoiceItem{ProductID: ref(urea.ID), Price: d("118"), Quantity: 1},
		model.InvoiceItem{ProductID: ref(urea.ID), Price: d("100"), Quantity: 1, GSTSet: true},
	), SystemActor)
	require.NoError(t, err)

	assertDecimal(t, "18", inv.Items[0].GST)
	assert.True(t, inv.Items[1].GST.IsZero(), "an explicitly exempt line stays at zero")
	assertDecimal(t, "218", inv.TotalAmount)
}
