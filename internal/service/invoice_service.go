package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"agristock/internal/backup"
	"agristock/internal/logger"
	"agristock/internal/model"
	"agristock/internal/pricing"
	"agristock/internal/repository"
	"agristock/internal/ws"
)

// InvoiceService runs the sale document lifecycle. Each write is one
// transaction covering the document, its stock effect, the invoice counter
// and the customer directory.
type InvoiceService interface {
	Create(req *model.Invoice, actor Actor) (*model.Invoice, error)
	Update(id uuid.UUID, req *model.Invoice, actor Actor) (*model.Invoice, error)
	Delete(id uuid.UUID, actor Actor) error
	Get(id uuid.UUID) (*model.Invoice, error)
	List(f ListFilter) ([]model.Invoice, error)
	// Movements is the stock trail the document has written, oldest first
	Movements(id uuid.UUID) ([]model.StockMovement, error)
}

type invoiceService struct {
	db        *gorm.DB
	invoices  repository.InvoiceRepository
	products  repository.ProductRepository
	counters  repository.CounterRepository
	ledger    StockLedger
	directory DirectoryService
	hooks     Hooks
	log       zerolog.Logger
}

func NewInvoiceService(
	db *gorm.DB,
	invoices repository.InvoiceRepository,
	products repository.ProductRepository,
	counters repository.CounterRepository,
	ledger StockLedger,
	directory DirectoryService,
	hooks Hooks,
) InvoiceService {
	return &invoiceService{
		db:        db,
		invoices:  invoices,
		products:  products,
		counters:  counters,
		ledger:    ledger,
		directory: directory,
		hooks:     hooks.withDefaults(),
		log:       logger.WithComponent("invoice"),
	}
}

// prepare normalizes and validates a request before any transaction opens
func (s *invoiceService) prepare(req *model.Invoice) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	if req.PaymentMode == "" {
		req.PaymentMode = model.PaymentCash
	}
	if req.Date == "" {
		req.Date = s.hooks.today()
	}
	return validate(req)
}

// snapshot fills line snapshots the client left empty. On an edit, a line
// for a product the invoice already carried keeps that line's snapshot;
// other lines take the product's current record. Every referenced product
// must exist.
func (s *invoiceService) snapshot(tx *gorm.DB, items, previous []model.InvoiceItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, *it.ProductID)
	}
	found, err := s.products.FindMany(tx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	saved := make(map[uuid.UUID]model.InvoiceItem, len(previous))
	for _, it := range previous {
		if it.ProductID == nil {
			continue
		}
		if _, dup := saved[*it.ProductID]; !dup {
			saved[*it.ProductID] = it
		}
	}

	for i := range items {
		it := &items[i]
		p, ok := byID[*it.ProductID]
		if !ok {
			return fmt.Errorf("line %d: %w", i+1, ErrProductNotFound)
		}
		name, unit, gst, cost := p.Name, p.Unit, p.GST, p.PurchasePrice
		if old, ok := saved[p.ID]; ok {
			name, unit, gst = old.Name, old.Unit, old.GST
			if old.CostPrice.Valid {
				cost = old.CostPrice.Decimal
			}
		}
		if it.Name == "" {
			it.Name = name
		}
		if it.Unit == "" {
			it.Unit = unit
		}
		if !it.GSTSet && it.GST.IsZero() {
			it.GST = gst
		}
		if !it.CostPrice.Valid {
			it.CostPrice = decimal.NewNullDecimal(cost)
		}
		if it.Name == "" {
			return newValidationError(fmt.Sprintf("items[%d].name", i), "required")
		}
	}
	return nil
}

func (s *invoiceService) Create(req *model.Invoice, actor Actor) (*model.Invoice, error) {
	if err := s.prepare(req); err != nil {
		return nil, err
	}

	inv := *req
	inv.ID = uuid.Nil
	inv.CreatedBy = actor.ID
	inv.UpdatedBy = actor.ID
	inv.Items = append([]model.InvoiceItem(nil), req.Items...)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := s.counters.Next(tx, model.InvoiceCounterName)
		if err != nil {
			return err
		}
		inv.Sequence = seq
		inv.DisplayID = fmt.Sprintf("INV-%04d", seq)

		if err := s.snapshot(tx, inv.Items, nil); err != nil {
			return err
		}
		inv.TotalAmount = pricing.InvoiceTotals(inv.Items, inv.Discount).Final

		if err := s.invoices.Create(tx, &inv); err != nil {
			return err
		}
		ref := LedgerRef{Kind: KindInvoice, DocID: inv.DisplayID, UserID: actor.ID}
		if err := s.ledger.Apply(tx, InvoiceDeltas(inv.Items), ref); err != nil {
			return err
		}
		return s.directory.ResolveCustomer(tx, inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress, s.hooks.Now())
	})
	if err != nil {
		return nil, &LedgerError{Op: "create invoice", Err: mapTxError(err, ErrProductNotFound)}
	}

	s.log.Info().Str("invoice", inv.DisplayID).Str("total", inv.TotalAmount.StringFixed(2)).Msg("invoice created")
	s.afterCommit(backup.FromInvoice(backup.TypeSale, &inv, s.hooks.Currency))
	return &inv, nil
}

func (s *invoiceService) Update(id uuid.UUID, req *model.Invoice, actor Actor) (*model.Invoice, error) {
	if err := s.prepare(req); err != nil {
		return nil, err
	}

	var inv model.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.invoices.LockByID(tx, id)
		if err != nil {
			return mapTxError(err, ErrInvoiceNotFound)
		}

		inv = *req
		inv.BaseModel = existing.BaseModel
		inv.UpdatedBy = actor.ID
		inv.DisplayID = existing.DisplayID
		inv.Sequence = existing.Sequence
		inv.Items = append([]model.InvoiceItem(nil), req.Items...)

		if err := s.snapshot(tx, inv.Items, existing.Items); err != nil {
			return err
		}
		inv.TotalAmount = pricing.InvoiceTotals(inv.Items, inv.Discount).Final

		ref := LedgerRef{Kind: KindInvoice, DocID: inv.DisplayID, UserID: actor.ID}
		if err := s.ledger.Reconcile(tx, InvoiceDeltas(existing.Items), InvoiceDeltas(inv.Items), ref); err != nil {
			return err
		}
		if err := s.invoices.UpdateWithItems(tx, &inv); err != nil {
			return mapTxError(err, ErrInvoiceNotFound)
		}
		return s.directory.ResolveCustomer(tx, inv.CustomerName, inv.CustomerPhone, inv.CustomerAddress, s.hooks.Now())
	})
	if err != nil {
		return nil, &LedgerError{Op: "update invoice", DocID: id.String(), Err: mapTxError(err, ErrProductNotFound)}
	}

	s.log.Info().Str("invoice", inv.DisplayID).Msg("invoice updated")
	s.afterCommit(backup.FromInvoice(backup.TypeSaleUpdate, &inv, s.hooks.Currency))
	return &inv, nil
}

// Delete is the return path: the stock sold is put back and the invoice
// removed in the same transaction.
func (s *invoiceService) Delete(id uuid.UUID, actor Actor) error {
	var displayID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.invoices.LockByID(tx, id)
		if err != nil {
			return mapTxError(err, ErrInvoiceNotFound)
		}
		displayID = existing.DisplayID

		ref := LedgerRef{Kind: KindInvoice, DocID: existing.DisplayID, UserID: actor.ID}
		if err := s.ledger.Reverse(tx, InvoiceDeltas(existing.Items), ref); err != nil {
			return err
		}
		if err := s.invoices.Delete(tx, id); err != nil {
			return mapTxError(err, ErrInvoiceNotFound)
		}
		return nil
	})
	if err != nil {
		return &LedgerError{Op: "delete invoice", DocID: id.String(), Err: mapTxError(err, ErrInvoiceNotFound)}
	}

	s.log.Info().Str("invoice", displayID).Msg("invoice deleted, stock returned")
	s.afterCommit(backup.Deletion(backup.TypeDeleteSale, displayID, s.hooks.Now()))
	return nil
}

func (s *invoiceService) afterCommit(rec backup.Record) {
	s.hooks.Notifier.Publish(ws.Invoices, ws.Products, ws.Customers)
	s.hooks.Backup.Dispatch(rec)
}

func (s *invoiceService) Get(id uuid.UUID) (*model.Invoice, error) {
	inv, err := s.invoices.FindByID(id)
	if err != nil {
		return nil, mapTxError(err, ErrInvoiceNotFound)
	}
	return inv, nil
}

func (s *invoiceService) List(f ListFilter) ([]model.Invoice, error) {
	dr, err := f.dateRange()
	if err != nil {
		return nil, err
	}
	return s.invoices.FindAll(dr)
}

func (s *invoiceService) Movements(id uuid.UUID) ([]model.StockMovement, error) {
	inv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.ledger.DocumentMovements(inv.DisplayID)
}
