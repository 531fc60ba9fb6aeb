package service

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"agristock/internal/logger"
	"agristock/internal/model"
	"agristock/internal/repository"
)

// StockDelta is a signed change to one product's stock
type StockDelta struct {
	ProductID uuid.UUID
	Quantity  int
}

// DocKind selects the movement reasons recorded for a delta
type DocKind int

const (
	KindInvoice DocKind = iota
	KindPurchase
	KindAdjustment
)

func (k DocKind) reason(delta int) string {
	switch k {
	case KindInvoice:
		if delta < 0 {
			return model.ReasonSale
		}
		return model.ReasonSaleReturn
	case KindPurchase:
		if delta > 0 {
			return model.ReasonPurchase
		}
		return model.ReasonPurchaseReturn
	}
	return model.ReasonAdjustment
}

// LedgerRef describes the document a set of deltas belongs to
type LedgerRef struct {
	Kind   DocKind
	DocID  string
	UserID string
	Note   string
}

// InvoiceDeltas is the stock effect of saving sale lines
func InvoiceDeltas(items []model.InvoiceItem) []StockDelta {
	out := make([]StockDelta, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			out = append(out, StockDelta{ProductID: *it.ProductID, Quantity: -it.Quantity})
		}
	}
	return out
}

// PurchaseDeltas is the stock effect of saving purchase lines. Lines without
// a product id carry no effect.
func PurchaseDeltas(items []model.PurchaseItem) []StockDelta {
	out := make([]StockDelta, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			out = append(out, StockDelta{ProductID: *it.ProductID, Quantity: it.Quantity})
		}
	}
	return out
}

// NetDeltas merges deltas per product, drops zero results and orders them by
// product id. Locks are always taken in that order.
func NetDeltas(deltas ...[]StockDelta) []StockDelta {
	sums := make(map[uuid.UUID]int)
	for _, set := range deltas {
		for _, d := range set {
			sums[d.ProductID] += d.Quantity
		}
	}
	out := make([]StockDelta, 0, len(sums))
	for id, q := range sums {
		if q != 0 {
			out = append(out, StockDelta{ProductID: id, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

func negate(deltas []StockDelta) []StockDelta {
	out := make([]StockDelta, len(deltas))
	for i, d := range deltas {
		out[i] = StockDelta{ProductID: d.ProductID, Quantity: -d.Quantity}
	}
	return out
}

// StockLedger is the only writer of Product.Stock. Every method except
// AdjustStock runs inside the caller's transaction.
type StockLedger interface {
	// ApplyDelta changes one product's stock; the product must exist
	ApplyDelta(tx *gorm.DB, productID uuid.UUID, delta int, ref LedgerRef) error
	// Apply applies a document's deltas; every product must exist
	Apply(tx *gorm.DB, deltas []StockDelta, ref LedgerRef) error
	// Reverse undoes a document's deltas. Products deleted since are skipped.
	Reverse(tx *gorm.DB, deltas []StockDelta, ref LedgerRef) error
	// Reconcile reverses old and applies new as one net change per product.
	// Products referenced by new must exist.
	Reconcile(tx *gorm.DB, old, new []StockDelta, ref LedgerRef) error
	// AdjustStock is a manual correction in its own transaction
	AdjustStock(productID uuid.UUID, delta int, note string, actor Actor) (*model.Product, error)
	// DocumentMovements lists the movements written for one document number
	DocumentMovements(documentID string) ([]model.StockMovement, error)
}

type stockLedger struct {
	db        *gorm.DB
	products  repository.ProductRepository
	movements repository.MovementRepository
	log       zerolog.Logger
}

func NewStockLedger(db *gorm.DB, products repository.ProductRepository, movements repository.MovementRepository) StockLedger {
	return &stockLedger{
		db:        db,
		products:  products,
		movements: movements,
		log:       logger.WithComponent("ledger"),
	}
}

func (l *stockLedger) DocumentMovements(documentID string) ([]model.StockMovement, error) {
	return l.movements.FindByDocument(documentID)
}

func (l *stockLedger) ApplyDelta(tx *gorm.DB, productID uuid.UUID, delta int, ref LedgerRef) error {
	return l.Apply(tx, []StockDelta{{ProductID: productID, Quantity: delta}}, ref)
}

func (l *stockLedger) Apply(tx *gorm.DB, deltas []StockDelta, ref LedgerRef) error {
	return l.apply(tx, NetDeltas(deltas), func(uuid.UUID) bool { return true }, ref)
}

func (l *stockLedger) Reverse(tx *gorm.DB, deltas []StockDelta, ref LedgerRef) error {
	return l.apply(tx, NetDeltas(negate(deltas)), func(uuid.UUID) bool { return false }, ref)
}

func (l *stockLedger) Reconcile(tx *gorm.DB, old, new []StockDelta, ref LedgerRef) error {
	required := make(map[uuid.UUID]bool, len(new))
	for _, d := range new {
		required[d.ProductID] = true
	}
	net := NetDeltas(negate(old), new)
	return l.apply(tx, net, func(id uuid.UUID) bool { return required[id] }, ref)
}

func (l *stockLedger) apply(tx *gorm.DB, net []StockDelta, mustExist func(uuid.UUID) bool, ref LedgerRef) error {
	for _, d := range net {
		product, err := l.products.LockByID(tx, d.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if mustExist(d.ProductID) {
				return ErrProductNotFound
			}
			l.log.Warn().
				Str("product_id", d.ProductID.String()).
				Str("document", ref.DocID).
				Int("delta", d.Quantity).
				Msg("skipping stock change for deleted product")
			continue
		}
		if err != nil {
			return err
		}

		if err := l.products.AddStock(tx, d.ProductID, d.Quantity, ref.UserID); err != nil {
			return err
		}
		after := product.Stock + d.Quantity
		if after < 0 {
			l.log.Warn().
				Str("product_id", d.ProductID.String()).
				Str("product", product.Name).
				Int("stock", after).
				Msg("stock is negative")
		}

		m := &model.StockMovement{
			ProductID:  d.ProductID,
			Type:       model.MovementIn,
			Quantity:   d.Quantity,
			Reason:     ref.Kind.reason(d.Quantity),
			DocumentID: ref.DocID,
			StockAfter: after,
			Note:       ref.Note,
		}
		if d.Quantity < 0 {
			m.Type = model.MovementOut
			m.Quantity = -d.Quantity
		}
		m.CreatedBy = ref.UserID
		m.UpdatedBy = ref.UserID
		if err := l.movements.Create(tx, m); err != nil {
			return err
		}
	}
	return nil
}

func (l *stockLedger) AdjustStock(productID uuid.UUID, delta int, note string, actor Actor) (*model.Product, error) {
	if delta == 0 {
		return nil, newValidationError("delta", "must not be zero")
	}

	var updated *model.Product
	err := l.db.Transaction(func(tx *gorm.DB) error {
		ref := LedgerRef{Kind: KindAdjustment, DocID: "ADJ-" + productID.String()[:8], UserID: actor.ID, Note: note}
		if err := l.ApplyDelta(tx, productID, delta, ref); err != nil {
			return err
		}
		p, err := l.products.LockByID(tx, productID)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, mapTxError(err, ErrProductNotFound)
	}
	return updated, nil
}
