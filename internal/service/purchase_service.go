package service

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"agristock/internal/backup"
	"agristock/internal/logger"
	"agristock/internal/model"
	"agristock/internal/pricing"
	"agristock/internal/repository"
	"agristock/internal/ws"
)

// PurchaseService runs the inbound stock document lifecycle
type PurchaseService interface {
	Create(req *model.Purchase, actor Actor) (*model.Purchase, error)
	Update(id uuid.UUID, req *model.Purchase, actor Actor) (*model.Purchase, error)
	Delete(id uuid.UUID, actor Actor) error
	Get(id uuid.UUID) (*model.Purchase, error)
	List(f ListFilter) ([]model.Purchase, error)
	// Movements is the stock trail the document has written, oldest first
	Movements(id uuid.UUID) ([]model.StockMovement, error)
}

type purchaseService struct {
	db        *gorm.DB
	purchases repository.PurchaseRepository
	products  repository.ProductRepository
	ledger    StockLedger
	directory DirectoryService
	ids       *snowflake.Node
	hooks     Hooks
	log       zerolog.Logger
}

func NewPurchaseService(
	db *gorm.DB,
	purchases repository.PurchaseRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	directory DirectoryService,
	ids *snowflake.Node,
	hooks Hooks,
) PurchaseService {
	return &purchaseService{
		db:        db,
		purchases: purchases,
		products:  products,
		ledger:    ledger,
		directory: directory,
		ids:       ids,
		hooks:     hooks.withDefaults(),
		log:       logger.WithComponent("purchase"),
	}
}

func (s *purchaseService) prepare(req *model.Purchase) error {
	req.SupplierName = strings.TrimSpace(req.SupplierName)
	req.SupplierPhone = strings.TrimSpace(req.SupplierPhone)
	if req.Date == "" {
		req.Date = s.hooks.today()
	}
	if err := validate(req); err != nil {
		return err
	}

	for i := range req.Items {
		item := req.Items[i]
		item.Name = strings.TrimSpace(item.Name)
		if item.IsNewProduct() && item.GST.IsZero() {
			item.GST = model.DefaultGST
		}
		normalized, err := pricing.NormalizePurchaseLine(item)
		if err != nil {
			return newValidationError(fmt.Sprintf("items[%d]", i), err.Error())
		}
		req.Items[i] = normalized
	}
	return nil
}

// materialize creates products for lines that name one not yet in the
// catalogue and writes the new id back onto the line. Lines naming the same
// new product share one record.
func (s *purchaseService) materialize(tx *gorm.DB, items []model.PurchaseItem, actor Actor) ([]model.Product, error) {
	var created []model.Product
	byName := make(map[string]uuid.UUID)
	for i := range items {
		if !items[i].IsNewProduct() {
			continue
		}
		key := strings.ToLower(items[i].Name)
		if id, ok := byName[key]; ok {
			items[i].ProductID = &id
			continue
		}

		p := model.Product{
			Name:          items[i].Name,
			Category:      items[i].Category,
			Unit:          items[i].Unit,
			GST:           items[i].GST,
			PurchasePrice: items[i].RateIncl,
			MinStock:      model.DefaultMinStock,
		}
		if p.Category == "" {
			p.Category = model.DefaultCategory
		}
		if p.Unit == "" {
			p.Unit = model.DefaultUnit
		}
		p.CreatedBy = actor.ID
		p.UpdatedBy = actor.ID
		if err := s.products.Create(tx, &p); err != nil {
			return nil, err
		}

		id := p.ID
		items[i].ProductID = &id
		items[i].Category = p.Category
		items[i].Unit = p.Unit
		byName[key] = id
		created = append(created, p)
	}
	return created, nil
}

// refreshPricing copies each line's rate and tax onto its product, so the
// catalogue always shows the latest purchase terms
func (s *purchaseService) refreshPricing(tx *gorm.DB, items []model.PurchaseItem, actor Actor) error {
	for _, it := range items {
		if err := s.products.UpdatePricing(tx, *it.ProductID, it.RateIncl, it.GST, actor.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *purchaseService) Create(req *model.Purchase, actor Actor) (*model.Purchase, error) {
	if err := s.prepare(req); err != nil {
		return nil, err
	}

	p := *req
	p.ID = uuid.Nil
	p.CreatedBy = actor.ID
	p.UpdatedBy = actor.ID
	p.DisplayID = "PUR-" + s.ids.Generate().String()
	p.Items = append([]model.PurchaseItem(nil), req.Items...)
	p.TotalAmount = pricing.PurchaseTotals(p.Items).Final

	var created []model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if created, err = s.materialize(tx, p.Items, actor); err != nil {
			return err
		}
		ref := LedgerRef{Kind: KindPurchase, DocID: p.DisplayID, UserID: actor.ID}
		if err := s.ledger.Apply(tx, PurchaseDeltas(p.Items), ref); err != nil {
			return err
		}
		if err := s.refreshPricing(tx, p.Items, actor); err != nil {
			return err
		}
		if err := s.purchases.Create(tx, &p); err != nil {
			return err
		}
		return s.directory.ResolveSupplier(tx, p.SupplierName, p.SupplierPhone, p.SupplierAddress, s.hooks.Now())
	})
	if err != nil {
		return nil, &LedgerError{Op: "create purchase", Err: mapTxError(err, ErrProductNotFound)}
	}

	s.log.Info().Str("purchase", p.DisplayID).Int("new_products", len(created)).Msg("purchase created")
	s.afterCommit(backup.FromPurchase(backup.TypePurchase, &p, s.hooks.Currency), created)
	return &p, nil
}

func (s *purchaseService) Update(id uuid.UUID, req *model.Purchase, actor Actor) (*model.Purchase, error) {
	if err := s.prepare(req); err != nil {
		return nil, err
	}

	var p model.Purchase
	var created []model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.purchases.LockByID(tx, id)
		if err != nil {
			return mapTxError(err, ErrPurchaseNotFound)
		}

		p = *req
		p.BaseModel = existing.BaseModel
		p.UpdatedBy = actor.ID
		p.DisplayID = existing.DisplayID
		p.Items = append([]model.PurchaseItem(nil), req.Items...)
		p.TotalAmount = pricing.PurchaseTotals(p.Items).Final

		if created, err = s.materialize(tx, p.Items, actor); err != nil {
			return err
		}
		ref := LedgerRef{Kind: KindPurchase, DocID: p.DisplayID, UserID: actor.ID}
		if err := s.ledger.Reconcile(tx, PurchaseDeltas(existing.Items), PurchaseDeltas(p.Items), ref); err != nil {
			return err
		}
		if err := s.refreshPricing(tx, p.Items, actor); err != nil {
			return err
		}
		if err := s.purchases.UpdateWithItems(tx, &p); err != nil {
			return mapTxError(err, ErrPurchaseNotFound)
		}
		return s.directory.ResolveSupplier(tx, p.SupplierName, p.SupplierPhone, p.SupplierAddress, s.hooks.Now())
	})
	if err != nil {
		return nil, &LedgerError{Op: "update purchase", DocID: id.String(), Err: mapTxError(err, ErrProductNotFound)}
	}

	s.log.Info().Str("purchase", p.DisplayID).Msg("purchase updated")
	s.afterCommit(backup.FromPurchase(backup.TypePurchaseUpdate, &p, s.hooks.Currency), created)
	return &p, nil
}

// Delete takes the purchased quantities back out of stock. The result may
// be negative when the goods were already sold.
func (s *purchaseService) Delete(id uuid.UUID, actor Actor) error {
	var displayID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.purchases.LockByID(tx, id)
		if err != nil {
			return mapTxError(err, ErrPurchaseNotFound)
		}
		displayID = existing.DisplayID

		ref := LedgerRef{Kind: KindPurchase, DocID: existing.DisplayID, UserID: actor.ID}
		if err := s.ledger.Reverse(tx, PurchaseDeltas(existing.Items), ref); err != nil {
			return err
		}
		if err := s.purchases.Delete(tx, id); err != nil {
			return mapTxError(err, ErrPurchaseNotFound)
		}
		return nil
	})
	if err != nil {
		return &LedgerError{Op: "delete purchase", DocID: id.String(), Err: mapTxError(err, ErrPurchaseNotFound)}
	}

	s.log.Info().Str("purchase", displayID).Msg("purchase deleted, stock reversed")
	s.afterCommit(backup.Deletion(backup.TypeDeletePurchase, displayID, s.hooks.Now()), nil)
	return nil
}

func (s *purchaseService) afterCommit(rec backup.Record, created []model.Product) {
	s.hooks.Notifier.Publish(ws.Purchases, ws.Products, ws.Suppliers)
	s.hooks.Backup.Dispatch(rec)
	for i := range created {
		s.hooks.Backup.Dispatch(backup.FromProduct(backup.TypeProduct, &created[i], s.hooks.Now()))
	}
}

func (s *purchaseService) Get(id uuid.UUID) (*model.Purchase, error) {
	p, err := s.purchases.FindByID(id)
	if err != nil {
		return nil, mapTxError(err, ErrPurchaseNotFound)
	}
	return p, nil
}

func (s *purchaseService) List(f ListFilter) ([]model.Purchase, error) {
	dr, err := f.dateRange()
	if err != nil {
		return nil, err
	}
	return s.purchases.FindAll(dr)
}

func (s *purchaseService) Movements(id uuid.UUID) ([]model.StockMovement, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return s.ledger.DocumentMovements(p.DisplayID)
}
