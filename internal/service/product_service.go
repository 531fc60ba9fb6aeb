package service

import (
	"strings"

	"github.com/google/uuid"

	"agristock/internal/backup"
	"agristock/internal/model"
	"agristock/internal/repository"
	"agristock/internal/ws"
)

type ProductService interface {
	Create(req *model.Product, actor Actor) (*model.Product, error)
	Update(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error)
	Delete(id uuid.UUID, actor Actor) error
	Get(id uuid.UUID) (*model.Product, error)
	List() ([]model.Product, error)
	AdjustStock(id uuid.UUID, delta int, note string, actor Actor) (*model.Product, error)
	Movements(id uuid.UUID, limit int) ([]model.StockMovement, error)
}

type productService struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	ledger    StockLedger
	hooks     Hooks
}

func NewProductService(products repository.ProductRepository, movements repository.MovementRepository, ledger StockLedger, hooks Hooks) ProductService {
	return &productService{products: products, movements: movements, ledger: ledger, hooks: hooks.withDefaults()}
}

// Create stores a product. The stock given here is its opening stock; every
// later change goes through the ledger.
func (s *productService) Create(req *model.Product, actor Actor) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Category == "" {
		req.Category = model.DefaultCategory
	}
	if req.Unit == "" {
		req.Unit = model.DefaultUnit
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	p := *req
	p.ID = uuid.Nil
	p.CreatedBy = actor.ID
	p.UpdatedBy = actor.ID
	if err := s.products.Create(nil, &p); err != nil {
		return nil, err
	}

	s.hooks.Notifier.Publish(ws.Products)
	s.hooks.Backup.Dispatch(backup.FromProduct(backup.TypeProduct, &p, s.hooks.Now()))
	return &p, nil
}

// Update edits the descriptive fields. Any stock value in req is ignored.
func (s *productService) Update(id uuid.UUID, req *model.Product, actor Actor) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(id); err != nil {
		return nil, mapTxError(err, ErrProductNotFound)
	}

	req.ID = id
	req.UpdatedBy = actor.ID
	if err := s.products.Update(nil, req); err != nil {
		return nil, err
	}
	updated, err := s.products.FindByID(id)
	if err != nil {
		return nil, mapTxError(err, ErrProductNotFound)
	}

	s.hooks.Notifier.Publish(ws.Products)
	s.hooks.Backup.Dispatch(backup.FromProduct(backup.TypeProductUpdate, updated, s.hooks.Now()))
	return updated, nil
}

// Delete soft-deletes the product. Historical lines keep their snapshot.
func (s *productService) Delete(id uuid.UUID, actor Actor) error {
	if err := s.products.Delete(nil, id); err != nil {
		return mapTxError(err, ErrProductNotFound)
	}

	s.hooks.Notifier.Publish(ws.Products)
	s.hooks.Backup.Dispatch(backup.Deletion(backup.TypeProductDelete, id.String(), s.hooks.Now()))
	return nil
}

func (s *productService) Get(id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindByID(id)
	if err != nil {
		return nil, mapTxError(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *productService) List() ([]model.Product, error) {
	return s.products.FindAll()
}

func (s *productService) AdjustStock(id uuid.UUID, delta int, note string, actor Actor) (*model.Product, error) {
	p, err := s.ledger.AdjustStock(id, delta, note, actor)
	if err != nil {
		return nil, err
	}
	s.hooks.Notifier.Publish(ws.Products)
	s.hooks.Backup.Dispatch(backup.FromProduct(backup.TypeProductUpdate, p, s.hooks.Now()))
	return p, nil
}

func (s *productService) Movements(id uuid.UUID, limit int) ([]model.StockMovement, error) {
	return s.movements.FindByProduct(id, limit)
}
