package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"agristock/internal/backup"
	"agristock/internal/model"
	"agristock/internal/repository"
	"agristock/internal/ws"
)

// PartyKey derives the directory identity: the phone number when present,
// else the name lower-cased with whitespace runs joined by "_".
func PartyKey(name, phone string) string {
	if p := strings.TrimSpace(phone); p != "" {
		return p
	}
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// DirectoryService is the Directory Resolver plus the directory CRUD
type DirectoryService interface {
	// ResolveCustomer merges a customer snapshot inside tx
	ResolveCustomer(tx *gorm.DB, name, phone, address string, at time.Time) error
	// ResolveSupplier merges a supplier snapshot inside tx
	ResolveSupplier(tx *gorm.DB, name, phone, address string, at time.Time) error

	UpsertCustomer(req *model.Customer) (*model.Customer, error)
	UpsertSupplier(req *model.Supplier) (*model.Supplier, error)

	ListCustomers() ([]model.Customer, error)
	GetCustomer(key string) (*model.Customer, error)
	UpdateCustomer(key string, req *model.Customer) (*model.Customer, error)
	DeleteCustomer(key string) error
	CustomerHistory(key string) ([]model.Invoice, error)

	ListSuppliers() ([]model.Supplier, error)
	GetSupplier(key string) (*model.Supplier, error)
	UpdateSupplier(key string, req *model.Supplier) (*model.Supplier, error)
	DeleteSupplier(key string) error
	SupplierHistory(key string) ([]model.Purchase, error)
}

type directoryService struct {
	repo      repository.DirectoryRepository
	invoices  repository.InvoiceRepository
	purchases repository.PurchaseRepository
	hooks     Hooks
}

func NewDirectoryService(
	repo repository.DirectoryRepository,
	invoices repository.InvoiceRepository,
	purchases repository.PurchaseRepository,
	hooks Hooks,
) DirectoryService {
	return &directoryService{repo: repo, invoices: invoices, purchases: purchases, hooks: hooks.withDefaults()}
}

func (s *directoryService) ResolveCustomer(tx *gorm.DB, name, phone, address string, at time.Time) error {
	key := PartyKey(name, phone)
	if key == "" {
		return nil
	}
	return s.repo.UpsertCustomer(tx, &model.Customer{
		Key:       key,
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Address:   strings.TrimSpace(address),
		LastVisit: &at,
	})
}

func (s *directoryService) ResolveSupplier(tx *gorm.DB, name, phone, address string, at time.Time) error {
	key := PartyKey(name, phone)
	if key == "" {
		return nil
	}
	return s.repo.UpsertSupplier(tx, &model.Supplier{
		Key:          key,
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Address:      strings.TrimSpace(address),
		LastPurchase: &at,
	})
}

func (s *directoryService) UpsertCustomer(req *model.Customer) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	c := &model.Customer{
		Key:     PartyKey(req.Name, req.Phone),
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.repo.UpsertCustomer(nil, c); err != nil {
		return nil, err
	}
	saved, err := s.repo.FindCustomer(c.Key)
	if err != nil {
		return nil, mapTxError(err, ErrCustomerNotFound)
	}

	s.hooks.Notifier.Publish(ws.Customers)
	s.hooks.Backup.Dispatch(backup.FromCustomer(saved, s.hooks.Now()))
	return saved, nil
}

func (s *directoryService) UpsertSupplier(req *model.Supplier) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	sp := &model.Supplier{
		Key:     PartyKey(req.Name, req.Phone),
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.repo.UpsertSupplier(nil, sp); err != nil {
		return nil, err
	}
	saved, err := s.repo.FindSupplier(sp.Key)
	if err != nil {
		return nil, mapTxError(err, ErrSupplierNotFound)
	}

	s.hooks.Notifier.Publish(ws.Suppliers)
	s.hooks.Backup.Dispatch(backup.FromSupplier(saved, s.hooks.Now()))
	return saved, nil
}

func (s *directoryService) ListCustomers() ([]model.Customer, error) {
	return s.repo.FindCustomers()
}

func (s *directoryService) GetCustomer(key string) (*model.Customer, error) {
	c, err := s.repo.FindCustomer(key)
	return c, mapTxError(err, ErrCustomerNotFound)
}

// UpdateCustomer edits the stored details. The key does not change, so a
// later document with the new phone number merges into a separate record.
func (s *directoryService) UpdateCustomer(key string, req *model.Customer) (*model.Customer, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	req.Key = key
	if err := s.repo.UpdateCustomer(req); err != nil {
		return nil, mapTxError(err, ErrCustomerNotFound)
	}
	s.hooks.Notifier.Publish(ws.Customers)
	return s.GetCustomer(key)
}

func (s *directoryService) DeleteCustomer(key string) error {
	if err := s.repo.DeleteCustomer(key); err != nil {
		return mapTxError(err, ErrCustomerNotFound)
	}
	s.hooks.Notifier.Publish(ws.Customers)
	return nil
}

// CustomerHistory lists the customer's invoices, newest first
func (s *directoryService) CustomerHistory(key string) ([]model.Invoice, error) {
	c, err := s.GetCustomer(key)
	if err != nil {
		return nil, err
	}
	return s.invoices.FindByCustomer(c.Name, c.Phone)
}

func (s *directoryService) ListSuppliers() ([]model.Supplier, error) {
	return s.repo.FindSuppliers()
}

func (s *directoryService) GetSupplier(key string) (*model.Supplier, error) {
	sp, err := s.repo.FindSupplier(key)
	return sp, mapTxError(err, ErrSupplierNotFound)
}

func (s *directoryService) UpdateSupplier(key string, req *model.Supplier) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	req.Key = key
	if err := s.repo.UpdateSupplier(req); err != nil {
		return nil, mapTxError(err, ErrSupplierNotFound)
	}
	s.hooks.Notifier.Publish(ws.Suppliers)
	return s.GetSupplier(key)
}

func (s *directoryService) DeleteSupplier(key string) error {
	if err := s.repo.DeleteSupplier(key); err != nil {
		return mapTxError(err, ErrSupplierNotFound)
	}
	s.hooks.Notifier.Publish(ws.Suppliers)
	return nil
}

func (s *directoryService) SupplierHistory(key string) ([]model.Purchase, error) {
	sp, err := s.GetSupplier(key)
	if err != nil {
		return nil, err
	}
	return s.purchases.FindBySupplier(sp.Name, sp.Phone)
}
