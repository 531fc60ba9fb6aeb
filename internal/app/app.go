// Package app wires repositories, services and side-effect sinks from a
// loaded configuration. Both the HTTP server and the ledgerctl tool build on it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"agristock/internal/backup"
	"agristock/internal/config"
	"agristock/internal/render"
	"agristock/internal/repository"
	"agristock/internal/service"
	"agristock/internal/ws"
	"agristock/pkg/database"
	"agristock/pkg/jwt"
)

const tokenTTL = 24 * time.Hour

type Repositories struct {
	Products  repository.ProductRepository
	Invoices  repository.InvoiceRepository
	Purchases repository.PurchaseRepository
	Counters  repository.CounterRepository
	Directory repository.DirectoryRepository
	Movements repository.MovementRepository
	Users     repository.UserRepository
	Failures  repository.ReplicationFailureRepository
}

type Services struct {
	Auth      service.AuthService
	Products  service.ProductService
	Invoices  service.InvoiceService
	Purchases service.PurchaseService
	Directory service.DirectoryService
	Reports   service.ReportService
}

type App struct {
	Config     *config.Config
	DB         *gorm.DB
	Repos      Repositories
	Services   Services
	Hub        *ws.Hub
	Dispatcher *backup.Dispatcher
	Renderer   *render.Renderer

	// Syncer is nil when backup is off
	Syncer *backup.Syncer
}

// Build connects to the database, runs migrations and wires every layer.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.ConnectDB(database.Options{DSN: cfg.DSN(), LogLevel: cfg.DBLogLevel})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return Wire(ctx, cfg, db)
}

// Wire builds the application on an already migrated connection.
func Wire(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, error) {
	// The CLI never signs tokens, so a missing secret only matters to the server
	var tokens *jwt.Manager
	if cfg.JWTSecret != "" {
		m, err := jwt.NewManager(cfg.JWTSecret, tokenTTL)
		if err != nil {
			return nil, fmt.Errorf("jwt: %w", err)
		}
		tokens = m
	}
	node, err := snowflake.NewNode(cfg.PurchaseNodeID)
	if err != nil {
		return nil, fmt.Errorf("purchase id node: %w", err)
	}
	replicator, err := backup.NewReplicator(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	a := &App{Config: cfg, DB: db, Hub: ws.NewHub()}
	a.Repos = Repositories{
		Products:  repository.NewProductRepo(db),
		Invoices:  repository.NewInvoiceRepo(db),
		Purchases: repository.NewPurchaseRepo(db),
		Counters:  repository.NewCounterRepo(db),
		Directory: repository.NewDirectoryRepo(db),
		Movements: repository.NewMovementRepo(db),
		Users:     repository.NewUserRepo(db),
		Failures:  repository.NewReplicationFailureRepo(db),
	}
	a.Dispatcher = backup.NewDispatcher(replicator, a.Repos.Failures)
	if replicator != nil {
		a.Syncer = backup.NewSyncer(replicator, a.Repos.Directory, a.Repos.Products, a.Repos.Purchases, a.Repos.Invoices, cfg.ShopCurrency)
	}

	hooks := service.Hooks{Notifier: a.Hub, Backup: a.Dispatcher, Currency: cfg.ShopCurrency}
	r := a.Repos
	ledger := service.NewStockLedger(db, r.Products, r.Movements)
	directory := service.NewDirectoryService(r.Directory, r.Invoices, r.Purchases, hooks)
	a.Services = Services{
		Auth:      service.NewAuthService(r.Users, tokens),
		Products:  service.NewProductService(r.Products, r.Movements, ledger, hooks),
		Invoices:  service.NewInvoiceService(db, r.Invoices, r.Products, r.Counters, ledger, directory, hooks),
		Purchases: service.NewPurchaseService(db, r.Purchases, r.Products, ledger, directory, node, hooks),
		Directory: directory,
		Reports:   service.NewReportService(r.Invoices, r.Purchases, r.Products, r.Movements, nil),
	}
	a.Renderer = render.New(render.ShopProfile{
		Name:     cfg.ShopName,
		Tagline:  cfg.ShopTagline,
		Address:  cfg.ShopAddress,
		Contact:  cfg.ShopContact,
		Currency: cfg.ShopCurrency,
	})
	a.registerLoaders()
	return a, nil
}

// registerLoaders gives the hub a snapshot source per collection
func (a *App) registerLoaders() {
	s := a.Services
	a.Hub.SetLoader(ws.Products, func() (interface{}, error) { return s.Products.List() })
	a.Hub.SetLoader(ws.Invoices, func() (interface{}, error) { return s.Invoices.List(service.ListFilter{}) })
	a.Hub.SetLoader(ws.Purchases, func() (interface{}, error) { return s.Purchases.List(service.ListFilter{}) })
	a.Hub.SetLoader(ws.Customers, func() (interface{}, error) { return s.Directory.ListCustomers() })
	a.Hub.SetLoader(ws.Suppliers, func() (interface{}, error) { return s.Directory.ListSuppliers() })
}
