package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"agristock/internal/logger"
	"agristock/internal/repository"
)

// Syncer pushes every collection to the backup target, one record at a
// time: customers, suppliers, products, purchases, then sales.
type Syncer struct {
	replicator Replicator
	directory  repository.DirectoryRepository
	products   repository.ProductRepository
	purchases  repository.PurchaseRepository
	invoices   repository.InvoiceRepository
	currency   string

	// Delay spaces out calls to stay under the target's rate limit
	Delay time.Duration

	now func() time.Time
	log zerolog.Logger
}

func NewSyncer(
	r Replicator,
	directory repository.DirectoryRepository,
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	invoices repository.InvoiceRepository,
	currency string,
) *Syncer {
	return &Syncer{
		replicator: r,
		directory:  directory,
		products:   products,
		purchases:  purchases,
		invoices:   invoices,
		currency:   currency,
		Delay:      100 * time.Millisecond,
		now:        time.Now,
		log:        logger.WithComponent("backup-sync"),
	}
}

// Run sends everything and reports progress lines through progress, which
// may be nil. It stops at the first delivery error.
func (s *Syncer) Run(ctx context.Context, progress func(string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}
	var records []Record

	progress("Fetching Customers...")
	customers, err := s.directory.FindCustomers()
	if err != nil {
		return 0, fmt.Errorf("load customers: %w", err)
	}
	for i := range customers {
		records = append(records, FromCustomer(&customers[i], s.now()))
	}

	progress("Fetching Suppliers...")
	suppliers, err := s.directory.FindSuppliers()
	if err != nil {
		return 0, fmt.Errorf("load suppliers: %w", err)
	}
	for i := range suppliers {
		records = append(records, FromSupplier(&suppliers[i], s.now()))
	}

	progress("Fetching Inventory...")
	products, err := s.products.FindAll()
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	for i := range products {
		records = append(records, FromProduct(TypeProduct, &products[i], s.now()))
	}

	progress("Fetching Purchases...")
	purchases, err := s.purchases.FindAll(repository.DateRange{})
	if err != nil {
		return 0, fmt.Errorf("load purchases: %w", err)
	}
	for i := range purchases {
		records = append(records, FromPurchase(TypePurchase, &purchases[i], s.currency))
	}

	progress("Fetching Sales...")
	invoices, err := s.invoices.FindAll(repository.DateRange{})
	if err != nil {
		return 0, fmt.Errorf("load invoices: %w", err)
	}
	for i := range invoices {
		records = append(records, FromInvoice(TypeSale, &invoices[i], s.currency))
	}

	for i, rec := range records {
		progress(fmt.Sprintf("Backing up %s %d/%d", rec.Type, i+1, len(records)))
		if err := s.replicator.Replicate(ctx, rec); err != nil {
			return i, fmt.Errorf("replicate %s %s: %w", rec.Type, rec.ID, err)
		}
		if s.Delay > 0 && i < len(records)-1 {
			select {
			case <-ctx.Done():
				return i + 1, ctx.Err()
			case <-time.After(s.Delay):
			}
		}
	}

	progress("Backup Complete!")
	return len(records), nil
}

// Schedule runs a full sync on a cron spec such as "0 2 * * *"
func (s *Syncer) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		n, err := s.Run(ctx, nil)
		if err != nil {
			s.log.Error().Err(err).Int("sent", n).Msg("scheduled backup sync failed")
			return
		}
		s.log.Info().Int("sent", n).Msg("scheduled backup sync complete")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return c, nil
}
