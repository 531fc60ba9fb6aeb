package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agristock/internal/model"
	"agristock/internal/pricing"
	"agristock/internal/repository"
)

// DefaultTopN is how many best sellers a report lists
const DefaultTopN = 5

type ProductSales struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type PaymentSplit struct {
	Mode   string          `json:"mode"`
	Amount decimal.Decimal `json:"amount"`
}

type Valuation struct {
	ProductCount int             `json:"product_count"`
	StockValue   decimal.Decimal `json:"stock_value"`
}

// Report is the rollup over one date range
type Report struct {
	Start          string          `json:"start"`
	End            string          `json:"end"`
	InvoiceCount   int             `json:"invoice_count"`
	PurchaseCount  int             `json:"purchase_count"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	GSTCollected   decimal.Decimal `json:"gst_collected"`
	COGS           decimal.Decimal `json:"cogs"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	PaymentSplit   []PaymentSplit  `json:"payment_split"`
	TopProducts    []ProductSales  `json:"top_products"`
	Inventory      Valuation       `json:"inventory"`
}

// Aggregate computes a report from already filtered documents. currentCost
// supplies the fallback unit cost for lines without a snapshot; products
// missing from it cost zero.
func Aggregate(invoices []model.Invoice, purchases []model.Purchase, currentCost map[uuid.UUID]decimal.Decimal, topN int) Report {
	r := Report{
		InvoiceCount:   len(invoices),
		PurchaseCount:  len(purchases),
		TotalSales:     decimal.Zero,
		TotalPurchases: decimal.Zero,
		GSTCollected:   decimal.Zero,
		COGS:           decimal.Zero,
		PaymentSplit:   []PaymentSplit{},
		TopProducts:    []ProductSales{},
	}

	splitIdx := make(map[string]int)
	sold := make(map[string]int)
	var order []string

	for _, inv := range invoices {
		r.TotalSales = r.TotalSales.Add(inv.TotalAmount)

		mode := inv.PaymentMode
		if mode == "" {
			mode = model.PaymentCash
		}
		i, ok := splitIdx[mode]
		if !ok {
			i = len(r.PaymentSplit)
			splitIdx[mode] = i
			r.PaymentSplit = append(r.PaymentSplit, PaymentSplit{Mode: mode, Amount: decimal.Zero})
		}
		r.PaymentSplit[i].Amount = r.PaymentSplit[i].Amount.Add(inv.TotalAmount)

		for _, item := range inv.Items {
			r.GSTCollected = r.GSTCollected.Add(pricing.InvoiceLine(item).Tax)

			fallback := decimal.Zero
			if item.ProductID != nil {
				fallback = currentCost[*item.ProductID]
			}
			r.COGS = r.COGS.Add(pricing.LineCost(item, fallback))

			if _, seen := sold[item.Name]; !seen {
				order = append(order, item.Name)
			}
			sold[item.Name] += item.Quantity
		}
	}

	for _, p := range purchases {
		r.TotalPurchases = r.TotalPurchases.Add(p.TotalAmount)
	}
	r.NetProfit = r.TotalSales.Sub(r.COGS)

	for _, name := range order {
		r.TopProducts = append(r.TopProducts, ProductSales{Name: name, Quantity: sold[name]})
	}
	sort.SliceStable(r.TopProducts, func(i, j int) bool {
		return r.TopProducts[i].Quantity > r.TopProducts[j].Quantity
	})
	if topN > 0 && len(r.TopProducts) > topN {
		r.TopProducts = r.TopProducts[:topN]
	}
	return r
}

// Value sums purchase price × stock over the catalogue
func Value(products []model.Product) Valuation {
	v := Valuation{ProductCount: len(products), StockValue: decimal.Zero}
	for _, p := range products {
		v.StockValue = v.StockValue.Add(p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return v
}

type DashboardStats struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalStockValue   decimal.Decimal `json:"total_stock_value"`
	ProductCount      int             `json:"product_count"`
	LowStockCount     int             `json:"low_stock_count"`
	ExpiringSoonCount int             `json:"expiring_soon_count"`
	RecentSales       []model.Invoice `json:"recent_sales"`
}

// ReportService is the read-only Reporting Aggregator
type ReportService interface {
	Aggregate(start, end string, topN int) (*Report, error)
	SalesInRange(start, end string) ([]model.Invoice, error)
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type reportService struct {
	invoices  repository.InvoiceRepository
	purchases repository.PurchaseRepository
	products  repository.ProductRepository
	movements repository.MovementRepository
	now       func() time.Time
}

func NewReportService(
	invoices repository.InvoiceRepository,
	purchases repository.PurchaseRepository,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	now func() time.Time,
) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{invoices: invoices, purchases: purchases, products: products, movements: movements, now: now}
}

func (s *reportService) rangeOf(start, end string) (repository.DateRange, error) {
	return ListFilter{Start: start, End: end}.dateRange()
}

func (s *reportService) Aggregate(start, end string, topN int) (*Report, error) {
	dr, err := s.rangeOf(start, end)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.FindAll(dr)
	if err != nil {
		return nil, err
	}
	purchases, err := s.purchases.FindAll(dr)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindAll()
	if err != nil {
		return nil, err
	}

	cost := make(map[uuid.UUID]decimal.Decimal, len(products))
	for _, p := range products {
		cost[p.ID] = p.PurchasePrice
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	r := Aggregate(invoices, purchases, cost, topN)
	r.Start, r.End = start, end
	r.Inventory = Value(products)
	return &r, nil
}

func (s *reportService) SalesInRange(start, end string) ([]model.Invoice, error) {
	dr, err := s.rangeOf(start, end)
	if err != nil {
		return nil, err
	}
	return s.invoices.FindAll(dr)
}

func (s *reportService) GetDashboardStats() (*DashboardStats, error) {
	products, err := s.products.FindAll()
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.FindAll(repository.DateRange{})
	if err != nil {
		return nil, err
	}

	today := s.now()
	todayStr := today.Format(model.DateLayout)
	nextMonth := today.AddDate(0, 1, 0).Format(model.DateLayout)

	stats := &DashboardStats{
		TotalSales:      decimal.Zero,
		TotalStockValue: Value(products).StockValue,
		ProductCount:    len(products),
	}
	for i := range products {
		if products[i].IsLowStock() {
			stats.LowStockCount++
		}
		if exp := products[i].ExpDate; exp != "" && exp > todayStr && exp <= nextMonth {
			stats.ExpiringSoonCount++
		}
	}
	for _, inv := range invoices {
		stats.TotalSales = stats.TotalSales.Add(inv.TotalAmount)
	}

	// invoices are newest first
	if len(invoices) > 5 {
		invoices = invoices[:5]
	}
	stats.RecentSales = invoices
	return stats, nil
}

func (s *reportService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.movements.GetStockMovement(startDate, endDate)
}
