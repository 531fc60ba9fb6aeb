package handler

import (
	"github.com/gofiber/fiber/v2"

	"agristock/internal/middleware"
	"agristock/internal/model"
)

// Handlers groups everything Routes mounts
type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Invoices  *InvoiceHandler
	Purchases *PurchaseHandler
	Directory *DirectoryHandler
	Dashboard *DashboardHandler
	WS        *WSHandler
}

// Routes mounts the REST API under /api/v1 and live views under /ws
func Routes(app *fiber.App, h Handlers, authenticate middleware.Authenticator) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(authenticate))
	protected.Get("/auth/me", h.Auth.Me)

	// Dashboard and reports
	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)
	protected.Get("/reports", middleware.RequirePrivilege(model.PrivReportView), h.Dashboard.GetReport)
	protected.Get("/reports/sales.xlsx", middleware.RequirePrivilege(model.PrivReportView), h.Dashboard.ExportSales)

	// Products
	protected.Get("/products", middleware.RequirePrivilege(model.PrivProductView), h.Products.GetProducts)
	protected.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), h.Products.GetProduct)
	protected.Get("/products/:id/movements", middleware.RequirePrivilege(model.PrivProductView), h.Products.GetMovements)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductManage), h.Products.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), h.Products.UpdateProduct)
	protected.Delete("/products/:id", middleware.RequirePrivilege(model.PrivProductManage), h.Products.DeleteProduct)
	protected.Post("/products/:id/adjust", middleware.RequirePrivilege(model.PrivStockAdjust), h.Products.AdjustStock)

	// Invoices
	viewInvoices := middleware.RequireAnyPrivilege(model.PrivInvoiceCreate, model.PrivReportView)
	protected.Get("/invoices", viewInvoices, h.Invoices.GetInvoices)
	protected.Get("/invoices/:id", viewInvoices, h.Invoices.GetInvoice)
	protected.Get("/invoices/:id/pdf", viewInvoices, h.Invoices.GetInvoicePDF)
	protected.Get("/invoices/:id/movements", viewInvoices, h.Invoices.GetInvoiceMovements)
	protected.Post("/invoices", middleware.RequirePrivilege(model.PrivInvoiceCreate), h.Invoices.CreateInvoice)
	protected.Put("/invoices/:id", middleware.RequirePrivilege(model.PrivInvoiceEdit), h.Invoices.UpdateInvoice)
	protected.Delete("/invoices/:id", middleware.RequirePrivilege(model.PrivInvoiceDelete), h.Invoices.DeleteInvoice)

	// Purchases
	viewPurchases := middleware.RequireAnyPrivilege(model.PrivPurchaseCreate, model.PrivReportView)
	protected.Post("/purchases/line", viewPurchases, h.Purchases.RecalculateLine)
	protected.Get("/purchases", viewPurchases, h.Purchases.GetPurchases)
	protected.Get("/purchases/:id", viewPurchases, h.Purchases.GetPurchase)
	protected.Get("/purchases/:id/pdf", viewPurchases, h.Purchases.GetPurchasePDF)
	protected.Get("/purchases/:id/movements", viewPurchases, h.Purchases.GetPurchaseMovements)
	protected.Post("/purchases", middleware.RequirePrivilege(model.PrivPurchaseCreate), h.Purchases.CreatePurchase)
	protected.Put("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseEdit), h.Purchases.UpdatePurchase)
	protected.Delete("/purchases/:id", middleware.RequirePrivilege(model.PrivPurchaseDelete), h.Purchases.DeletePurchase)

	// Directory
	protected.Get("/customers", h.Directory.GetCustomers)
	protected.Get("/customers/:key", h.Directory.GetCustomer)
	protected.Get("/customers/:key/invoices", h.Directory.GetCustomerHistory)
	protected.Post("/customers", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.UpsertCustomer)
	protected.Put("/customers/:key", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.UpdateCustomer)
	protected.Delete("/customers/:key", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.DeleteCustomer)
	protected.Get("/suppliers", h.Directory.GetSuppliers)
	protected.Get("/suppliers/:key", h.Directory.GetSupplier)
	protected.Get("/suppliers/:key/purchases", h.Directory.GetSupplierHistory)
	protected.Post("/suppliers", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.UpsertSupplier)
	protected.Put("/suppliers/:key", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.UpdateSupplier)
	protected.Delete("/suppliers/:key", middleware.RequirePrivilege(model.PrivDirectoryManage), h.Directory.DeleteSupplier)

	// WebSocket Route
	if h.WS != nil {
		app.Use("/ws", h.WS.Upgrade)
		app.Get("/ws", h.WS.Serve())
	}
}
