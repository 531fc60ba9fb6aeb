package model

// Privilege codes checked by the HTTP middleware
const (
	PrivProductView     = "product:view"
	PrivProductManage   = "product:manage"
	PrivInvoiceCreate   = "invoice:create"
	PrivInvoiceEdit     = "invoice:edit"
	PrivInvoiceDelete   = "invoice:delete"
	PrivPurchaseCreate  = "purchase:create"
	PrivPurchaseEdit    = "purchase:edit"
	PrivPurchaseDelete  = "purchase:delete"
	PrivDirectoryManage = "directory:manage"
	PrivReportView      = "report:view"
	PrivStockAdjust     = "stock:adjust"
)

// Role codes
const (
	RoleOwner = "OWNER"
	RoleStaff = "STAFF"
)

// RolePrivileges maps each role to the privileges it grants. Staff can bill
// and record purchases but cannot rewrite history or see reports.
var RolePrivileges = map[string][]string{
	RoleOwner: {
		PrivProductView, PrivProductManage,
		PrivInvoiceCreate, PrivInvoiceEdit, PrivInvoiceDelete,
		PrivPurchaseCreate, PrivPurchaseEdit, PrivPurchaseDelete,
		PrivDirectoryManage, PrivReportView, PrivStockAdjust,
	},
	RoleStaff: {
		PrivProductView,
		PrivInvoiceCreate,
		PrivPurchaseCreate,
	},
}
