package handler

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"agristock/internal/model"
	"agristock/internal/render"
	"agristock/internal/service"
)

type InvoiceHandler struct {
	service  service.InvoiceService
	renderer *render.Renderer
}

func NewInvoiceHandler(s service.InvoiceService, r *render.Renderer) *InvoiceHandler {
	return &InvoiceHandler{service: s, renderer: r}
}

// listFilter reads ?fy=2025-2026 or ?start=&end=
func listFilter(c *fiber.Ctx) service.ListFilter {
	return service.ListFilter{
		FinancialYear: c.Query("fy"),
		Start:         c.Query("start"),
		End:           c.Query("end"),
	}
}

func (h *InvoiceHandler) GetInvoices(c *fiber.Ctx) error {
	invoices, err := h.service.List(listFilter(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(invoices)
}

func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.service.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(invoice)
}

// GetInvoiceMovements returns the stock movements written by a sale
func (h *InvoiceHandler) GetInvoiceMovements(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	movements, err := h.service.Movements(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func (h *InvoiceHandler) CreateInvoice(c *fiber.Ctx) error {
	var invoice model.Invoice
	if err := c.BodyParser(&invoice); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	created, err := h.service.Create(&invoice, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Invoice created", "data": created})
}

func (h *InvoiceHandler) UpdateInvoice(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	var invoice model.Invoice
	if err := c.BodyParser(&invoice); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.Update(id, &invoice, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoice updated", "data": updated})
}

func (h *InvoiceHandler) DeleteInvoice(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	if err := h.service.Delete(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invoice deleted"})
}

// GetInvoicePDF streams the printable invoice
// GET /api/v1/invoices/:id/pdf
func (h *InvoiceHandler) GetInvoicePDF(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid invoice ID")
	}
	invoice, err := h.service.Get(id)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := h.renderer.Invoice(&buf, invoice); err != nil {
		return fail(c, err)
	}
	c.Attachment(render.InvoiceFileName(invoice))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}
