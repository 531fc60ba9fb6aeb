package handler

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"agristock/internal/model"
	"agristock/internal/pricing"
	"agristock/internal/render"
	"agristock/internal/service"
)

type PurchaseHandler struct {
	service  service.PurchaseService
	renderer *render.Renderer
}

func NewPurchaseHandler(s service.PurchaseService, r *render.Renderer) *PurchaseHandler {
	return &PurchaseHandler{service: s, renderer: r}
}

// RecalculateLineRequest carries one edited field of a purchase line
type RecalculateLineRequest struct {
	Item  model.PurchaseItem `json:"item"`
	Field pricing.Field      `json:"field"`
	Value decimal.Decimal    `json:"value"`
}

func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.List(listFilter(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchases)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	purchase, err := h.service.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchase)
}

func (h *PurchaseHandler) GetPurchaseMovements(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	movements, err := h.service.Movements(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var purchase model.Purchase
	if err := c.BodyParser(&purchase); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	created, err := h.service.Create(&purchase, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Purchase created", "data": created})
}

func (h *PurchaseHandler) UpdatePurchase(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	var purchase model.Purchase
	if err := c.BodyParser(&purchase); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.Update(id, &purchase, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase updated", "data": updated})
}

func (h *PurchaseHandler) DeletePurchase(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	if err := h.service.Delete(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase deleted"})
}

// RecalculateLine derives the other fields of a purchase line after one edit.
// POST /api/v1/purchases/line
func (h *PurchaseHandler) RecalculateLine(c *fiber.Ctx) error {
	var req RecalculateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	item, err := pricing.RecalculatePurchaseLine(req.Item, req.Field, req.Value)
	switch {
	case errors.Is(err, pricing.ErrUnknownField), errors.Is(err, pricing.ErrNegativeValue),
		errors.Is(err, pricing.ErrBadQuantity), errors.Is(err, pricing.ErrTaxRate):
		return badRequest(c, err.Error())
	case err != nil:
		return fail(c, err)
	}
	return c.JSON(item)
}

func (h *PurchaseHandler) GetPurchasePDF(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid purchase ID")
	}
	purchase, err := h.service.Get(id)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := h.renderer.Purchase(&buf, purchase); err != nil {
		return fail(c, err)
	}
	c.Attachment(render.PurchaseFileName(purchase))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}
