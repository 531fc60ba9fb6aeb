package handler

import (
	"github.com/gofiber/fiber/v2"

	"agristock/internal/model"
	"agristock/internal/service"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// AdjustStockRequest is a manual stock correction
type AdjustStockRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.List()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	created, err := h.service.Create(&product, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": created})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	updated, err := h.service.Update(id, &product, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	if err := h.service.Delete(id, actor(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// AdjustStock handles POST /api/v1/products/:id/adjust
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	product, err := h.service.AdjustStock(id, req.Delta, req.Note, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": product})
}

// GetMovements returns the latest stock movements of a product
// Query params: limit (default 50)
func (h *ProductHandler) GetMovements(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}

	movements, err := h.service.Movements(id, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}
