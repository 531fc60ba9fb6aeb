package handler

import (
	"github.com/gofiber/fiber/v2"

	"agristock/internal/model"
	"agristock/internal/service"
)

// DirectoryHandler serves customers and suppliers. Records are addressed
// by their derived key.
type DirectoryHandler struct {
	service service.DirectoryService
}

func NewDirectoryHandler(s service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: s}
}

func (h *DirectoryHandler) GetCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(customers)
}

func (h *DirectoryHandler) GetCustomer(c *fiber.Ctx) error {
	customer, err := h.service.GetCustomer(c.Params("key"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(customer)
}

func (h *DirectoryHandler) UpsertCustomer(c *fiber.Ctx) error {
	var req model.Customer
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	customer, err := h.service.UpsertCustomer(&req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer saved", "data": customer})
}

func (h *DirectoryHandler) UpdateCustomer(c *fiber.Ctx) error {
	var req model.Customer
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	customer, err := h.service.UpdateCustomer(c.Params("key"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer updated", "data": customer})
}

func (h *DirectoryHandler) DeleteCustomer(c *fiber.Ctx) error {
	if err := h.service.DeleteCustomer(c.Params("key")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer deleted"})
}

func (h *DirectoryHandler) GetCustomerHistory(c *fiber.Ctx) error {
	invoices, err := h.service.CustomerHistory(c.Params("key"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(invoices)
}

func (h *DirectoryHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(suppliers)
}

func (h *DirectoryHandler) GetSupplier(c *fiber.Ctx) error {
	supplier, err := h.service.GetSupplier(c.Params("key"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(supplier)
}

func (h *DirectoryHandler) UpsertSupplier(c *fiber.Ctx) error {
	var req model.Supplier
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	supplier, err := h.service.UpsertSupplier(&req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier saved", "data": supplier})
}

func (h *DirectoryHandler) UpdateSupplier(c *fiber.Ctx) error {
	var req model.Supplier
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	supplier, err := h.service.UpdateSupplier(c.Params("key"), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *DirectoryHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.service.DeleteSupplier(c.Params("key")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier deleted"})
}

func (h *DirectoryHandler) GetSupplierHistory(c *fiber.Ctx) error {
	purchases, err := h.service.SupplierHistory(c.Params("key"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchases)
}
