package handler

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"agristock/internal/export"
	"agristock/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	service service.ReportService
}

func NewDashboardHandler(s service.ReportService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}

// GetReport returns the rollup for a date range
// Query params: start, end (YYYY-MM-DD, optional), top (default 5)
func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.service.Aggregate(c.Query("start"), c.Query("end"), c.QueryInt("top", service.DefaultTopN))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// ExportSales downloads the sales report workbook for a date range
func (h *DashboardHandler) ExportSales(c *fiber.Ctx) error {
	start, end := c.Query("start"), c.Query("end")
	invoices, err := h.service.SalesInRange(start, end)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteSales(&buf, invoices); err != nil {
		return fail(c, err)
	}
	c.Attachment(export.SalesFileName(start, end))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
