package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
)

// ReportsHandler maneja los reportes de reposición, vencimientos y rentabilidad.
type ReportsHandler struct {
	reports       *appanalytics.ReportsUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewReportsHandler construye el handler.
func NewReportsHandler(reports *appanalytics.ReportsUseCase, replenishment *inventory.ReplenishmentUseCase) *ReportsHandler {
	return &ReportsHandler{reports: reports, replenishment: replenishment}
}

// LowStock godoc
// @Summary      Productos bajo el mínimo con cantidad sugerida de pedido
// @Description  Ordenados por prioridad: mayor déficit, luego margen histórico y
//
//	unidades vendidas en los últimos 90 días.
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportsHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Lotes con existencia que vencen dentro de N días (incluye vencidos)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (default 90)"
// @Success      200  {array}   dto.ExpiringLotDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/expiring [get]
func (h *ReportsHandler) Expiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", appanalytics.DefaultExpiringDays)
	out, err := h.reports.ExpiringLots(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Profit godoc
// @Summary      Rentabilidad por producto (ventas del kardex)
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Success      200  {object}  dto.ProfitReportDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/profit [get]
func (h *ReportsHandler) Profit(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.reports.ProfitReport(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
