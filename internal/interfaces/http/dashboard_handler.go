package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Farmacia-api/internal/application/analytics"
	"github.com/jhoicas/Farmacia-api/internal/application/dto"
)

// DashboardHandler maneja los indicadores del tablero.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetKPIs devuelve los indicadores recalculados desde lotes y kardex.
// GET /api/dashboard/kpis?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// Sin rango, los montos financieros cubren todo el kardex. El valor de inventario y
// los conteos de stock y vencimiento siempre reflejan el estado actual.
func (h *DashboardHandler) GetKPIs(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	kpis, err := h.uc.GetKPIs(c.Context(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(kpis)
}
