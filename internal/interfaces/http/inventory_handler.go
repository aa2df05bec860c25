package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
)

// InventoryHandler maneja recepción de lotes, ajustes, mermas y el kardex (protegido).
type InventoryHandler struct {
	uc *inventory.LotUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LotUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ReceiveLot godoc
// @Summary      Recepción de mercadería (crea el lote y su ENTRADA)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "product_id, code, expiration, quantity, unit_cost, unit_price"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *InventoryHandler) ReceiveLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReceiveLot(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetLot godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Lot ID"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *InventoryHandler) GetLot(c *fiber.Ctx) error {
	out, err := h.uc.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateLot godoc
// @Summary      Corregir datos del lote (no genera movimiento)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Lot ID"
// @Param        body  body      dto.UpdateLotRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [put]
func (h *InventoryHandler) UpdateLot(c *fiber.Ctx) error {
	var in dto.UpdateLotRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateLot(c.Context(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeactivateLot godoc
// @Summary      Desactivar lote (sin movimiento)
// @Tags         lots
// @Security     Bearer
// @Param        id   path  string  true  "Lot ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *InventoryHandler) DeactivateLot(c *fiber.Ctx) error {
	if err := h.uc.DeactivateLot(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// WriteOff godoc
// @Summary      Dar de baja el remanente del lote (MERMA)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Lot ID"
// @Param        body  body      dto.WriteOffRequest  true  "reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/write-off [post]
func (h *InventoryHandler) WriteOff(c *fiber.Ctx) error {
	var in dto.WriteOffRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.WriteOff(c.Context(), GetUsername(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Kardex (más reciente primero)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        kind        query  string  false  "ENTRADA | VENTA | MERMA"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        lot_id      query  string  false  "Filtrar por lote"
// @Param        sale_id     query  string  false  "Filtrar por venta"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD, inclusive)"
// @Param        limit       query  int     false  "Máximo de registros (0 = todos)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	from, to, err := parseDateRange(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	q.From, q.To = from, to
	out, err := h.uc.ListMovements(c.Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
