package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/dto"
	"github.com/jhoicas/Farmacia-api/internal/application/sales"
	"github.com/jhoicas/Farmacia-api/internal/domain/cart"
)

// SaleHandler maneja el carrito de la sesión, la venta y su comprobante (protegido).
// El carrito se guarda por operador autenticado.
type SaleHandler struct {
	cartUC       *sales.CartUseCase
	orchestrator *sales.SaleOrchestrator
	receipts     *sales.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(cartUC *sales.CartUseCase, orchestrator *sales.SaleOrchestrator, receipts *sales.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{cartUC: cartUC, orchestrator: orchestrator, receipts: receipts}
}

// GetCart godoc
// @Summary      Ver carrito (precios y disponibilidad en vivo)
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CartResponse
// @Router       /api/cart [get]
func (h *SaleHandler) GetCart(c *fiber.Ctx) error {
	out, err := h.cartUC.View(c.Context(), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar producto al carrito (fusiona cantidades)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CartItemRequest  true  "product_id, quantity"
// @Success      200   {object}  dto.CartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/cart [post]
func (h *SaleHandler) AddItem(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	if in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id: es requerido"})
	}
	out, err := h.cartUC.AddItem(c.Context(), GetUsername(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetItem godoc
// @Summary      Fijar la cantidad de una línea (0 la elimina)
// @Tags         cart
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path      string               true  "Product ID"
// @Param        body       body      dto.CartItemRequest  true  "quantity"
// @Success      200        {object}  dto.CartResponse
// @Failure      400        {object}  dto.ErrorResponse
// @Router       /api/cart/items/{productId} [put]
func (h *SaleHandler) SetItem(c *fiber.Ctx) error {
	var in dto.CartItemRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.cartUC.SetItem(c.Context(), GetUsername(c), c.Params("productId"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveItem godoc
// @Summary      Quitar producto del carrito
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Param        productId  path      string  true  "Product ID"
// @Success      200        {object}  dto.CartResponse
// @Router       /api/cart/items/{productId} [delete]
func (h *SaleHandler) RemoveItem(c *fiber.Ctx) error {
	out, err := h.cartUC.RemoveItem(c.Context(), GetUsername(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ClearCart godoc
// @Summary      Vaciar carrito
// @Tags         cart
// @Security     Bearer
// @Success      204
// @Router       /api/cart [delete]
func (h *SaleHandler) ClearCart(c *fiber.Ctx) error {
	if err := h.cartUC.Clear(c.Context(), GetUsername(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Checkout godoc
// @Summary      Confirmar el carrito (todas las líneas o ninguna)
// @Description  Revalida contra los lotes vigentes. Si el stock cambió responde 409
//
//	STOCK_CHANGED con la línea afectada y el carrito queda intacto.
//
// @Tags         cart
// @Security     Bearer
// @Produce      json
// @Success      201  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/cart/checkout [post]
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	sale, err := h.cartUC.Checkout(c.Context(), GetUsername(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sales.ToSaleResponse(sale))
}

// CreateSale godoc
// @Summary      Venta directa (sin carrito de sesión)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SaleRequest  true  "items"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	username := GetUsername(c)
	ct := cart.New(username)
	for _, it := range in.Items {
		if err := ct.Add(it.ProductID, it.Quantity); err != nil {
			return respondError(c, err)
		}
	}
	sale, err := h.orchestrator.Checkout(c.Context(), username, ct)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sales.ToSaleResponse(sale))
}

// GetSale godoc
// @Summary      Detalle de una venta reconstruido desde el kardex
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	sale, err := h.receipts.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sales.ToSaleResponse(sale))
}

// DownloadReceipt godoc
// @Summary      Comprobante de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "Sale ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt.pdf [get]
func (h *SaleHandler) DownloadReceipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipts.DownloadReceipt(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
