// Package cart modela el carrito de venta de una sesión. Es un valor sin IO:
// el stock no se reserva al agregar, se revalida al confirmar la venta.
package cart

import (
	"fmt"

	"github.com/jhoicas/Farmacia-api/internal/domain"
)

// MaxLineQuantity tope de unidades por línea; cabe holgado en la columna INTEGER.
const MaxLineQuantity = 1_000_000

// Item una línea del carrito.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart carrito de un operador. El orden de Items es el orden de las líneas de la venta.
type Cart struct {
	Owner string `json:"owner"`
	Items []Item `json:"items"`
}

// New crea un carrito vacío para owner.
func New(owner string) *Cart {
	return &Cart{Owner: owner, Items: []Item{}}
}

// Add suma qty al producto; si ya existe la línea se fusiona conservando su posición.
func (c *Cart) Add(productID string, qty int) error {
	if productID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	if qty <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if qty > MaxLineQuantity {
		return tooMany()
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if c.Items[i].Quantity > MaxLineQuantity-qty {
				return tooMany()
			}
			c.Items[i].Quantity += qty
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty})
	return nil
}

// SetQuantity fija la cantidad de una línea existente. qty == 0 la elimina.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return domain.Invalid("quantity", "no puede ser negativa")
	}
	if qty > MaxLineQuantity {
		return tooMany()
	}
	i := c.index(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	if qty == 0 {
		c.removeAt(i)
		return nil
	}
	c.Items[i].Quantity = qty
	return nil
}

// Remove quita la línea del producto.
func (c *Cart) Remove(productID string) error {
	i := c.index(productID)
	if i < 0 {
		return domain.ErrNotFound
	}
	c.removeAt(i)
	return nil
}

// Clear vacía el carrito (tras una venta confirmada).
func (c *Cart) Clear() {
	c.Items = []Item{}
}

// IsEmpty indica si no hay líneas.
func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Units total de unidades en el carrito.
func (c *Cart) Units() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Validate revisa las líneas de un carrito recibido desde fuera (p.ej. venta directa).
func (c *Cart) Validate() error {
	if c.IsEmpty() {
		return domain.Invalid("items", "el carrito está vacío")
	}
	for _, it := range c.Items {
		if it.ProductID == "" {
			return domain.Invalid("product_id", "requerido")
		}
		if it.Quantity <= 0 {
			return domain.Invalid("quantity", "debe ser mayor que cero")
		}
		if it.Quantity > MaxLineQuantity {
			return tooMany()
		}
	}
	return nil
}

func tooMany() error {
	return domain.Invalid("quantity", fmt.Sprintf("máximo %d unidades por línea", MaxLineQuantity))
}

func (c *Cart) index(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}
