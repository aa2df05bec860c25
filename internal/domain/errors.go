package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrTokenRevoked        = errors.New("sesión revocada")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente")
	ErrPersistence         = errors.New("error de persistencia")
)

// ValidationError detalla qué campo falló. Unwrap devuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// SaleLineError identifica la línea del carrito que impidió la venta.
// Err es la causa (ErrInsufficientStock, ErrNotFound, ErrInvalidInput...).
type SaleLineError struct {
	Line        int // índice 0-based dentro del carrito
	ProductID   string
	ProductName string
	Requested   int
	Available   int
	Err         error
}

func (e *SaleLineError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	if errors.Is(e.Err, ErrInsufficientStock) {
		return fmt.Sprintf("línea %d (%s): el stock cambió, solicitado %d, disponible %d; revise el carrito",
			e.Line+1, name, e.Requested, e.Available)
	}
	return fmt.Sprintf("línea %d (%s): %v", e.Line+1, name, e.Err)
}

func (e *SaleLineError) Unwrap() error { return e.Err }
