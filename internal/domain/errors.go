package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrUserNotFound             = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists       = errors.New("el email ya está registrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrInvalidTransition        = errors.New("transición de estado no permitida")
	ErrDuplicateTransition      = errors.New("el pedido ya registró ese estado")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrMissingInventoryRecord   = errors.New("producto sin registro de inventario")
	ErrAllocationExceedsNothing = errors.New("el pedido no tiene saldo pendiente")
	ErrOrderHasPayments         = errors.New("el pedido tiene abonos aplicados")
)

// InsufficientStockError indica qué producto no alcanzó el stock en un débito condicional.
// errors.Is(err, ErrInsufficientStock) == true.
type InsufficientStockError struct {
	ProductID string
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s (solicitado %s)", e.ProductID, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// MissingInventoryRecordError indica que el producto nunca fue cargado a inventario.
// El despacho de pedidos no crea registros de forma implícita: falla con este error.
type MissingInventoryRecordError struct {
	ProductID string
}

func (e *MissingInventoryRecordError) Error() string {
	return fmt.Sprintf("producto %s sin registro de inventario", e.ProductID)
}

func (e *MissingInventoryRecordError) Is(target error) bool {
	return target == ErrMissingInventoryRecord
}

// InvalidTransitionError detalla el estado actual y el destino rechazado.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transición no permitida: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// AllocationExceedsNothingError indica un abono dirigido a un pedido sin saldo pendiente.
// Distinto del sobrepago con saldo parcial, que se acepta y se trunca en cero.
type AllocationExceedsNothingError struct {
	OrderID string
}

func (e *AllocationExceedsNothingError) Error() string {
	return fmt.Sprintf("el pedido %s no tiene saldo pendiente", e.OrderID)
}

func (e *AllocationExceedsNothingError) Is(target error) bool {
	return target == ErrAllocationExceedsNothing
}
