package repository

import (
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain/entity"
)

// InventoryRepository define el puerto para el libro de inventario por empresa+producto.
//
// Decrement es la única vía legal para restar stock: es un update condicional
// (WHERE stock_actual >= cantidad) que falla atómicamente si dejaría el stock
// negativo. Ningún caso de uso debe reintroducir un leer-luego-escribir.
type InventoryRepository interface {
	// Get devuelve nil, nil si no existe registro para el producto.
	Get(companyID, productID string) (*entity.InventoryRecord, error)

	// EnsureExists crea el registro de forma idempotente si no existe
	// (usado por compras; el despacho de pedidos nunca crea registros).
	EnsureExists(companyID, productID string, initial decimal.Decimal) error

	// Decrement resta cantidad solo si el stock alcanza. Retorna
	// MissingInventoryRecordError si el producto nunca fue cargado,
	// InsufficientStockError si el stock no alcanza.
	Decrement(companyID, productID string, quantity decimal.Decimal) error

	// Credit suma cantidad al stock actual, sin precondición.
	Credit(companyID, productID string, quantity decimal.Decimal) error

	// CreditPurchase suma cantidad al stock actual y al de referencia (compras).
	CreditPurchase(companyID, productID string, quantity decimal.Decimal) error

	ListByCompany(companyID string, limit, offset int) ([]*entity.InventoryRecord, error)
}
