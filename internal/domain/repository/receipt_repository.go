package repository

import (
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de recibos de caja y sus aplicaciones.
type ReceiptRepository interface {
	Create(r *entity.Receipt) error
	GetByID(id string) (*entity.Receipt, error)
	CreateDetail(d *entity.ReceiptDetail) error
	ListDetails(receiptID string) ([]*entity.ReceiptDetail, error)

	// SumAppliedByOrder suma el valor aplicado registrado contra un pedido
	// (valores completos, sin truncar).
	SumAppliedByOrder(orderID string) (decimal.Decimal, error)

	// HasAllocations indica si existe al menos una aplicación contra el pedido.
	HasAllocations(orderID string) (bool, error)
}
