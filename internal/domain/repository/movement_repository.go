package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain/entity"
)

// MovementRepository define el puerto del log de movimientos.
// Solo inserta y consulta: el log es inmutable.
type MovementRepository interface {
	Create(m *entity.Movement) error
	ListByProduct(companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByOrder(orderID string) ([]*entity.Movement, error)
	// SumByOrder suma las cantidades (con signo) de los movimientos del pedido.
	SumByOrder(orderID string) (decimal.Decimal, error)
}
