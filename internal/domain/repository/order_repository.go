package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia del agregado pedido.
// GetForUpdate bloquea la fila del pedido (SELECT FOR UPDATE): toda transición
// de estado y toda edición de líneas deben pasar por ahí antes de leer el estado,
// para serializar operaciones concurrentes sobre el mismo pedido.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	GetForUpdate(id string) (*entity.Order, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Order, error)

	CreateLine(line *entity.OrderLine) error
	GetLines(orderID string) ([]*entity.OrderLine, error)
	DeleteLines(orderID string) error

	// AppendStatusEvent agrega un evento al historial; ListStatusEvents los
	// devuelve en orden cronológico ascendente.
	AppendStatusEvent(ev *entity.StatusEvent) error
	ListStatusEvents(orderID string) ([]*entity.StatusEvent, error)

	UpdateTotal(orderID string, total decimal.Decimal) error
	UpdateShipment(orderID, guia string, flete decimal.Decimal, fechaEnvio time.Time) error
}
