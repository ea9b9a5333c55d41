package orders

import (
	"context"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios atados a esa tx. Toda transición de estado es una sola transacción:
// o se aplican todas las escrituras (pedido, inventario, movimientos, cartera)
// o ninguna.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
		carteraRepo repository.CarteraRepository,
		receiptRepo repository.ReceiptRepository,
	) error) error
}

// Notifier es el colaborador de documentos y notificaciones. Se invoca después
// del commit, en una goroutine, y sus fallas solo se registran en el log:
// nunca revierten ni fallan una transición.
type Notifier interface {
	OrderInvoiced(snapshot *dto.OrderSnapshot)
}
