package payments

import (
	"context"

	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta la aplicación de un recibo dentro de una transacción:
// todas las asignaciones del lote se aplican o ninguna.
type TxRunner interface {
	RunPayment(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		receiptRepo repository.ReceiptRepository,
	) error) error
}
