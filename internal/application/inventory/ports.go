package inventory

import (
	"context"

	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta un movimiento de inventario dentro de una transacción:
// la mutación de stock y el registro en el log se confirman juntos o ninguno.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
	) error) error
}
