package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// MovementUseCase registra entradas por compra y ajustes manuales de stock.
// Cada operación muta el registro de inventario y agrega su movimiento al log
// en la misma transacción. El despacho de pedidos no pasa por aquí: lo hace el
// controlador de ciclo de vida con sus propias reglas.
type MovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	invRepo     repository.InventoryRepository
	movRepo     repository.MovementRepository
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	invRepo repository.InventoryRepository,
	movRepo repository.MovementRepository,
) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner, productRepo: productRepo, invRepo: invRepo, movRepo: movRepo}
}

func (uc *MovementUseCase) validProduct(companyID, productID string) error {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil || product == nil {
		return domain.ErrNotFound
	}
	if product.CompanyID != companyID {
		return domain.ErrForbidden
	}
	return nil
}

// RegisterPurchase registra una entrada de mercancía: crea el registro de
// inventario si no existe (idempotente), suma al stock actual y al de
// referencia, y agrega un movimiento ENTRADA.
func (uc *MovementUseCase) RegisterPurchase(ctx context.Context, companyID, userID string, in dto.RegisterPurchaseRequest) error {
	if in.ProductID == "" || !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if err := uc.validProduct(companyID, in.ProductID); err != nil {
		return err
	}
	now := time.Now()
	return uc.txRunner.RunInventory(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
	) error {
		if err := invRepo.EnsureExists(companyID, in.ProductID, decimal.Zero); err != nil {
			return err
		}
		if err := invRepo.CreditPurchase(companyID, in.ProductID, in.Quantity); err != nil {
			return err
		}
		return movRepo.Create(&entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			ProductID: in.ProductID,
			Type:      entity.MovementTypeEntrada,
			Quantity:  in.Quantity,
			CreatedBy: userID,
			CreatedAt: now,
		})
	})
}

// RegisterAdjustment registra un ajuste manual con signo. Un ajuste negativo
// pasa por el decremento condicional: si dejaría el stock negativo falla con
// stock insuficiente y no se registra nada.
func (uc *MovementUseCase) RegisterAdjustment(ctx context.Context, companyID, userID string, in dto.RegisterAdjustmentRequest) error {
	if in.ProductID == "" || in.Quantity.IsZero() {
		return domain.ErrInvalidInput
	}
	if err := uc.validProduct(companyID, in.ProductID); err != nil {
		return err
	}
	now := time.Now()
	return uc.txRunner.RunInventory(ctx, func(
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
	) error {
		if in.Quantity.GreaterThan(decimal.Zero) {
			if err := invRepo.Credit(companyID, in.ProductID, in.Quantity); err != nil {
				return err
			}
		} else {
			if err := invRepo.Decrement(companyID, in.ProductID, in.Quantity.Neg()); err != nil {
				return err
			}
		}
		return movRepo.Create(&entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: companyID,
			ProductID: in.ProductID,
			Type:      entity.MovementTypeAjuste,
			Quantity:  in.Quantity,
			CreatedBy: userID,
			CreatedAt: now,
		})
	})
}

// GetStock consulta el stock actual de un producto.
func (uc *MovementUseCase) GetStock(ctx context.Context, companyID, productID string) (*dto.StockResponse, error) {
	if err := uc.validProduct(companyID, productID); err != nil {
		return nil, err
	}
	rec, err := uc.invRepo.Get(companyID, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrMissingInventoryRecord
	}
	return &dto.StockResponse{
		ProductID:       rec.ProductID,
		StockActual:     rec.StockActual,
		StockReferencia: rec.StockReferencia,
		UpdatedAt:       rec.UpdatedAt,
	}, nil
}

// ListOrderMovements lista los movimientos originados por un pedido (auditoría).
// Un pedido facturado y luego cancelado muestra ambos juegos de movimientos.
func (uc *MovementUseCase) ListOrderMovements(ctx context.Context, companyID, orderID string) ([]dto.MovementResponse, error) {
	list, err := uc.movRepo.ListByOrder(orderID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		if m.CompanyID != companyID {
			return nil, domain.ErrForbidden
		}
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			OrderID:   m.OrderID,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

// ListMovements lista los movimientos de un producto en un rango de fechas.
func (uc *MovementUseCase) ListMovements(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	if err := uc.validProduct(companyID, productID); err != nil {
		return nil, err
	}
	list, err := uc.movRepo.ListByProduct(companyID, productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Type:      m.Type,
			Quantity:  m.Quantity,
			OrderID:   m.OrderID,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
