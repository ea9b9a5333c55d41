package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	dorders "github.com/comercia/pedidos-api/internal/domain/orders"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// Advance aplica una transición de estado sobre el pedido.
//
// La fila del pedido se bloquea (GetForUpdate) antes de leer el estado actual,
// de modo que dos Advance concurrentes sobre el mismo pedido se serializan:
// el segundo ve el evento del primero y falla con ErrDuplicateTransition o
// ErrInvalidTransition en vez de aplicar el efecto dos veces.
//
// FACTURADO descuenta inventario línea por línea con el update condicional,
// registra movimientos SALIDA y un cargo en cartera, todo en una transacción.
// CANCELADO revierte el débito (si hubo FACTURADO), borra la cartera del pedido
// y deja el total en cero. ENVIADO exige metadatos de envío. SEPARADO solo
// registra el evento.
func (uc *LifecycleUseCase) Advance(ctx context.Context, companyID, userID, orderID string, in dto.AdvanceOrderRequest) (*dto.OrderStateResult, error) {
	target := in.TargetState
	if !dorders.IsValidStatus(target) || target == entity.OrderStatusGenerado {
		return nil, domain.ErrInvalidInput
	}
	// Metadatos de envío: variante etiquetada por estado destino. Solo ENVIADO
	// los acepta, y ahí son obligatorios. Flete cero vale (envío gratis),
	// negativo no.
	if target == entity.OrderStatusEnviado {
		if in.Shipment == nil || in.Shipment.Guia == "" || in.Shipment.Flete.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	} else if in.Shipment != nil {
		return nil, domain.ErrInvalidInput
	}

	// Datos de presentación para el documento asíncrono; la corrección no
	// depende de esta lectura, que ocurre fuera del lock.
	clientName := ""
	if pre, err := uc.orderRepo.GetByID(orderID); err == nil && pre != nil {
		if client, err := uc.clientRepo.GetByID(pre.ClientID); err == nil && client != nil {
			clientName = client.Name
		}
	}

	var snap *dto.OrderSnapshot
	resultTotal := decimal.Zero

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
		carteraRepo repository.CarteraRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		order, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.CompanyID != companyID {
			return domain.ErrForbidden
		}
		events, err := orderRepo.ListStatusEvents(orderID)
		if err != nil {
			return err
		}
		if dorders.HasState(events, target) {
			return domain.ErrDuplicateTransition
		}
		current := dorders.CurrentState(events)
		if !dorders.CanTransition(current, target) {
			return &domain.InvalidTransitionError{From: current, To: target}
		}

		now := time.Now()
		switch target {
		case entity.OrderStatusSeparado:
			// Solo el evento: apartar no afecta stock ni cartera.

		case entity.OrderStatusFacturado:
			lines, err := orderRepo.GetLines(orderID)
			if err != nil {
				return err
			}
			if err := uc.debitLines(invRepo, movRepo, order, lines, userID, now); err != nil {
				return err
			}
			if err := carteraRepo.Create(&entity.CarteraMovement{
				ID:        uuid.New().String(),
				CompanyID: order.CompanyID,
				ClientID:  order.ClientID,
				OrderID:   order.ID,
				Amount:    order.Total,
				Origin:    entity.CarteraOrigenFactura,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			snap = buildSnapshot(order, lines, clientName, now)

		case entity.OrderStatusEnviado:
			if err := orderRepo.UpdateShipment(orderID, in.Shipment.Guia, in.Shipment.Flete, now); err != nil {
				return err
			}

		case entity.OrderStatusCancelado:
			hasPayments, err := receiptRepo.HasAllocations(orderID)
			if err != nil {
				return err
			}
			if hasPayments {
				return domain.ErrOrderHasPayments
			}
			// Compensar solo si hubo débito: cancelar desde SEPARADO no
			// descontó nada, así que no acredita nada.
			if dorders.HasState(events, entity.OrderStatusFacturado) {
				lines, err := orderRepo.GetLines(orderID)
				if err != nil {
					return err
				}
				if err := uc.creditLines(invRepo, movRepo, order, lines, userID, now); err != nil {
					return err
				}
				if err := carteraRepo.DeleteByOrder(orderID); err != nil {
					return err
				}
			}
			// La cancelación renuncia al valor de la venta para reportes.
			if err := orderRepo.UpdateTotal(orderID, decimal.Zero); err != nil {
				return err
			}
			order.Total = decimal.Zero
		}

		resultTotal = order.Total
		return orderRepo.AppendStatusEvent(&entity.StatusEvent{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			Estado:    target,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	// Post-commit, fuera de la transacción y sin esperar el resultado.
	if snap != nil {
		go uc.notifier.OrderInvoiced(snap)
	}
	return &dto.OrderStateResult{OrderID: orderID, Estado: target, Total: resultTotal}, nil
}

// debitLines descuenta el stock de cada línea con el update condicional y
// registra un movimiento SALIDA por línea. Si alguna línea no alcanza stock,
// la transacción completa se revierte: no hay débitos parciales.
func (uc *LifecycleUseCase) debitLines(
	invRepo repository.InventoryRepository,
	movRepo repository.MovementRepository,
	order *entity.Order,
	lines []*entity.OrderLine,
	userID string,
	now time.Time,
) error {
	for _, line := range lines {
		if err := invRepo.Decrement(order.CompanyID, line.ProductID, line.Cantidad); err != nil {
			return err
		}
		orderID := order.ID
		if err := movRepo.Create(&entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: order.CompanyID,
			ProductID: line.ProductID,
			Type:      entity.MovementTypeSalida,
			Quantity:  line.Cantidad.Neg(),
			OrderID:   &orderID,
			CreatedBy: userID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

// creditLines revierte un débito previo: acredita cada línea y registra un
// movimiento ENTRADA compensatorio por línea. Nunca edita los movimientos
// originales; el log queda con la historia completa y suma neta cero.
func (uc *LifecycleUseCase) creditLines(
	invRepo repository.InventoryRepository,
	movRepo repository.MovementRepository,
	order *entity.Order,
	lines []*entity.OrderLine,
	userID string,
	now time.Time,
) error {
	for _, line := range lines {
		if err := invRepo.Credit(order.CompanyID, line.ProductID, line.Cantidad); err != nil {
			return err
		}
		orderID := order.ID
		if err := movRepo.Create(&entity.Movement{
			ID:        uuid.New().String(),
			CompanyID: order.CompanyID,
			ProductID: line.ProductID,
			Type:      entity.MovementTypeEntrada,
			Quantity:  line.Cantidad,
			OrderID:   &orderID,
			CreatedBy: userID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}
