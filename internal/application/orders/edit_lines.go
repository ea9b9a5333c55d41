package orders

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	dorders "github.com/comercia/pedidos-api/internal/domain/orders"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

// EditLines reemplaza el conjunto completo de líneas del pedido.
//
// Permitido mientras el estado actual sea GENERADO o SEPARADO. Si el estado
// actual es FACTURADO (flujo de corrección post-factura), la misma transacción
// primero revierte el débito anterior — acredita stock, movimientos ENTRADA
// compensatorios, borra la cartera del pedido — y luego aplica las líneas
// nuevas con su propio débito y un cargo nuevo en cartera. Revertir-y-reaplicar,
// nunca un diff: el log de movimientos conserva la auditoría completa.
func (uc *LifecycleUseCase) EditLines(ctx context.Context, companyID, userID, orderID string, in dto.EditOrderLinesRequest) (*dto.OrderResponse, error) {
	resolved, total, err := uc.resolveLines(companyID, in.Lines)
	if err != nil {
		return nil, err
	}

	clientName := ""
	if pre, err := uc.orderRepo.GetByID(orderID); err == nil && pre != nil {
		if client, err := uc.clientRepo.GetByID(pre.ClientID); err == nil && client != nil {
			clientName = client.Name
		}
	}

	var snap *dto.OrderSnapshot
	var order *entity.Order
	var newLines []*entity.OrderLine
	var events []*entity.StatusEvent

	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		invRepo repository.InventoryRepository,
		movRepo repository.MovementRepository,
		carteraRepo repository.CarteraRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		order, err = orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if order.CompanyID != companyID {
			return domain.ErrForbidden
		}
		events, err = orderRepo.ListStatusEvents(orderID)
		if err != nil {
			return err
		}
		current := dorders.CurrentState(events)
		invoiced := current == entity.OrderStatusFacturado
		if current != entity.OrderStatusGenerado && current != entity.OrderStatusSeparado && !invoiced {
			return &domain.InvalidTransitionError{From: current, To: current}
		}

		now := time.Now()
		if invoiced {
			// Revertir la cartera de un pedido ya abonado dejaría el pago
			// huérfano; se exige reversar el recibo primero.
			hasPayments, err := receiptRepo.HasAllocations(orderID)
			if err != nil {
				return err
			}
			if hasPayments {
				return domain.ErrOrderHasPayments
			}
			oldLines, err := orderRepo.GetLines(orderID)
			if err != nil {
				return err
			}
			if err := uc.creditLines(invRepo, movRepo, order, oldLines, userID, now); err != nil {
				return err
			}
			if err := carteraRepo.DeleteByOrder(orderID); err != nil {
				return err
			}
		}

		if err := orderRepo.DeleteLines(orderID); err != nil {
			return err
		}
		newLines = newLines[:0]
		for _, rl := range resolved {
			line := &entity.OrderLine{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: rl.ProductID,
				Cantidad:  rl.Cantidad,
				Precio:    rl.Precio,
			}
			if err := orderRepo.CreateLine(line); err != nil {
				return err
			}
			newLines = append(newLines, line)
		}
		if err := orderRepo.UpdateTotal(orderID, total); err != nil {
			return err
		}
		order.Total = total

		if invoiced {
			if err := uc.debitLines(invRepo, movRepo, order, newLines, userID, now); err != nil {
				return err
			}
			if err := carteraRepo.Create(&entity.CarteraMovement{
				ID:        uuid.New().String(),
				CompanyID: order.CompanyID,
				ClientID:  order.ClientID,
				OrderID:   order.ID,
				Amount:    total,
				Origin:    entity.CarteraOrigenFactura,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			snap = buildSnapshot(order, newLines, clientName, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if snap != nil {
		go uc.notifier.OrderInvoiced(snap)
	}
	return toOrderResponse(order, newLines, events), nil
}
