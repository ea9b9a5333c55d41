package payments

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

// AllocationUseCase aplica pagos de clientes sobre los saldos pendientes de
// sus pedidos. El saldo de un pedido siempre se deriva: total menos la suma
// de aplicaciones previas, nunca un contador acumulado.
type AllocationUseCase struct {
	txRunner    TxRunner
	clientRepo  repository.ClientRepository
	receiptRepo repository.ReceiptRepository
	carteraRepo repository.CarteraRepository
}

// NewAllocationUseCase construye el caso de uso.
func NewAllocationUseCase(
	txRunner TxRunner,
	clientRepo repository.ClientRepository,
	receiptRepo repository.ReceiptRepository,
	carteraRepo repository.CarteraRepository,
) *AllocationUseCase {
	return &AllocationUseCase{txRunner: txRunner, clientRepo: clientRepo, receiptRepo: receiptRepo, carteraRepo: carteraRepo}
}

// AllocatePayment crea el recibo y aplica cada asignación (pedido, valor).
//
// Por cada asignación: saldo = total − suma de aplicaciones previas; si el
// saldo ya es cero o negativo la asignación se rechaza con
// AllocationExceedsNothingError y el recibo completo se descarta. El sobrepago
// con saldo parcial sí se acepta: el valor aplicado se registra completo para
// auditoría y el saldo pendiente resultante se trunca en cero.
func (uc *AllocationUseCase) AllocatePayment(ctx context.Context, companyID, userID string, in dto.AllocatePaymentRequest) (*dto.ReceiptResponse, error) {
	if in.ClientID == "" || len(in.Allocations) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, a := range in.Allocations {
		if a.OrderID == "" || !a.Amount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	receipt := &entity.Receipt{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ClientID:  in.ClientID,
		Concepto:  in.Concepto,
		CreatedBy: userID,
		CreatedAt: now,
	}
	resp := &dto.ReceiptResponse{
		ID:        receipt.ID,
		CompanyID: companyID,
		ClientID:  in.ClientID,
		Concepto:  in.Concepto,
		CreatedAt: now,
	}

	err = uc.txRunner.RunPayment(ctx, func(
		orderRepo repository.OrderRepository,
		receiptRepo repository.ReceiptRepository,
	) error {
		if err := receiptRepo.Create(receipt); err != nil {
			return err
		}
		for _, a := range in.Allocations {
			// El lock del pedido serializa la asignación frente a una
			// cancelación o re-facturación concurrente del mismo pedido.
			order, err := orderRepo.GetForUpdate(a.OrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}
			if order.CompanyID != companyID {
				return domain.ErrForbidden
			}
			if order.ClientID != in.ClientID {
				return domain.ErrInvalidInput
			}
			applied, err := receiptRepo.SumAppliedByOrder(a.OrderID)
			if err != nil {
				return err
			}
			outstanding := order.Total.Sub(applied)
			if !outstanding.GreaterThan(decimal.Zero) {
				return &domain.AllocationExceedsNothingError{OrderID: a.OrderID}
			}
			estado := entity.ReciboEstadoParcial
			if applied.Add(a.Amount).GreaterThanOrEqual(order.Total) {
				estado = entity.ReciboEstadoCompleto
			}
			saldo := outstanding.Sub(a.Amount)
			if saldo.LessThan(decimal.Zero) {
				saldo = decimal.Zero
			}
			detail := &entity.ReceiptDetail{
				ID:             uuid.New().String(),
				ReceiptID:      receipt.ID,
				OrderID:        a.OrderID,
				Amount:         a.Amount,
				Estado:         estado,
				SaldoPendiente: saldo,
				CreatedAt:      now,
			}
			if err := receiptRepo.CreateDetail(detail); err != nil {
				return err
			}
			resp.Allocations = append(resp.Allocations, dto.AllocationResponse{
				OrderID:        a.OrderID,
				Amount:         a.Amount,
				Estado:         estado,
				SaldoPendiente: saldo,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetReceipt obtiene un recibo con sus aplicaciones.
func (uc *AllocationUseCase) GetReceipt(ctx context.Context, companyID, id string) (*dto.ReceiptResponse, error) {
	receipt, err := uc.receiptRepo.GetByID(id)
	if err != nil || receipt == nil {
		return nil, domain.ErrNotFound
	}
	if receipt.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.receiptRepo.ListDetails(id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReceiptResponse{
		ID:        receipt.ID,
		CompanyID: receipt.CompanyID,
		ClientID:  receipt.ClientID,
		Concepto:  receipt.Concepto,
		CreatedAt: receipt.CreatedAt,
	}
	for _, d := range details {
		resp.Allocations = append(resp.Allocations, dto.AllocationResponse{
			OrderID:        d.OrderID,
			Amount:         d.Amount,
			Estado:         d.Estado,
			SaldoPendiente: d.SaldoPendiente,
		})
	}
	return resp, nil
}

// ListClientCartera lista los cargos de cartera de un cliente (auditoría).
func (uc *AllocationUseCase) ListClientCartera(ctx context.Context, companyID, clientID string, limit, offset int) ([]dto.CarteraEntryResponse, error) {
	client, err := uc.clientRepo.GetByID(clientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	list, err := uc.carteraRepo.ListByClient(companyID, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CarteraEntryResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.CarteraEntryResponse{
			ID:        m.ID,
			ClientID:  m.ClientID,
			OrderID:   m.OrderID,
			Amount:    m.Amount,
			Origin:    m.Origin,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
