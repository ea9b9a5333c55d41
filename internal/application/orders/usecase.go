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

// LifecycleUseCase es el controlador del ciclo de vida del pedido: crea pedidos,
// avanza estados y edita líneas. Es el único componente con autoridad de escritura
// cruzada sobre pedido, inventario, movimientos y cartera, siempre dentro de una
// transacción por operación.
type LifecycleUseCase struct {
	txRunner    TxRunner
	orderRepo   repository.OrderRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	notifier    Notifier
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner TxRunner,
	orderRepo repository.OrderRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	notifier Notifier,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		notifier:    notifier,
	}
}

// resolvedLine línea validada con el precio ya congelado.
type resolvedLine struct {
	ProductID string
	Cantidad  decimal.Decimal
	Precio    decimal.Decimal
}

// resolveLines valida las líneas contra el catálogo y congela el precio:
// si la línea no trae precio se toma el de catálogo en este instante y no se
// vuelve a consultar. Devuelve las líneas resueltas y el total.
func (uc *LifecycleUseCase) resolveLines(companyID string, in []dto.OrderLineRequest) ([]resolvedLine, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, domain.ErrInvalidInput
	}
	lines := make([]resolvedLine, 0, len(in))
	total := decimal.Zero
	for _, item := range in {
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, decimal.Zero, domain.ErrInvalidInput
		}
		if item.UnitPrice.LessThan(decimal.Zero) {
			return nil, decimal.Zero, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil || product == nil {
			return nil, decimal.Zero, domain.ErrNotFound
		}
		if product.CompanyID != companyID {
			return nil, decimal.Zero, domain.ErrForbidden
		}
		price := item.UnitPrice
		if price.IsZero() {
			price = product.Price
		}
		lines = append(lines, resolvedLine{ProductID: item.ProductID, Cantidad: item.Quantity, Precio: price})
		total = total.Add(item.Quantity.Mul(price))
	}
	return lines, total, nil
}

// CreateOrder crea un pedido en estado GENERADO con sus líneas. Sin efectos
// sobre inventario ni cartera.
func (uc *LifecycleUseCase) CreateOrder(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.ClientID == "" {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}
	if client.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	resolved, total, err := uc.resolveLines(companyID, in.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		ClientID:  in.ClientID,
		UserID:    userID,
		Total:     total,
		CreatedAt: now,
	}
	var lines []*entity.OrderLine
	for _, rl := range resolved {
		lines = append(lines, &entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: rl.ProductID,
			Cantidad:  rl.Cantidad,
			Precio:    rl.Precio,
		})
	}

	err = uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.InventoryRepository,
		_ repository.MovementRepository,
		_ repository.CarteraRepository,
		_ repository.ReceiptRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, line := range lines {
			if err := orderRepo.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, lines, nil), nil
}

// GetOrder obtiene un pedido con líneas e historial de estados.
func (uc *LifecycleUseCase) GetOrder(ctx context.Context, companyID, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil || order == nil {
		return nil, domain.ErrNotFound
	}
	if order.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.orderRepo.GetLines(id)
	if err != nil {
		return nil, err
	}
	events, err := uc.orderRepo.ListStatusEvents(id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, lines, events), nil
}

// ListOrders lista los pedidos de la empresa con paginación.
func (uc *LifecycleUseCase) ListOrders(ctx context.Context, companyID string, limit, offset int) ([]*dto.OrderResponse, error) {
	list, err := uc.orderRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(list))
	for _, order := range list {
		events, err := uc.orderRepo.ListStatusEvents(order.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toOrderResponse(order, nil, events))
	}
	return out, nil
}

func toOrderResponse(order *entity.Order, lines []*entity.OrderLine, events []*entity.StatusEvent) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:        order.ID,
		CompanyID: order.CompanyID,
		ClientID:  order.ClientID,
		UserID:    order.UserID,
		Estado:    dorders.CurrentState(events),
		Total:     order.Total,
		Guia:      order.Guia,
		Flete:     order.Flete,
		CreatedAt: order.CreatedAt,
		Lines:     make([]dto.OrderLineResponse, 0, len(lines)),
		History:   make([]dto.StatusEventResponse, 0, len(events)),
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Cantidad,
			UnitPrice: l.Precio,
		})
	}
	for _, ev := range events {
		resp.History = append(resp.History, dto.StatusEventResponse{Estado: ev.Estado, CreatedAt: ev.CreatedAt})
	}
	return resp
}

func buildSnapshot(order *entity.Order, lines []*entity.OrderLine, clientName string, at time.Time) *dto.OrderSnapshot {
	snap := &dto.OrderSnapshot{
		OrderID:    order.ID,
		CompanyID:  order.CompanyID,
		ClientID:   order.ClientID,
		ClientName: clientName,
		Total:      order.Total,
		InvoicedAt: at,
	}
	for _, l := range lines {
		snap.Lines = append(snap.Lines, dto.OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Cantidad,
			UnitPrice: l.Precio,
		})
	}
	return snap
}
