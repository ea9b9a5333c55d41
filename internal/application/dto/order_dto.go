package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de un pedido al crearlo o editarlo.
// Si UnitPrice es cero se toma el precio de catálogo del producto y queda
// congelado en la línea (el núcleo nunca vuelve a leer el catálogo).
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest crea un pedido en estado GENERADO.
type CreateOrderRequest struct {
	ClientID string             `json:"client_id"`
	Lines    []OrderLineRequest `json:"lines"`
}

// EditOrderLinesRequest reemplaza el conjunto completo de líneas del pedido.
type EditOrderLinesRequest struct {
	Lines []OrderLineRequest `json:"lines"`
}

// ShipmentMeta metadatos exigidos solo por la transición a ENVIADO.
type ShipmentMeta struct {
	Guia  string          `json:"guia"`
	Flete decimal.Decimal `json:"flete"`
}

// AdvanceOrderRequest avanza el pedido a un estado destino.
// Shipment solo es válido (y obligatorio) cuando TargetState es ENVIADO.
type AdvanceOrderRequest struct {
	TargetState string        `json:"target_state"`
	Shipment    *ShipmentMeta `json:"shipment,omitempty"`
}

// OrderLineResponse línea del pedido en respuestas.
type OrderLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// StatusEventResponse evento del historial de estados.
type StatusEventResponse struct {
	Estado    string    `json:"estado"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse pedido con líneas e historial.
type OrderResponse struct {
	ID        string                `json:"id"`
	CompanyID string                `json:"company_id"`
	ClientID  string                `json:"client_id"`
	UserID    string                `json:"user_id"`
	Estado    string                `json:"estado"`
	Total     decimal.Decimal       `json:"total"`
	Guia      string                `json:"guia,omitempty"`
	Flete     decimal.Decimal       `json:"flete"`
	CreatedAt time.Time             `json:"created_at"`
	Lines     []OrderLineResponse   `json:"lines"`
	History   []StatusEventResponse `json:"history"`
}

// OrderStateResult resultado de una transición de estado.
type OrderStateResult struct {
	OrderID string          `json:"order_id"`
	Estado  string          `json:"estado"`
	Total   decimal.Decimal `json:"total"`
}

// OrderSnapshot datos de presentación para el colaborador de documentos y
// notificaciones. Se arma dentro de la transacción pero solo se usa después
// del commit; el colaborador nunca toca el estado del núcleo.
type OrderSnapshot struct {
	OrderID    string
	CompanyID  string
	ClientID   string
	ClientName string
	Total      decimal.Decimal
	Lines      []OrderLineResponse
	InvoicedAt time.Time
}
