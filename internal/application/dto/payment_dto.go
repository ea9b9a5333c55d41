package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationRequest un par (pedido, valor) dentro de un recibo.
type AllocationRequest struct {
	OrderID string          `json:"order_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// AllocatePaymentRequest aplica un pago de un cliente sobre uno o más pedidos.
// La aplicación es todo-o-nada: si una asignación falla, el recibo completo se descarta.
type AllocatePaymentRequest struct {
	ClientID    string              `json:"client_id"`
	Concepto    string              `json:"concepto"`
	Allocations []AllocationRequest `json:"allocations"`
}

// AllocationResponse detalle resultante de una aplicación.
type AllocationResponse struct {
	OrderID        string          `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Estado         string          `json:"estado"` // parcial | completo
	SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
}

// CarteraEntryResponse cargo de cartera en respuestas (auditoría por cliente).
type CarteraEntryResponse struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"client_id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Origin    string          `json:"origin"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReceiptResponse recibo con sus aplicaciones.
type ReceiptResponse struct {
	ID          string               `json:"id"`
	CompanyID   string               `json:"company_id"`
	ClientID    string               `json:"client_id"`
	Concepto    string               `json:"concepto,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	Allocations []AllocationResponse `json:"allocations"`
}
