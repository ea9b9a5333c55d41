package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados resultantes de una aplicación de abono sobre un pedido.
const (
	ReciboEstadoParcial  = "parcial"
	ReciboEstadoCompleto = "completo"
)

// Receipt representa un recibo de caja: un pago de un cliente que se aplica
// sobre uno o más pedidos.
type Receipt struct {
	ID        string
	CompanyID string
	ClientID  string
	Concepto  string
	CreatedBy string
	CreatedAt time.Time
}

// ReceiptDetail es una aplicación del recibo sobre un pedido.
// Amount registra el valor aplicado completo (auditoría); SaldoPendiente queda
// truncado en cero cuando el abono excede el saldo. El saldo de un pedido
// siempre se deriva de su total menos la suma de detalles, nunca de un contador.
type ReceiptDetail struct {
	ID             string
	ReceiptID      string
	OrderID        string
	Amount         decimal.Decimal
	Estado         string // parcial | completo
	SaldoPendiente decimal.Decimal
	CreatedAt      time.Time
}
