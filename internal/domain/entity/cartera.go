package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes de un movimiento de cartera.
const (
	CarteraOrigenFactura = "FACTURA"
)

// CarteraMovement registra un valor que un cliente debe, ligado al pedido que lo originó.
// Inmutable, salvo el borrado explícito al cancelar o re-facturar el pedido.
type CarteraMovement struct {
	ID        string
	CompanyID string
	ClientID  string
	OrderID   string
	Amount    decimal.Decimal
	Origin    string
	CreatedAt time.Time
}
