package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeEntrada = "ENTRADA" // compra o reverso de un débito
	MovementTypeSalida  = "SALIDA"  // despacho por facturación
	MovementTypeAjuste  = "AJUSTE"  // ajuste manual, positivo o negativo
)

// Movement es un registro inmutable del log de movimientos: nunca se actualiza
// ni se borra; un reverso crea un movimiento nuevo de signo contrario.
type Movement struct {
	ID        string
	CompanyID string
	ProductID string
	Type      string
	Quantity  decimal.Decimal // con signo: positivo entrada, negativo salida
	OrderID   *string         // pedido que originó el movimiento, si aplica
	CreatedBy string
	CreatedAt time.Time
}
