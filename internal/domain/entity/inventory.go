package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord representa el stock de un producto por empresa.
// StockReferencia se fija al crear el registro y se incrementa con compras;
// StockActual lo mutan todos los ajustes y nunca puede quedar negativo.
type InventoryRecord struct {
	CompanyID       string
	ProductID       string
	StockReferencia decimal.Decimal
	StockActual     decimal.Decimal
	UpdatedAt       time.Time
}
