package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterPurchaseRequest entrada de mercancía por compra.
type RegisterPurchaseRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// RegisterAdjustmentRequest ajuste manual de stock, con signo.
type RegisterAdjustmentRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// StockResponse stock actual y de referencia de un producto.
type StockResponse struct {
	ProductID       string          `json:"product_id"`
	StockActual     decimal.Decimal `json:"stock_actual"`
	StockReferencia decimal.Decimal `json:"stock_referencia"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MovementResponse movimiento del log de inventario.
type MovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	OrderID   *string         `json:"order_id,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}
