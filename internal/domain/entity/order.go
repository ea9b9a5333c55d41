package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un pedido.
const (
	OrderStatusGenerado  = "GENERADO"  // creado, sin efectos financieros
	OrderStatusSeparado  = "SEPARADO"  // mercancía apartada, sin efecto en stock
	OrderStatusFacturado = "FACTURADO" // descuenta inventario y genera cartera
	OrderStatusEnviado   = "ENVIADO"   // despachado, terminal
	OrderStatusCancelado = "CANCELADO" // terminal, revierte efectos financieros
)

// Order representa un pedido de un cliente (cabecera).
// Total se fija al crear como sum(línea.Cantidad × línea.Precio); vuelve a 0 al cancelar.
type Order struct {
	ID         string
	CompanyID  string
	ClientID   string
	UserID     string // vendedor que registró el pedido
	Total      decimal.Decimal
	Guia       string          // código de transportadora (solo desde ENVIADO)
	Flete      decimal.Decimal // costo de envío (solo desde ENVIADO)
	FechaEnvio *time.Time
	CreatedAt  time.Time
}

// OrderLine representa una línea del pedido. Inmutable después de la creación;
// la edición de líneas borra y recrea el conjunto completo.
// Precio se captura al momento de crear el pedido, no referencia el catálogo vivo.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID string
	Cantidad  decimal.Decimal
	Precio    decimal.Decimal
}

// StatusEvent es un hecho inmutable: el pedido alcanzó un estado en un instante.
// El estado actual del pedido se deriva como el evento más reciente
// (GENERADO si no existe ninguno). Solo el controlador de ciclo de vida los crea.
type StatusEvent struct {
	ID        string
	OrderID   string
	Estado    string
	CreatedAt time.Time
}
