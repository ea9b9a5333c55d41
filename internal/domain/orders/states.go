package orders

import "github.com/comercia/pedidos-api/internal/domain/entity"

// Máquina de estados del pedido:
//
//	GENERADO -> SEPARADO -> FACTURADO -> ENVIADO (terminal)
//	                 \           \
//	                  +-----------+--> CANCELADO (terminal)
//
// Ninguna transición puede aplicarse dos veces sobre el mismo pedido.
var allowedNext = map[string][]string{
	entity.OrderStatusGenerado:  {entity.OrderStatusSeparado},
	entity.OrderStatusSeparado:  {entity.OrderStatusFacturado, entity.OrderStatusCancelado},
	entity.OrderStatusFacturado: {entity.OrderStatusEnviado, entity.OrderStatusCancelado},
	entity.OrderStatusEnviado:   {},
	entity.OrderStatusCancelado: {},
}

// IsValidStatus indica si el valor corresponde a un estado conocido.
func IsValidStatus(s string) bool {
	_, ok := allowedNext[s]
	return ok
}

// CanTransition indica si `to` está en el conjunto de destinos permitidos desde `from`.
func CanTransition(from, to string) bool {
	for _, next := range allowedNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no admite más transiciones (ENVIADO, CANCELADO).
func IsTerminal(s string) bool {
	next, ok := allowedNext[s]
	return ok && len(next) == 0
}

// CurrentState deriva el estado actual del pedido: el evento más reciente,
// o GENERADO si el historial está vacío. Los eventos llegan ordenados por fecha
// ascendente desde el repositorio.
func CurrentState(events []*entity.StatusEvent) string {
	if len(events) == 0 {
		return entity.OrderStatusGenerado
	}
	return events[len(events)-1].Estado
}

// HasState indica si el historial ya registró el estado (guarda de idempotencia).
func HasState(events []*entity.StatusEvent, state string) bool {
	for _, ev := range events {
		if ev.Estado == state {
			return true
		}
	}
	return false
}
