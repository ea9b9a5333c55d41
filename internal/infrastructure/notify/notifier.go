package notify

import (
	"github.com/comercia/pedidos-api/internal/application/dto"
	"github.com/comercia/pedidos-api/internal/application/orders"
	"github.com/comercia/pedidos-api/pkg/logger"
)

var _ orders.Notifier = (*LogNotifier)(nil)

// LogNotifier colaborador de documentos y notificaciones que solo escribe al log.
// Punto de extensión para generación de PDF o correo al cliente; cualquier falla
// aquí se registra y se descarta, nunca afecta la transacción ya confirmada.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// OrderInvoiced registra la facturación de un pedido. Se invoca post-commit en
// una goroutine; trabaja solo con el snapshot, nunca consulta el núcleo.
func (n *LogNotifier) OrderInvoiced(snapshot *dto.OrderSnapshot) {
	if snapshot == nil {
		return
	}
	n.log.Info().
		Str("order_id", snapshot.OrderID).
		Str("company_id", snapshot.CompanyID).
		Str("client_id", snapshot.ClientID).
		Str("client_name", snapshot.ClientName).
		Str("total", snapshot.Total.String()).
		Int("lines", len(snapshot.Lines)).
		Time("invoiced_at", snapshot.InvoicedAt).
		Msg("pedido facturado, documento listo para generación")
}
