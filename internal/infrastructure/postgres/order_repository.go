package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, company_id, client_id, user_id, total, guia, flete, fecha_envio, created_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var guia *string
	err := row.Scan(&o.ID, &o.CompanyID, &o.ClientID, &o.UserID, &o.Total, &guia, &o.Flete, &o.FechaEnvio, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if guia != nil {
		o.Guia = *guia
	}
	return &o, nil
}

// Create persiste la cabecera del pedido.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO pedidos (id, company_id, client_id, user_id, total, flete, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CompanyID, order.ClientID, order.UserID, order.Total, order.Flete, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pedido: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(context.Background(),
		`SELECT `+orderColumns+` FROM pedidos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pedido: %w", err)
	}
	return o, nil
}

// GetForUpdate obtiene el pedido y bloquea la fila (SELECT FOR UPDATE).
// Serializa transiciones, ediciones de líneas y aplicaciones de abonos
// concurrentes sobre el mismo pedido.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	o, err := scanOrder(r.q.QueryRow(context.Background(),
		`SELECT `+orderColumns+` FROM pedidos WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pedido for update: %w", err)
	}
	return o, nil
}

// ListByCompany lista pedidos por empresa con paginación.
func (r *OrderRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM pedidos WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pedidos: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pedido: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// CreateLine persiste una línea del pedido.
func (r *OrderRepo) CreateLine(line *entity.OrderLine) error {
	query := `
		INSERT INTO pedido_lineas (id, pedido_id, product_id, cantidad, precio)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.OrderID, line.ProductID, line.Cantidad, line.Precio,
	)
	if err != nil {
		return fmt.Errorf("insert linea: %w", err)
	}
	return nil
}

// GetLines devuelve las líneas del pedido.
func (r *OrderRepo) GetLines(orderID string) ([]*entity.OrderLine, error) {
	query := `
		SELECT id, pedido_id, product_id, cantidad, precio
		FROM pedido_lineas WHERE pedido_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get lineas: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Cantidad, &l.Precio); err != nil {
			return nil, fmt.Errorf("scan linea: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// DeleteLines borra todas las líneas del pedido (flujo de edición: borrar y recrear).
func (r *OrderRepo) DeleteLines(orderID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM pedido_lineas WHERE pedido_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete lineas: %w", err)
	}
	return nil
}

// AppendStatusEvent agrega un evento al historial de estados.
// El constraint único (pedido_id, estado) respalda la guarda de idempotencia.
func (r *OrderRepo) AppendStatusEvent(ev *entity.StatusEvent) error {
	query := `
		INSERT INTO pedido_estados (id, pedido_id, estado, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query, ev.ID, ev.OrderID, ev.Estado, ev.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTransition
		}
		return fmt.Errorf("append estado: %w", err)
	}
	return nil
}

// ListStatusEvents devuelve el historial en orden cronológico ascendente.
func (r *OrderRepo) ListStatusEvents(orderID string) ([]*entity.StatusEvent, error) {
	query := `
		SELECT id, pedido_id, estado, created_at
		FROM pedido_estados WHERE pedido_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list estados: %w", err)
	}
	defer rows.Close()
	var list []*entity.StatusEvent
	for rows.Next() {
		var ev entity.StatusEvent
		if err := rows.Scan(&ev.ID, &ev.OrderID, &ev.Estado, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan estado: %w", err)
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}

// UpdateTotal actualiza el total del pedido (creación de líneas nuevas o cancelación).
func (r *OrderRepo) UpdateTotal(orderID string, total decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE pedidos SET total = $2 WHERE id = $1`, orderID, total)
	if err != nil {
		return fmt.Errorf("update total: %w", err)
	}
	return nil
}

// UpdateShipment fija los metadatos de envío (transición a ENVIADO).
func (r *OrderRepo) UpdateShipment(orderID, guia string, flete decimal.Decimal, fechaEnvio time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE pedidos SET guia = $2, flete = $3, fecha_envio = $4 WHERE id = $1`,
		orderID, guia, flete, fechaEnvio)
	if err != nil {
		return fmt.Errorf("update envio: %w", err)
	}
	return nil
}
