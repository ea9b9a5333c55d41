package postgres

import (
	"context"
	"fmt"

	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

var _ repository.CarteraRepository = (*CarteraRepo)(nil)

// CarteraRepo implementación del libro de cartera sobre PostgreSQL (usable con pool o tx).
type CarteraRepo struct {
	q Querier
}

// NewCarteraRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCarteraRepository(q Querier) *CarteraRepo {
	return &CarteraRepo{q: q}
}

// Create persiste un movimiento de cartera.
func (r *CarteraRepo) Create(m *entity.CarteraMovement) error {
	query := `
		INSERT INTO cartera (id, company_id, client_id, pedido_id, valor, origen, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.CompanyID, m.ClientID, m.OrderID, m.Amount, m.Origin, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cartera: %w", err)
	}
	return nil
}

// DeleteByOrder elimina los movimientos de cartera del pedido.
// Solo se invoca al cancelar o re-facturar, dentro de la misma transacción.
func (r *CarteraRepo) DeleteByOrder(orderID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM cartera WHERE pedido_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete cartera pedido: %w", err)
	}
	return nil
}

// ListByClient lista los movimientos de cartera de un cliente con paginación.
func (r *CarteraRepo) ListByClient(companyID, clientID string, limit, offset int) ([]*entity.CarteraMovement, error) {
	query := `
		SELECT id, company_id, client_id, pedido_id, valor, origen, created_at
		FROM cartera WHERE company_id = $1 AND client_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, companyID, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cartera cliente: %w", err)
	}
	defer rows.Close()
	var list []*entity.CarteraMovement
	for rows.Next() {
		var m entity.CarteraMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ClientID, &m.OrderID, &m.Amount, &m.Origin, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cartera: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListByOrder lista los movimientos de cartera ligados a un pedido.
func (r *CarteraRepo) ListByOrder(orderID string) ([]*entity.CarteraMovement, error) {
	query := `
		SELECT id, company_id, client_id, pedido_id, valor, origen, created_at
		FROM cartera WHERE pedido_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list cartera pedido: %w", err)
	}
	defer rows.Close()
	var list []*entity.CarteraMovement
	for rows.Next() {
		var m entity.CarteraMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ClientID, &m.OrderID, &m.Amount, &m.Origin, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cartera: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
