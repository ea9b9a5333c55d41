package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de recibos de caja sobre PostgreSQL (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create persiste la cabecera del recibo.
func (r *ReceiptRepo) Create(rec *entity.Receipt) error {
	query := `
		INSERT INTO recibos (id, company_id, client_id, concepto, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.CompanyID, rec.ClientID, rec.Concepto, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recibo: %w", err)
	}
	return nil
}

// GetByID obtiene un recibo por ID. nil, nil si no existe.
func (r *ReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	query := `
		SELECT id, company_id, client_id, concepto, created_by, created_at
		FROM recibos WHERE id = $1`
	var rec entity.Receipt
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.CompanyID, &rec.ClientID, &rec.Concepto, &rec.CreatedBy, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recibo: %w", err)
	}
	return &rec, nil
}

// CreateDetail persiste una aplicación del recibo sobre un pedido.
func (r *ReceiptRepo) CreateDetail(d *entity.ReceiptDetail) error {
	query := `
		INSERT INTO recibo_detalles (id, recibo_id, pedido_id, valor, estado, saldo_pendiente, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.ReceiptID, d.OrderID, d.Amount, d.Estado, d.SaldoPendiente, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recibo detalle: %w", err)
	}
	return nil
}

// ListDetails lista las aplicaciones de un recibo.
func (r *ReceiptRepo) ListDetails(receiptID string) ([]*entity.ReceiptDetail, error) {
	query := `
		SELECT id, recibo_id, pedido_id, valor, estado, saldo_pendiente, created_at
		FROM recibo_detalles WHERE recibo_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list recibo detalles: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReceiptDetail
	for rows.Next() {
		var d entity.ReceiptDetail
		if err := rows.Scan(&d.ID, &d.ReceiptID, &d.OrderID, &d.Amount, &d.Estado, &d.SaldoPendiente, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recibo detalle: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// SumAppliedByOrder suma los valores aplicados registrados contra un pedido.
// Suma los valores completos: el saldo se deriva de total menos esta suma.
func (r *ReceiptRepo) SumAppliedByOrder(orderID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(valor), 0) FROM recibo_detalles WHERE pedido_id = $1`, orderID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum aplicado pedido: %w", err)
	}
	return sum, nil
}

// HasAllocations indica si el pedido tiene al menos una aplicación de abono.
func (r *ReceiptRepo) HasAllocations(orderID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM recibo_detalles WHERE pedido_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists aplicaciones pedido: %w", err)
	}
	return exists, nil
}
