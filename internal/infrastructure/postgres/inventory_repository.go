package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/comercia/pedidos-api/internal/domain"
	"github.com/comercia/pedidos-api/internal/domain/entity"
	"github.com/comercia/pedidos-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación del libro de inventario sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el registro de inventario de un producto. nil, nil si no existe.
func (r *InventoryRepo) Get(companyID, productID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT company_id, product_id, stock_referencia, stock_actual, updated_at
		FROM inventario WHERE company_id = $1 AND product_id = $2`
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, companyID, productID).Scan(
		&rec.CompanyID, &rec.ProductID, &rec.StockReferencia, &rec.StockActual, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventario: %w", err)
	}
	return &rec, nil
}

// EnsureExists crea el registro de forma idempotente si no existe.
// El stock inicial del primer llamador gana; las compras posteriores suman vía CreditPurchase.
func (r *InventoryRepo) EnsureExists(companyID, productID string, initial decimal.Decimal) error {
	query := `
		INSERT INTO inventario (company_id, product_id, stock_referencia, stock_actual, updated_at)
		VALUES ($1, $2, $3, $3, now())
		ON CONFLICT (company_id, product_id) DO NOTHING`
	_, err := r.q.Exec(context.Background(), query, companyID, productID, initial)
	if err != nil {
		return fmt.Errorf("ensure inventario: %w", err)
	}
	return nil
}

// Decrement resta cantidad solo si el stock alcanza: update condicional, no
// leer-luego-escribir. Dos débitos concurrentes sobre el mismo producto no
// pueden pasar ambos con una lectura obsoleta; el que no alcance afecta cero
// filas y falla.
func (r *InventoryRepo) Decrement(companyID, productID string, quantity decimal.Decimal) error {
	query := `
		UPDATE inventario
		SET stock_actual = stock_actual - $3, updated_at = now()
		WHERE company_id = $1 AND product_id = $2 AND stock_actual >= $3`
	cmd, err := r.q.Exec(context.Background(), query, companyID, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Distinguir producto nunca cargado de stock insuficiente.
		rec, err := r.Get(companyID, productID)
		if err != nil {
			return err
		}
		if rec == nil {
			return &domain.MissingInventoryRecordError{ProductID: productID}
		}
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity}
	}
	return nil
}

// Credit suma cantidad al stock actual, sin precondición.
func (r *InventoryRepo) Credit(companyID, productID string, quantity decimal.Decimal) error {
	query := `
		UPDATE inventario
		SET stock_actual = stock_actual + $3, updated_at = now()
		WHERE company_id = $1 AND product_id = $2`
	cmd, err := r.q.Exec(context.Background(), query, companyID, productID, quantity)
	if err != nil {
		return fmt.Errorf("credit stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.MissingInventoryRecordError{ProductID: productID}
	}
	return nil
}

// CreditPurchase suma cantidad al stock actual y al de referencia (entrada por compra).
func (r *InventoryRepo) CreditPurchase(companyID, productID string, quantity decimal.Decimal) error {
	query := `
		UPDATE inventario
		SET stock_actual = stock_actual + $3, stock_referencia = stock_referencia + $3, updated_at = now()
		WHERE company_id = $1 AND product_id = $2`
	cmd, err := r.q.Exec(context.Background(), query, companyID, productID, quantity)
	if err != nil {
		return fmt.Errorf("credit compra: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.MissingInventoryRecordError{ProductID: productID}
	}
	return nil
}

// ListByCompany lista los registros de inventario de la empresa con paginación.
func (r *InventoryRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT company_id, product_id, stock_referencia, stock_actual, updated_at
		FROM inventario WHERE company_id = $1 ORDER BY product_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventario: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.CompanyID, &rec.ProductID, &rec.StockReferencia, &rec.StockActual, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventario: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
