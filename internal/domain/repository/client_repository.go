package repository

import "github.com/comercia/pedidos-api/internal/domain/entity"

// ClientRepository define el puerto de persistencia de clientes.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Client, error)
}
