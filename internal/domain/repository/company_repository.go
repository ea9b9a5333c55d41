package repository

import "github.com/comercia/pedidos-api/internal/domain/entity"

// CompanyRepository define el puerto de persistencia de empresas (tenants).
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	List(limit, offset int) ([]*entity.Company, error)
}
