package repository

import "github.com/comercia/pedidos-api/internal/domain/entity"

// CarteraRepository define el puerto del libro de cartera.
// DeleteByOrder es la única mutación permitida sobre este log y se usa
// exclusivamente al cancelar o re-facturar un pedido.
type CarteraRepository interface {
	Create(m *entity.CarteraMovement) error
	DeleteByOrder(orderID string) error
	ListByClient(companyID, clientID string, limit, offset int) ([]*entity.CarteraMovement, error)
	ListByOrder(orderID string) ([]*entity.CarteraMovement, error)
}
