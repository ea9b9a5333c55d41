package entity

import "time"

// Client representa un cliente de la empresa (pedidos y cartera).
type Client struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string // NIT o Cédula
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
