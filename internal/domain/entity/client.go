package entity

import "time"

// Client um cliente do operador logístico.
// UnitsInStock alimenta a linha de armazenagem da cobrança (independente da
// reconciliação de planilhas).
type Client struct {
	ID               string
	Name             string
	TaxID            string // CNPJ
	BillingEmail     string
	UnitsInStock     int64
	StorageStartDate time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
