package entity

import "github.com/shopspring/decimal"

// AdditionalCost custo adicional lançado manualmente pelo administrador, sem
// origem na planilha. Somado pelo valor de face (margem zero).
type AdditionalCost struct {
	ID          string
	InvoiceID   string
	Description string
	Value       decimal.Decimal
	Category    string // opcional
}
