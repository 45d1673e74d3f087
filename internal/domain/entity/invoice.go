package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status da cobrança mensal. As transições são disparadas pelo administrador,
// nunca calculadas pelo motor.
const (
	InvoiceStatusPending = "Pendente"
	InvoiceStatusSent    = "Enviada"
	InvoiceStatusPaid    = "Paga"
	InvoiceStatusOverdue = "Atrasada"
)

// ValidInvoiceStatus informa se o status pertence ao conjunto conhecido.
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice a cobrança mensal de um cliente.
// Invariante: GrandTotal == TotalShipping + TotalStorage + TotalLogistics +
// TotalAdditional + TotalExtra.
type Invoice struct {
	ID             string
	ClientID       string
	ReferenceMonth string // "Mês/Ano" com nome de mês em português, ex. "Outubro/2025"
	DueDate        time.Time
	Status         string

	TotalShipping   decimal.Decimal // Envios + Devoluções
	TotalStorage    decimal.Decimal // Armazenagem
	TotalLogistics  decimal.Decimal // demais categorias
	TotalAdditional decimal.Decimal // custos adicionais manuais
	TotalExtra      decimal.Decimal // repasse externo informado pelo chamador
	TotalCost       decimal.Decimal // base de custo interno
	GrandTotal      decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}
