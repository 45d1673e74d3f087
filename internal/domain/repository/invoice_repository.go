package repository

import "github.com/gmartins-dev/portal-faturamento/internal/domain/entity"

// InvoiceRepository porta de persistência para cobranças, linhas e custos
// adicionais.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLineItem(line *entity.LineItem) error
	CreateAdditionalCost(cost *entity.AdditionalCost) error
	GetByID(id string) (*entity.Invoice, error)
	List(limit, offset int) ([]*entity.Invoice, error)
	ListByClient(clientID string, limit, offset int) ([]*entity.Invoice, error)
	GetLineItems(invoiceID string) ([]*entity.LineItem, error)
	GetAdditionalCosts(invoiceID string) ([]*entity.AdditionalCost, error)
	UpdateStatus(id, status string) error
	Delete(id string) error
}
