package repository

import "github.com/gmartins-dev/portal-faturamento/internal/domain/entity"

// ClientRepository porta de persistência para Client.
type ClientRepository interface {
	Create(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	GetByTaxID(taxID string) (*entity.Client, error)
	List(limit, offset int) ([]*entity.Client, error)
	Update(client *entity.Client) error
	// UpdateStock atualiza apenas o estoque declarado (alimenta a linha de
	// armazenagem da próxima cobrança).
	UpdateStock(id string, units int64) error
	Delete(id string) error
}
