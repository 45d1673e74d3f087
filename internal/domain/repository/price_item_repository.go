package repository

import "github.com/gmartins-dev/portal-faturamento/internal/domain/entity"

// PriceItemRepository porta de persistência para a tabela de preços.
// clientID vazio endereça a tabela global; preenchido, a tabela específica do
// cliente. O fallback global fica na camada de aplicação.
type PriceItemRepository interface {
	Create(item *entity.PriceItem) error
	GetByID(id string) (*entity.PriceItem, error)
	ListByClient(clientID string) ([]*entity.PriceItem, error)
	ListByClientAndCategory(clientID string, category entity.Category) ([]*entity.PriceItem, error)
	// ListTemplates devolve os itens com preço sentinela 1, alvo das operações
	// de margem em massa sobre templates.
	ListTemplates(clientID string) ([]*entity.PriceItem, error)
	Update(item *entity.PriceItem) error
	Delete(id string) error
}
