package entity

import "github.com/gmartins-dev/portal-faturamento/pkg/texto"

// Category categoria de um item da tabela de preços.
// Os nomes canônicos seguem a nomenclatura do portal; a comparação é sempre
// insensível a caixa e acentos porque tabelas antigas misturam grafias.
type Category string

const (
	CategoryShipments   Category = "Envios"
	CategoryReturns     Category = "Devoluções"
	CategoryStorage     Category = "Armazenagem"
	CategoryLogistics   Category = "Logística"
	CategoryMaquila     Category = "Maquila"
	CategoryDifal       Category = "Difal"
	CategoryAdjustments Category = "Ajustes"
)

var knownCategories = []Category{
	CategoryShipments,
	CategoryReturns,
	CategoryStorage,
	CategoryLogistics,
	CategoryMaquila,
	CategoryDifal,
	CategoryAdjustments,
}

// ParseCategory devolve a categoria canônica para o texto informado; se não for
// reconhecida, preserva o valor original (categorias livres são permitidas).
func ParseCategory(s string) Category {
	for _, c := range knownCategories {
		if texto.Equal(s, string(c)) {
			return c
		}
	}
	return Category(s)
}

// Is compara categorias de forma insensível a caixa e acentos.
func (c Category) Is(other Category) bool {
	return texto.Equal(string(c), string(other))
}

// IsShippingSide informa se a categoria entra no total de envios da cobrança
// (envios e devoluções são agrupados juntos).
func (c Category) IsShippingSide() bool {
	return c.Is(CategoryShipments) || c.Is(CategoryReturns)
}
