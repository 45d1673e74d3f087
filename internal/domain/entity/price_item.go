package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// TemplatePrice preço sentinela de itens "template": o valor cobrado vem da
// planilha de custos no momento do faturamento, não da tabela.
var TemplatePrice = decimal.NewFromInt(1)

// PriceItem um serviço vendável da tabela de preços.
// Invariante: SalePrice == UnitCost * (1 + MarginPercent/100), EXCETO para
// itens template, cujo SalePrice fica fixado em 1 e não tem significado
// derivado.
type PriceItem struct {
	ID            string
	ClientID      string // vazio = tabela global; preenchido = tabela específica do cliente
	Category      Category
	Subcategory   string
	Description   string
	UnitMetric    string
	UnitCost      decimal.Decimal // custo interno
	MarginPercent decimal.Decimal
	SalePrice     decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTemplate identifica itens de repasse: preço fixado em 1 e descrição
// mencionando "template", ou qualquer item de Envios/Devoluções com preço 1.
// Tabelas antigas acumulam esses itens como destinos de roteamento; o motor
// trata preço == 1 como sentinela de "sobrescrever o valor pelo contexto".
func (p *PriceItem) IsTemplate() bool {
	if !p.SalePrice.Equal(TemplatePrice) {
		return false
	}
	if texto.Contains(p.Description, "template") {
		return true
	}
	return p.Category.IsShippingSide()
}

// IsSpecificCost identifica custos específicos (difal, seguro, ajuste), que são
// sempre precificados pela tabela mesmo quando o item casado é template.
func (p *PriceItem) IsSpecificCost() bool {
	return texto.ContainsAny(p.Description, "difal", "seguro", "ajuste")
}

// IsPicking identifica itens de picking/packing (cobrança por faixas de itens).
func (p *PriceItem) IsPicking() bool {
	return texto.ContainsAny(string(p.Category), "pick", "pack") ||
		texto.ContainsAny(p.Description, "pick", "pack") ||
		texto.ContainsAny(p.Subcategory, "pick", "pack")
}
