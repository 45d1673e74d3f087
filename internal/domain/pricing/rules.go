package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
)

var cem = decimal.NewFromInt(100)

// ApplyMargin devolve cost * (1 + margin/100).
func ApplyMargin(cost, marginPercent decimal.Decimal) decimal.Decimal {
	return cost.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(cem)))
}

// DisplayPrice devolve o preço unitário efetivo de um item:
//
//   - custo específico (difal, seguro, ajuste): sempre custo com margem,
//     mesmo quando o item está marcado como template;
//   - template genuíno: 1 (o valor da linha vem da própria planilha, repasse);
//   - demais itens: custo com margem recalculado, nunca o salePrice
//     armazenado, que pode estar defasado de uma edição de custo.
func DisplayPrice(p *entity.PriceItem) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	if p.IsSpecificCost() {
		return ApplyMargin(p.UnitCost, p.MarginPercent)
	}
	if p.IsTemplate() {
		return entity.TemplatePrice
	}
	return ApplyMargin(p.UnitCost, p.MarginPercent)
}

// LineSubtotal devolve o valor de venda da linha conforme o tipo do montante:
// VALOR_BRUTO carrega o valor final da planilha em Quantity (preço 1);
// QUANTIDADE multiplica pela tarifa efetiva do item.
func LineSubtotal(line *entity.LineItem, item *entity.PriceItem) decimal.Decimal {
	if line.Kind == entity.AmountRaw {
		return line.Quantity
	}
	return line.Quantity.Mul(DisplayPrice(item))
}

// LineCost devolve a base de custo interno da linha: repasses custam o próprio
// valor repassado; linhas tarifadas custam unitCost * quantidade.
func LineCost(line *entity.LineItem, item *entity.PriceItem) decimal.Decimal {
	if line.Kind == entity.AmountRaw {
		return line.Quantity
	}
	if item == nil {
		return decimal.Zero
	}
	return item.UnitCost.Mul(line.Quantity)
}

// RecalcSalePrice reaplica a margem sobre o custo após edição de custo ou de
// margem. Itens template preservam o preço sentinela.
func RecalcSalePrice(p *entity.PriceItem) {
	if p.IsTemplate() {
		return
	}
	p.SalePrice = ApplyMargin(p.UnitCost, p.MarginPercent)
}

// RecalcMargin deriva a margem de um salePrice editado diretamente:
// margin = (salePrice/unitCost - 1) * 100. Custo zero zera a margem em vez de
// dividir por zero.
func RecalcMargin(p *entity.PriceItem) {
	if p.UnitCost.IsZero() {
		p.MarginPercent = decimal.Zero
		return
	}
	p.MarginPercent = p.SalePrice.Div(p.UnitCost).Sub(decimal.NewFromInt(1)).Mul(cem)
}

// ApplyBulkMargin aplica a mesma margem a todos os itens dados, recalculando o
// salePrice de cada um. Usada pelas operações em massa por categoria e sobre
// templates; itens template recebem preço real e deixam de ser placeholder.
func ApplyBulkMargin(items []*entity.PriceItem, marginPercent decimal.Decimal) {
	for _, p := range items {
		p.MarginPercent = marginPercent
		p.SalePrice = ApplyMargin(p.UnitCost, p.MarginPercent)
	}
}
