package billing

import (
	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
)

// Totals totais agregados da cobrança.
// Invariante: Grand == Shipping + Storage + Logistics + Additional + Extra.
type Totals struct {
	Shipping   decimal.Decimal
	Storage    decimal.Decimal
	Logistics  decimal.Decimal
	Additional decimal.Decimal
	Extra      decimal.Decimal
	Cost       decimal.Decimal
	Grand      decimal.Decimal
}

// Aggregate acumula as linhas em três baldes por categoria do item casado
// (envios+devoluções, armazenagem, todo o resto), soma custos adicionais e o
// repasse extra, e deriva a base de custo interno.
func Aggregate(
	lines []*entity.LineItem,
	itemsByID map[string]*entity.PriceItem,
	additional []*entity.AdditionalCost,
	extra decimal.Decimal,
) Totals {
	t := Totals{
		Shipping:   decimal.Zero,
		Storage:    decimal.Zero,
		Logistics:  decimal.Zero,
		Additional: decimal.Zero,
		Extra:      extra,
		Cost:       decimal.Zero,
	}

	for _, l := range lines {
		item := itemsByID[l.PriceItemID]
		subtotal := pricing.LineSubtotal(l, item)
		t.Cost = t.Cost.Add(pricing.LineCost(l, item))

		switch {
		case item != nil && item.Category.IsShippingSide():
			t.Shipping = t.Shipping.Add(subtotal)
		case item != nil && item.Category.Is(entity.CategoryStorage):
			t.Storage = t.Storage.Add(subtotal)
		default:
			// Logística, Maquila, Difal, Ajustes e linhas sem item casado.
			t.Logistics = t.Logistics.Add(subtotal)
		}
	}

	for _, c := range additional {
		t.Additional = t.Additional.Add(c.Value)
		t.Cost = t.Cost.Add(c.Value)
	}
	t.Cost = t.Cost.Add(extra)

	t.Grand = t.Shipping.Add(t.Storage).Add(t.Logistics).Add(t.Additional).Add(t.Extra)
	return t
}
