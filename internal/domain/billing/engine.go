package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// Tolerância de um centavo para a conferência do total por pedido; diferenças
// até esse valor são arredondamento de planilha, não discrepância real.
var adjustmentTolerance = decimal.NewFromFloat(0.01)

// Engine o motor de faturamento. Puro sobre as entradas: mesmo par de
// relatórios, mesma tabela de preços e mesmos parâmetros produzem os mesmos
// totais, linha a linha.
type Engine struct {
	layout      report.Layout
	strictCosts bool
	log         *logger.Logger
}

// NewEngine cria o motor. strictCosts transforma coluna de custo sem item
// correspondente em erro fatal em vez de aviso.
func NewEngine(layout report.Layout, strictCosts bool, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{layout: layout, strictCosts: strictCosts, log: log.Component("engine")}
}

// Input entradas de uma geração de cobrança.
type Input struct {
	Client          *entity.Client
	PriceTable      []*entity.PriceItem
	TrackingCSV     string
	CostsCSV        string
	ReferenceMonth  string // "Outubro/2025"
	DueDate         time.Time
	AdditionalCosts []*entity.AdditionalCost
	ExtraCosts      decimal.Decimal // repasse externo, entra direto no total
}

// CostWarning um valor de custo descartado ou ajustado durante a geração.
type CostWarning struct {
	OrderID string
	Column  string
	Value   decimal.Decimal
	Reason  string
}

// Result a cobrança calculada mais os diagnósticos da reconciliação.
type Result struct {
	Invoice   *entity.Invoice
	Lines     []*entity.LineItem
	ItemsByID map[string]*entity.PriceItem

	UnmatchedTrackingIDs []string
	UnmatchedCostIDs     []string
	DroppedCosts         []CostWarning
	Warnings             []string
	DetectedDateRange    string
}

// Generate executa a geração completa: parse dos relatórios, reconciliação,
// precificação de cada pedido casado, linha de armazenagem e agregação.
func (e *Engine) Generate(in Input) (*Result, error) {
	if len(in.PriceTable) == 0 {
		return nil, domain.ErrEmptyPriceTable
	}
	month, year, err := ParseReferenceMonth(in.ReferenceMonth)
	if err != nil {
		return nil, err
	}

	tracking := report.Parse(in.TrackingCSV)
	costs := report.Parse(in.CostsCSV)

	rec, err := Reconcile(tracking, costs, month, year, e.log)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ItemsByID:            indexItems(in.PriceTable),
		UnmatchedTrackingIDs: rec.UnmatchedTrackingIDs,
		UnmatchedCostIDs:     rec.UnmatchedCostIDs,
	}
	if rec.TrackingRowsInMonth == 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("nenhuma linha de rastreio no mês de referência %s", in.ReferenceMonth))
	}

	invoiceID := uuid.NewString()
	resolved := e.layout.Resolve(costs.Columns)
	costCols := report.CostColumns(costs.Columns, resolved)

	for _, m := range rec.Matched {
		lines, err := e.priceOrder(m, rec.Columns, resolved, costCols, in.PriceTable, invoiceID, res)
		if err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, lines...)
	}

	if line := e.storageLine(in.Client, in.PriceTable, invoiceID); line != nil {
		res.Lines = append(res.Lines, line)
	}

	res.DetectedDateRange = dateRange(rec.Matched)

	totals := Aggregate(res.Lines, res.ItemsByID, in.AdditionalCosts, in.ExtraCosts)
	clientID := ""
	if in.Client != nil {
		clientID = in.Client.ID
	}
	now := time.Now()
	res.Invoice = &entity.Invoice{
		ID:              invoiceID,
		ClientID:        clientID,
		ReferenceMonth:  FormatReferenceMonth(month, year),
		DueDate:         in.DueDate,
		Status:          entity.InvoiceStatusPending,
		TotalShipping:   totals.Shipping,
		TotalStorage:    totals.Storage,
		TotalLogistics:  totals.Logistics,
		TotalAdditional: totals.Additional,
		TotalExtra:      totals.Extra,
		TotalCost:       totals.Cost,
		GrandTotal:      totals.Grand,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	e.log.Info().
		Str("cliente", clientID).
		Str("mes", res.Invoice.ReferenceMonth).
		Int("linhas", len(res.Lines)).
		Str("total", totals.Grand.StringFixed(2)).
		Msg("cobrança gerada")

	return res, nil
}

// priceOrder aplica as regras de precificação a um pedido casado e devolve as
// linhas resultantes, já conferidas contra o total declarado do pedido.
func (e *Engine) priceOrder(
	m MatchedOrder,
	cols ResolvedColumns,
	resolved report.ResolvedLayout,
	costCols []string,
	table []*entity.PriceItem,
	invoiceID string,
	res *Result,
) ([]*entity.LineItem, error) {
	var lines []*entity.LineItem

	base := entity.LineItem{
		InvoiceID:  invoiceID,
		Date:       m.Date,
		OrderCode:  m.OrderID,
		PostalCode: m.Cost[resolved.PostalCode],
		StateCode:  m.Cost[resolved.State],
	}
	if cols.TrackingCode != "" {
		base.TrackingCode = m.Track[cols.TrackingCode]
	}
	newLine := func(item *entity.PriceItem, qty decimal.Decimal, kind entity.AmountKind) *entity.LineItem {
		l := base
		l.ID = uuid.NewString()
		l.Quantity = qty
		l.Kind = kind
		if item != nil {
			l.PriceItemID = item.ID
		}
		return &l
	}

	// Custo total de envio, localizado por posição. O valor da planilha é o
	// valor cobrado (repasse do frete agregado).
	if resolved.TotalShipping != "" {
		if v := report.ParseDecimal(m.Cost[resolved.TotalShipping]); !v.IsZero() {
			item := pricing.MatchShipping(resolved.TotalShipping, table)
			lines = append(lines, newLine(item, v, entity.AmountRaw))
		}
	}

	// Demais colunas de custo classificadas.
	for _, col := range costCols {
		v := report.ParseDecimal(m.Cost[col])
		if v.IsZero() {
			continue
		}
		item := pricing.Match(col, table)
		if item == nil {
			if e.strictCosts {
				return nil, fmt.Errorf("%w: coluna %q do pedido %s", domain.ErrUnmappedCost, col, m.OrderID)
			}
			res.DroppedCosts = append(res.DroppedCosts, CostWarning{
				OrderID: m.OrderID, Column: col, Value: v,
				Reason: "nenhum item de preço correspondente",
			})
			e.log.Warn().Str("pedido", m.OrderID).Str("coluna", col).
				Str("valor", v.StringFixed(2)).Msg("custo descartado")
			continue
		}
		item = reroute(col, item, table)

		switch {
		case item.IsSpecificCost() || pricing.IsSpecificCostColumn(col):
			// Custo específico: uma unidade pela tarifa da tabela, mesmo quando
			// o item casado é template.
			lines = append(lines, newLine(item, decimal.NewFromInt(1), entity.AmountCount))
		case item.IsTemplate():
			// Repasse: o valor da planilha atravessa sem margem.
			lines = append(lines, newLine(item, v, entity.AmountRaw))
		case item.Category.IsShippingSide():
			// Envio casado por nome de coluna segue a mesma convenção da coluna
			// posicional: a quantidade guarda o valor bruto, preço efetivo 1.
			lines = append(lines, newLine(item, v, entity.AmountRaw))
		case item.IsPicking():
			lines = append(lines, e.pickingLines(m, resolved, item, table, newLine)...)
		default:
			lines = append(lines, newLine(item, decimal.NewFromInt(1), entity.AmountCount))
		}
	}

	// Conferência contra o total declarado do pedido: a diferença acima da
	// tolerância vira linha de ajuste no coletor, quando o cliente tem um.
	if cols.CostTotal != "" {
		declared := report.ParseDecimal(m.Cost[cols.CostTotal])
		if !declared.IsZero() {
			billed := decimal.Zero
			for _, l := range lines {
				billed = billed.Add(pricing.LineSubtotal(l, res.ItemsByID[l.PriceItemID]))
			}
			diff := declared.Sub(billed)
			if diff.Abs().GreaterThan(adjustmentTolerance) {
				if sink := pricing.FindAdjustment(table); sink != nil {
					lines = append(lines, newLine(sink, diff, entity.AmountRaw))
				} else {
					e.log.Debug().Str("pedido", m.OrderID).
						Str("diferenca", diff.StringFixed(2)).
						Msg("discrepância sem coletor de ajustes; descartada")
				}
			}
		}
	}

	return lines, nil
}

// pickingLines aplica a cobrança por faixa de itens: pedidos de até 1 item
// pagam a faixa base; pedidos maiores pagam base + adicional por item extra e
// ganham uma linha separada de itens adicionais.
func (e *Engine) pickingLines(
	m MatchedOrder,
	resolved report.ResolvedLayout,
	matched *entity.PriceItem,
	table []*entity.PriceItem,
	newLine func(*entity.PriceItem, decimal.Decimal, entity.AmountKind) *entity.LineItem,
) []*entity.LineItem {
	if resolved.ItemCount == "" {
		// Sem a coluna de quantidade de itens não há faixa: tarifa padrão.
		return []*entity.LineItem{newLine(matched, decimal.NewFromInt(1), entity.AmountCount)}
	}
	count := report.ParseDecimal(m.Cost[resolved.ItemCount]).IntPart()

	if count <= 1 {
		item := pricing.FindPickingSingle(table)
		if item == nil {
			item = matched
		}
		return []*entity.LineItem{newLine(item, decimal.NewFromInt(1), entity.AmountCount)}
	}

	extraItem := pricing.FindPickingExtra(table)
	extraCount := decimal.NewFromInt(count - 1)

	var lines []*entity.LineItem
	baseCost := decimal.Zero
	if resolved.BasePicking != "" {
		baseCost = report.ParseDecimal(m.Cost[resolved.BasePicking])
	}
	if !baseCost.IsZero() && extraItem != nil {
		// Valor combinado: base da planilha + tarifa de item adicional vezes os
		// itens além do primeiro.
		combined := baseCost.Add(pricing.DisplayPrice(extraItem).Mul(extraCount))
		lines = append(lines, newLine(matched, combined, entity.AmountRaw))
	} else {
		// Sem o custo base da planilha não há valor combinado: tarifa padrão
		// vezes a quantidade de itens do pedido.
		lines = append(lines, newLine(matched, decimal.NewFromInt(count), entity.AmountCount))
	}
	if extraItem != nil {
		// Linha separada de itens adicionais, quantidade = itens além do primeiro.
		lines = append(lines, newLine(extraItem, extraCount, entity.AmountCount))
	}
	return lines
}

// reroute corrige a categoria de destino depois do casamento: coluna difal vai
// para o item Difal real; custo genérico fora de envio/armazenagem vai para
// Logística/Maquila. Mantém o item casado quando o destino não existe.
func reroute(col string, item *entity.PriceItem, table []*entity.PriceItem) *entity.PriceItem {
	if texto.Contains(col, "difal") && !item.Category.Is(entity.CategoryDifal) {
		if d := pricing.FindDifal(table); d != nil {
			return d
		}
		return item
	}
	c := item.Category
	if c.IsShippingSide() || c.Is(entity.CategoryStorage) || c.Is(entity.CategoryDifal) ||
		c.Is(entity.CategoryAdjustments) || c.Is(entity.CategoryLogistics) || c.Is(entity.CategoryMaquila) {
		return item
	}
	if l := pricing.FindLogistics(table); l != nil {
		return l
	}
	return item
}

// storageLine gera a linha de armazenagem a partir do estoque do cliente;
// independente dos relatórios.
func (e *Engine) storageLine(client *entity.Client, table []*entity.PriceItem, invoiceID string) *entity.LineItem {
	if client == nil || client.UnitsInStock <= 0 {
		return nil
	}
	item := pricing.FindStorage(table)
	if item == nil {
		return nil
	}
	return &entity.LineItem{
		ID:          uuid.NewString(),
		InvoiceID:   invoiceID,
		Date:        client.StorageStartDate,
		PriceItemID: item.ID,
		Quantity:    decimal.NewFromInt(client.UnitsInStock),
		Kind:        entity.AmountCount,
	}
}

func indexItems(items []*entity.PriceItem) map[string]*entity.PriceItem {
	out := make(map[string]*entity.PriceItem, len(items))
	for _, p := range items {
		out[p.ID] = p
	}
	return out
}

// dateRange período coberto pelos pedidos casados, para exibição ("02/10/2025
// a 28/10/2025"); "N/A" quando não há pedidos.
func dateRange(matched []MatchedOrder) string {
	if len(matched) == 0 {
		return "N/A"
	}
	min, max := matched[0].Date, matched[0].Date
	for _, m := range matched[1:] {
		if m.Date.Before(min) {
			min = m.Date
		}
		if m.Date.After(max) {
			max = m.Date
		}
	}
	const layout = "02/01/2006"
	if min.Equal(max) {
		return min.Format(layout)
	}
	return min.Format(layout) + " a " + max.Format(layout)
}
