package billing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Layout de teste com as colunas posicionais no começo do alfabeto para manter
// as fixtures legíveis; em produção as posições vêm da configuração.
func testLayout() report.Layout {
	return report.Layout{
		TotalShipping: "D",
		PostalCode:    "E",
		State:         "F",
		ItemCount:     "G",
		BasePicking:   "H",
	}
}

func priceItem(id string, cat entity.Category, sub, desc, cost, margin string) *entity.PriceItem {
	p := &entity.PriceItem{
		ID:            id,
		Category:      cat,
		Subcategory:   sub,
		Description:   desc,
		UnitCost:      dec(cost),
		MarginPercent: dec(margin),
	}
	p.SalePrice = p.UnitCost.Mul(decimal.NewFromInt(1).Add(p.MarginPercent.Div(decimal.NewFromInt(100))))
	return p
}

// Tabela de preços típica de um cliente: envio com margem, picking por faixa,
// custos específicos, um template de repasse e o coletor de ajustes.
func testPriceTable() []*entity.PriceItem {
	tpl := priceItem("it-template", entity.CategoryLogistics, "", "Template manuseio", "0", "0")
	tpl.SalePrice = entity.TemplatePrice

	coletor := priceItem("it-ajuste", entity.CategoryAdjustments, "", "Ajuste de discrepância", "0", "0")
	coletor.SalePrice = entity.TemplatePrice

	return []*entity.PriceItem{
		priceItem("it-envio", entity.CategoryShipments, "", "Envio padrão", "20", "12"),
		priceItem("it-pick-1", entity.CategoryLogistics, "Picking", "Picking - pedidos de 0 a 1 item", "4", "0"),
		priceItem("it-pick-extra", entity.CategoryLogistics, "Picking", "Picking itens adicionais (mais de 1 item)", "0.80", "0"),
		priceItem("it-difal", entity.CategoryDifal, "", "DIFAL/ICMS", "7", "0"),
		priceItem("it-seguro", entity.CategoryLogistics, "", "Seguro de transporte", "3", "0"),
		tpl,
		coletor,
		priceItem("it-armazenagem", entity.CategoryStorage, "", "Armazenagem por unidade", "0.25", "40"),
	}
}

func testClient() *entity.Client {
	return &entity.Client{
		ID:               "cli-1",
		Name:             "Acme Comércio Ltda",
		TaxID:            "12.345.678/0001-90",
		BillingEmail:     "financeiro@acme.com.br",
		UnitsInStock:     100,
		StorageStartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

const trackingCSV = "Número do Pedido;Data do Pedido;Código de Rastreio\n" +
	"PED-001;02/10/2025;BR111\n" +
	"PED-002;15/10/2025;BR222\n"

// Colunas A..H na ordem do layout de teste; as demais são custos nomeados.
const costsCSV = "Pedido;Data;Total;Frete Total;CEP;UF;Qtd Itens;Picking Base;" +
	"Custo Picking;Custo Difal;Custo Seguro;Custo Manuseio Especial\n" +
	// Pedido de 3 itens com todos os custos; total declarado 3,00 acima do
	// calculado para forçar a linha de ajuste.
	"PED-001;02/10/2025;45,70;25,50;01310-100;SP;3;4,00;5,60;7,00;3,00;0\n" +
	// Pedido de 1 item com repasse de manuseio; total declarado bate exato.
	"PED-002;15/10/2025;32,00;10,00;04538-132;SP;1;4,00;4,00;;;18,00\n"

func testInput() billing.Input {
	return billing.Input{
		Client:         testClient(),
		PriceTable:     testPriceTable(),
		TrackingCSV:    trackingCSV,
		CostsCSV:       costsCSV,
		ReferenceMonth: "Outubro/2025",
		DueDate:        time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
		AdditionalCosts: []*entity.AdditionalCost{
			{ID: "ad-1", Description: "Taxa de cadastro", Value: dec("50")},
		},
		ExtraCosts: dec("7.77"),
	}
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: esperado %s, obtido %s", label, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// Geração completa
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_GeraCobrancaCompleta(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())

	require.NoError(t, err)
	require.NotNil(t, res.Invoice)

	// PED-001: frete, picking combinado, itens adicionais, difal, seguro,
	// ajuste de discrepância. PED-002: frete, picking faixa única, repasse de
	// manuseio. Mais a linha de armazenagem do estoque.
	assert.Len(t, res.Lines, 10)

	inv := res.Invoice
	assert.Equal(t, "cli-1", inv.ClientID)
	assert.Equal(t, "Outubro/2025", inv.ReferenceMonth)
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)

	// Envios: 25,50 + 10,00. Armazenagem: 100 * 0,25 * 1,40.
	// Logística: (4,00 + 0,80*2) + 0,80*2 + 7,00 + 3,00 + ajuste 3,00
	//            + 4,00 + repasse 18,00.
	assertDecEqual(t, "35.50", inv.TotalShipping, "total de envios")
	assertDecEqual(t, "35", inv.TotalStorage, "total de armazenagem")
	assertDecEqual(t, "42.20", inv.TotalLogistics, "total de logística")
	assertDecEqual(t, "50", inv.TotalAdditional, "custos adicionais")
	assertDecEqual(t, "7.77", inv.TotalExtra, "repasse extra")
	assertDecEqual(t, "170.47", inv.GrandTotal, "total geral")
	assertDecEqual(t, "160.47", inv.TotalCost, "base de custo interno")

	identity := inv.TotalShipping.Add(inv.TotalStorage).Add(inv.TotalLogistics).
		Add(inv.TotalAdditional).Add(inv.TotalExtra)
	assert.True(t, identity.Equal(inv.GrandTotal), "o total geral deve ser a soma dos baldes")

	assert.Equal(t, "02/10/2025 a 15/10/2025", res.DetectedDateRange)
	assert.Empty(t, res.UnmatchedTrackingIDs)
	assert.Empty(t, res.UnmatchedCostIDs)
	assert.Empty(t, res.DroppedCosts)
	assert.Empty(t, res.Warnings)
}

func TestEngine_LinhaDeFreteEhRepasse(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())

	require.NoError(t, err)
	frete := res.Lines[0]
	assert.Equal(t, entity.AmountRaw, frete.Kind)
	assertDecEqual(t, "25.50", frete.Quantity, "valor bruto do frete")
	assert.Equal(t, "PED-001", frete.OrderCode)
	assert.Equal(t, "BR111", frete.TrackingCode)
	assert.Equal(t, "01310-100", frete.PostalCode)
	assert.Equal(t, "SP", frete.StateCode)
}

func TestEngine_CustoDeEnvioNomeadoEhRepasse(t *testing.T) {
	// Coluna de envio localizada por nome, sem layout posicional: a convenção
	// de repasse é a mesma da coluna de custo total.
	engine := billing.NewEngine(report.Layout{}, false, nil)

	res, err := engine.Generate(billing.Input{
		PriceTable: []*entity.PriceItem{
			priceItem("it-envio", entity.CategoryShipments, "", "Envio padrão", "20", "12"),
		},
		TrackingCSV:    "Pedido;Data\nPED-001;02/10/2025\n",
		CostsCSV:       "Pedido;Data;Custo de envio\nPED-001;02/10/2025;25,50\n",
		ReferenceMonth: "Outubro/2025",
	})

	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	linha := res.Lines[0]
	assert.Equal(t, "it-envio", linha.PriceItemID)
	assert.Equal(t, entity.AmountRaw, linha.Kind, "linha de envio deve ser repasse do valor da planilha")
	assertDecEqual(t, "25.50", linha.Quantity, "quantidade guarda o valor bruto")
	assertDecEqual(t, "25.50", res.Invoice.TotalShipping, "subtotal do envio é o próprio valor")
}

func TestEngine_PickingPorFaixa(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())
	require.NoError(t, err)

	// PED-001 tem 3 itens: linha combinada 4,00 + 0,80*2 = 5,60 em valor bruto
	// e linha de 2 itens adicionais em quantidade.
	combinada := res.Lines[1]
	assert.Equal(t, "it-pick-1", combinada.PriceItemID)
	assert.Equal(t, entity.AmountRaw, combinada.Kind)
	assertDecEqual(t, "5.60", combinada.Quantity, "picking combinado")

	adicionais := res.Lines[2]
	assert.Equal(t, "it-pick-extra", adicionais.PriceItemID)
	assert.Equal(t, entity.AmountCount, adicionais.Kind)
	assertDecEqual(t, "2", adicionais.Quantity, "itens além do primeiro")
}

func TestEngine_PickingSemCustoBase_CobraPelaQuantidadeDeItens(t *testing.T) {
	// Com a coluna de quantidade resolvida mas sem a de custo base, não há
	// valor combinado: a linha de picking sai em quantidade pela tarifa padrão,
	// e a linha de itens adicionais continua separada.
	engine := billing.NewEngine(report.Layout{ItemCount: "C"}, false, nil)

	res, err := engine.Generate(billing.Input{
		PriceTable: []*entity.PriceItem{
			priceItem("it-pick-1", entity.CategoryLogistics, "Picking", "Picking - pedidos de 0 a 1 item", "4", "0"),
			priceItem("it-pick-extra", entity.CategoryLogistics, "Picking", "Picking itens adicionais (mais de 1 item)", "0.80", "0"),
		},
		TrackingCSV:    "Pedido;Data\nPED-001;02/10/2025\n",
		CostsCSV:       "Pedido;Data;Qtd Itens;Custo Picking\nPED-001;02/10/2025;3;5,60\n",
		ReferenceMonth: "Outubro/2025",
	})

	require.NoError(t, err)
	require.Len(t, res.Lines, 2)

	faixa := res.Lines[0]
	assert.Equal(t, "it-pick-1", faixa.PriceItemID)
	assert.Equal(t, entity.AmountCount, faixa.Kind)
	assertDecEqual(t, "3", faixa.Quantity, "sem custo base a quantidade é o número de itens")

	adicionais := res.Lines[1]
	assert.Equal(t, "it-pick-extra", adicionais.PriceItemID)
	assertDecEqual(t, "2", adicionais.Quantity, "itens além do primeiro")
}

func TestEngine_DiscrepanciaViraLinhaDeAjuste(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())
	require.NoError(t, err)

	var ajuste *entity.LineItem
	for _, l := range res.Lines {
		if l.PriceItemID == "it-ajuste" {
			ajuste = l
		}
	}
	require.NotNil(t, ajuste, "a diferença de 3,00 do PED-001 deve virar linha no coletor")
	assert.Equal(t, entity.AmountRaw, ajuste.Kind)
	assertDecEqual(t, "3", ajuste.Quantity, "valor do ajuste")
	assert.Equal(t, "PED-001", ajuste.OrderCode)
}

func TestEngine_DiscrepanciaSemColetorEhDescartada(t *testing.T) {
	table := testPriceTable()
	var semColetor []*entity.PriceItem
	for _, p := range table {
		if p.ID != "it-ajuste" {
			semColetor = append(semColetor, p)
		}
	}
	in := testInput()
	in.PriceTable = semColetor

	engine := billing.NewEngine(testLayout(), false, nil)
	res, err := engine.Generate(in)

	require.NoError(t, err)
	assert.Len(t, res.Lines, 9, "sem coletor a linha de ajuste não existe")
	assertDecEqual(t, "167.47", res.Invoice.GrandTotal, "total geral sem o ajuste de 3,00")
}

func TestEngine_RepasseDeTemplate(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())
	require.NoError(t, err)

	var repasse *entity.LineItem
	for _, l := range res.Lines {
		if l.PriceItemID == "it-template" {
			repasse = l
		}
	}
	require.NotNil(t, repasse)
	assert.Equal(t, entity.AmountRaw, repasse.Kind, "custo casado em template atravessa sem margem")
	assertDecEqual(t, "18", repasse.Quantity, "valor repassado")
}

func TestEngine_LinhaDeArmazenagem(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	res, err := engine.Generate(testInput())
	require.NoError(t, err)

	armazenagem := res.Lines[len(res.Lines)-1]
	assert.Equal(t, "it-armazenagem", armazenagem.PriceItemID)
	assert.Equal(t, entity.AmountCount, armazenagem.Kind)
	assertDecEqual(t, "100", armazenagem.Quantity, "unidades em estoque")
	assert.Equal(t, testClient().StorageStartDate, armazenagem.Date)
}

// ──────────────────────────────────────────────────────────────────────────────
// Precondições e degradações
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_TabelaVaziaEhFatal(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)
	in := testInput()
	in.PriceTable = nil

	_, err := engine.Generate(in)

	assert.ErrorIs(t, err, domain.ErrEmptyPriceTable)
}

func TestEngine_MesDeReferenciaInvalido(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)
	in := testInput()
	in.ReferenceMonth = "Outubro-2025"

	_, err := engine.Generate(in)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_MesSemLinhasDeRastreio(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)
	in := testInput()
	in.ReferenceMonth = "Novembro/2025" // os relatórios são de outubro

	res, err := engine.Generate(in)

	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "Novembro/2025")
	assert.Equal(t, "N/A", res.DetectedDateRange)

	// A armazenagem independe dos relatórios; os demais baldes ficam zerados.
	assertDecEqual(t, "0", res.Invoice.TotalShipping, "envios")
	assertDecEqual(t, "35", res.Invoice.TotalStorage, "armazenagem")
}

func TestEngine_ModoEstritoCustoSemItem(t *testing.T) {
	in := billing.Input{
		Client:         nil,
		PriceTable:     []*entity.PriceItem{priceItem("it-envio", entity.CategoryShipments, "", "Envio padrão", "20", "12")},
		TrackingCSV:    "Pedido;Data\nPED-001;02/10/2025\n",
		CostsCSV:       "Pedido;Data;Custo Zzz\nPED-001;02/10/2025;5,00\n",
		ReferenceMonth: "Outubro/2025",
	}

	estrito := billing.NewEngine(testLayout(), true, nil)
	_, err := estrito.Generate(in)
	assert.ErrorIs(t, err, domain.ErrUnmappedCost)

	tolerante := billing.NewEngine(testLayout(), false, nil)
	res, err := tolerante.Generate(in)
	require.NoError(t, err)
	require.Len(t, res.DroppedCosts, 1)
	assert.Equal(t, "Custo Zzz", res.DroppedCosts[0].Column)
	assert.Equal(t, "PED-001", res.DroppedCosts[0].OrderID)
	assertDecEqual(t, "5", res.DroppedCosts[0].Value, "valor descartado")
}

func TestEngine_Deterministico(t *testing.T) {
	engine := billing.NewEngine(testLayout(), false, nil)

	a, err := engine.Generate(testInput())
	require.NoError(t, err)
	b, err := engine.Generate(testInput())
	require.NoError(t, err)

	assert.True(t, a.Invoice.GrandTotal.Equal(b.Invoice.GrandTotal),
		"as mesmas entradas devem produzir o mesmo total geral")
	assert.True(t, a.Invoice.TotalCost.Equal(b.Invoice.TotalCost))
	assert.Len(t, b.Lines, len(a.Lines))
}
