package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
)

func newPriceTableUC(repo *fakePriceItemRepo, cache *fakePriceTableCache) *billing.PriceTableUseCase {
	tx := &fakeTxRunner{clients: newFakeClientRepo(), items: repo, invoices: newFakeInvoiceRepo()}
	var c billing.PriceTableCache
	if cache != nil {
		c = cache
	}
	return billing.NewPriceTableUseCase(repo, tx, c, nil)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tríade custo/margem/preço
// ──────────────────────────────────────────────────────────────────────────────

func TestPriceItemCreate_MargemDerivaPreco(t *testing.T) {
	uc := newPriceTableUC(newFakePriceItemRepo(), nil)
	margem := dec("25")

	resp, err := uc.Create(context.Background(), dto.CreatePriceItemRequest{
		Category:      "Logística",
		Description:   "Picking avulso",
		UnitCost:      dec("4"),
		MarginPercent: &margem,
	})

	require.NoError(t, err)
	assert.True(t, dec("5").Equal(resp.SalePrice), "preço = 4 * 1,25 (obtido %s)", resp.SalePrice)
}

func TestPriceItemCreate_PrecoDerivaMargem(t *testing.T) {
	uc := newPriceTableUC(newFakePriceItemRepo(), nil)
	preco := dec("25")

	resp, err := uc.Create(context.Background(), dto.CreatePriceItemRequest{
		Category:    "Envios",
		Description: "Envio padrão",
		UnitCost:    dec("20"),
		SalePrice:   &preco,
	})

	require.NoError(t, err)
	assert.True(t, dec("25").Equal(resp.MarginPercent), "margem = (25/20 - 1)*100 (obtido %s)", resp.MarginPercent)
}

func TestPriceItemCreate_MargemEPrecoJuntosEhAmbiguo(t *testing.T) {
	uc := newPriceTableUC(newFakePriceItemRepo(), nil)
	margem, preco := dec("10"), dec("22")

	_, err := uc.Create(context.Background(), dto.CreatePriceItemRequest{
		Category:      "Envios",
		Description:   "Envio padrão",
		UnitCost:      dec("20"),
		MarginPercent: &margem,
		SalePrice:     &preco,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPriceItemCreate_SemMargemNemPreco(t *testing.T) {
	uc := newPriceTableUC(newFakePriceItemRepo(), nil)

	resp, err := uc.Create(context.Background(), dto.CreatePriceItemRequest{
		Category:    "Armazenagem",
		Description: "Armazenagem por unidade",
		UnitCost:    dec("0.25"),
	})

	require.NoError(t, err)
	assert.True(t, dec("0.25").Equal(resp.SalePrice), "sem margem o preço nasce igual ao custo")
	assert.True(t, resp.MarginPercent.IsZero())
}

func TestPriceItemUpdate_CustoRecalculaPreco(t *testing.T) {
	repo := newFakePriceItemRepo(&entity.PriceItem{
		ID: "it-1", Category: entity.CategoryLogistics, Description: "Picking",
		UnitCost: dec("4"), MarginPercent: dec("25"), SalePrice: dec("5"),
	})
	uc := newPriceTableUC(repo, nil)
	novoCusto := dec("6")

	resp, err := uc.Update(context.Background(), "it-1", dto.UpdatePriceItemRequest{UnitCost: &novoCusto})

	require.NoError(t, err)
	assert.True(t, dec("7.5").Equal(resp.SalePrice), "o preço acompanha o custo mantendo a margem")
	assert.True(t, dec("25").Equal(resp.MarginPercent))
}

func TestPriceItemUpdate_PrecoRederivaMargem(t *testing.T) {
	repo := newFakePriceItemRepo(&entity.PriceItem{
		ID: "it-1", Category: entity.CategoryLogistics, Description: "Picking",
		UnitCost: dec("4"), MarginPercent: dec("25"), SalePrice: dec("5"),
	})
	uc := newPriceTableUC(repo, nil)
	novoPreco := dec("6")

	resp, err := uc.Update(context.Background(), "it-1", dto.UpdatePriceItemRequest{SalePrice: &novoPreco})

	require.NoError(t, err)
	assert.True(t, dec("50").Equal(resp.MarginPercent), "margem = (6/4 - 1)*100 (obtido %s)", resp.MarginPercent)
}

func TestPriceItemUpdate_MargemEPrecoJuntosRejeitado(t *testing.T) {
	repo := newFakePriceItemRepo(&entity.PriceItem{ID: "it-1", Description: "X", SalePrice: dec("2")})
	uc := newPriceTableUC(repo, nil)
	margem, preco := dec("10"), dec("3")

	_, err := uc.Update(context.Background(), "it-1", dto.UpdatePriceItemRequest{
		MarginPercent: &margem, SalePrice: &preco,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Margem em massa
// ──────────────────────────────────────────────────────────────────────────────

func TestBulkMargin_PorCategoria(t *testing.T) {
	repo := newFakePriceItemRepo(
		&entity.PriceItem{ID: "a", ClientID: "cli-1", Category: entity.CategoryLogistics, Description: "A", UnitCost: dec("10"), SalePrice: dec("10")},
		&entity.PriceItem{ID: "b", ClientID: "cli-1", Category: entity.CategoryLogistics, Description: "B", UnitCost: dec("20"), SalePrice: dec("20")},
		&entity.PriceItem{ID: "fora", ClientID: "cli-1", Category: entity.CategoryStorage, Description: "Fora", UnitCost: dec("1"), SalePrice: dec("1.10")},
	)
	uc := newPriceTableUC(repo, nil)

	updated, err := uc.BulkMargin(context.Background(), dto.BulkMarginRequest{
		ClientID: "cli-1", Category: "Logística", MarginPercent: dec("30"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	a, _ := repo.GetByID("a")
	assert.True(t, dec("13").Equal(a.SalePrice))
	fora, _ := repo.GetByID("fora")
	assert.True(t, dec("1.10").Equal(fora.SalePrice), "outra categoria não é tocada")
}

func TestBulkMargin_SobreTemplates(t *testing.T) {
	tpl := &entity.PriceItem{
		ID: "tpl", ClientID: "cli-1", Category: entity.CategoryShipments,
		Description: "Template de envio", UnitCost: dec("18"), SalePrice: entity.TemplatePrice,
	}
	repo := newFakePriceItemRepo(tpl)
	uc := newPriceTableUC(repo, nil)

	updated, err := uc.BulkMargin(context.Background(), dto.BulkMarginRequest{
		ClientID: "cli-1", ApplyToTemplates: true, MarginPercent: dec("10"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, _ := repo.GetByID("tpl")
	assert.True(t, dec("19.8").Equal(got.SalePrice))
	assert.False(t, got.IsTemplate(), "o template vira item precificado")
}

func TestBulkMargin_SemCategoriaNemTemplates(t *testing.T) {
	uc := newPriceTableUC(newFakePriceItemRepo(), nil)

	_, err := uc.BulkMargin(context.Background(), dto.BulkMarginRequest{MarginPercent: dec("10")})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBulkMargin_FalhaDeEscritaAborta(t *testing.T) {
	repo := newFakePriceItemRepo(
		&entity.PriceItem{ID: "a", ClientID: "cli-1", Category: entity.CategoryLogistics, Description: "A", UnitCost: dec("10"), SalePrice: dec("10")},
	)
	repo.updateErr = assert.AnError
	uc := newPriceTableUC(repo, nil)

	updated, err := uc.BulkMargin(context.Background(), dto.BulkMarginRequest{
		ClientID: "cli-1", Category: "Logística", MarginPercent: dec("30"),
	})

	assert.Error(t, err)
	assert.Zero(t, updated)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolução da tabela e cache
// ──────────────────────────────────────────────────────────────────────────────

func TestResolveTable_FallbackParaTabelaGlobal(t *testing.T) {
	repo := newFakePriceItemRepo(
		&entity.PriceItem{ID: "global", ClientID: "", Category: entity.CategoryShipments, Description: "Envio global", SalePrice: dec("9")},
	)
	uc := newPriceTableUC(repo, nil)

	items, err := uc.ResolveTable(context.Background(), "cli-sem-tabela")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "global", items[0].ID)
}

func TestResolveTable_TabelaDoClienteVence(t *testing.T) {
	repo := newFakePriceItemRepo(
		&entity.PriceItem{ID: "global", ClientID: "", Description: "Envio global", SalePrice: dec("9")},
		&entity.PriceItem{ID: "propria", ClientID: "cli-1", Description: "Envio próprio", SalePrice: dec("11")},
	)
	uc := newPriceTableUC(repo, nil)

	items, err := uc.ResolveTable(context.Background(), "cli-1")

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "propria", items[0].ID)
}

func TestResolveTable_UsaCache(t *testing.T) {
	repo := newFakePriceItemRepo(
		&entity.PriceItem{ID: "it-1", ClientID: "cli-1", Description: "Envio", SalePrice: dec("9")},
	)
	cache := newFakePriceTableCache()
	uc := newPriceTableUC(repo, cache)

	// Primeira resolução: miss, leitura do repositório e escrita no cache.
	_, err := uc.ResolveTable(context.Background(), "cli-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.misses)

	// Esvazia o repositório: a segunda resolução só pode vir do cache.
	repo.items = nil
	items, err := uc.ResolveTable(context.Background(), "cli-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, cache.hits)
}

func TestPriceItemUpdate_InvalidaCache(t *testing.T) {
	repo := newFakePriceItemRepo(&entity.PriceItem{
		ID: "it-1", ClientID: "cli-1", Description: "Envio",
		UnitCost: dec("10"), SalePrice: dec("10"),
	})
	cache := newFakePriceTableCache()
	uc := newPriceTableUC(repo, cache)

	_, err := uc.ResolveTable(context.Background(), "cli-1")
	require.NoError(t, err)

	novoCusto := dec("12")
	_, err = uc.Update(context.Background(), "it-1", dto.UpdatePriceItemRequest{UnitCost: &novoCusto})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.invalidated)
	_, ok := cache.store["cli-1"]
	assert.False(t, ok, "a tabela em cache do cliente editado deve sumir")
}
