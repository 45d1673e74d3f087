// Package pricing implementa o casamento coluna-de-custo -> item da tabela de
// preços e as regras de preço derivado (margem, preço de exibição, subtotal e
// base de custo de uma linha).
//
// As cascatas de casamento são listas de regras ordenadas, não condicionais
// aninhadas: tabelas de preço reais acumulam itens duplicados e "templates"
// legados, e o casador precisa preferir a entrada que carrega preço vigente,
// caindo para placeholder só quando nada mais casa.
package pricing

import (
	"strings"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// matchStep uma etapa da cascata; devolve nil quando não encontra candidato.
type matchStep func(col string, items []*entity.PriceItem) *entity.PriceItem

// IsShippingColumn informa se o nome da coluna identifica custo de envio.
func IsShippingColumn(col string) bool {
	return texto.ContainsAny(col, "envio", "shipping", "frete")
}

// IsSpecificCostColumn informa se a coluna é um custo específico (difal,
// seguro, ajuste), precificado pela tabela mesmo em item template.
func IsSpecificCostColumn(col string) bool {
	return texto.ContainsAny(col, "difal", "seguro", "ajuste")
}

// Match resolve o item de preço para uma coluna de custo. Determinístico,
// insensível a caixa/acentos, função pura das entradas. Devolve nil quando
// nenhum item serve.
func Match(col string, items []*entity.PriceItem) *entity.PriceItem {
	if IsShippingColumn(col) {
		return MatchShipping(col, items)
	}
	return matchGeneric(col, items)
}

// ── Cascata de envio ──────────────────────────────────────────────────────────

var shippingCascade = []matchStep{
	// 1. descrição exata entre itens não-template de Envios
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return isShippingCandidate(p) && texto.Equal(p.Description, col)
		})
	},
	// 2. subcategoria exata
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return isShippingCandidate(p) && texto.Equal(p.Subcategory, col)
		})
	},
	// 3. substring (nas duas direções) do texto "subcategoria + descrição"
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			full := p.Subcategory + " " + p.Description
			return isShippingCandidate(p) && (texto.Contains(full, col) || texto.Contains(col, full))
		})
	},
	// 4. interseção de palavras-chave
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return isShippingCandidate(p) && keywordOverlap(col, p.Description)
		})
	},
	// 5. qualquer item não-template de Envios (último fallback específico)
	func(_ string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, isShippingCandidate)
	},
	// 6. template cuja descrição mencione envio/template (repasse explícito)
	func(_ string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return p.IsTemplate() && texto.ContainsAny(p.Description, "envio", "template")
		})
	},
	// 7. qualquer item na categoria Envios (último recurso)
	func(_ string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return p.Category.Is(entity.CategoryShipments)
		})
	},
}

// MatchShipping aplica a cascata de envio diretamente (usada também para a
// coluna posicional de custo total de envio, cujo cabeçalho nem sempre diz
// "envio").
func MatchShipping(col string, items []*entity.PriceItem) *entity.PriceItem {
	for _, step := range shippingCascade {
		if p := step(col, items); p != nil {
			return p
		}
	}
	return nil
}

func isShippingCandidate(p *entity.PriceItem) bool {
	return p.Category.Is(entity.CategoryShipments) && !p.IsTemplate()
}

// ── Cascata genérica (colunas fora de envio) ──────────────────────────────────

var genericCascade = []matchStep{
	// descrição exata
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return texto.Equal(p.Description, col)
		})
	},
	// coluna contém a descrição
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return p.Description != "" && texto.Contains(col, p.Description)
		})
	},
	// descrição contém a coluna
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return texto.Contains(p.Description, col)
		})
	},
	// interseção de palavras-chave
	func(col string, items []*entity.PriceItem) *entity.PriceItem {
		return first(items, func(p *entity.PriceItem) bool {
			return keywordOverlap(col, p.Description)
		})
	},
}

// matchGeneric roda a cascata primeiro sobre itens não-template e só depois
// sobre templates: o placeholder nunca ganha de um item com preço real.
func matchGeneric(col string, items []*entity.PriceItem) *entity.PriceItem {
	nonTemplates := filter(items, func(p *entity.PriceItem) bool { return !p.IsTemplate() })
	templates := filter(items, func(p *entity.PriceItem) bool { return p.IsTemplate() })

	for _, pool := range [][]*entity.PriceItem{nonTemplates, templates} {
		for _, step := range genericCascade {
			if p := step(col, pool); p != nil {
				return p
			}
		}
	}
	return nil
}

// ── Localizadores usados pelo motor ───────────────────────────────────────────

// FindDifal devolve o item realmente categorizado como Difal (descrição
// mencionando difal/icms), para reroteamento de colunas difal casadas em
// categoria errada.
func FindDifal(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.Category.Is(entity.CategoryDifal) &&
			texto.ContainsAny(p.Description, "difal", "icms")
	})
}

// FindLogistics devolve um item de Logística/Maquila para reroteamento de
// custos genéricos com categoria desatualizada.
func FindLogistics(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.Category.Is(entity.CategoryLogistics) || p.Category.Is(entity.CategoryMaquila)
	})
}

// FindStorage devolve o item de Armazenagem para a linha de estoque do cliente.
func FindStorage(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.Category.Is(entity.CategoryStorage)
	})
}

// FindAdjustment devolve o coletor de ajustes: item template (preço 1) na
// categoria Ajustes, usado para absorver a discrepância por pedido. Nil quando
// o cliente não tem o coletor configurado.
func FindAdjustment(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.Category.Is(entity.CategoryAdjustments) && p.SalePrice.Equal(entity.TemplatePrice)
	})
}

// FindPickingSingle devolve a entrada de picking "pedidos contendo de 0 a 1
// item".
func FindPickingSingle(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.IsPicking() && texto.ContainsAny(p.Description, "0 a 1", "0 to 1")
	})
}

// FindPickingExtra devolve a entrada de picking "pedidos contendo mais de 1
// item" (itens adicionais).
func FindPickingExtra(items []*entity.PriceItem) *entity.PriceItem {
	return first(items, func(p *entity.PriceItem) bool {
		return p.IsPicking() && texto.ContainsAny(p.Description, "mais de 1", "more than 1", "adicionais", "adicional")
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func first(items []*entity.PriceItem, ok func(*entity.PriceItem) bool) *entity.PriceItem {
	for _, p := range items {
		if ok(p) {
			return p
		}
	}
	return nil
}

func filter(items []*entity.PriceItem, ok func(*entity.PriceItem) bool) []*entity.PriceItem {
	var out []*entity.PriceItem
	for _, p := range items {
		if ok(p) {
			out = append(out, p)
		}
	}
	return out
}

// Palavras sem valor de casamento nos cabeçalhos e descrições.
var stopwords = map[string]struct{}{
	"de": {}, "do": {}, "da": {}, "dos": {}, "das": {}, "e": {}, "em": {},
	"para": {}, "por": {}, "com": {}, "o": {}, "a": {}, "os": {}, "as": {},
	"custo": {}, "cost": {}, "of": {}, "the": {},
}

// keywordOverlap informa se coluna e descrição compartilham ao menos um token
// significativo (3+ caracteres, fora das stopwords).
func keywordOverlap(col, desc string) bool {
	colTokens := tokens(col)
	if len(colTokens) == 0 {
		return false
	}
	descTokens := map[string]struct{}{}
	for _, t := range tokens(desc) {
		descTokens[t] = struct{}{}
	}
	for _, t := range colTokens {
		if _, ok := descTokens[t]; ok {
			return true
		}
	}
	return false
}

func tokens(s string) []string {
	fields := strings.FieldsFunc(texto.Normalize(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	var out []string
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
