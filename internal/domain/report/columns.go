package report

import (
	"strings"

	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// Layout posições fixas do relatório de custos, expressas em letras de coluna
// de planilha (convenção do exportador do operador). A coluna de custo total de
// envio não é localizada por nome porque o cabeçalho real muda entre versões do
// relatório; a posição, não.
type Layout struct {
	TotalShipping string // ex. "AD": custo total de envio (agrega sub-custos de frete)
	PostalCode    string // CEP de destino
	State         string // UF de destino
	ItemCount     string // quantidade de itens do pedido
	BasePicking   string // custo base de picking para 1 unidade
}

// DefaultLayout posições do relatório de custos vigente.
func DefaultLayout() Layout {
	return Layout{
		TotalShipping: "AD",
		PostalCode:    "AB",
		State:         "AC",
		ItemCount:     "AE",
		BasePicking:   "AF",
	}
}

// ResolvedLayout nomes reais das colunas posicionais na tabela parseada; vazio
// quando a tabela é curta demais para conter a posição.
type ResolvedLayout struct {
	TotalShipping string
	PostalCode    string
	State         string
	ItemCount     string
	BasePicking   string
}

// Resolve converte cada letra do layout no nome da coluna correspondente.
func (l Layout) Resolve(columns []string) ResolvedLayout {
	at := func(letter string) string {
		idx := ColumnIndex(letter)
		if idx < 0 || idx >= len(columns) {
			return ""
		}
		return columns[idx]
	}
	return ResolvedLayout{
		TotalShipping: at(l.TotalShipping),
		PostalCode:    at(l.PostalCode),
		State:         at(l.State),
		ItemCount:     at(l.ItemCount),
		BasePicking:   at(l.BasePicking),
	}
}

// ColumnIndex converte uma letra de coluna de planilha em índice zero-based
// ("A" = 0, "Z" = 25, "AA" = 26, "AD" = 29). Entrada inválida devolve -1.
func ColumnIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if letter == "" {
		return -1
	}
	idx := 0
	for _, r := range letter {
		if r < 'A' || r > 'Z' {
			return -1
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}

// Colunas que nunca são custo, por nome (comparação insensível a caixa/acentos,
// exata ou por substring).
var metadataColumns = []string{
	"pedido", "order", "numero do pedido",
	"data", "date",
	"rastreio", "tracking", "codigo de rastreio",
	"cep",
	"uf", "estado", "state",
	"total",
}

// CostColumns devolve as colunas do relatório de custos que representam
// valores de custo: exclui metadados conhecidos e a coluna posicional de custo
// total de envio (tratada à parte), inclui o restante cujo nome menciona
// custo/cost.
func CostColumns(columns []string, resolved ResolvedLayout) []string {
	var out []string
	for _, c := range columns {
		if c == "" || c == resolved.TotalShipping {
			continue
		}
		if isMetadataColumn(c) {
			continue
		}
		if texto.ContainsAny(c, "custo", "cost") {
			out = append(out, c)
		}
	}
	return out
}

func isMetadataColumn(name string) bool {
	for _, m := range metadataColumns {
		if texto.Equal(name, m) || texto.Contains(name, m) {
			return true
		}
	}
	return false
}
