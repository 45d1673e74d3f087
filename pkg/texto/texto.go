// Package texto concentra normalização de strings usada no casamento de
// cabeçalhos de planilha, categorias e descrições da tabela de preços.
// Os relatórios chegam com variações de caixa e acentuação ("Logística",
// "LOGISTICA", "logistica"), então toda comparação do motor passa por aqui.
package texto

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var removeAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold remove os diacríticos preservando caixa ("Logística" -> "Logistica").
func Fold(s string) string {
	out, _, err := transform.String(removeAccents, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize devolve a forma canônica de comparação: sem acentos, minúscula e sem
// espaços nas pontas.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(Fold(s)))
}

// Equal compara duas strings na forma canônica.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Contains informa se s contém sub, ambos na forma canônica.
func Contains(s, sub string) bool {
	return strings.Contains(Normalize(s), Normalize(sub))
}

// ContainsAny informa se s contém qualquer um dos termos na forma canônica.
func ContainsAny(s string, subs ...string) bool {
	n := Normalize(s)
	for _, sub := range subs {
		if strings.Contains(n, Normalize(sub)) {
			return true
		}
	}
	return false
}
