// Package billing contém o motor de faturamento: reconciliação dos relatórios
// de rastreio e custos, aplicação das regras de precificação e agregação dos
// totais da cobrança mensal.
package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// Meses por nome em português, como aparecem no campo de mês de referência.
var monthNames = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// MonthName devolve o nome do mês em português, capitalizado.
func MonthName(m time.Month) string {
	for name, month := range monthNames {
		if month == m {
			return strings.ToUpper(name[:1]) + name[1:]
		}
	}
	return ""
}

// ParseReferenceMonth interpreta um mês de referência no formato "Mês/Ano"
// ("Outubro/2025"). Aceita variações de caixa e acento no nome do mês.
func ParseReferenceMonth(s string) (time.Month, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: mês de referência %q fora do formato Mês/Ano", domain.ErrInvalidInput, s)
	}
	name := texto.Normalize(parts[0])
	month, ok := monthNames[name]
	if !ok {
		return 0, 0, fmt.Errorf("%w: mês %q desconhecido", domain.ErrInvalidInput, parts[0])
	}
	var year int
	if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%d", &year); err != nil || year < 2000 || year > 2200 {
		return 0, 0, fmt.Errorf("%w: ano %q inválido", domain.ErrInvalidInput, parts[1])
	}
	return month, year, nil
}

// FormatReferenceMonth devolve o mês de referência canônico ("Outubro/2025").
func FormatReferenceMonth(m time.Month, year int) string {
	return fmt.Sprintf("%s/%d", MonthName(m), year)
}

// Layouts de data encontrados nos exportadores do operador, em ordem de
// probabilidade.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
}

// ParseRowDate interpreta a data de uma célula. Devolve ok=false para célula
// vazia ou formato irreconhecível; o chamador decide se a linha cai no filtro
// ou no fallback.
func ParseRowDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// InReferenceMonth informa se a data cai no mês/ano de referência.
func InReferenceMonth(t time.Time, m time.Month, year int) bool {
	return t.Month() == m && t.Year() == year
}
