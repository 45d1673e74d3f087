// Package report lê e classifica os relatórios CSV exportados pelo operador
// logístico (rastreio de envios e custos operacionais). Os exportadores variam
// de delimitador, caixa dos cabeçalhos, codificação e linhas de título soltas,
// então todo o parsing aqui é tolerante: linha curta é completada, nunca
// rejeitada.
package report

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/gmartins-dev/portal-faturamento/pkg/texto"
)

// Row uma linha do relatório, indexada pelo nome da coluna.
type Row map[string]string

// Table relatório parseado, preservando a ordem original das colunas.
type Table struct {
	Columns   []string
	Rows      []Row
	Delimiter rune
}

// Empty informa se nenhuma linha de cabeçalho foi reconhecida.
func (t *Table) Empty() bool {
	return len(t.Columns) == 0
}

// Decode converte os bytes de um upload em string UTF-8. Exportadores antigos
// ainda mandam ISO-8859-1; se os bytes não forem UTF-8 válido, decodifica como
// Latin-1.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Parse lê o texto CSV e devolve a tabela. Única condição de resultado vazio:
// nenhuma linha com cara de cabeçalho (sem delimitador). Linhas malformadas
// nunca interrompem o parsing.
func Parse(text string) *Table {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	// Cabeçalho: primeira linha contendo delimitador. Tolera linhas de título
	// soltas antes do cabeçalho real.
	headerIdx := -1
	var delim rune
	for i, l := range lines {
		semis := strings.Count(l, ";")
		commas := strings.Count(l, ",")
		if semis == 0 && commas == 0 {
			continue
		}
		if semis >= commas && semis > 0 {
			delim = ';'
		} else {
			delim = ','
		}
		headerIdx = i
		break
	}
	if headerIdx < 0 {
		return &Table{}
	}

	columns := splitFields(lines[headerIdx], delim)
	for i, c := range columns {
		columns[i] = Sanitize(c)
	}

	t := &Table{Columns: columns, Delimiter: delim}
	for _, l := range lines[headerIdx+1:] {
		fields := splitFields(l, delim)
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(fields) {
				row[col] = Sanitize(fields[i])
			} else {
				row[col] = "" // linha curta: completa, não rejeita
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// splitFields divide a linha no delimitador, ignorando delimitadores dentro de
// aspas duplas pareadas. Aspas envolventes são removidas e "" vira ".
func splitFields(line string, delim rune) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				b.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, b.String())
	return fields
}

// Sanitize colapsa sequências de espaço em um espaço, remove caracteres de
// controle e apara as pontas.
func Sanitize(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// FindColumn resolve um nome de coluna a partir de apelidos aceitos:
// igual exato, depois insensível a caixa/acentos, depois contém (nas duas
// direções). Primeiro acerto vence. Devolve "" se nada casar.
func FindColumn(columns []string, aliases ...string) string {
	for _, a := range aliases {
		for _, c := range columns {
			if c == a {
				return c
			}
		}
	}
	for _, a := range aliases {
		for _, c := range columns {
			if texto.Equal(c, a) {
				return c
			}
		}
	}
	for _, a := range aliases {
		for _, c := range columns {
			if texto.Contains(c, a) || texto.Contains(a, c) {
				return c
			}
		}
	}
	return ""
}

// ParseDecimal interpreta números nos formatos BR ("1.234,56") e US
// ("1,234.56"), com ou sem prefixo de moeda. Valor ilegível vale zero:
// planilhas reais trazem células com texto livre no meio dos custos.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// BR: "." milhar, "," decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			// US: "," milhar, "." decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Stringify exporta a tabela de volta para CSV, citando todo campo e mantendo a
// ordem original do cabeçalho. Round-trip com Parse é garantido apenas para
// dados sem quebra de linha dentro de campos citados.
func Stringify(t *Table) string {
	delim := string(t.Delimiter)
	if t.Delimiter == 0 {
		delim = ";"
	}
	quote := func(s string) string {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}

	var b strings.Builder
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(delim)
		}
		b.WriteString(quote(c))
	}
	for _, row := range t.Rows {
		b.WriteString("\n")
		for i, c := range t.Columns {
			if i > 0 {
				b.WriteString(delim)
			}
			b.WriteString(quote(row[c]))
		}
	}
	return b.String()
}
