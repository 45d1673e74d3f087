// Package pdf gera a representação em PDF da fatura mensal de serviços
// logísticos.
//
// Layout da página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cliente + CNPJ      │  Mês de referência + Status  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Data | Descrição | Categoria | Qtde | Subtotal      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAIS: Envios / Armazenagem / Logística / TOTAL            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RODAPÉ: vencimento + observações                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	operatorName string
}

// NewMarotoPDFGenerator constrói o gerador com o nome do operador logístico
// para o cabeçalho.
func NewMarotoPDFGenerator(operatorName string) *MarotoPDFGenerator {
	if operatorName == "" {
		operatorName = "Portal de Faturamento"
	}
	return &MarotoPDFGenerator{operatorName: operatorName}
}

// GenerateInvoicePDF gera o PDF e devolve seus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	invoice *entity.Invoice,
	client *entity.Client,
	lines []appbilling.LineForPDF,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Fatura de Serviços Logísticos", true).
		WithAuthor(g.operatorName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, client, g.operatorName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableLineRows(lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// headerRow: operador + cliente (esq) e referência + status (dir).
func headerRow(invoice *entity.Invoice, client *entity.Client, operator string) core.Row {
	clientName, taxID := "—", "—"
	if client != nil {
		clientName = client.Name
		taxID = client.TaxID
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(operator, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(clientName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 9,
			}),
			text.New("CNPJ: "+taxID, props.Text{
				Size: 8, Top: 15, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FATURA DE SERVIÇOS LOGÍSTICOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.ReferenceMonth, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Status: "+invoice.Status, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabeçalho da tabela de linhas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Data", 1, align.Left),
		h("Descrição do serviço", 5, align.Left),
		h("Categoria", 2, align.Left),
		h("Qtde", 1, align.Center),
		h("Subtotal", 3, align.Right),
	)
}

// tableLineRows: uma fileira por linha da cobrança.
func tableLineRows(lines []appbilling.LineForPDF) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		date := ""
		if !l.Line.Date.IsZero() {
			date = l.Line.Date.Format("02/01")
		}
		qty := l.Line.Quantity.StringFixed(0)
		if l.Line.Kind == entity.AmountRaw {
			qty = "—" // valor bruto, sem contagem
		}
		result = append(result, row.New(6).Add(
			col.New(1).Add(text.New(date, props.Text{Size: 8, Top: 1})),
			col.New(5).Add(text.New(l.Description, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.Category, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(qty, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("R$ "+formatMoneyBR(l.Subtotal), props.Text{
				Size: 8, Align: align.Right, Top: 1, Right: 1,
			})),
		))
	}
	return result
}

// totalsRow: bloco de totais alinhado à direita.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}

	return row.New(40).Add(
		col.New(3),
		col.New(4).Add(
			label("Envios e devoluções:"),
			label("Armazenagem:"),
			label("Logística:"),
			label("Custos adicionais:"),
			label("Repasses externos:"),
			grandLabel("TOTAL A PAGAR:"),
		),
		col.New(4).Add(
			value("R$ "+formatMoneyBR(invoice.TotalShipping.StringFixed(2))),
			value("R$ "+formatMoneyBR(invoice.TotalStorage.StringFixed(2))),
			value("R$ "+formatMoneyBR(invoice.TotalLogistics.StringFixed(2))),
			value("R$ "+formatMoneyBR(invoice.TotalAdditional.StringFixed(2))),
			value("R$ "+formatMoneyBR(invoice.TotalExtra.StringFixed(2))),
			grandValue("R$ "+formatMoneyBR(invoice.GrandTotal.StringFixed(2))),
		),
		col.New(1),
	)
}

// footerRow: vencimento + observações.
func footerRow(invoice *entity.Invoice) core.Row {
	due := "—"
	if !invoice.DueDate.IsZero() {
		due = invoice.DueDate.Format("02/01/2006")
	}
	return row.New(12).Add(col.New(12).Add(
		text.New("Vencimento: "+due, props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 1,
		}),
		text.New("Dúvidas sobre esta fatura? Entre em contato com o time de atendimento. "+
			"Conserve este documento como comprovante dos serviços prestados no período.",
			props.Text{Size: 6.5, Color: colorGray, Top: 7},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoneyBR converte "1234.56" em "1.234,56".
func formatMoneyBR(s string) string {
	intPart := s
	decPart := ""
	if i := strings.LastIndex(s, "."); i >= 0 {
		intPart, decPart = s[:i], s[i+1:]
	}
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, intPart[i])
	}
	out := string(buf)
	if decPart != "" {
		out += "," + decPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
