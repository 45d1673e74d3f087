package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
)

// ──────────────────────────────────────────────────────────────────────────────
// Parse: os exportadores reais variam delimitador, BOM, linhas de título soltas
// e comprimento das linhas. O parser precisa aceitar tudo isso sem rejeitar
// linha nenhuma.
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_PontoEVirgula(t *testing.T) {
	tb := report.Parse("Pedido;Data;Total\nPED-001;02/10/2025;100,50\n")

	require.False(t, tb.Empty())
	assert.Equal(t, []string{"Pedido", "Data", "Total"}, tb.Columns)
	assert.Equal(t, ';', int32(tb.Delimiter))
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "PED-001", tb.Rows[0]["Pedido"])
}

func TestParse_Virgula(t *testing.T) {
	tb := report.Parse("Order,Date\nA1,2025-10-02\n")

	require.False(t, tb.Empty())
	assert.Equal(t, ',', int32(tb.Delimiter))
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "A1", tb.Rows[0]["Order"])
}

func TestParse_BOMRemovido(t *testing.T) {
	tb := report.Parse("\ufeffPedido;Total\nP1;10\n")

	require.False(t, tb.Empty())
	assert.Equal(t, "Pedido", tb.Columns[0], "o BOM não deve contaminar o primeiro cabeçalho")
}

func TestParse_LinhasDeTituloAntesDoCabecalho(t *testing.T) {
	csv := "Relatório de Custos\nGerado em 01/11/2025\nPedido;Total\nP1;50\n"
	tb := report.Parse(csv)

	require.False(t, tb.Empty())
	assert.Equal(t, []string{"Pedido", "Total"}, tb.Columns,
		"linhas de título sem delimitador devem ser puladas até achar o cabeçalho real")
	require.Len(t, tb.Rows, 1)
}

func TestParse_LinhaCurtaCompletadaNuncaRejeitada(t *testing.T) {
	tb := report.Parse("A;B;C\n1;2\n")

	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "1", tb.Rows[0]["A"])
	assert.Equal(t, "2", tb.Rows[0]["B"])
	assert.Equal(t, "", tb.Rows[0]["C"], "campo ausente vira vazio, a linha não é descartada")
}

func TestParse_CamposComAspasEDelimitadorInterno(t *testing.T) {
	tb := report.Parse(`Pedido;Descrição` + "\n" + `P1;"Envio; urgente"` + "\n" + `P2;"Diz ""rápido"""` + "\n")

	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "Envio; urgente", tb.Rows[0]["Descrição"])
	assert.Equal(t, `Diz "rápido"`, tb.Rows[1]["Descrição"])
}

func TestParse_LinhasVaziasIgnoradas(t *testing.T) {
	tb := report.Parse("Pedido;Total\n\nP1;10\n\n\nP2;20\n")

	assert.Len(t, tb.Rows, 2)
}

func TestParse_SemCabecalhoReconhecivel(t *testing.T) {
	tb := report.Parse("apenas um texto solto\nsem delimitadores\n")

	assert.True(t, tb.Empty(), "texto sem delimitador algum deve resultar em tabela vazia")
}

func TestParse_CRLFNormalizado(t *testing.T) {
	tb := report.Parse("Pedido;Total\r\nP1;10\r\nP2;20\r\n")

	require.Len(t, tb.Rows, 2)
	assert.Equal(t, "P2", tb.Rows[1]["Pedido"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Decode / Sanitize
// ──────────────────────────────────────────────────────────────────────────────

func TestDecode_Latin1ParaUTF8(t *testing.T) {
	// "Descrição" em ISO-8859-1: ç=0xE7, ã=0xE3.
	raw := []byte{'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o'}
	assert.Equal(t, "Descrição", report.Decode(raw))
}

func TestDecode_UTF8Intacto(t *testing.T) {
	assert.Equal(t, "Logística", report.Decode([]byte("Logística")))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Custo de Envio", report.Sanitize("  Custo   de \t Envio  "))
	assert.Equal(t, "PED-001", report.Sanitize("PED-001\x00"))
	assert.Equal(t, "", report.Sanitize("   \t  "))
}

// ──────────────────────────────────────────────────────────────────────────────
// FindColumn: cascata exato -> insensível -> contém, primeiro acerto vence.
// ──────────────────────────────────────────────────────────────────────────────

func TestFindColumn_ExatoVencePrimeiro(t *testing.T) {
	cols := []string{"Data", "Número do Pedido", "Pedido"}
	assert.Equal(t, "Número do Pedido", report.FindColumn(cols, "Número do Pedido", "Pedido"))
}

func TestFindColumn_InsensivelACaixaEAcentos(t *testing.T) {
	cols := []string{"NUMERO DO PEDIDO", "DATA"}
	assert.Equal(t, "NUMERO DO PEDIDO", report.FindColumn(cols, "Número do Pedido"))
}

func TestFindColumn_PorSubstring(t *testing.T) {
	cols := []string{"Cód. Rastreio Correios"}
	assert.Equal(t, "Cód. Rastreio Correios", report.FindColumn(cols, "Rastreio"))
}

func TestFindColumn_NadaCasa(t *testing.T) {
	assert.Equal(t, "", report.FindColumn([]string{"A", "B"}, "Pedido"))
}

// ──────────────────────────────────────────────────────────────────────────────
// ParseDecimal: formatos BR e US, moeda, lixo.
// ──────────────────────────────────────────────────────────────────────────────

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},  // BR
		{"1,234.56", "1234.56"},  // US
		{"R$ 25,50", "25.5"},     // moeda + vírgula decimal
		{"100", "100"},           // inteiro
		{"0,80", "0.8"},          // vírgula decimal simples
		{"-3,00", "-3"},          // negativo
		{"", "0"},                // vazio
		{"texto livre", "0"},     // ilegível vale zero
		{`"42,10"`, "42.1"},      // célula citada
		{"1.234.567,89", "1234567.89"},
	}
	for _, c := range cases {
		got := report.ParseDecimal(c.in)
		want, err := decimal.NewFromString(c.want)
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "ParseDecimal(%q) = %s, esperado %s", c.in, got, want)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Stringify: round-trip com Parse.
// ──────────────────────────────────────────────────────────────────────────────

func TestStringify_RoundTrip(t *testing.T) {
	orig := report.Parse("Pedido;Descrição\nP1;Envio normal\nP2;Diz \"\"x\"\"\n")
	again := report.Parse(report.Stringify(orig))

	require.Equal(t, orig.Columns, again.Columns)
	require.Len(t, again.Rows, len(orig.Rows))
	for i := range orig.Rows {
		assert.Equal(t, orig.Rows[i], again.Rows[i])
	}
}
