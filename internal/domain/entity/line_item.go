package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountKind discrimina o que o campo Quantity de uma linha carrega.
// Nos relatórios de origem o mesmo campo ora guarda uma contagem (unidades de
// armazenagem, itens adicionais), ora um valor monetário lido da planilha
// (frete não-template, repasse de template, ajuste de discrepância). O tag
// elimina a inferência por categoria+template na hora de somar.
type AmountKind string

const (
	// AmountCount Quantity é uma contagem; o preço unitário vem da tabela.
	AmountCount AmountKind = "QUANTIDADE"
	// AmountRaw Quantity carrega o valor monetário bruto da planilha; o preço
	// unitário efetivo é 1.
	AmountRaw AmountKind = "VALOR_BRUTO"
)

// LineItem uma linha de cobrança dentro de uma fatura mensal (detalhe de envio).
// Criadas em lote pelo motor de precificação em uma passada de reconciliação.
type LineItem struct {
	ID           string
	InvoiceID    string
	Date         time.Time
	TrackingCode string
	OrderCode    string
	PriceItemID  string // vazio até o casamento com um item da tabela
	Quantity     decimal.Decimal
	Kind         AmountKind
	PostalCode   string
	StateCode    string
}
