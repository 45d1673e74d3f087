// Package billing casos de uso do portal de faturamento: cadastro de clientes,
// manutenção da tabela de preços, geração da cobrança mensal a partir dos
// relatórios e saída (CSV, PDF, e-mail).
package billing

import (
	"context"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

// BillingTxRunner executa uma função dentro de uma transação com os
// repositórios de faturamento atados à tx. Erro da função faz rollback.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		clientRepo repository.ClientRepository,
		priceItemRepo repository.PriceItemRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// PriceTableCache cache da tabela de preços resolvida por cliente. Get devolve
// (nil, nil) em cache miss; falha de infraestrutura nunca impede a geração, o
// chamador cai para o repositório.
type PriceTableCache interface {
	Get(ctx context.Context, clientID string) ([]*entity.PriceItem, error)
	Set(ctx context.Context, clientID string, items []*entity.PriceItem) error
	Invalidate(ctx context.Context, clientID string) error
}

// InvoicePDFGenerator gera a representação em PDF de uma cobrança.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(
		ctx context.Context,
		invoice *entity.Invoice,
		client *entity.Client,
		lines []LineForPDF,
	) ([]byte, error)
}

// LineForPDF linha enriquecida com a descrição do item para o PDF.
type LineForPDF struct {
	Line        *entity.LineItem
	Description string
	Category    string
	UnitPrice   string
	Subtotal    string
}

// InvoiceEmailJob pedido de envio da cobrança por e-mail, consumido pelo
// worker.
type InvoiceEmailJob struct {
	InvoiceID string `json:"invoice_id"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
}

// EmailQueue enfileira envios de cobrança (processados fora do ciclo da
// requisição).
type EmailQueue interface {
	EnqueueInvoiceEmail(ctx context.Context, job InvoiceEmailJob) error
}
