package billing

import (
	"context"
	"fmt"

	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

// PDFUseCase gera a representação em PDF de uma cobrança.
type PDFUseCase struct {
	invoiceRepo   repository.InvoiceRepository
	clientRepo    repository.ClientRepository
	priceItemRepo repository.PriceItemRepository
	generator     InvoicePDFGenerator
}

// NewPDFUseCase constrói o caso de uso injetando todas as dependências.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	priceItemRepo repository.PriceItemRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:   invoiceRepo,
		clientRepo:    clientRepo,
		priceItemRepo: priceItemRepo,
		generator:     generator,
	}
}

// DownloadInvoicePDF carrega a cobrança completa, enriquece as linhas com a
// descrição dos itens e gera o PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil) em caso de sucesso.
//   - domain.ErrNotFound        se a cobrança não existe.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obter cobrança: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}

	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obter cliente: %w", err)
	}

	rawLines, err := uc.invoiceRepo.GetLineItems(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obter linhas: %w", err)
	}

	enriched := make([]LineForPDF, 0, len(rawLines))
	for _, l := range rawLines {
		var item *entity.PriceItem
		if l.PriceItemID != "" {
			item, _ = uc.priceItemRepo.GetByID(l.PriceItemID)
		}
		desc := "Serviço"
		cat := ""
		if item != nil {
			desc = item.Description
			cat = string(item.Category)
		}
		unit := pricing.DisplayPrice(item)
		if l.Kind == entity.AmountRaw {
			unit = entity.TemplatePrice
		}
		enriched = append(enriched, LineForPDF{
			Line:        l,
			Description: desc,
			Category:    cat,
			UnitPrice:   unit.StringFixed(2),
			Subtotal:    pricing.LineSubtotal(l, item).StringFixed(2),
		})
	}

	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv, client, enriched)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: geração falhou: %w", err)
	}

	filename = fmt.Sprintf("fatura_%s.pdf", sanitizeFilename(inv.ReferenceMonth))
	return pdfBytes, filename, nil
}
