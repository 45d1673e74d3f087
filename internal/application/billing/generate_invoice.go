package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	domainbilling "github.com/gmartins-dev/portal-faturamento/internal/domain/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// GenerateInvoiceUseCase gera a cobrança mensal: resolve a tabela de preços do
// cliente, roda o motor sobre os relatórios e persiste cobrança, linhas e
// custos adicionais em uma única transação.
type GenerateInvoiceUseCase struct {
	engine     *domainbilling.Engine
	txRunner   BillingTxRunner
	clientRepo repository.ClientRepository
	priceTable *PriceTableUseCase
	log        *logger.Logger
}

// NewGenerateInvoiceUseCase constrói o caso de uso.
func NewGenerateInvoiceUseCase(
	engine *domainbilling.Engine,
	txRunner BillingTxRunner,
	clientRepo repository.ClientRepository,
	priceTable *PriceTableUseCase,
	log *logger.Logger,
) *GenerateInvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerateInvoiceUseCase{
		engine:     engine,
		txRunner:   txRunner,
		clientRepo: clientRepo,
		priceTable: priceTable,
		log:        log.Component("generate_invoice"),
	}
}

// Generate executa a geração completa e persiste o resultado. A resposta
// carrega as linhas e todos os diagnósticos da reconciliação.
func (uc *GenerateInvoiceUseCase) Generate(ctx context.Context, in dto.GenerateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.ClientID == "" || in.ReferenceMonth == "" || in.TrackingCSV == "" {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}

	table, err := uc.priceTable.ResolveTable(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}

	var dueDate time.Time
	if in.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", in.DueDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
	}

	additional := make([]*entity.AdditionalCost, 0, len(in.AdditionalCosts))
	for _, c := range in.AdditionalCosts {
		if c.Description == "" {
			return nil, domain.ErrInvalidInput
		}
		additional = append(additional, &entity.AdditionalCost{
			ID:          uuid.New().String(),
			Description: c.Description,
			Value:       c.Value,
			Category:    c.Category,
		})
	}

	res, err := uc.engine.Generate(domainbilling.Input{
		Client:          client,
		PriceTable:      table,
		TrackingCSV:     in.TrackingCSV,
		CostsCSV:        in.CostsCSV,
		ReferenceMonth:  in.ReferenceMonth,
		DueDate:         dueDate,
		AdditionalCosts: additional,
		ExtraCosts:      in.ExtraCosts,
	})
	if err != nil {
		return nil, err
	}

	for _, c := range additional {
		c.InvoiceID = res.Invoice.ID
	}

	err = uc.txRunner.RunBilling(ctx, func(
		_ repository.ClientRepository,
		_ repository.PriceItemRepository,
		invoiceRepo repository.InvoiceRepository,
	) error {
		if err := invoiceRepo.Create(res.Invoice); err != nil {
			return err
		}
		for _, line := range res.Lines {
			if err := invoiceRepo.CreateLineItem(line); err != nil {
				return err
			}
		}
		for _, c := range additional {
			if err := invoiceRepo.CreateAdditionalCost(c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toInvoiceResponse(res.Invoice, client.Name)
	resp.Lines = linesToDTO(res.Lines, res.ItemsByID)
	resp.UnmatchedTrackingIDs = res.UnmatchedTrackingIDs
	resp.UnmatchedCostIDs = res.UnmatchedCostIDs
	resp.Warnings = res.Warnings
	resp.DetectedDateRange = res.DetectedDateRange
	for _, w := range res.DroppedCosts {
		resp.DroppedCosts = append(resp.DroppedCosts, dto.DroppedCostDTO{
			OrderID: w.OrderID,
			Column:  w.Column,
			Value:   w.Value,
			Reason:  w.Reason,
		})
	}
	return resp, nil
}

func toInvoiceResponse(inv *entity.Invoice, clientName string) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:              inv.ID,
		ClientID:        inv.ClientID,
		ClientName:      clientName,
		ReferenceMonth:  inv.ReferenceMonth,
		Status:          inv.Status,
		TotalShipping:   inv.TotalShipping,
		TotalStorage:    inv.TotalStorage,
		TotalLogistics:  inv.TotalLogistics,
		TotalAdditional: inv.TotalAdditional,
		TotalExtra:      inv.TotalExtra,
		TotalCost:       inv.TotalCost,
		GrandTotal:      inv.GrandTotal,
	}
	if !inv.DueDate.IsZero() {
		resp.DueDate = inv.DueDate.Format("2006-01-02")
	}
	return resp
}

func linesToDTO(lines []*entity.LineItem, itemsByID map[string]*entity.PriceItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(lines))
	for _, l := range lines {
		item := itemsByID[l.PriceItemID]
		unitPrice := pricing.DisplayPrice(item)
		if l.Kind == entity.AmountRaw {
			// Valor bruto da planilha: o preço unitário efetivo é 1.
			unitPrice = decimal.NewFromInt(1)
		}
		r := dto.LineItemResponse{
			ID:           l.ID,
			TrackingCode: l.TrackingCode,
			OrderCode:    l.OrderCode,
			PriceItemID:  l.PriceItemID,
			Quantity:     l.Quantity,
			Kind:         string(l.Kind),
			UnitPrice:    unitPrice,
			Subtotal:     pricing.LineSubtotal(l, item),
			PostalCode:   l.PostalCode,
			StateCode:    l.StateCode,
		}
		if !l.Date.IsZero() {
			r.Date = l.Date.Format("2006-01-02")
		}
		if item != nil {
			r.Description = item.Description
			r.Category = string(item.Category)
		}
		out = append(out, r)
	}
	return out
}
