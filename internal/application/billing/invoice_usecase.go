package billing

import (
	"context"
	"fmt"

	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// InvoiceUseCase consulta, status, exportação CSV e despacho por e-mail de
// cobranças já geradas.
type InvoiceUseCase struct {
	invoiceRepo   repository.InvoiceRepository
	clientRepo    repository.ClientRepository
	priceItemRepo repository.PriceItemRepository
	emailQueue    EmailQueue
	log           *logger.Logger
}

// NewInvoiceUseCase constrói o caso de uso. emailQueue pode ser nil (envio
// desabilitado).
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	priceItemRepo repository.PriceItemRepository,
	emailQueue EmailQueue,
	log *logger.Logger,
) *InvoiceUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceUseCase{
		invoiceRepo:   invoiceRepo,
		clientRepo:    clientRepo,
		priceItemRepo: priceItemRepo,
		emailQueue:    emailQueue,
		log:           log.Component("invoice"),
	}
}

// Get busca uma cobrança com suas linhas.
func (uc *InvoiceUseCase) Get(id string) (*dto.InvoiceResponse, error) {
	inv, lines, itemsByID, client, err := uc.load(id)
	if err != nil {
		return nil, err
	}
	clientName := ""
	if client != nil {
		clientName = client.Name
	}
	resp := toInvoiceResponse(inv, clientName)
	resp.Lines = linesToDTO(lines, itemsByID)
	return resp, nil
}

// List lista cobranças, opcionalmente restritas a um cliente.
func (uc *InvoiceUseCase) List(clientID string, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var list []*entity.Invoice
	var err error
	if clientID != "" {
		list, err = uc.invoiceRepo.ListByClient(clientID, limit, offset)
	} else {
		list, err = uc.invoiceRepo.List(limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv, ""))
	}
	return out, nil
}

// UpdateStatus troca o status administrativo da cobrança.
func (uc *InvoiceUseCase) UpdateStatus(id string, in dto.UpdateInvoiceStatusRequest) error {
	if !entity.ValidInvoiceStatus(in.Status) {
		return domain.ErrInvalidInput
	}
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	return uc.invoiceRepo.UpdateStatus(id, in.Status)
}

// Delete remove uma cobrança e suas linhas.
func (uc *InvoiceUseCase) Delete(id string) error {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	return uc.invoiceRepo.Delete(id)
}

// ExportCSV exporta as linhas da cobrança como CSV (mesmo dialeto tolerado na
// entrada: tudo citado, ponto e vírgula).
func (uc *InvoiceUseCase) ExportCSV(id string) ([]byte, string, error) {
	inv, lines, itemsByID, _, err := uc.load(id)
	if err != nil {
		return nil, "", err
	}

	table := &report.Table{
		Columns: []string{
			"Data", "Pedido", "Rastreio", "Descrição", "Categoria",
			"Quantidade", "Preço Unitário", "Subtotal", "CEP", "UF",
		},
		Delimiter: ';',
	}
	for _, l := range lines {
		item := itemsByID[l.PriceItemID]
		desc, cat := "", ""
		if item != nil {
			desc = item.Description
			cat = string(item.Category)
		}
		unit := pricing.DisplayPrice(item)
		if l.Kind == entity.AmountRaw {
			unit = entity.TemplatePrice
		}
		date := ""
		if !l.Date.IsZero() {
			date = l.Date.Format("02/01/2006")
		}
		table.Rows = append(table.Rows, report.Row{
			"Data":           date,
			"Pedido":         l.OrderCode,
			"Rastreio":       l.TrackingCode,
			"Descrição":      desc,
			"Categoria":      cat,
			"Quantidade":     l.Quantity.String(),
			"Preço Unitário": unit.StringFixed(2),
			"Subtotal":       pricing.LineSubtotal(l, item).StringFixed(2),
			"CEP":            l.PostalCode,
			"UF":             l.StateCode,
		})
	}

	filename := fmt.Sprintf("cobranca_%s.csv", sanitizeFilename(inv.ReferenceMonth))
	return []byte(report.Stringify(table)), filename, nil
}

// SendByEmail enfileira o envio da cobrança para o e-mail de faturamento do
// cliente. O worker monta o PDF e despacha fora do ciclo da requisição.
func (uc *InvoiceUseCase) SendByEmail(ctx context.Context, id string) error {
	if uc.emailQueue == nil {
		return domain.ErrConflict
	}
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	client, err := uc.clientRepo.GetByID(inv.ClientID)
	if err != nil {
		return err
	}
	if client == nil || client.BillingEmail == "" {
		return fmt.Errorf("%w: cliente sem e-mail de faturamento", domain.ErrInvalidInput)
	}
	job := InvoiceEmailJob{
		InvoiceID: inv.ID,
		To:        client.BillingEmail,
		Subject:   fmt.Sprintf("Fatura %s - %s", inv.ReferenceMonth, client.Name),
	}
	if err := uc.emailQueue.EnqueueInvoiceEmail(ctx, job); err != nil {
		return fmt.Errorf("enfileirar e-mail: %w", err)
	}
	uc.log.Info().Str("cobranca", inv.ID).Str("para", client.BillingEmail).Msg("envio de cobrança enfileirado")
	return nil
}

// load carrega cobrança, linhas, itens referenciados e cliente.
func (uc *InvoiceUseCase) load(id string) (*entity.Invoice, []*entity.LineItem, map[string]*entity.PriceItem, *entity.Client, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if inv == nil {
		return nil, nil, nil, nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLineItems(id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	itemsByID := make(map[string]*entity.PriceItem)
	for _, l := range lines {
		if l.PriceItemID == "" {
			continue
		}
		if _, ok := itemsByID[l.PriceItemID]; ok {
			continue
		}
		item, err := uc.priceItemRepo.GetByID(l.PriceItemID)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if item != nil {
			itemsByID[l.PriceItemID] = item
		}
	}
	client, _ := uc.clientRepo.GetByID(inv.ClientID)
	return inv, lines, itemsByID, client, nil
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
