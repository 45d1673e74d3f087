package billing_test

// Dublês em memória das portas de persistência e infraestrutura, para exercitar
// os casos de uso sem PostgreSQL nem Redis.

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── clientes ──────────────────────────────────────────────────────────────────

type fakeClientRepo struct {
	order []string
	byID  map[string]*entity.Client
}

func newFakeClientRepo(clients ...*entity.Client) *fakeClientRepo {
	r := &fakeClientRepo{byID: map[string]*entity.Client{}}
	for _, c := range clients {
		_ = r.Create(c)
	}
	return r
}

func (r *fakeClientRepo) Create(c *entity.Client) error {
	r.order = append(r.order, c.ID)
	r.byID[c.ID] = c
	return nil
}

func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.byID[id], nil
}

func (r *fakeClientRepo) GetByTaxID(taxID string) (*entity.Client, error) {
	for _, id := range r.order {
		if c := r.byID[id]; c != nil && c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, id := range r.order {
		if c := r.byID[id]; c != nil {
			out = append(out, c)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeClientRepo) Update(c *entity.Client) error {
	if r.byID[c.ID] == nil {
		return errors.New("cliente inexistente")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *fakeClientRepo) UpdateStock(id string, units int64) error {
	c := r.byID[id]
	if c == nil {
		return errors.New("cliente inexistente")
	}
	c.UnitsInStock = units
	return nil
}

func (r *fakeClientRepo) Delete(id string) error {
	delete(r.byID, id)
	return nil
}

// ── tabela de preços ──────────────────────────────────────────────────────────

type fakePriceItemRepo struct {
	items     []*entity.PriceItem
	updateErr error // injetado para simular falha no meio de uma escrita
}

func newFakePriceItemRepo(items ...*entity.PriceItem) *fakePriceItemRepo {
	return &fakePriceItemRepo{items: items}
}

func (r *fakePriceItemRepo) Create(item *entity.PriceItem) error {
	r.items = append(r.items, item)
	return nil
}

func (r *fakePriceItemRepo) GetByID(id string) (*entity.PriceItem, error) {
	for _, p := range r.items {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePriceItemRepo) ListByClient(clientID string) ([]*entity.PriceItem, error) {
	var out []*entity.PriceItem
	for _, p := range r.items {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePriceItemRepo) ListByClientAndCategory(clientID string, category entity.Category) ([]*entity.PriceItem, error) {
	var out []*entity.PriceItem
	for _, p := range r.items {
		if p.ClientID == clientID && p.Category.Is(category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePriceItemRepo) ListTemplates(clientID string) ([]*entity.PriceItem, error) {
	var out []*entity.PriceItem
	for _, p := range r.items {
		if p.ClientID == clientID && p.SalePrice.Equal(entity.TemplatePrice) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePriceItemRepo) Update(item *entity.PriceItem) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	for i, p := range r.items {
		if p.ID == item.ID {
			r.items[i] = item
			return nil
		}
	}
	return errors.New("item inexistente")
}

func (r *fakePriceItemRepo) Delete(id string) error {
	for i, p := range r.items {
		if p.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// ── cobranças ─────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices   map[string]*entity.Invoice
	lines      map[string][]*entity.LineItem
	additional map[string][]*entity.AdditionalCost
	lineErr    error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:   map[string]*entity.Invoice{},
		lines:      map[string][]*entity.LineItem{},
		additional: map[string][]*entity.AdditionalCost{},
	}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) CreateLineItem(line *entity.LineItem) error {
	if r.lineErr != nil {
		return r.lineErr
	}
	r.lines[line.InvoiceID] = append(r.lines[line.InvoiceID], line)
	return nil
}

func (r *fakeInvoiceRepo) CreateAdditionalCost(cost *entity.AdditionalCost) error {
	r.additional[cost.InvoiceID] = append(r.additional[cost.InvoiceID], cost)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) ListByClient(clientID string, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) GetLineItems(invoiceID string) ([]*entity.LineItem, error) {
	return r.lines[invoiceID], nil
}

func (r *fakeInvoiceRepo) GetAdditionalCosts(invoiceID string) ([]*entity.AdditionalCost, error) {
	return r.additional[invoiceID], nil
}

func (r *fakeInvoiceRepo) UpdateStatus(id, status string) error {
	inv := r.invoices[id]
	if inv == nil {
		return errors.New("cobrança inexistente")
	}
	inv.Status = status
	return nil
}

func (r *fakeInvoiceRepo) Delete(id string) error {
	delete(r.invoices, id)
	delete(r.lines, id)
	delete(r.additional, id)
	return nil
}

// ── transação ─────────────────────────────────────────────────────────────────

type fakeTxRunner struct {
	clients  *fakeClientRepo
	items    *fakePriceItemRepo
	invoices *fakeInvoiceRepo
}

func (tx *fakeTxRunner) RunBilling(_ context.Context, fn func(
	repository.ClientRepository,
	repository.PriceItemRepository,
	repository.InvoiceRepository,
) error) error {
	return fn(tx.clients, tx.items, tx.invoices)
}

// ── cache ─────────────────────────────────────────────────────────────────────

type fakePriceTableCache struct {
	store        map[string][]*entity.PriceItem
	hits, misses int
	invalidated  int
}

func newFakePriceTableCache() *fakePriceTableCache {
	return &fakePriceTableCache{store: map[string][]*entity.PriceItem{}}
}

func (c *fakePriceTableCache) Get(_ context.Context, clientID string) ([]*entity.PriceItem, error) {
	items, ok := c.store[clientID]
	if !ok {
		c.misses++
		return nil, nil
	}
	c.hits++
	return items, nil
}

func (c *fakePriceTableCache) Set(_ context.Context, clientID string, items []*entity.PriceItem) error {
	c.store[clientID] = items
	return nil
}

func (c *fakePriceTableCache) Invalidate(_ context.Context, clientID string) error {
	c.invalidated++
	delete(c.store, clientID)
	delete(c.store, "")
	return nil
}

// ── fila de e-mail ────────────────────────────────────────────────────────────

type fakeEmailQueue struct {
	jobs []billing.InvoiceEmailJob
	err  error
}

func (q *fakeEmailQueue) EnqueueInvoiceEmail(_ context.Context, job billing.InvoiceEmailJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}
