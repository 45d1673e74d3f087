package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementação de InvoiceRepository (usável com pool ou tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, client_id, reference_month, due_date, status,
	total_shipping, total_storage, total_logistics, total_additional,
	total_extra, total_cost, grand_total, created_at, updated_at`

// Create persiste a cobrança.
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		inv.ID, inv.ClientID, inv.ReferenceMonth, inv.DueDate, inv.Status,
		inv.TotalShipping, inv.TotalStorage, inv.TotalLogistics, inv.TotalAdditional,
		inv.TotalExtra, inv.TotalCost, inv.GrandTotal, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLineItem persiste uma linha da cobrança.
func (r *InvoiceRepo) CreateLineItem(line *entity.LineItem) error {
	query := `
		INSERT INTO invoice_line_items
			(id, invoice_id, date, tracking_code, order_code, price_item_id,
			 quantity, kind, postal_code, state_code)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.Date, line.TrackingCode, line.OrderCode,
		line.PriceItemID, line.Quantity, string(line.Kind), line.PostalCode, line.StateCode,
	)
	if err != nil {
		return fmt.Errorf("insert line item: %w", err)
	}
	return nil
}

// CreateAdditionalCost persiste um custo adicional manual.
func (r *InvoiceRepo) CreateAdditionalCost(cost *entity.AdditionalCost) error {
	query := `
		INSERT INTO invoice_additional_costs (id, invoice_id, description, value, category)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		cost.ID, cost.InvoiceID, cost.Description, cost.Value, cost.Category,
	)
	if err != nil {
		return fmt.Errorf("insert additional cost: %w", err)
	}
	return nil
}

// GetByID busca uma cobrança por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.ClientID, &inv.ReferenceMonth, &inv.DueDate, &inv.Status,
		&inv.TotalShipping, &inv.TotalStorage, &inv.TotalLogistics, &inv.TotalAdditional,
		&inv.TotalExtra, &inv.TotalCost, &inv.GrandTotal, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// List lista cobranças, mais recentes primeiro.
func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.listInvoices(query, limit, offset)
}

// ListByClient lista cobranças de um cliente, mais recentes primeiro.
func (r *InvoiceRepo) ListByClient(clientID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.listInvoices(query, clientID, limit, offset)
}

// GetLineItems devolve as linhas da cobrança na ordem de inserção.
func (r *InvoiceRepo) GetLineItems(invoiceID string) ([]*entity.LineItem, error) {
	query := `
		SELECT id, invoice_id, date, tracking_code, order_code,
		       COALESCE(price_item_id, ''), quantity, kind, postal_code, state_code
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY date, order_code, id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()
	var list []*entity.LineItem
	for rows.Next() {
		var l entity.LineItem
		var kind string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.Date, &l.TrackingCode, &l.OrderCode,
			&l.PriceItemID, &l.Quantity, &kind, &l.PostalCode, &l.StateCode); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		l.Kind = entity.AmountKind(kind)
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetAdditionalCosts devolve os custos adicionais da cobrança.
func (r *InvoiceRepo) GetAdditionalCosts(invoiceID string) ([]*entity.AdditionalCost, error) {
	query := `
		SELECT id, invoice_id, description, value, category
		FROM invoice_additional_costs
		WHERE invoice_id = $1
		ORDER BY description, id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list additional costs: %w", err)
	}
	defer rows.Close()
	var list []*entity.AdditionalCost
	for rows.Next() {
		var c entity.AdditionalCost
		if err := rows.Scan(&c.ID, &c.InvoiceID, &c.Description, &c.Value, &c.Category); err != nil {
			return nil, fmt.Errorf("scan additional cost: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// UpdateStatus troca o status administrativo da cobrança.
func (r *InvoiceRepo) UpdateStatus(id, status string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}

// Delete remove a cobrança; linhas e custos adicionais caem por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) listInvoices(query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(
			&inv.ID, &inv.ClientID, &inv.ReferenceMonth, &inv.DueDate, &inv.Status,
			&inv.TotalShipping, &inv.TotalStorage, &inv.TotalLogistics, &inv.TotalAdditional,
			&inv.TotalExtra, &inv.TotalCost, &inv.GrandTotal, &inv.CreatedAt, &inv.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}
