package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

var _ repository.PriceItemRepository = (*PriceItemRepo)(nil)

// PriceItemRepo implementação de PriceItemRepository (usável com pool ou tx).
// client_id NULL no banco representa a tabela global; no domínio, string vazia.
type PriceItemRepo struct {
	q Querier
}

// NewPriceItemRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewPriceItemRepository(q Querier) *PriceItemRepo {
	return &PriceItemRepo{q: q}
}

const priceItemColumns = `id, COALESCE(client_id, ''), category, subcategory, description,
	unit_metric, unit_cost, margin_percent, sale_price, created_at, updated_at`

// Create persiste um novo item da tabela de preços.
func (r *PriceItemRepo) Create(item *entity.PriceItem) error {
	query := `
		INSERT INTO price_items
			(id, client_id, category, subcategory, description, unit_metric,
			 unit_cost, margin_percent, sale_price, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ClientID, string(item.Category), item.Subcategory, item.Description,
		item.UnitMetric, item.UnitCost, item.MarginPercent, item.SalePrice,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price item: %w", err)
	}
	return nil
}

// GetByID busca um item por ID.
func (r *PriceItemRepo) GetByID(id string) (*entity.PriceItem, error) {
	query := `SELECT ` + priceItemColumns + ` FROM price_items WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	item, err := scanPriceItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get price item: %w", err)
	}
	return item, nil
}

// ListByClient devolve a tabela do cliente (vazio = global), em ordem estável
// de criação para que o casamento de colunas seja determinístico.
func (r *PriceItemRepo) ListByClient(clientID string) ([]*entity.PriceItem, error) {
	query := `
		SELECT ` + priceItemColumns + `
		FROM price_items
		WHERE COALESCE(client_id, '') = $1
		ORDER BY created_at, id`
	return r.list(query, clientID)
}

// ListByClientAndCategory filtra por categoria (comparação exata no banco; a
// normalização de acentos fica no domínio, categorias são gravadas canônicas).
func (r *PriceItemRepo) ListByClientAndCategory(clientID string, category entity.Category) ([]*entity.PriceItem, error) {
	query := `
		SELECT ` + priceItemColumns + `
		FROM price_items
		WHERE COALESCE(client_id, '') = $1 AND category = $2
		ORDER BY created_at, id`
	return r.list(query, clientID, string(category))
}

// ListTemplates devolve os itens com preço sentinela 1.
func (r *PriceItemRepo) ListTemplates(clientID string) ([]*entity.PriceItem, error) {
	query := `
		SELECT ` + priceItemColumns + `
		FROM price_items
		WHERE COALESCE(client_id, '') = $1 AND sale_price = 1
		ORDER BY created_at, id`
	return r.list(query, clientID)
}

// Update atualiza um item.
func (r *PriceItemRepo) Update(item *entity.PriceItem) error {
	query := `
		UPDATE price_items
		SET category = $2, subcategory = $3, description = $4, unit_metric = $5,
		    unit_cost = $6, margin_percent = $7, sale_price = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, string(item.Category), item.Subcategory, item.Description, item.UnitMetric,
		item.UnitCost, item.MarginPercent, item.SalePrice, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update price item: %w", err)
	}
	return nil
}

// Delete remove um item por ID.
func (r *PriceItemRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM price_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete price item: %w", err)
	}
	return nil
}

func (r *PriceItemRepo) list(query string, args ...any) ([]*entity.PriceItem, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list price items: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceItem
	for rows.Next() {
		item, err := scanPriceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func scanPriceItem(row pgx.Row) (*entity.PriceItem, error) {
	var p entity.PriceItem
	var category string
	err := row.Scan(&p.ID, &p.ClientID, &category, &p.Subcategory, &p.Description,
		&p.UnitMetric, &p.UnitCost, &p.MarginPercent, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = entity.ParseCategory(category)
	return &p, nil
}
