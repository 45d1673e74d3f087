package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constrói o runner com o pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia uma transação, executa fn com os repositórios atados à tx
// e faz Commit ou Rollback.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	clientRepo repository.ClientRepository,
	priceItemRepo repository.PriceItemRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	clientRepo := NewClientRepository(tx)
	priceItemRepo := NewPriceItemRepository(tx)
	invoiceRepo := NewInvoiceRepository(tx)

	if err := fn(clientRepo, priceItemRepo, invoiceRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
