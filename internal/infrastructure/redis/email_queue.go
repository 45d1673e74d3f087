package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
)

var _ billing.EmailQueue = (*EmailQueue)(nil)

// QueueEmail lista Redis consumida pelo pool de workers via BRPOP.
const QueueEmail = "jobs:email_cobranca"

// EmailQueue enfileira envios de cobrança em uma lista Redis.
type EmailQueue struct {
	rdb *goredis.Client
}

// NewEmailQueue constrói a fila.
func NewEmailQueue(rdb *goredis.Client) *EmailQueue {
	return &EmailQueue{rdb: rdb}
}

// EnqueueInvoiceEmail empurra o job para a fila.
func (q *EmailQueue) EnqueueInvoiceEmail(ctx context.Context, job billing.InvoiceEmailJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, QueueEmail, data).Err()
}
