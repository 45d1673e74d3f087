// Package worker pool de workers assíncronos: consome a fila de envio de
// cobranças via BRPOP.
package worker

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisinfra "github.com/gmartins-dev/portal-faturamento/internal/infrastructure/redis"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// Pool consome a fila de e-mail com N goroutines. Cada uma bloqueia em BRPOP,
// zero CPU em repouso.
type Pool struct {
	rdb     *goredis.Client
	email   *EmailWorker
	workers int
	log     *logger.Logger
}

// NewPool constrói o pool.
func NewPool(rdb *goredis.Client, email *EmailWorker, workers int, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{rdb: rdb, email: email, workers: workers, log: log.Component("worker")}
}

// Start dispara as goroutines; elas encerram quando ctx é cancelado.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.run(ctx, i)
	}
	p.log.Info().Int("workers", p.workers).Msg("pool de workers iniciado")
}

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Int("worker", id).Msg("worker encerrando")
			return
		default:
			// Pop bloqueante: espera até 5s e volta a checar o ctx.
			result, err := p.rdb.BRPop(ctx, 5*time.Second, redisinfra.QueueEmail).Result()
			if err != nil {
				continue // timeout ou contexto cancelado
			}
			if len(result) < 2 {
				continue
			}
			p.email.Process(ctx, []byte(result[1]))
		}
	}
}
