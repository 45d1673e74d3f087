// Package redis adaptadores sobre go-redis: cache da tabela de preços e fila
// de envio de cobranças.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// NewClient cria e valida a conexão go-redis a partir da URL.
func NewClient(redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := goredis.NewClient(opts)

	// Valida a conectividade na subida
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
