package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
)

var _ billing.PriceTableCache = (*PriceTableCache)(nil)

const priceTableKeyPrefix = "tabela_precos:"

// PriceTableCache cache da tabela de preços resolvida por cliente, serializada
// em JSON com TTL. Miss devolve (nil, nil); o caso de uso cai para o banco.
type PriceTableCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewPriceTableCache constrói o cache.
func NewPriceTableCache(rdb *goredis.Client, ttl time.Duration) *PriceTableCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PriceTableCache{rdb: rdb, ttl: ttl}
}

func priceTableKey(clientID string) string {
	if clientID == "" {
		return priceTableKeyPrefix + "global"
	}
	return priceTableKeyPrefix + clientID
}

// Get devolve a tabela cacheada ou (nil, nil) em miss.
func (c *PriceTableCache) Get(ctx context.Context, clientID string) ([]*entity.PriceItem, error) {
	raw, err := c.rdb.Get(ctx, priceTableKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var items []*entity.PriceItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// Entrada corrompida: descarta e trata como miss.
		_ = c.rdb.Del(ctx, priceTableKey(clientID)).Err()
		return nil, nil
	}
	return items, nil
}

// Set grava a tabela com TTL.
func (c *PriceTableCache) Set(ctx context.Context, clientID string, items []*entity.PriceItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, priceTableKey(clientID), raw, c.ttl).Err()
}

// Invalidate remove a entrada do cliente e a global (edições na tabela global
// afetam clientes resolvidos por fallback).
func (c *PriceTableCache) Invalidate(ctx context.Context, clientID string) error {
	keys := []string{priceTableKey(clientID)}
	if clientID != "" {
		keys = append(keys, priceTableKey(""))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
