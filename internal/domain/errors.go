package domain

import "errors"

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflito com o estado atual")

	// Precondições fatais da reconciliação: abortam o processamento sem
	// produzir cobrança parcial.
	ErrEmptyPriceTable    = errors.New("tabela de preços vazia ou ausente")
	ErrMissingOrderColumn = errors.New("relatório de rastreio sem coluna de pedido reconhecível")
	ErrMissingDateColumn  = errors.New("relatório de rastreio sem coluna de data reconhecível")
	ErrUnmappedCost       = errors.New("coluna de custo sem item de preço correspondente")
)
