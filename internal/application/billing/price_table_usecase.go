package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/entity"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/pricing"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/repository"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// PriceTableUseCase manutenção da tabela de preços: CRUD, derivação
// custo/margem/preço e margem em massa. Toda escrita invalida o cache da
// tabela do cliente afetado.
type PriceTableUseCase struct {
	repo     repository.PriceItemRepository
	txRunner BillingTxRunner
	cache    PriceTableCache
	log      *logger.Logger
}

// NewPriceTableUseCase constrói o caso de uso. cache pode ser nil (sem cache).
func NewPriceTableUseCase(
	repo repository.PriceItemRepository,
	txRunner BillingTxRunner,
	cache PriceTableCache,
	log *logger.Logger,
) *PriceTableUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &PriceTableUseCase{repo: repo, txRunner: txRunner, cache: cache, log: log.Component("price_table")}
}

// Create cria um item. Vindo margem, o preço é derivado; vindo preço, a margem.
// Vir os dois ao mesmo tempo é ambíguo e rejeitado.
func (uc *PriceTableUseCase) Create(ctx context.Context, in dto.CreatePriceItemRequest) (*dto.PriceItemResponse, error) {
	if in.Description == "" || in.Category == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MarginPercent != nil && in.SalePrice != nil {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.PriceItem{
		ID:          uuid.New().String(),
		ClientID:    in.ClientID,
		Category:    entity.ParseCategory(in.Category),
		Subcategory: in.Subcategory,
		Description: in.Description,
		UnitMetric:  in.UnitMetric,
		UnitCost:    in.UnitCost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch {
	case in.SalePrice != nil:
		item.SalePrice = *in.SalePrice
		pricing.RecalcMargin(item)
	case in.MarginPercent != nil:
		item.MarginPercent = *in.MarginPercent
		item.SalePrice = pricing.ApplyMargin(item.UnitCost, item.MarginPercent)
	default:
		item.SalePrice = item.UnitCost
	}
	if err := uc.repo.Create(item); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, item.ClientID)
	return toPriceItemResponse(item), nil
}

// Get busca um item por ID.
func (uc *PriceTableUseCase) Get(id string) (*dto.PriceItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return toPriceItemResponse(item), nil
}

// List devolve a tabela do cliente (clientID vazio = tabela global).
func (uc *PriceTableUseCase) List(clientID string) ([]*dto.PriceItemResponse, error) {
	items, err := uc.repo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PriceItemResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toPriceItemResponse(p))
	}
	return out, nil
}

// Update edita um item mantendo a tríade custo/margem/preço coerente:
// editar custo ou margem recalcula o preço; editar o preço diretamente
// rederiva a margem. Preço e margem juntos no mesmo corpo é rejeitado.
func (uc *PriceTableUseCase) Update(ctx context.Context, id string, in dto.UpdatePriceItemRequest) (*dto.PriceItemResponse, error) {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if in.MarginPercent != nil && in.SalePrice != nil {
		return nil, domain.ErrInvalidInput
	}

	if in.Category != nil {
		item.Category = entity.ParseCategory(*in.Category)
	}
	if in.Subcategory != nil {
		item.Subcategory = *in.Subcategory
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.UnitMetric != nil {
		item.UnitMetric = *in.UnitMetric
	}

	switch {
	case in.SalePrice != nil:
		if in.UnitCost != nil {
			item.UnitCost = *in.UnitCost
		}
		item.SalePrice = *in.SalePrice
		pricing.RecalcMargin(item)
	case in.MarginPercent != nil:
		if in.UnitCost != nil {
			item.UnitCost = *in.UnitCost
		}
		item.MarginPercent = *in.MarginPercent
		item.SalePrice = pricing.ApplyMargin(item.UnitCost, item.MarginPercent)
	case in.UnitCost != nil:
		item.UnitCost = *in.UnitCost
		pricing.RecalcSalePrice(item)
	}

	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(item); err != nil {
		return nil, err
	}
	uc.invalidate(ctx, item.ClientID)
	return toPriceItemResponse(item), nil
}

// Delete remove um item.
func (uc *PriceTableUseCase) Delete(ctx context.Context, id string) error {
	item, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(id); err != nil {
		return err
	}
	uc.invalidate(ctx, item.ClientID)
	return nil
}

// BulkMargin aplica a mesma margem a todos os itens de uma categoria ou a
// todos os templates, atomicamente: ou todos os itens são atualizados ou
// nenhum.
func (uc *PriceTableUseCase) BulkMargin(ctx context.Context, in dto.BulkMarginRequest) (int, error) {
	if in.Category == "" && !in.ApplyToTemplates {
		return 0, domain.ErrInvalidInput
	}
	var updated int
	err := uc.txRunner.RunBilling(ctx, func(
		_ repository.ClientRepository,
		priceItemRepo repository.PriceItemRepository,
		_ repository.InvoiceRepository,
	) error {
		var items []*entity.PriceItem
		var err error
		if in.ApplyToTemplates {
			items, err = priceItemRepo.ListTemplates(in.ClientID)
		} else {
			items, err = priceItemRepo.ListByClientAndCategory(in.ClientID, entity.ParseCategory(in.Category))
		}
		if err != nil {
			return err
		}
		pricing.ApplyBulkMargin(items, in.MarginPercent)
		now := time.Now()
		for _, item := range items {
			item.UpdatedAt = now
			if err := priceItemRepo.Update(item); err != nil {
				return err
			}
		}
		updated = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}
	uc.invalidate(ctx, in.ClientID)
	uc.log.Info().Int("itens", updated).Str("cliente", in.ClientID).Msg("margem em massa aplicada")
	return updated, nil
}

// ResolveTable devolve a tabela efetiva de um cliente: a específica quando
// existe, senão a global. Passa pelo cache quando configurado.
func (uc *PriceTableUseCase) ResolveTable(ctx context.Context, clientID string) ([]*entity.PriceItem, error) {
	if uc.cache != nil {
		if items, err := uc.cache.Get(ctx, clientID); err == nil && items != nil {
			return items, nil
		}
	}
	items, err := uc.repo.ListByClient(clientID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 && clientID != "" {
		items, err = uc.repo.ListByClient("")
		if err != nil {
			return nil, err
		}
	}
	if uc.cache != nil && len(items) > 0 {
		if err := uc.cache.Set(ctx, clientID, items); err != nil {
			uc.log.Warn().Err(err).Msg("falha ao gravar cache da tabela de preços")
		}
	}
	return items, nil
}

func (uc *PriceTableUseCase) invalidate(ctx context.Context, clientID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, clientID); err != nil {
		uc.log.Warn().Err(err).Str("cliente", clientID).Msg("falha ao invalidar cache da tabela")
	}
}

func toPriceItemResponse(p *entity.PriceItem) *dto.PriceItemResponse {
	return &dto.PriceItemResponse{
		ID:            p.ID,
		ClientID:      p.ClientID,
		Category:      string(p.Category),
		Subcategory:   p.Subcategory,
		Description:   p.Description,
		UnitMetric:    p.UnitMetric,
		UnitCost:      p.UnitCost,
		MarginPercent: p.MarginPercent,
		SalePrice:     p.SalePrice,
		IsTemplate:    p.IsTemplate(),
	}
}
