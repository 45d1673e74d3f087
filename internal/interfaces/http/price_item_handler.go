package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
)

// PriceItemHandler atende a manutenção da tabela de preços.
type PriceItemHandler struct {
	uc *billing.PriceTableUseCase
}

// NewPriceItemHandler constrói o handler.
func NewPriceItemHandler(uc *billing.PriceTableUseCase) *PriceItemHandler {
	return &PriceItemHandler{uc: uc}
}

// Create cria um item de preço.
// POST /api/price-items
func (h *PriceItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePriceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	item, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// List devolve a tabela de um cliente (query client_id vazia = global).
// GET /api/price-items?client_id=...
func (h *PriceItemHandler) List(c *fiber.Ctx) error {
	items, err := h.uc.List(c.Query("client_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// GetByID busca um item.
// GET /api/price-items/:id
func (h *PriceItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// Update edita um item mantendo custo/margem/preço coerentes.
// PUT /api/price-items/:id
func (h *PriceItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePriceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	item, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// Delete remove um item.
// DELETE /api/price-items/:id
func (h *PriceItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BulkMargin aplica margem em massa por categoria ou sobre templates.
// POST /api/price-items/bulk-margin
func (h *PriceItemHandler) BulkMargin(c *fiber.Ctx) error {
	var in dto.BulkMarginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	updated, err := h.uc.BulkMargin(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}
