package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ClientUC   *billing.ClientUseCase
	PriceTable *billing.PriceTableUseCase
	GenerateUC *billing.GenerateInvoiceUseCase
	InvoiceUC  *billing.InvoiceUseCase
	InvoicePDF *billing.PDFUseCase
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Clientes
	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Tabela de preços
	priceItems := api.Group("/price-items")
	priceItemHandler := NewPriceItemHandler(deps.PriceTable)
	priceItems.Post("/", priceItemHandler.Create)
	priceItems.Get("/", priceItemHandler.List)
	priceItems.Post("/bulk-margin", priceItemHandler.BulkMargin)
	priceItems.Get("/:id", priceItemHandler.GetByID)
	priceItems.Put("/:id", priceItemHandler.Update)
	priceItems.Delete("/:id", priceItemHandler.Delete)

	// Cobranças
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.GenerateUC, deps.InvoiceUC, deps.InvoicePDF)
	invoices.Post("/generate", invoiceHandler.Generate)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Get("/:id/csv", invoiceHandler.ExportCSV)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Post("/:id/send", invoiceHandler.SendEmail)
}
