package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/application/dto"
	"github.com/gmartins-dev/portal-faturamento/internal/domain/report"
)

// InvoiceHandler atende a geração e consulta de cobranças.
type InvoiceHandler struct {
	generateUC *billing.GenerateInvoiceUseCase
	invoiceUC  *billing.InvoiceUseCase
	pdfUC      *billing.PDFUseCase
}

// NewInvoiceHandler constrói o handler.
func NewInvoiceHandler(
	generateUC *billing.GenerateInvoiceUseCase,
	invoiceUC *billing.InvoiceUseCase,
	pdfUC *billing.PDFUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{generateUC: generateUC, invoiceUC: invoiceUC, pdfUC: pdfUC}
}

// Generate gera a cobrança do mês a partir dos relatórios. Aceita JSON com os
// CSVs em texto ou multipart com os arquivos "tracking" e "costs".
// POST /api/invoices/generate
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest

	if form, err := c.MultipartForm(); err == nil && form != nil {
		in.ClientID = c.FormValue("client_id")
		in.ReferenceMonth = c.FormValue("reference_month")
		in.DueDate = c.FormValue("due_date")
		tracking, err := formFileText(c, "tracking")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "arquivo de rastreio ilegível"})
		}
		costs, err := formFileText(c, "costs")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "arquivo de custos ilegível"})
		}
		in.TrackingCSV = tracking
		in.CostsCSV = costs
	} else if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}

	invoice, err := h.generateUC.Generate(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// List lista cobranças, opcionalmente por cliente.
// GET /api/invoices?client_id=...
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	list, err := h.invoiceUC.List(c.Query("client_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID busca a cobrança com suas linhas.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	invoice, err := h.invoiceUC.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}

// UpdateStatus troca o status administrativo.
// PATCH /api/invoices/:id/status
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.invoiceUC.UpdateStatus(c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete remove uma cobrança.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoiceUC.Delete(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportCSV baixa as linhas da cobrança em CSV.
// GET /api/invoices/:id/csv
func (h *InvoiceHandler) ExportCSV(c *fiber.Ctx) error {
	data, filename, err := h.invoiceUC.ExportCSV(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// DownloadPDF baixa a fatura em PDF.
// GET /api/invoices/:id/pdf
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	data, filename, err := h.pdfUC.DownloadInvoicePDF(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// SendEmail enfileira o envio da cobrança por e-mail.
// POST /api/invoices/:id/send
func (h *InvoiceHandler) SendEmail(c *fiber.Ctx) error {
	if err := h.invoiceUC.SendByEmail(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// formFileText lê um arquivo do multipart e decodifica para UTF-8 (uploads em
// Latin-1 são convertidos).
func formFileText(c *fiber.Ctx, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// Campo ausente: tenta o valor textual correspondente.
		return c.FormValue(field + "_csv"), nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return report.Decode(raw), nil
}
