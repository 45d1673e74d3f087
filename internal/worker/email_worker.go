package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gmartins-dev/portal-faturamento/internal/application/billing"
	"github.com/gmartins-dev/portal-faturamento/internal/infrastructure/mail"
	"github.com/gmartins-dev/portal-faturamento/pkg/logger"
)

// EmailWorker processa jobs da fila de e-mail: gera o PDF da cobrança e envia
// ao e-mail de faturamento do cliente.
type EmailWorker struct {
	pdfUC  *billing.PDFUseCase
	mailer *mail.Mailer
	log    *logger.Logger
}

// NewEmailWorker constrói o worker.
func NewEmailWorker(pdfUC *billing.PDFUseCase, mailer *mail.Mailer, log *logger.Logger) *EmailWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &EmailWorker{pdfUC: pdfUC, mailer: mailer, log: log.Component("email_worker")}
}

// Process decodifica o job, gera o PDF e despacha o e-mail. Falhas são
// logadas e o job descartado; o administrador pode reenfileirar pela API.
func (w *EmailWorker) Process(ctx context.Context, raw []byte) {
	var job billing.InvoiceEmailJob
	if err := json.Unmarshal(raw, &job); err != nil {
		w.log.Error().Err(err).Msg("payload inválido na fila de e-mail")
		return
	}
	if job.To == "" || job.InvoiceID == "" {
		w.log.Warn().Str("cobranca", job.InvoiceID).Msg("job de e-mail incompleto; ignorado")
		return
	}

	pdf, filename, err := w.pdfUC.DownloadInvoicePDF(ctx, job.InvoiceID)
	if err != nil {
		w.log.Error().Err(err).Str("cobranca", job.InvoiceID).Msg("falha ao gerar PDF para envio")
		return
	}

	body := fmt.Sprintf("Segue em anexo a fatura de serviços logísticos.\n\nReferência: %s", job.Subject)
	if err := w.mailer.SendInvoice(job.To, job.Subject, body, pdf, filename); err != nil {
		w.log.Error().Err(err).Str("para", job.To).Msg("falha no envio do e-mail")
		return
	}
	w.log.Info().Str("cobranca", job.InvoiceID).Str("para", job.To).Msg("cobrança enviada por e-mail")
}
