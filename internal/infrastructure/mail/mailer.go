// Package mail envio de e-mail via SMTP com anexo de PDF.
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/gmartins-dev/portal-faturamento/pkg/config"
)

// Mailer encapsula a configuração SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

// NewMailer constrói o mailer a partir da configuração.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{
		host:     cfg.Host,
		user:     cfg.User,
		password: cfg.Password,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// SendInvoice envia a cobrança em PDF anexo.
func (m *Mailer) SendInvoice(to, subject, body string, pdf []byte, filename string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if len(pdf) > 0 {
		if _, err := e.Attach(bytes.NewReader(pdf), filename, "application/pdf"); err != nil {
			return fmt.Errorf("mailer: anexar PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
