package infra

import (
	"fmt"
	"net/smtp"

	"github.com/mauropillox/chorilocal-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for outgoing alert mail.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendAlertaStock notifies the back office that a product fell to or below
// its reorder threshold.
func (m *Mailer) SendAlertaStock(to, producto, stock, stockMinimo string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Stock bajo: %s", producto)
	e.Text = []byte(fmt.Sprintf(
		"El producto %q quedo con stock %s (minimo %s). Reponer cuanto antes.",
		producto, stock, stockMinimo))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
