package email

import (
	"github.com/dropDatabas3/portero/internal/observability/logger"
	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

// Send envía multipart/alternative (txt + html).
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	if err := d.DialAndSend(m); err != nil {
		logger.Named("smtp").Error("send failed",
			zap.String("host", s.Host), zap.String("to", to), zap.Error(err))
		return err
	}
	return nil
}

// LogSender es el sender de dev: loguea en vez de enviar.
// Útil cuando no hay SMTP configurado; el link de reset sale por el log.
type LogSender struct{}

func (LogSender) Send(to, subject, _ string, textBody string) error {
	logger.Named("email").Info("email (log sender)",
		zap.String("to", to), zap.String("subject", subject), zap.String("body", textBody))
	return nil
}
