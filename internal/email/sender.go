package email

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPConfig содержит конфигурацию SMTP сервера
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// GomailSender реализует Provider поверх gomail
type GomailSender struct {
	cfg      *SMTPConfig
	renderer *TemplateManager
}

// NewGomailSender создает новый SMTP провайдер
func NewGomailSender(cfg *SMTPConfig, renderer *TemplateManager) *GomailSender {
	return &GomailSender{cfg: cfg, renderer: renderer}
}

// Send отправляет email сообщение
func (s *GomailSender) Send(email *Email) error {
	if s.cfg.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromEmail, s.cfg.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			m.AddAlternative("text/plain", email.Body)
		}
	} else {
		m.SetBody("text/plain", email.Body)
	}

	for _, att := range email.Attachments {
		content := att.Content
		m.Attach(att.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {att.ContentType},
			}),
		)
	}

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// SendWithTemplate отправляет email используя шаблон
func (s *GomailSender) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	if s.renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}

	htmlBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	email.HTMLBody = htmlBody
	return s.Send(email)
}
