package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPProvider отправляет письма через gomail
type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
	// send подменяется в тестах
	send func(m *gomail.Message) error
}

func NewSMTPProvider(cfg Config) (*SMTPProvider, error) {
	if cfg.SMTPHost == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("from email is required")
	}

	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	// 465 - implicit TLS, остальные порты - STARTTLS (gomail делает это сам)
	d.SSL = cfg.UseTLS && cfg.SMTPPort == 465
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	}

	p := &SMTPProvider{
		dialer: d,
		from:   formatFrom(cfg.FromName, cfg.FromEmail),
	}
	p.send = func(m *gomail.Message) error { return d.DialAndSend(m) }
	return p, nil
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Send(ctx context.Context, e *Email) error {
	if err := validateEmail(e); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.send(p.buildMessage(e)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (p *SMTPProvider) buildMessage(e *Email) *gomail.Message {
	m := gomail.NewMessage()

	from := e.From
	if from == "" {
		from = p.from
	}
	m.SetHeader("From", from)
	m.SetHeader("To", e.To...)
	m.SetHeader("Subject", e.Subject)
	if e.ReplyTo != "" {
		m.SetHeader("Reply-To", e.ReplyTo)
	}

	switch {
	case e.HTMLBody != "" && e.Body != "":
		m.SetBody("text/plain", e.Body)
		m.AddAlternative("text/html", e.HTMLBody)
	case e.HTMLBody != "":
		m.SetBody("text/html", e.HTMLBody)
	default:
		m.SetBody("text/plain", e.Body)
	}

	for _, a := range e.Attachments {
		content := a.Content
		m.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return m
}

func (p *SMTPProvider) Close() error { return nil }
