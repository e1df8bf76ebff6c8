package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
)

var (
	ErrNoRecipients = errors.New("email has no recipients")
	ErrEmptyBody    = errors.New("email has no body")
)

// Provider - транспорт отправки писем
type Provider interface {
	Send(ctx context.Context, email *Email) error
	// Name - имя провайдера для логов
	Name() string
	Close() error
}

// NewProvider создает провайдер по конфигурации
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPProvider(cfg)
	case "ses":
		return NewSESProvider(ctx, cfg)
	case "mock", "":
		return NewLogProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Provider)
	}
}

// validateEmail - общие проверки письма перед отправкой
func validateEmail(e *Email) error {
	if len(e.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range e.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
	}
	if e.Body == "" && e.HTMLBody == "" {
		return ErrEmptyBody
	}
	return nil
}

func formatFrom(name, address string) string {
	if name == "" {
		return address
	}
	return (&mail.Address{Name: name, Address: address}).String()
}
