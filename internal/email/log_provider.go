package email

import (
	"context"
	"sync"

	"placement_backend/internal/logger"
)

// LogProvider ничего не отправляет, только пишет в лог и запоминает письма.
// Для локальной разработки и тестов.
type LogProvider struct {
	mu   sync.Mutex
	sent []Email
}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Name() string { return "mock" }

func (p *LogProvider) Send(ctx context.Context, e *Email) error {
	if err := validateEmail(e); err != nil {
		return err
	}

	p.mu.Lock()
	p.sent = append(p.sent, *e)
	p.mu.Unlock()

	logger.CtxInfo(ctx, "email (mock) sent", "to", e.To, "subject", e.Subject)
	return nil
}

// Sent возвращает копию отправленных писем
func (p *LogProvider) Sent() []Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Email, len(p.sent))
	copy(out, p.sent)
	return out
}

func (p *LogProvider) Close() error { return nil }
