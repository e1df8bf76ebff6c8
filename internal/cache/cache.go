package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет или он истек
var ErrCacheMiss = errors.New("cache: key not found")

// Store - key/value хранилище с TTL (OTP коды, rate limit, кэш статистики)
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX записывает ключ, только если его нет. true - ключ записан.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr увеличивает счетчик, сохраняя TTL ключа
	Incr(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON читает и декодирует значение
func GetJSON(ctx context.Context, s Store, key string, dst interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

// SetJSON кодирует и сохраняет значение
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(data), ttl)
}
