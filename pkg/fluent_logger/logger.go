package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config хранит параметры подключения к Fluent Bit.
type Config struct {
	Host      string // "127.0.0.1" или имя контейнера
	Port      int    // обычно 24224
	TagPrefix string // общий префикс тегов сервиса
	Async     bool
}

// NewClient создает клиент Fluent Bit.
// Соединение проверяется только при первой отправке записи.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("fluentd host is required")
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost:   cfg.Host,
		FluentPort:   cfg.Port,
		TagPrefix:    cfg.TagPrefix,
		Async:        cfg.Async,
		Timeout:      3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}

	return logger, nil
}
