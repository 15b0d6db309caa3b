package internal

import (
	"fmt"
	"log"
	"log/slog"
	"strings"

	logger_adapter "github.com/jsamit27/ava/internal/adapters/logger"
	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/core/port"
	fluentlogger "github.com/jsamit27/ava/pkg/fluent_logger"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// loggers результат инициализации логирования процесса
type loggers struct {
	base         port.LoggerPort
	fluentClient *fluent.Fluent
	active       int
}

// initLoggers stdout через slog+tint и, если включен, Fluent Bit
func initLoggers(cfg *configs.AppConfig, component string) (*loggers, error) {
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(cfg.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if cfg.FluentBit.Enabled {
		var err error
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		if fluentClient != nil {
			fluentClient.Close()
		}
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	return &loggers{
		base: multiLogger.WithFields(port.Fields{
			"service_name": cfg.AppName,
			"process":      component,
		}),
		fluentClient: fluentClient,
		active:       len(activeLoggers),
	}, nil
}

func (l *loggers) close() {
	if l.fluentClient != nil {
		if err := l.fluentClient.Close(); err != nil {
			// fluent уже может быть недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
