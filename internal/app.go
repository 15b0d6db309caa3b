package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	metrics_adapter "github.com/jsamit27/ava/internal/adapters/metrics"
	"github.com/jsamit27/ava/internal/adapters/rest"
	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/core/port"
)

const shutdownTimeout = 15 * time.Second

// App веб-сервис ассистента
type App struct {
	config    *configs.AppConfig
	assistant *assistant
	apiServer *rest.Server
	loggers   *loggers
	logger    port.LoggerPort
}

// NewApp точка сборки всех зависимостей веб-сервиса
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	if err := appConfig.RequireDatabase(); err != nil {
		return nil, err
	}
	if err := appConfig.RequireSessionSecret(); err != nil {
		return nil, err
	}

	lg, err := initLoggers(appConfig, "server")
	if err != nil {
		return nil, err
	}
	appLogger := lg.base.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": lg.active, "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	metrics := metrics_adapter.NewPrometheusMetrics()

	core, err := newAssistant(context.Background(), appConfig, lg.base, assistantOptions{
		logsLimit: 10,
		metrics:   metrics,
	})
	if err != nil {
		lg.close()
		return nil, err
	}

	sessionHandlers := rest.NewSessionHandler(core.initSession, core.chatTurn, core.getLogs, core.tokens)
	apiServer := rest.NewServer(appConfig.Rest.PORT, appConfig.Rest.AllowedOrigins, sessionHandlers, metrics, lg.base)
	appLogger.Info("REST API server configured.", nil)

	return &App{
		config:    appConfig,
		assistant: core,
		apiServer: apiServer,
		loggers:   lg,
		logger:    appLogger,
	}, nil
}

// Run запускает HTTP сервер и ждет сигнала завершения
func (a *App) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.assistant.close(a.logger)
		a.logger.Info("Application shut down gracefully.", nil)
		a.loggers.close()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", port.Fields{"port": a.config.Rest.PORT})
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		return err
	}
}
