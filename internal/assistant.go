package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamit27/ava/internal/adapters/auctioncsv"
	ava_client "github.com/jsamit27/ava/internal/adapters/ava"
	googlemaps_client "github.com/jsamit27/ava/internal/adapters/googlemaps"
	token_adapter "github.com/jsamit27/ava/internal/adapters/jwt"
	postgres_adapter "github.com/jsamit27/ava/internal/adapters/postgres"
	rabbitmq_adapter "github.com/jsamit27/ava/internal/adapters/rabbitmq"
	ringcentral_client "github.com/jsamit27/ava/internal/adapters/ringcentral"
	session_store "github.com/jsamit27/ava/internal/adapters/session"
	"github.com/jsamit27/ava/internal/configs"
	"github.com/jsamit27/ava/internal/constants"
	"github.com/jsamit27/ava/internal/core/planner"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/jsamit27/ava/internal/core/usecase"
	"github.com/jsamit27/ava/pkg/postgres"
	"github.com/jsamit27/ava/pkg/rabbitmq/rabbitmq_common"
	"github.com/jsamit27/ava/pkg/rabbitmq/rabbitmq_producer"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

// assistant ядро чата, общее для веб-сервиса и консоли
type assistant struct {
	initSession *usecase.InitSessionUseCase
	chatTurn    *usecase.ChatTurnUseCase
	getLogs     *usecase.GetSessionLogsUseCase
	tokens      port.SessionTokenServicePort

	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	eventProducer *rabbitmq_producer.Publisher
	connManager   *rabbitmq_common.ConnectionManager
}

type assistantOptions struct {
	// logsLimit сколько записей журнала отдавать за раз
	logsLimit  int
	metrics    port.MetricsPort
	signingKey string
}

func newAssistant(ctx context.Context, cfg *configs.AppConfig, baseLogger port.LoggerPort, opts assistantOptions) (*assistant, error) {
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	a := &assistant{}

	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL:    cfg.Database.URL,
		MaxConns:       int32(cfg.Database.MaxConns),
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, port.Fields{"target": postgres.SafeTarget(cfg.Database.URL)})
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	appLogger.Info("Successfully connected to PostgreSQL pool!", port.Fields{"target": postgres.SafeTarget(cfg.Database.URL)})

	carRepo, err := postgres_adapter.NewPostgresCarRepository(dbPool)
	if err != nil {
		a.close(appLogger)
		return nil, fmt.Errorf("failed to create car repository: %w", err)
	}
	pickupRepo, err := postgres_adapter.NewPostgresPickupRepository(dbPool)
	if err != nil {
		a.close(appLogger)
		return nil, fmt.Errorf("failed to create pickup repository: %w", err)
	}
	scheduleRepo, err := postgres_adapter.NewPostgresScheduleRepository(dbPool)
	if err != nil {
		a.close(appLogger)
		return nil, fmt.Errorf("failed to create schedule repository: %w", err)
	}
	appLogger.Info("Postgres repositories initialized.", nil)

	var store port.SessionStorePort
	switch cfg.Session.Store {
	case "redis":
		rdb, err := session_store.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			appLogger.Error("Failed to connect to Redis", err, nil)
			a.close(appLogger)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redisClient = rdb
		redisStore, err := session_store.NewRedisStore(rdb, cfg.Session.TTL)
		if err != nil {
			a.close(appLogger)
			return nil, err
		}
		store = redisStore
	default:
		store = session_store.NewMemoryStore()
	}
	appLogger.Info("Session store initialized.", port.Fields{"store": cfg.Session.Store})

	signingKey := opts.signingKey
	if signingKey == "" {
		signingKey = cfg.Session.SecretKey
	}
	tokens, err := token_adapter.NewTokenService(signingKey, cfg.Session.TTL)
	if err != nil {
		a.close(appLogger)
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	a.tokens = tokens

	var publisher port.EventPublisherPort
	if cfg.RabbitMQ.Enabled {
		eventPublisher, err := a.connectEvents(cfg, baseLogger)
		if err != nil {
			appLogger.Error("Failed to set up RabbitMQ events", err, nil)
			a.close(appLogger)
			return nil, err
		}
		publisher = eventPublisher
		appLogger.Info("RabbitMQ event publisher initialized.", port.Fields{"exchange": cfg.RabbitMQ.Exchange})
	}

	var sms port.SMSSenderPort
	if cfg.RingCentral.ClientID != "" && cfg.RingCentral.ClientSecret != "" {
		sms = ringcentral_client.NewSMSSender(ringcentral_client.Config{
			Server:       cfg.RingCentral.Server,
			ClientID:     cfg.RingCentral.ClientID,
			ClientSecret: cfg.RingCentral.ClientSecret,
			Username:     cfg.RingCentral.Username,
			Password:     cfg.RingCentral.Password,
			JWT:          cfg.RingCentral.JWT,
		})
	} else {
		appLogger.Warn("RingCentral credentials are not set, escalation SMS is disabled", nil)
	}

	if cfg.GoogleMaps.APIKey == "" {
		appLogger.Warn("GOOGLE_MAPS_API_KEY is not set, get_closest will find nothing", nil)
	}
	distance := googlemaps_client.NewDistanceMatrixClient(googlemaps_client.Config{
		APIKey:            cfg.GoogleMaps.APIKey,
		BaseURL:           cfg.GoogleMaps.BaseURL,
		RequestsPerSecond: cfg.GoogleMaps.RequestsPerSecond,
	})
	locations := auctioncsv.NewLocationsReader(cfg.GoogleMaps.AuctionCSVDir)

	tools := usecase.ToolSet{
		Cars:      usecase.NewCarTools(carRepo),
		Pickups:   usecase.NewPickupTools(pickupRepo, carRepo),
		Schedules: usecase.NewScheduleTools(scheduleRepo),
		Closest:   usecase.NewClosestAuctionFinder(distance, locations, cfg.GoogleMaps.MaxMiles, 0),
		Escalator: usecase.NewEscalator(sms, publisher),
	}
	executeTool := usecase.NewExecuteToolUseCase(tools.Handlers(), publisher, opts.metrics)

	catalog, err := planner.DefaultCatalog()
	if err != nil {
		a.close(appLogger)
		return nil, fmt.Errorf("failed to load tool catalog: %w", err)
	}

	avaClient := ava_client.NewAvaAPIClient(ava_client.Config{
		APIURL:    cfg.Ava.APIURL,
		PrismURL:  cfg.Ava.PrismURL,
		StreamURL: cfg.Ava.StreamURL,
		Origin:    cfg.Ava.Origin,
		Timeout:   cfg.Ava.Timeout,
	})

	a.initSession = usecase.NewInitSessionUseCase(avaClient, store, tokens, usecase.AvaCredentials{
		User:     cfg.Ava.User,
		Password: cfg.Ava.Password,
	})
	a.chatTurn = usecase.NewChatTurnUseCase(avaClient, store, planner.New(catalog), executeTool, opts.metrics,
		postgres.SafeTarget(cfg.Database.URL))
	a.getLogs = usecase.NewGetSessionLogsUseCase(store, opts.logsLimit)

	appLogger.Info("Use cases initialized.", port.Fields{"tools": len(catalog.Names())})
	return a, nil
}

func (a *assistant) connectEvents(cfg *configs.AppConfig, baseLogger port.LoggerPort) (port.EventPublisherPort, error) {
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.GetManager(cfg.RabbitMQ.URL, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		ExchangeName:             cfg.RabbitMQ.Exchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = producer

	return rabbitmq_adapter.NewRabbitMQEventPublisher(producer)
}

// close освобождает ресурсы в обратном порядке создания
func (a *assistant) close(logger port.LoggerPort) {
	if a.eventProducer != nil {
		if err := a.eventProducer.Close(); err != nil {
			logger.Error("Error closing event producer", err, nil)
		}
	}
	if a.connManager != nil {
		if err := a.connManager.Close(); err != nil {
			logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		logger.Info("PostgreSQL pool closed.", nil)
	}
}
