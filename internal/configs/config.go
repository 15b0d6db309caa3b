package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBconfig struct {
	URL      string
	MaxConns int
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
}

type AvaConfig struct {
	User      string
	Password  string
	APIURL    string
	PrismURL  string
	StreamURL string
	Origin    string
	Timeout   time.Duration
}

type GoogleMapsConfig struct {
	APIKey        string
	BaseURL       string
	AuctionCSVDir string
	MaxMiles      float64
	// ограничение запросов к Distance Matrix в секунду
	RequestsPerSecond float64
}

type RingCentralConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	JWT          string
	Server       string
}

type SessionConfig struct {
	SecretKey string
	Store     string // memory | redis
	RedisURL  string
	TTL       time.Duration
}

type RabbitMQConfig struct {
	Enabled  bool
	URL      string
	Exchange string
}

type MigrationConfig struct {
	SQLitePath string
}

type StdoutLogConfig struct {
	Level string // STDOUT_LOG_LEVEL, по умолчанию debug
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string // FLUENTBIT_LOG_LEVEL, по умолчанию info
}

// AppConfig вся конфигурация процессов: сервера, CLI, миграции и скрапера
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	Ava          AvaConfig
	GoogleMaps   GoogleMapsConfig
	RingCentral  RingCentralConfig
	Session      SessionConfig
	RabbitMQ     RabbitMQConfig
	Migration    MigrationConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig читает .env (если он есть) и переменные окружения.
// Обязательность DATABASE_URL проверяет вызывающий через RequireDatabase.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "ava-lead-assistant")

	cfg.Database.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.Database.MaxConns = getEnvAsInt("DB_MAX_CONNS", 10)

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.Ava.User = os.Getenv("AVA_USER")
	cfg.Ava.Password = os.Getenv("AVA_PASS")
	cfg.Ava.APIURL = getEnvAsString("AVA_API_URL", "https://ava.andrew-chat.com")
	cfg.Ava.PrismURL = getEnvAsString("AVA_PRISM_URL", "https://prism.andrew-chat.com")
	cfg.Ava.StreamURL = getEnvAsString("AVA_STREAM_URL", "wss://ava.andrew-chat.com")
	cfg.Ava.Origin = getEnvAsString("AVA_ORIGIN", "https://ava.andrew-chat.com")
	cfg.Ava.Timeout = getEnvAsDuration("AVA_TIMEOUT", 15*time.Second)

	cfg.GoogleMaps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	if cfg.GoogleMaps.APIKey == "" {
		cfg.GoogleMaps.APIKey = os.Getenv("API_KEY")
	}
	cfg.GoogleMaps.BaseURL = getEnvAsString("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com")
	cfg.GoogleMaps.AuctionCSVDir = getEnvAsString("AUCTION_CSV_DIR", "manheim_auction/by_state_csv")
	cfg.GoogleMaps.MaxMiles = getEnvAsFloat("CLOSEST_MAX_MILES", 100)
	cfg.GoogleMaps.RequestsPerSecond = getEnvAsFloat("GOOGLE_MAPS_RPS", 5)

	cfg.RingCentral.ClientID = os.Getenv("RINGCENTRAL_CLIENT_ID")
	cfg.RingCentral.ClientSecret = os.Getenv("RINGCENTRAL_CLIENT_SECRET")
	cfg.RingCentral.Username = os.Getenv("RINGCENTRAL_USERNAME")
	cfg.RingCentral.Password = os.Getenv("RINGCENTRAL_PASSWORD")
	cfg.RingCentral.JWT = os.Getenv("RINGCENTRAL_JWT")
	cfg.RingCentral.Server = getEnvAsString("RINGCENTRAL_SERVER", "https://platform.ringcentral.com")

	cfg.Session.SecretKey = os.Getenv("FLASK_SECRET_KEY")
	cfg.Session.Store = strings.ToLower(getEnvAsString("SESSION_STORE", "memory"))
	cfg.Session.RedisURL = getEnvAsString("REDIS_URL", "redis://localhost:6379/0")
	cfg.Session.TTL = getEnvAsDuration("SESSION_TTL", 24*time.Hour)
	if cfg.Session.Store != "memory" && cfg.Session.Store != "redis" {
		return nil, fmt.Errorf("SESSION_STORE must be 'memory' or 'redis', got %q", cfg.Session.Store)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling RabbitMQ events.")
			cfg.RabbitMQ.Enabled = false
		}
		cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", "ava_events_exchange")
	}

	cfg.Migration.SQLitePath = getEnvAsString("SQLITE_PATH", "sandbox_lead_3.db")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

// RequireDatabase проверяет DATABASE_URL для процессов, которым нужна база
func (c *AppConfig) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required. Please configure PostgreSQL database")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql:// (use the external connection string of the managed database)")
	}
	return nil
}

// RequireSessionSecret проверяет ключ подписи токенов сессий
func (c *AppConfig) RequireSessionSecret() error {
	if c.Session.SecretKey == "" {
		return fmt.Errorf("FLASK_SECRET_KEY environment variable is required to sign session tokens")
	}
	return nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %v\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvAsList разбирает список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
