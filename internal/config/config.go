package config

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// MinCheckInterval is the shortest period the reserve check may be scheduled at.
const MinCheckInterval = 15 * time.Minute

type Config struct {
	DBDriver          string        `env:"DB_DRIVER,default=sqlite"`
	DBPath            string        `env:"DB_PATH,default=./data/reservewatch.db"`
	DBHost            string        `env:"DB_HOST,default=localhost"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,default=reservewatch"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBName            string        `env:"DB_NAME,default=reservewatch"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	ExchangeBaseURL string        `env:"EXCHANGE_BASE_URL,required"`
	ExchangeTimeout time.Duration `env:"EXCHANGE_TIMEOUT,default=15s"`
	ExchangeRPS     float64       `env:"EXCHANGE_RPS,default=2"`

	ReserveCheckInterval time.Duration `env:"RESERVE_CHECK_INTERVAL,default=15m"`
	ReserveCheckFlex     time.Duration `env:"RESERVE_CHECK_FLEX,default=5m"`
	OrderPollInterval    time.Duration `env:"ORDER_POLL_INTERVAL,default=15m"`
	OrderPollFlex        time.Duration `env:"ORDER_POLL_FLEX,default=5m"`

	HTTPAddr    string `env:"HTTP_ADDR,default=:8080"`
	AppLinkBase string `env:"APP_LINK_BASE,default=reservewatch://app"`

	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      int64  `env:"TELEGRAM_CHAT_ID"`
	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`
	RedisChannel  string `env:"REDIS_CHANNEL,default=reservewatch.notifications"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	// Missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	cfg.ReserveCheckInterval = ClampInterval(cfg.ReserveCheckInterval)
	cfg.OrderPollInterval = ClampInterval(cfg.OrderPollInterval)
	return cfg, nil
}

func ClampInterval(interval time.Duration) time.Duration {
	if interval < MinCheckInterval {
		return MinCheckInterval
	}
	return interval
}
