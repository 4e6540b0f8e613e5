package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port                     string `mapstructure:"port"`
	ReadHeaderTimeoutSeconds int    `mapstructure:"read_header_timeout_seconds"`
}

type DbServer struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Pass           string `mapstructure:"pass"`
	Name           string `mapstructure:"name"`
	MaxConns       int32  `mapstructure:"max_conns"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type ExchangeRateAPI struct {
	BaseURL    string `mapstructure:"base_url"`
	AccessKey  string `mapstructure:"access_key"`
	MaxRetries uint64 `mapstructure:"max_retries"`
}

// Exchange holds the rate resolution settings.
type Exchange struct {
	BaseCurrency  string  `mapstructure:"base_currency"`
	SpreadBase    float64 `mapstructure:"spread_base"`
	SpreadDefault float64 `mapstructure:"spread_default"`
}

type Scheduler struct {
	Cron     string `mapstructure:"cron"`
	TimeZone string `mapstructure:"time_zone"`
}

// Cache configures the spread lookup cache. A spread appended to the history can
// stay invisible to quotes for up to SpreadTTLSeconds; 0 disables the cache.
type Cache struct {
	SpreadMaxItems   int64 `mapstructure:"spread_max_items"`
	SpreadTTLSeconds int   `mapstructure:"spread_ttl_seconds"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	DbServer        DbServer        `mapstructure:"db_server"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	Exchange        Exchange        `mapstructure:"exchange"`
	Scheduler       Scheduler       `mapstructure:"scheduler"`
	Cache           Cache           `mapstructure:"cache"`
	Logging         Logging         `mapstructure:"logging"`
}

// Init loads .env (if present) and the yaml config file named by CONFIG_FILE, config.yaml by default.
func Init() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

// Load reads config from the yaml file at path, then applies env overrides and defaults.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.read_header_timeout_seconds", 5)
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("exchange_rate_api.base_url", "http://data.fixer.io/api")
	v.SetDefault("exchange_rate_api.max_retries", 3)
	v.SetDefault("exchange.base_currency", "EUR")
	v.SetDefault("exchange.spread_base", 0.0)
	v.SetDefault("exchange.spread_default", 0.5)
	v.SetDefault("scheduler.cron", "5 12 * * *")
	v.SetDefault("scheduler.time_zone", "GMT")
	v.SetDefault("cache.spread_max_items", 1024)
	v.SetDefault("cache.spread_ttl_seconds", 60)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("db_server.migrate_on_start", "DB_MIGRATE_ON_START")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// provider env vars
	_ = v.BindEnv("exchange_rate_api.base_url", "EXCHANGE_RATE_API_BASE_URL")
	_ = v.BindEnv("exchange_rate_api.access_key", "EXCHANGE_RATE_API_ACCESS_KEY")

	_ = v.BindEnv("exchange.base_currency", "BASE_CURRENCY")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.Exchange.BaseCurrency = strings.ToUpper(strings.TrimSpace(cfg.Exchange.BaseCurrency))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) validate() error {
	if cfg.Exchange.BaseCurrency == "" {
		return errors.New("exchange.base_currency is required")
	}
	if !validSpread(cfg.Exchange.SpreadBase) {
		return fmt.Errorf("exchange.spread_base must be within [0, 100): %v", cfg.Exchange.SpreadBase)
	}
	if !validSpread(cfg.Exchange.SpreadDefault) {
		return fmt.Errorf("exchange.spread_default must be within [0, 100): %v", cfg.Exchange.SpreadDefault)
	}
	return nil
}

func validSpread(v float64) bool { return v >= 0 && v < 100 }
