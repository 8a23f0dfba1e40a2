// config реализует конфигурацию сервиса комментариев: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Конфигурация передаётся в компоненты явно при создании; глобального состояния нет.
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	GRPC     GRPCConfig    `yaml:"grpc"`
	DB       DBConfig      `yaml:"db"`
	Cache    CacheConfig   `yaml:"cache"`
	Content  ContentConfig `yaml:"content"`
	Limits   LimitsConfig  `yaml:"limits"`
	Retry    RetryConfig   `yaml:"retry"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — публичный REST API + health/metrics.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// GRPCConfig — gRPC health-эндпоинт для оркестратора.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50054"`
	// Как часто сверять статус health с доступностью MongoDB.
	ProbeInterval time.Duration `yaml:"probe_interval" env:"GRPC_PROBE_INTERVAL" env-default:"10s"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// DBConfig — настройки подключения к MongoDB.
// Транзакции требуют replica set (в т.ч. из одного узла).
type DBConfig struct {
	URL      string `yaml:"url"      env:"DATABASE_URL"  env-required:"true"`
	Database string `yaml:"database" env:"DATABASE_NAME" env-default:""`
	// Верхняя граница на одну транзакцию Create/Delete.
	TxTimeout time.Duration `yaml:"tx_timeout" env:"DB_TX_TIMEOUT" env-default:"5s"`
}

// CacheConfig — Redis-кэш проверок существования цели. Пустой URL — кэш выключен.
type CacheConfig struct {
	RedisURL    string        `yaml:"redis_url"    env:"REDIS_URL"          env-default:""`
	Prefix      string        `yaml:"prefix"       env:"CACHE_PREFIX"       env-default:"comments:target:"`
	PositiveTTL time.Duration `yaml:"positive_ttl" env:"CACHE_POSITIVE_TTL" env-default:"10m"`
	NegativeTTL time.Duration `yaml:"negative_ttl" env:"CACHE_NEGATIVE_TTL" env-default:"30s"`
}

// ContentConfig — где искать комментируемый контент.
type ContentConfig struct {
	// Database — база с коллекциями guwen/creations/sentences/writers; пусто — та же, что у комментариев.
	Database string `yaml:"database" env:"CONTENT_DATABASE" env-default:""`
	// SkipCheck отключает проверку существования цели (например, для импорта).
	SkipCheck bool `yaml:"skip_check" env:"CONTENT_SKIP_CHECK" env-default:"false"`
}

// LimitsConfig — лимиты на выдачу, глубину дерева и размер комментария.
type LimitsConfig struct {
	// Пагинация: size=0 -> берём Default; верхняя граница — Max.
	Default int64 `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	Max     int64 `yaml:"max"     env:"MAX_LIMIT"     env-default:"100"`
	// Максимально допустимый level. Корень = 1.
	MaxDepth int32 `yaml:"max_depth" env:"MAX_DEPTH" env-default:"10"`
	// Максимальная длина комментария в символах.
	MaxContent int `yaml:"max_content" env:"MAX_CONTENT" env-default:"1000"`
	// Сколько поддеревьев загружать параллельно при сборке страницы.
	HydrateConcurrency int `yaml:"hydrate_concurrency" env:"HYDRATE_CONCURRENCY" env-default:"4"`
}

// RetryConfig — повтор чтений при недоступности хранилища.
type RetryConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval" env:"RETRY_INITIAL_INTERVAL" env-default:"100ms"`
	MaxElapsed      time.Duration `yaml:"max_elapsed"      env:"RETRY_MAX_ELAPSED"      env-default:"2s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if c.DB.TxTimeout <= 0 {
		return fmt.Errorf("db.tx_timeout must be > 0")
	}

	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}

	if c.Limits.Max <= 0 {
		return fmt.Errorf("limits.max must be > 0")
	}

	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}

	if c.Limits.MaxDepth <= 0 {
		return fmt.Errorf("limits.max_depth must be > 0")
	}

	if c.Limits.MaxDepth > 32 {
		return fmt.Errorf("limits.max_depth is too large (<= 32)")
	}

	if c.Limits.MaxContent <= 0 {
		return fmt.Errorf("limits.max_content must be > 0")
	}

	if c.Limits.HydrateConcurrency <= 0 {
		return fmt.Errorf("limits.hydrate_concurrency must be > 0")
	}

	if c.Cache.RedisURL != "" && (c.Cache.PositiveTTL <= 0 || c.Cache.NegativeTTL <= 0) {
		return fmt.Errorf("cache ttls must be > 0 when redis_url is set")
	}

	return nil
}
