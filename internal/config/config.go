// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Поддерживаемые драйверы хранилища.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	Ops      OpsConfig     `yaml:"ops"`
	Auth     AuthConfig    `yaml:"auth"`
	DB       DBConfig      `yaml:"db"`
	Redis    RedisConfig   `yaml:"redis"`
	Mail     MailConfig    `yaml:"mail"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Janitor  JanitorConfig `yaml:"janitor"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"15s"`
}

// HTTPConfig — сетевые настройки публичного HTTP API.
type HTTPConfig struct {
	Host     string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"HTTP_PORT" env-default:"2211"`
	BasePath string `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api/v1"`
}

// OpsConfig — служебный HTTP-сервер (livez/healthz/metrics).
type OpsConfig struct {
	Host string `yaml:"host" env:"OPS_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"OPS_PORT" env-default:"9090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (o OpsConfig) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// AuthConfig содержит параметры выпуска и проверки токенов,
// а также политику блокировки по неудачным входам.
//
// Access и refresh подписываются разными ключами.
// CodeTTL <= 0 означает «как у refresh-токена».
type AuthConfig struct {
	AccessSecret    string        `yaml:"access_secret" env:"ACCESS_TOKEN_SECRET" env-required:"true"`
	RefreshSecret   string        `yaml:"refresh_secret" env:"REFRESH_TOKEN_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"24h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	CodeTTL         time.Duration `yaml:"code_ttl" env:"CODE_TTL" env-default:"0s"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"blog-auth"`
	MaxFailedLogins int           `yaml:"max_failed_logins" env:"MAX_FAILED_LOGINS" env-default:"5"`
	PasswordCost    int           `yaml:"password_cost" env:"PASSWORD_COST" env-default:"10"`
	ImageCost       int           `yaml:"image_cost" env:"IMAGE_COST" env-default:"10"`
}

// CodeLifetime возвращает срок жизни кодов восстановления/подтверждения.
func (a AuthConfig) CodeLifetime() time.Duration {
	if a.CodeTTL > 0 {
		return a.CodeTTL
	}

	return a.RefreshTokenTTL
}

// DBConfig — настройки подключения к хранилищу.
type DBConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"mongo"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

// RedisConfig — кэш access-образов. Пустой URL отключает кэш.
type RedisConfig struct {
	URL    string        `yaml:"url" env:"REDIS_URL"`
	Prefix string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"auth:ai:"`
	TTL    time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"1m"`
}

// MailConfig — исходящая почта. Пустой Host отключает отправку (письма только логируются).
type MailConfig struct {
	Host        string        `yaml:"host" env:"MAIL_HOST"`
	Port        int           `yaml:"port" env:"MAIL_PORT" env-default:"587"`
	Username    string        `yaml:"username" env:"MAIL_USERNAME"`
	Password    string        `yaml:"password" env:"MAIL_PASSWORD"`
	From        string        `yaml:"from" env:"MAIL_FROM" env-default:"no-reply@blog.local"`
	AdminEmail  string        `yaml:"admin_email" env:"MAIL_ADMIN_EMAIL"`
	FrontendURL string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
	SendTimeout time.Duration `yaml:"send_timeout" env:"MAIL_SEND_TIMEOUT" env-default:"20s"`
}

// JanitorConfig — фоновая очистка просроченных записей. Period <= 0 отключает.
// Retention — сколько истёкшие записи хранятся до удаления (и TTL-индекса в Mongo).
type JanitorConfig struct {
	Period    time.Duration `yaml:"period" env:"JANITOR_PERIOD" env-default:"30m"`
	Retention time.Duration `yaml:"retention" env:"JANITOR_RETENTION" env-default:"24h"`
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
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
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

// validate проверяет межполевые ограничения, которые не выражаются тегами.
func (c *Config) validate() error {
	var errs []error

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case DriverMongo, DriverPostgres:
		if c.DB.URL == "" {
			errs = append(errs, fmt.Errorf("db.url is required for driver %q", c.DB.Driver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("db.driver %q is not supported", c.DB.Driver))
	}

	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("auth.access_secret and auth.refresh_secret must differ"))
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}

	if c.Janitor.Retention <= 0 {
		errs = append(errs, errors.New("janitor.retention must be positive"))
	}

	if c.Auth.MaxFailedLogins <= 0 {
		errs = append(errs, errors.New("auth.max_failed_logins must be positive"))
	}

	if c.Auth.PasswordCost < 4 || c.Auth.ImageCost < 4 {
		errs = append(errs, errors.New("auth bcrypt cost must be at least 4"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
