package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COMMANDES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Cart  CartConfig
	Hub   HubConfig
	Share ShareConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMMANDES_APP_ENV" default:"dev"`
	Port         string `envconfig:"COMMANDES_APP_PORT" default:"5000"`
	LogLevel     string `envconfig:"COMMANDES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMMANDES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path        string `envconfig:"COMMANDES_DB_PATH" default:"commandes.db"`
	AutoMigrate bool   `envconfig:"COMMANDES_DB_AUTO_MIGRATE" default:"true"`
}

type CartConfig struct {
	FilePath string `envconfig:"COMMANDES_CART_FILE" default:"panier.json"`
}

type HubConfig struct {
	SendBuffer   int           `envconfig:"COMMANDES_HUB_SEND_BUFFER" default:"16"`
	WriteTimeout time.Duration `envconfig:"COMMANDES_HUB_WRITE_TIMEOUT" default:"10s"`
	PingInterval time.Duration `envconfig:"COMMANDES_HUB_PING_INTERVAL" default:"30s"`
}

type ShareConfig struct {
	// PublicURL overrides the share URL encoded in the QR code. When empty,
	// the URL is derived from the incoming request's Host header.
	PublicURL string `envconfig:"COMMANDES_SHARE_PUBLIC_URL"`
}
