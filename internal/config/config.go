package config

import (
	"fmt"
	"time"

	"pet-clinic-ops/internal/platform/logger"
)

// Config es la configuración raíz del servicio.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Billing   BillingConfig   `yaml:"billing"`
	Inventory InventoryConfig `yaml:"inventory"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// Zona horaria de la clínica: define qué es "hoy" para la cola.
	Timezone string `yaml:"timezone" env:"CLINIC_TIMEZONE" env-default:"UTC"`
}

// Addr para http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location resuelve Timezone (Validate ya lo verificó).
func (s ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseConfig: sin DSN el servicio corre con el store en memoria.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_URL"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"30m"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"5m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

func (d DatabaseConfig) Enabled() bool { return d.DSN != "" }

// AuthConfig: "dev" acepta X-Debug-User-ID, "odin" verifica Bearer contra el servicio de identidad.
type AuthConfig struct {
	Mode        string        `yaml:"mode"          env:"AUTH_MODE"          env-default:"dev"`
	OdinBaseURL string        `yaml:"odin_base_url" env:"ODIN_BASE_URL"`
	OdinAPIKey  string        `yaml:"odin_api_key"  env:"ODIN_API_KEY"`
	OdinTimeout time.Duration `yaml:"odin_timeout"  env:"ODIN_TIMEOUT"       env-default:"3s"`
}

type BillingConfig struct {
	ClinicName           string `yaml:"clinic_name"            env:"CLINIC_NAME"                    env-default:"Pet Clinic"`
	DefaultService       string `yaml:"default_service"        env:"BILLING_DEFAULT_SERVICE"        env-default:"General Consultation"`
	DefaultPaymentMethod string `yaml:"default_payment_method" env:"BILLING_DEFAULT_PAYMENT_METHOD" env-default:"Cash"`
	Currency             string `yaml:"currency"               env:"BILLING_CURRENCY"               env-default:"IDR"`
}

type InventoryConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold" env:"INVENTORY_LOW_STOCK_THRESHOLD" env-default:"5"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Options traduce la sección log al logger de la plataforma.
func (l LogConfig) Options(app string) logger.Options {
	return logger.Options{
		Level:  logger.ParseLevel(l.Level),
		Format: logger.ParseFormat(l.Format),
		App:    app,
	}
}
