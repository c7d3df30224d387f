package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "3s"
  timezone: "Asia/Jakarta"

database:
  dsn: "postgres://u:p@localhost:5432/clinic"
  max_conns: 8
  min_conns: 1

auth:
  mode: "dev"

billing:
  default_service: "Consulta General"
  default_payment_method: "Transfer"

inventory:
  low_stock_threshold: 3

log:
  level: "debug"
  format: "json"
`

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Fatalf("read_timeout = %v", cfg.Server.ReadTimeout)
	}
	// default del tag
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Fatalf("write_timeout default = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.Location().String() != "Asia/Jakarta" {
		t.Fatalf("location = %v", cfg.Server.Location())
	}
	if !cfg.Database.Enabled() || cfg.Database.MaxConns != 8 {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Billing.DefaultService != "Consulta General" || cfg.Billing.DefaultPaymentMethod != "Transfer" {
		t.Fatalf("billing = %+v", cfg.Billing)
	}
	if cfg.Inventory.LowStockThreshold != 3 {
		t.Fatalf("low stock = %d", cfg.Inventory.LowStockThreshold)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", writeYAML(t, dir, validYAML))
	t.Setenv("PORT", "7000")
	t.Setenv("INVENTORY_LOW_STOCK_THRESHOLD", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Fatalf("port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Inventory.LowStockThreshold != 10 {
		t.Fatalf("low stock = %d, want 10", cfg.Inventory.LowStockThreshold)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Enabled() {
		t.Fatalf("expected memory mode without DATABASE_URL")
	}
	if cfg.Auth.Mode != "dev" {
		t.Fatalf("auth mode = %q", cfg.Auth.Mode)
	}
	if cfg.Billing.DefaultService != "General Consultation" || cfg.Billing.DefaultPaymentMethod != "Cash" {
		t.Fatalf("billing defaults = %+v", cfg.Billing)
	}
	if cfg.Inventory.LowStockThreshold != 5 {
		t.Fatalf("low stock default = %d", cfg.Inventory.LowStockThreshold)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080, Timezone: "UTC"},
			Auth:    AuthConfig{Mode: "dev"},
			Billing: BillingConfig{DefaultService: "General Consultation"},
			Log:     LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Server.Timezone = "Mars/Olympus" }, wantErr: true},
		{name: "odin without url", mutate: func(c *Config) { c.Auth.Mode = "odin" }, wantErr: true},
		{name: "odin with url", mutate: func(c *Config) {
			c.Auth.Mode = "odin"
			c.Auth.OdinBaseURL = "http://odin.local"
		}},
		{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "basic" }, wantErr: true},
		{name: "pool min > max", mutate: func(c *Config) {
			c.Database.DSN = "postgres://x"
			c.Database.MinConns = 5
			c.Database.MaxConns = 2
		}, wantErr: true},
		{name: "empty default service", mutate: func(c *Config) { c.Billing.DefaultService = " " }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
