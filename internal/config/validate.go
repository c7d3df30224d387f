package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate aplica las reglas que los tags no cubren. Load la llama siempre.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("server.timezone: %w", err)
	}

	if c.Database.Enabled() && c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) > database.max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	switch strings.ToLower(c.Auth.Mode) {
	case "dev":
	case "odin":
		if strings.TrimSpace(c.Auth.OdinBaseURL) == "" {
			return fmt.Errorf("auth.odin_base_url is required when auth.mode=odin")
		}
	default:
		return fmt.Errorf("auth.mode must be dev or odin (got %q)", c.Auth.Mode)
	}

	if strings.TrimSpace(c.Billing.DefaultService) == "" {
		return fmt.Errorf("billing.default_service is required")
	}
	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("inventory.low_stock_threshold must be >= 0 (got %d)", c.Inventory.LowStockThreshold)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug|info|warn|error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format must be json|text (got %q)", c.Log.Format)
	}
	return nil
}
