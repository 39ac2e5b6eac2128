package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultCategories is the closed category set used when CATEGORIES is not
// configured. It is validated at ingestion, not enforced by the schema.
var DefaultCategories = []string{
	"Inventory Purchase", "Staff Welfare", "Marketing & Promotion",
	"Utilities", "Owner's Draw", "Executive Lunch", "Logistics",
	"IT & Software", "Business Travel", "Loan Repayment", "Store Supplies",
	"Shipping & Delivery", "Office Supplies", "Staff Uniforms",
	"Transportation", "Promotional Items", "Miscellaneous",
	"Store Maintenance", "Shopping", "Staff Training", "Taxes & Licenses",
	"Marketing",
}

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Category taxonomy
	Categories       []string
	FallbackCategory string

	// Receipt extraction (optional capability)
	GeminiAPIKey string
	GeminiModel  string

	// Alert worker
	AlertPrefetch int
	AlertTimeout  time.Duration

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "budget_alerts"),

		Categories:       getEnvList("CATEGORIES", DefaultCategories),
		FallbackCategory: getEnv("FALLBACK_CATEGORY", "Miscellaneous"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),

		AlertPrefetch: getEnvInt("ALERT_PREFETCH", 10),
		AlertTimeout:  getEnvDuration("ALERT_TIMEOUT", 10*time.Second),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
	}

	return cfg
}

// ExtractionEnabled reports whether the receipt-extraction capability is
// configured. Resolved once at startup; ingestion never depends on it.
func (c *Config) ExtractionEnabled() bool {
	return c.GeminiAPIKey != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}

		// Alert events are evaluated against the shared SQLite database,
		// which the memory backend never writes.
		if c.DataBackend == "memory" {
			errors = append(errors, "AMQP alert events require the sqlite backend; the memory backend keeps data in-process where the alert worker cannot see it")
		}
	}

	// Validate category taxonomy
	if len(c.Categories) == 0 {
		errors = append(errors, "category set cannot be empty")
	}
	fallbackKnown := false
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) == c.FallbackCategory {
			fallbackKnown = true
			break
		}
	}
	if !fallbackKnown {
		errors = append(errors, fmt.Sprintf("fallback category '%s' must be a member of the category set", c.FallbackCategory))
	}

	// Validate alert worker configuration
	if c.AlertPrefetch < 1 {
		errors = append(errors, fmt.Sprintf("invalid alert prefetch %d: must be at least 1", c.AlertPrefetch))
	} else if c.AlertPrefetch > 1000 {
		errors = append(errors, fmt.Sprintf("invalid alert prefetch %d: must be at most 1000", c.AlertPrefetch))
	}

	if c.AlertTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid alert timeout %v: must be at least 1 second", c.AlertTimeout))
	} else if c.AlertTimeout > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid alert timeout %v: must be at most 1 hour", c.AlertTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
