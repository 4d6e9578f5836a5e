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

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend
	LedgerBackend string
	BunqAPIKey    string
	BunqBaseURL   string

	// Account names as they appear in the bank
	IncomeAccount  string
	BillpayAccount string
	AvailAccount   string

	// Report options
	ShowTransactions   bool
	RecentTransactions int
	AvailTargetCents   int64
	PageCacheTTL       time.Duration

	// Snapshot archive
	SQLiteDBPath     string
	SnapshotInterval time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "5957"),

		LedgerBackend: getEnv("LEDGER_BACKEND", "memory"),
		BunqAPIKey:    getEnv("BUNQ_API_KEY", ""),
		BunqBaseURL:   getEnv("BUNQ_BASE_URL", "https://api.bunq.com"),

		IncomeAccount:  getEnv("INCOME_ACCOUNT", "kasboek"),
		BillpayAccount: getEnv("BILLPAY_ACCOUNT", ""),
		AvailAccount:   getEnv("AVAIL_ACCOUNT", ""),

		ShowTransactions:   getEnvBool("SHOW_TRANSACTIONS", true),
		RecentTransactions: getEnvInt("RECENT_TRANSACTIONS", 3),
		AvailTargetCents:   getEnvInt64("AVAIL_TARGET_CENTS", 0),
		PageCacheTTL:       getEnvDuration("PAGE_CACHE_TTL", 5*time.Minute),

		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/kasboek.db"),
		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kasboek"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "balance_snapshots"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Snapshots"),
	}

	return cfg
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

	// Validate ledger backend
	validBackends := []string{"memory", "bunq"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.LedgerBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of %v", c.LedgerBackend, validBackends))
	}

	// Validate bunq configuration if backend is bunq
	if c.LedgerBackend == "bunq" {
		if c.BunqAPIKey == "" {
			errors = append(errors, "BUNQ_API_KEY is required when using the bunq backend")
		}
		if parsed, err := url.Parse(c.BunqBaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid bunq base URL '%s'", c.BunqBaseURL))
		}
	}

	if strings.TrimSpace(c.IncomeAccount) == "" {
		errors = append(errors, "income account name cannot be empty")
	}

	if c.AvailTargetCents < 0 {
		errors = append(errors, fmt.Sprintf("invalid avail target %d: must be non-negative", c.AvailTargetCents))
	}
	if c.AvailTargetCents > 0 && c.AvailAccount == "" {
		errors = append(errors, "AVAIL_TARGET_CENTS set without AVAIL_ACCOUNT")
	}

	if c.RecentTransactions < 1 || c.RecentTransactions > 100 {
		errors = append(errors, fmt.Sprintf("invalid recent transaction count %d: must be between 1 and 100", c.RecentTransactions))
	}

	if c.PageCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid page cache TTL %v: must be at least 1 second", c.PageCacheTTL))
	} else if c.PageCacheTTL > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid page cache TTL %v: must be at most 1 hour", c.PageCacheTTL))
	}

	if c.SnapshotInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid snapshot interval %v: must be at least 1 minute", c.SnapshotInterval))
	} else if c.SnapshotInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid snapshot interval %v: must be at most 7 days", c.SnapshotInterval))
	}

	// Validate SQLite path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
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
	}

	// Validate Google Sheets export if configured
	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when a spreadsheet id is provided")
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
