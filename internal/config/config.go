package config

import (
	"fmt"
	"os"
	"strconv"

	"agristock/internal/logger"
)

// Backup modes
const (
	BackupOff     = "off"
	BackupWebhook = "webhook"
	BackupSheets  = "sheets"
)

type Config struct {
	Port string

	// Database
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBLogLevel  string

	JWTSecret string

	// First owner account, created on startup when missing
	OwnerEmail    string
	OwnerPassword string
	OwnerName     string

	// Backup replication
	BackupMode         string
	BackupWebhookURL   string
	BackupSheetURL     string
	BackupSheetName    string
	BackupSyncSchedule string

	// Shop profile printed on documents
	ShopName     string
	ShopTagline  string
	ShopAddress  string
	ShopContact  string
	ShopCurrency string

	// Snowflake node used for purchase numbers
	PurchaseNodeID int64

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	nodeID, err := strconv.ParseInt(getEnv("PURCHASE_NODE_ID", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("PURCHASE_NODE_ID must be an integer: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBName:             getEnv("DB_NAME", "agristock"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBLogLevel:         getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		OwnerEmail:         getEnv("OWNER_EMAIL", "admin@example.com"),
		OwnerPassword:      getEnv("OWNER_PASSWORD", "admin123"),
		OwnerName:          getEnv("OWNER_NAME", "Shop Owner"),
		BackupMode:         getEnv("BACKUP_MODE", BackupOff),
		BackupWebhookURL:   getEnv("BACKUP_WEBHOOK_URL", ""),
		BackupSheetURL:     getEnv("BACKUP_SHEET_URL", ""),
		BackupSheetName:    getEnv("BACKUP_SHEET_NAME", "Backup"),
		BackupSyncSchedule: getEnv("BACKUP_SYNC_SCHEDULE", ""),
		ShopName:           getEnv("SHOP_NAME", "InvoiceFlow"),
		ShopTagline:        getEnv("SHOP_TAGLINE", "A Complete Business Management Solution"),
		ShopAddress:        getEnv("SHOP_ADDRESS", ""),
		ShopContact:        getEnv("SHOP_CONTACT", ""),
		ShopCurrency:       getEnv("SHOP_CURRENCY", "₹"),
		PurchaseNodeID:     nodeID,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:          getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.BackupMode {
	case BackupOff:
	case BackupWebhook:
		if c.BackupWebhookURL == "" {
			return fmt.Errorf("BACKUP_WEBHOOK_URL is required when BACKUP_MODE=webhook")
		}
	case BackupSheets:
		if c.BackupSheetURL == "" {
			return fmt.Errorf("BACKUP_SHEET_URL is required when BACKUP_MODE=sheets")
		}
	default:
		return fmt.Errorf("unknown BACKUP_MODE %q", c.BackupMode)
	}
	if c.PurchaseNodeID < 0 || c.PurchaseNodeID > 1023 {
		return fmt.Errorf("PURCHASE_NODE_ID must be between 0 and 1023")
	}
	return nil
}

// DSN returns DATABASE_URL, or a key/value DSN built from the DB_* parts
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Kolkata",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
