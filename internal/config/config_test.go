package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKUP_MODE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("SHOP_CURRENCY", "")
	t.Setenv("PURCHASE_NODE_ID", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, BackupOff, cfg.BackupMode)
	assert.Equal(t, "₹", cfg.ShopCurrency)
	assert.Contains(t, cfg.DSN(), "dbname=agristock")
}

func TestLoad_BackupModeRequiresTarget(t *testing.T) {
	t.Setenv("BACKUP_MODE", BackupWebhook)
	t.Setenv("BACKUP_WEBHOOK_URL", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BACKUP_MODE", BackupSheets)
	t.Setenv("BACKUP_SHEET_URL", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("BACKUP_MODE", "ftp")
	_, err = Load()
	assert.Error(t, err)
}

func TestDSN_PrefersDatabaseURL(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://u:p@db/shop"}
	assert.Equal(t, "postgres://u:p@db/shop", cfg.DSN())
}
