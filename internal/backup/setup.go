package backup

import (
	"context"
	"time"

	"agristock/internal/config"
	"agristock/internal/logger"
)

// NewReplicator builds the replicator selected by BACKUP_MODE. It returns a
// nil Replicator when backup is off.
func NewReplicator(ctx context.Context, cfg *config.Config) (Replicator, error) {
	switch cfg.BackupMode {
	case config.BackupWebhook:
		return NewWebhookReplicator(cfg.BackupWebhookURL, 10*time.Second), nil
	case config.BackupSheets:
		creds, err := LoadCredentials()
		if err != nil {
			return nil, err
		}
		r, err := NewSheetsReplicator(ctx, cfg.BackupSheetURL, cfg.BackupSheetName, creds)
		if err != nil {
			return nil, err
		}
		if err := r.EnsureHeader(ctx); err != nil {
			log := logger.WithComponent("backup")
			log.Warn().Err(err).Msg("could not write backup sheet header")
		}
		return r, nil
	}
	return nil, nil
}
