package migrate

import (
	"context"
	"fmt"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"gorm.io/gorm"
)

// sqlite has no goose migrations; these indexes mirror the postgres ones
// that AutoMigrate cannot express.
var sqliteIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS ux_ledger_entries_unlock_reference ON ledger_entries (business_id, reference) WHERE type = 'unlock'",
	"CREATE INDEX IF NOT EXISTS idx_outbox_events_unpublished ON outbox_events (created_at, id) WHERE published_at IS NULL",
}

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	logg.Info(ctx, "running migrations (dev auto-run)")

	if err := Up(ctx, cfg.DB, client); err != nil {
		return err
	}

	logg.Info(ctx, "migrations completed")
	return nil
}

// Up brings the schema to the latest version for the configured driver.
func Up(ctx context.Context, cfg config.DBConfig, client *db.Client) error {
	if cfg.IsSQLite() {
		return AutoMigrate(client.DB().WithContext(ctx))
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	return Run(ctx, sqlDB, "up")
}

// AutoMigrate creates the schema through gorm; used for sqlite and tests.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range sqliteIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
