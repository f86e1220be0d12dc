package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/config"
	"github.com/Tesseract-Nexus/global-services/tenancy-service/internal/models"
)

// NewConnection opens the postgres connection and configures the pool
func NewConnection(cfg *config.Config, log *logrus.Entry) (*gorm.DB, error) {
	gormLog := gormlogger.Default.LogMode(gormlogger.Warn)
	if cfg.Server.IsProd() {
		gormLog = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormLog,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("database connection established")

	return db, nil
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB, log *logrus.Entry) error {
	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Store{},
		&models.Subscription{},
		&models.Product{},
		&models.Notification{},
		&models.AdminActivityLog{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := createIndexes(db); err != nil {
		log.WithError(err).Warn("could not create additional indexes")
	}

	log.Info("database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// newest-first activity log listing
		`CREATE INDEX IF NOT EXISTS idx_admin_activity_created
		 ON admin_activity_logs (created_at DESC)`,

		// subdomains are stored lowercase; enforce it
		`DO $$ BEGIN
		   ALTER TABLE stores ADD CONSTRAINT chk_stores_subdomain_lower CHECK (subdomain = lower(subdomain));
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return err
		}
	}
	return nil
}

// HealthCheck verifies database connectivity
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
