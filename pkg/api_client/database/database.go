package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/audit"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/config"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

type Options struct {
	Policy audit.Policy
	Now    func() time.Time
	Logger logger.Interface
}

// Connect opens PostgreSQL through lib/pq and prepares the schema.
func Connect(connStr string, opts Options) (*gorm.DB, error) {
	return Open(postgres.New(postgres.Config{DriverName: "postgres", DSN: connStr}), opts)
}

// OpenSQLite is used for local development and tests.
func OpenSQLite(dsn string, opts Options) (*gorm.DB, error) {
	return Open(sqlite.Open(dsn), opts)
}

// FromConfig opens the database selected by DB_DRIVER.
func FromConfig(cfg config.Config) (*gorm.DB, error) {
	opts := Options{
		Policy: cfg.AuditPolicy,
		Logger: logger.Default.LogMode(logger.Warn),
	}
	if cfg.DBDriver == "sqlite" {
		return OpenSQLite(cfg.SQLitePath, opts)
	}
	if cfg.DBHostname == "" || cfg.DBUsername == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("missing DB env vars; need DB_HOSTNAME, DB_USERNAME, DB_DBNAME")
	}
	return Connect(cfg.PostgresDSN(), opts)
}

// Open migrates the audited tables, seeds the system actor and installs the
// audit callbacks.
func Open(dialector gorm.Dialector, opts Options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
		TranslateError: true,
	}
	if opts.Logger != nil {
		cfg.Logger = opts.Logger
	}
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Actor{}, &models.Image{}, &models.Badge{}); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	system, err := EnsureSystemActor(context.Background(), db)
	if err != nil {
		return nil, err
	}

	if err := audit.Register(db, audit.Config{
		Policy:        opts.Policy,
		SystemActorID: system.ID,
		Now:           opts.Now,
	}); err != nil {
		return nil, fmt.Errorf("audit setup failed: %w", err)
	}

	return db, nil
}

// EnsureSystemActor returns the seeded system actor, creating it on first use.
func EnsureSystemActor(ctx context.Context, db *gorm.DB) (*models.Actor, error) {
	system := models.Actor{Username: models.SystemActorName, System: true}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(&system).Error
	if err != nil {
		return nil, fmt.Errorf("seed system actor: %w", err)
	}

	var stored models.Actor
	err = db.WithContext(ctx).Where("username = ?", models.SystemActorName).First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("system actor missing after seed")
	}
	if err != nil {
		return nil, fmt.Errorf("load system actor: %w", err)
	}
	return &stored, nil
}
