// Package db opens the relational store and keeps its schema up to date
package db

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/model"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// New connects to the primary database. Reads are sent to the configured
// replicas while writes always go to the primary.
func New(cfg config.Database) (*gorm.DB, error) {
	primary, err := dialector(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(primary, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database, %w", cfg.Driver, err)
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, dsn := range cfg.Replicas {
			d, err := dialector(cfg.Driver, dsn)
			if err != nil {
				return nil, err
			}

			replicas = append(replicas, d)
		}

		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replicas, %w", err)
		}

		zap.L().Info("Read replicas registered", zap.Int("count", len(replicas)))
	}

	return db, nil
}

// Migrate creates or updates every table and seeds the permission data
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.Models()...); err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return Seed(db)
}
