package database

import (
	"fmt"
	"strings"

	"almacen-backend/internal/config"
	"almacen-backend/internal/logger"
	"almacen-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

var log = logger.Log

// Init abre la base (postgres si el DSN lo parece, si no un archivo sqlite)
// y migra las tablas de auditoría y cierres de caja.
func Init(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	DB = db
	log.Infof("Base de datos lista (%s). Migración completa.", db.Dialector.Name())
	return nil
}

// Open conecta y migra; lo usan Init y los tests (":memory:").
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("no se pudo conectar a la base: %w", err)
	}

	// cada conexión a ":memory:" es una base distinta
	if strings.Contains(dsn, ":memory:") {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(
		&models.AuditLog{},
		&models.CashClosure{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}
	return db, nil
}

func dialector(dsn string) gorm.Dialector {
	if isPostgres(dsn) {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
