package db

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shinyyama/book-market-backend/internal/config"
	"github.com/shinyyama/book-market-backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrUnsupportedDriver = errors.New("unsupported db driver")

func BuildDSN(cfg *config.Config) string {
	if cfg.DBDriver == "postgres" {
		return buildPostgresDSN(cfg)
	}

	addr := cfg.DBHost

	// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
	if cfg.InstanceConnectionName != "" {
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	} else if strings.HasPrefix(cfg.DBHost, "tcp(") || strings.HasPrefix(cfg.DBHost, "unix(") {
		// already wrapped
	} else if strings.HasPrefix(cfg.DBHost, "/") {
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	} else {
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}

	// clientFoundRows: repositories read RowsAffected as rows matched, not changed.
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

func buildPostgresDSN(cfg *config.Config) string {
	host := cfg.DBHost
	if cfg.InstanceConnectionName != "" {
		host = "/cloudsql/" + cfg.InstanceConnectionName
	}
	port := cfg.DBPort
	if port == "" || port == "3306" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, cfg.DBUser, cfg.DBPassword, cfg.DBName)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case "", "mysql":
		dial = mysql.Open(BuildDSN(cfg))
	case "postgres":
		dial = postgres.Open(BuildDSN(cfg))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, cfg.DBDriver)
	}
	gcfg := &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(dial, gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}
