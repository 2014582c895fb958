package main

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const UsersBooksTable = "users_books"

// GetDatabaseClient opens the relational store configured by the driver name,
// applies the connection pool settings then migrates the schema. The opening
// is retried to let the database container finish its boot.
func GetDatabaseClient(config *DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "postgres":
		dialector = postgres.Open(config.DSN)
	case "mysql":
		dialector = mysql.Open(config.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(zap.NewStdLog(logger), gormlogger.Config{
			SlowThreshold:             config.SlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var db *gorm.DB
	var err error
	for attempt := 0; attempt <= config.ConnectRetries; attempt++ {
		db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			break
		}
		logger.Warn("database: connection attempt failed",
			zap.String("db.driver", config.Driver),
			zap.Int("db.attempt", attempt+1),
			zap.Error(err),
		)
		time.Sleep(config.RetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open the database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access the connections pool: %w", err)
	}
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err = MigrateSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// MigrateSchema creates or updates the books, users and users_books tables.
func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&Book{}, &User{}); err != nil {
		return fmt.Errorf("failed to migrate the schema: %w", err)
	}
	return nil
}

// CloseDatabaseClient releases the underlying connections pool.
func CloseDatabaseClient(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// whereIfSet narrows the query with the clause only when a value was provided.
func whereIfSet[T any](query *gorm.DB, clause string, value *T) *gorm.DB {
	if value == nil {
		return query
	}
	return query.Where(clause, *value)
}

// translateNotFound converts the gorm missing record error into the domain one.
func translateNotFound(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
