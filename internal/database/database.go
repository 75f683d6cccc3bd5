// Package database opens the primary and read-replica connections and migrates the schema.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/config"
	"agora/internal/middleware"
	"agora/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// DB is the global database connection instance.
	DB *gorm.DB
	// ReadDB is the optional read replica. Nil when DB_READ_HOST is unset.
	ReadDB *gorm.DB
)

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error logs an error message with context.
func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs trace-level information including SQL queries and execution time.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	observability.DatabaseQueryLatency.WithLabelValues(queryOperation(sql), "").Observe(elapsed.Seconds())

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

func queryOperation(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch v := strings.ToLower(verb); v {
	case "select", "insert", "update", "delete":
		return v
	default:
		return "other"
	}
}

func newGormLogger() *CustomGormLogger {
	return &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}
}

func postgresDSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode,
	)
}

// Open returns a gorm dialector-backed connection for the configured driver without migrating.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	}

	switch cfg.DBDriver {
	case "sqlite":
		path := cfg.DBPath
		if path == "" {
			path = "agora.db"
		}
		db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// sqlite serializes writers; a single connection avoids SQLITE_BUSY under transactions.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		dsn := postgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
		db, err := gorm.Open(postgres.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := configurePool(db, cfg); err != nil {
			return nil, err
		}
		return db, nil
	}
}

// Connect opens the primary connection, migrates outside production and
// attaches the read replica when one is configured.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dbInstance, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	middleware.Logger.Info("Database connected successfully", slog.String("driver", dbInstance.Dialector.Name()))

	if !cfg.IsProduction() {
		if err := Migrate(dbInstance); err != nil {
			return nil, err
		}
		middleware.Logger.Info("Database migration completed")
	}

	DB = dbInstance

	if cfg.DBDriver != "sqlite" && cfg.DBReadHost != "" {
		if err := connectReadReplica(cfg); err != nil {
			// Reads fall back to the primary.
			middleware.Logger.Warn("read replica unavailable", slog.String("error", err.Error()))
		}
	}
	return DB, nil
}

// Migrate creates or updates every persistent table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func connectReadReplica(cfg *config.Config) error {
	port := cfg.DBReadPort
	if port == "" {
		port = cfg.DBPort
	}
	user := cfg.DBReadUser
	if user == "" {
		user = cfg.DBUser
	}
	password := cfg.DBReadPassword
	if password == "" {
		password = cfg.DBPassword
	}

	dsn := postgresDSN(cfg.DBReadHost, port, user, password, cfg.DBName, cfg.DBSSLMode)
	replica, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to read replica: %w", err)
	}
	if err := configurePool(replica, cfg); err != nil {
		return err
	}
	ReadDB = replica
	middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
	return nil
}

// GetReadDB returns the read replica, or nil when reads should use the primary.
func GetReadDB() *gorm.DB {
	return ReadDB
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}

	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	return nil
}
