package config

import (
	"context"
	"fmt"
	"net"
	"time"

	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectDatabase opens the administrative pool used for session
// bookkeeping. It is created once at startup and injected where needed.
func ConnectDatabase(cfg *Config, log logger.Logger) (*gorm.DB, error) {
	db, err := OpenDatabase(cfg.Database, cfg.Database.Admin, cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.String("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Name),
		logger.String("principal", cfg.Database.Admin.Principal),
	)

	return db, nil
}

// OpenDatabase opens a gorm handle authenticated as cred. No round trip
// is made until the handle is first used.
func OpenDatabase(d DatabaseConfig, cred domain.DatabaseCredential, verbose bool) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Error)
	if verbose {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	return gorm.Open(mysql.New(mysql.Config{
		DSN:                       BuildDSN(d, cred),
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
}

// BuildDSN returns the database connection string for cred. Only a
// connect timeout is set: procedure calls run without a read deadline.
func BuildDSN(d DatabaseConfig, cred domain.DatabaseCredential) string {
	c := gomysql.NewConfig()
	c.User = cred.Principal
	c.Passwd = cred.Secret
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(d.Host, d.Port)
	c.DBName = d.Name
	c.ParseTime = true
	c.Loc = time.Local
	c.Timeout = d.ConnectTimeout
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// HealthCheck checks if database is healthy
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}
