package postgres

import (
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/adapters/out/postgres/deliveryrepo"
	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/adapters/out/postgres/journalrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported values of DB_DRIVER backed by GORM.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database selected by driverName. dsn is a PostgreSQL
// connection string or an SQLite file name (":memory:" for a private
// in-memory database).
func Open(driverName, dsn string, log *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driverName {
	case DriverPostgres:
		dialector = gormpostgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driverName)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(slogWriter{log: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName, err)
	}

	if driverName == DriverSQLite {
		// SQLite serializes writers; one connection keeps transactions from
		// failing with "database is locked".
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// slogWriter routes GORM's printf-style logger into slog.
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.log.Warn(fmt.Sprintf(format, args...), "component", "gorm")
}

// Migrate creates or updates every table used by the engine.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&driverrepo.DriverDTO{},
		&deliveryrepo.DeliveryDTO{},
		&journalrepo.NotificationDTO{},
		&journalrepo.InconsistencyDTO{},
	)
}
