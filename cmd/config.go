package cmd

import (
	"fmt"
	"net/url"
)

// Supported values of DB_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

type Config struct {
	HTTPPort string

	DBDriver   string
	DSN        string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AutoDispatchSchedule   string
	AutoDispatchBatch      int
	ReconciliationSchedule string

	NotificationQueueSize int
	NotificationWorkers   int

	CourierSpeedKmh           float64
	DispatchMaxDistanceMeters float64
	DispatchCandidateLimit    int
}

// ConnectionString returns DSN when set. Otherwise PostgreSQL settings are
// assembled from the DB_* fields and SQLite falls back to a file name.
func (c Config) ConnectionString() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch c.DBDriver {
	case StorageSQLite:
		return "fulfillment.db"
	default:
		dsn := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.DBUser, c.DBPassword),
			Host:   fmt.Sprintf("%s:%s", c.DBHost, c.DBPort),
			Path:   c.DBName,
		}
		if c.DBSslMode != "" {
			dsn.RawQuery = url.Values{"sslmode": []string{c.DBSslMode}}.Encode()
		}
		return dsn.String()
	}
}
