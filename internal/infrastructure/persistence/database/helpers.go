// Package database provides database helper functions
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// TestLibSQLConnection tests a remote libsql database connection
func TestLibSQLConnection(databaseURL, authToken string) error {
	connStr := databaseURL
	if authToken != "" {
		connStr = fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
	}

	db, err := sql.Open("libsql", connStr)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	var result int
	err = db.QueryRow("SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("connection test query failed: %w", err)
	}

	if result != 1 {
		return fmt.Errorf("unexpected query result: %d", result)
	}

	return nil
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// slowQueryThresholdFor returns the threshold a query is held to.
// Bulk inserts are expected to run longer than point queries.
func slowQueryThresholdFor(query string) time.Duration {
	threshold := GetSlowQueryThreshold()
	if strings.HasPrefix(query, "BULK_") {
		threshold *= 3
	}
	return threshold
}

// CheckAndLogSlowQuery checks if a query duration exceeds threshold
// and logs it using the slow query channel if it does
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	if duration > slowQueryThresholdFor(query) {
		logger.LogSlowQuery(query, duration)
	}
}
