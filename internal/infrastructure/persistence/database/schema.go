package database

import (
	"database/sql"
	"fmt"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		domains TEXT NOT NULL DEFAULT '',
		alert_email TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		property TEXT NOT NULL,
		user_id TEXT,
		source_property TEXT,
		first_seen TIMESTAMP NOT NULL,
		last_seen TIMESTAMP NOT NULL,
		event_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT,
		property TEXT NOT NULL,
		source_property TEXT,
		created_at TIMESTAMP NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		referrer TEXT,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		target TEXT,
		value REAL,
		metadata TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_property_created ON events(property, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_category_action ON events(category, action)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_property ON sessions(property)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen)`,
}

// SchemaBuilder creates the database schema on first start.
type SchemaBuilder struct{}

// NewSchemaBuilder creates a new SchemaBuilder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (sb *SchemaBuilder) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedDefaultProperty idempotently registers a property so a fresh
// install can accept events without manual setup.
func (sb *SchemaBuilder) SeedDefaultProperty(db *sql.DB, id, slug, name string) error {
	var existing string
	err := db.QueryRow("SELECT id FROM properties WHERE slug = ?", slug).Scan(&existing)
	if err == sql.ErrNoRows {
		_, err = db.Exec(`INSERT INTO properties (id, slug, name) VALUES (?, ?, ?)`, id, slug, name)
		if err != nil {
			return fmt.Errorf("failed to insert default property: %w", err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to check for default property: %w", err)
	}
	return nil
}
