// Package property provides the properties repository
package property

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DriftwoodCreative/pulsetrack-go/internal/domain/entities/property"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
)

type PropertyRepository struct {
	db     *sql.DB
	logger *logging.ChanneledLogger

	mu    sync.RWMutex
	cache map[string]*property.Property // slug -> property
}

func NewPropertyRepository(db *sql.DB, logger *logging.ChanneledLogger) *PropertyRepository {
	return &PropertyRepository{
		db:     db,
		logger: logger,
		cache:  make(map[string]*property.Property),
	}
}

// FindBySlug retrieves a property, employing a cache-first strategy.
func (r *PropertyRepository) FindBySlug(slug string) (*property.Property, error) {
	r.mu.RLock()
	if cached, found := r.cache[slug]; found {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	prop, err := r.loadFromDB(slug)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, nil
	}

	r.mu.Lock()
	r.cache[slug] = prop
	r.mu.Unlock()
	return prop, nil
}

// FindAll retrieves all registered properties straight from the database.
func (r *PropertyRepository) FindAll() ([]*property.Property, error) {
	const query = `SELECT id, slug, name, domains, alert_email, created_at FROM properties ORDER BY slug`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to query properties", "error", err.Error())
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []*property.Property
	for rows.Next() {
		prop, err := r.scan(rows.Scan)
		if err != nil {
			r.logger.Database().Error("Failed to scan property row", "error", err.Error())
			continue
		}
		properties = append(properties, prop)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

// Upsert writes a property and refreshes the cache entry.
func (r *PropertyRepository) Upsert(p *property.Property) error {
	const query = `
		INSERT INTO properties (id, slug, name, domains, alert_email)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			domains = excluded.domains,
			alert_email = excluded.alert_email`

	_, err := r.db.Exec(query, p.ID, p.Slug, p.Name, strings.Join(p.Domains, ","), p.AlertEmail)
	if err != nil {
		r.logger.Database().Error("Failed to upsert property", "error", err.Error(), "slug", p.Slug)
		return fmt.Errorf("failed to upsert property %s: %w", p.Slug, err)
	}

	r.mu.Lock()
	r.cache[p.Slug] = p
	r.mu.Unlock()
	return nil
}

func (r *PropertyRepository) loadFromDB(slug string) (*property.Property, error) {
	const query = `SELECT id, slug, name, domains, alert_email, created_at FROM properties WHERE slug = ?`

	row := r.db.QueryRow(query, slug)
	prop, err := r.scan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Database().Error("Failed to load property", "error", err.Error(), "slug", slug)
		return nil, fmt.Errorf("failed to load property %s: %w", slug, err)
	}
	return prop, nil
}

func (r *PropertyRepository) scan(scan func(...any) error) (*property.Property, error) {
	var prop property.Property
	var domains string
	var alertEmail sql.NullString
	var createdAtStr string

	if err := scan(&prop.ID, &prop.Slug, &prop.Name, &domains, &alertEmail, &createdAtStr); err != nil {
		return nil, err
	}

	if domains != "" {
		prop.Domains = strings.Split(domains, ",")
	}
	prop.AlertEmail = alertEmail.String
	if t, err := time.Parse("2006-01-02 15:04:05", createdAtStr); err == nil {
		prop.CreatedAt = t
	} else if t, err := time.Parse(time.RFC3339, createdAtStr); err == nil {
		prop.CreatedAt = t
	}

	return &prop, nil
}
