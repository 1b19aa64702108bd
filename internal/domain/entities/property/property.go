// Package property defines the registered sites whose events the
// pipeline accepts.
package property

import (
	"strings"
	"time"
)

// Property is one registered site or application.
type Property struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	Domains    []string  `json:"domains"`
	AlertEmail string    `json:"alertEmail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MatchesDomain reports whether a hostname belongs to this property.
// A www. prefix on either side is ignored.
func (p *Property) MatchesDomain(host string) bool {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, domain := range p.Domains {
		if strings.TrimPrefix(strings.ToLower(domain), "www.") == host {
			return true
		}
	}
	return false
}

// Repository defines the contract for property lookups.
type Repository interface {
	FindBySlug(slug string) (*Property, error)
	FindAll() ([]*Property, error)
	Upsert(p *Property) error
}
