package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesDomain(t *testing.T) {
	p := &Property{
		Slug:    "acme-main",
		Domains: []string{"acme.example", "www.acme-shop.example"},
	}

	tests := []struct {
		host string
		want bool
	}{
		{"acme.example", true},
		{"www.acme.example", true},
		{"ACME.example", true},
		{"acme-shop.example", true},
		{"www.acme-shop.example", true},
		{"shop.acme.example", false},
		{"other.example", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.MatchesDomain(tt.host), "host %q", tt.host)
	}
}

func TestMatchesDomainWithNoDomains(t *testing.T) {
	p := &Property{Slug: "acme-main"}
	assert.False(t, p.MatchesDomain("acme.example"))
}
