package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
)

func TestSlowQueryThresholdForBulkQueries(t *testing.T) {
	base := config.SlowQueryThreshold

	assert.Equal(t, base, slowQueryThresholdFor("SELECT id FROM events"))
	assert.Equal(t, 3*base, slowQueryThresholdFor("BULK_INSERT INTO events"),
		"bulk inserts get three times the point-query threshold")
}
