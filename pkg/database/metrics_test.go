package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type nilStatter struct{}

func (nilStatter) Stat() *pgxpool.Stat { return nil }

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := NewPoolStatsCollector(nilStatter{}, "auth-service")

	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	var names []string
	for d := range ch {
		names = append(names, d.String())
	}
	assert.Len(t, names, 8)
	assert.Contains(t, names[0], "db_pool_acquired_connections")

	var _ prometheus.Collector = c
}

func TestRegisterPoolMetrics_RejectsDuplicate(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NoError(t, RegisterPoolMetrics(reg, nilStatter{}, "auth-service"))
	assert.Error(t, RegisterPoolMetrics(reg, nilStatter{}, "auth-service"))
}
