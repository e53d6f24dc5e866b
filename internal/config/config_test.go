package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultSearchIndexPath, cfg.SearchIndex.Path)
	assert.Equal(t, 8, cfg.IndexSync.Shards)
	assert.Equal(t, 10*time.Second, cfg.IndexSync.OpTimeout)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "*/30 * * * *", cfg.Reconcile.Schedule)
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")
	t.Setenv("DATABASE_PORT", "3307")
	t.Setenv("INDEX_SYNC_SHARDS", "2")
	t.Setenv("SEARCH_CACHE_ENABLED", "true")
	t.Setenv("SEARCH_CACHE_TTL", "30s")

	cfg := NewConfig()

	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.Equal(t, 2, cfg.IndexSync.Shards)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}
