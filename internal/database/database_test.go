package database

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/rentals/internal/config"
	"github.com/mrlokans/rentals/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := NewDatabase(config.Database{Driver: config.DriverSQLite, Path: dbPath, LogLevel: "silent"})
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestNewDatabase_SeedsAmenities(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var count int64
	require.NoError(t, db.DB.Model(&entities.Amenity{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultAmenities)), count)

	var wifi entities.Amenity
	require.NoError(t, db.DB.Where("code = ?", "wifi").First(&wifi).Error)
	assert.Equal(t, "Wi-Fi", wifi.DisplayName)
}

func TestNewDatabase_SeedIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	again, err := NewWithDB(db.DB)
	require.NoError(t, err)

	var count int64
	require.NoError(t, again.DB.Model(&entities.Amenity{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultAmenities)), count)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(config.Database{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.Database{
		Host:     "db.local",
		Port:     3307,
		Name:     "rentals",
		User:     "app",
		Password: "secret",
	})

	assert.True(t, strings.HasPrefix(dsn, "app:secret@tcp(db.local:3307)/rentals?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
