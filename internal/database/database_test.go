package database

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite uses path",
			config:   DatabaseConfig{Driver: "sqlite", Path: "pizzastore.sqlite"},
			expected: "pizzastore.sqlite?_foreign_keys=on",
		},
		{
			name:     "sqlite keeps explicit options",
			config:   DatabaseConfig{Driver: "sqlite3", Path: "file:test.db?cache=shared"},
			expected: "file:test.db?cache=shared",
		},
		{
			name:     "empty driver defaults to sqlite",
			config:   DatabaseConfig{Path: ":memory:"},
			expected: ":memory:",
		},
		{
			name: "postgres builds key value dsn",
			config: DatabaseConfig{
				Driver: "PostgreSQL", Host: "db", Port: "5432", User: "pizza",
				Password: "pw", Name: "pizzastore", SSLMode: "disable",
			},
			expected: "host=db user=pizza password=pw dbname=pizzastore port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins",
			config:   DatabaseConfig{Driver: "postgres", URL: "postgres://pizza:pw@db/pizzastore", Host: "ignored"},
			expected: "postgres://pizza:pw@db/pizzastore",
		},
		{
			name:     "unknown driver",
			config:   DatabaseConfig{Driver: "oracle"},
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestDatabaseConfigStringMasksSecrets(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", URL: "postgres://pizza:pw@db/pizzastore", Password: "pw"}
	out := cfg.String()
	assert.NotContains(t, out, "pw@")
	assert.Contains(t, out, "[REDACTED]")
}

func TestInitDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestInitDatabaseOpensSQLite(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestInitDatabaseBacksOffBetweenAttempts(t *testing.T) {
	var delays []time.Duration
	sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(func() { sleep = time.Sleep })

	_, err := InitDatabase(DatabaseConfig{
		Driver: "postgres", Host: "127.0.0.1", Port: "1", User: "pizza",
		Password: "pw", Name: "pizzastore", SSLMode: "disable", Attempts: 3,
	})
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SeedPizzas(db))
	require.NoError(t, SeedPizzas(db))
	require.NoError(t, EnsureAdmin(db, "admin@example.com", "admin12345"))
	require.NoError(t, EnsureAdmin(db, "admin@example.com", "admin12345"))

	var pizzas int64
	db.Model(&models.Pizza{}).Count(&pizzas)
	assert.Equal(t, int64(3), pizzas)

	var admin models.Customer
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.CheckPassword("admin12345"))

	var customers int64
	db.Model(&models.Customer{}).Count(&customers)
	assert.Equal(t, int64(1), customers)
}
