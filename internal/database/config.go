package database

import (
	"fmt"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig describes where the store lives. Postgres is used in
// deployments, SQLite for local runs and the dev tooling.
type DatabaseConfig struct {
	Driver string

	// URL takes precedence over the discrete postgres fields when set
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// Path is the SQLite file, or ":memory:"
	Path string

	// Attempts bounds the connection retries, zero means defaultAttempts
	Attempts int
}

// pool sizes the database/sql pool for one driver
type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// SQLite serialises writers, so a single connection avoids "database is locked"
var pools = map[string]pool{
	DriverPostgres: {maxOpen: 25, maxIdle: 5, maxLifetime: 5 * time.Minute},
	DriverSQLite:   {maxOpen: 1, maxIdle: 1},
}

// driver returns the canonical driver name, or "" when it is not supported
func (c DatabaseConfig) driver() string {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "sqlite", "sqlite3", "":
		return DriverSQLite
	default:
		return ""
	}
}

func (c DatabaseConfig) attempts() int {
	if c.Attempts > 0 {
		return c.Attempts
	}
	return defaultAttempts
}

// String masks credentials so the config can be logged
func (c DatabaseConfig) String() string {
	switch c.driver() {
	case DriverPostgres:
		if c.URL != "" {
			return "postgres url=[REDACTED]"
		}
		return fmt.Sprintf("postgres host=%s port=%s db=%s user=%s password=[REDACTED] sslmode=%s",
			c.Host, c.Port, c.Name, c.User, c.SSLMode)
	case DriverSQLite:
		return "sqlite path=" + c.Path
	default:
		return "unsupported driver " + c.Driver
	}
}

// DSN builds the driver specific data source name. File backed SQLite
// databases get foreign key enforcement switched on.
func (c DatabaseConfig) DSN() string {
	switch c.driver() {
	case DriverPostgres:
		if c.URL != "" {
			return c.URL
		}
		parts := []string{
			"host=" + c.Host,
			"user=" + c.User,
			"password=" + c.Password,
			"dbname=" + c.Name,
			"port=" + c.Port,
		}
		if c.SSLMode != "" {
			parts = append(parts, "sslmode="+c.SSLMode)
		}
		return strings.Join(parts, " ")
	case DriverSQLite:
		if c.Path == "" || strings.HasPrefix(c.Path, ":memory:") || strings.Contains(c.Path, "?") {
			return c.Path
		}
		return c.Path + "?_foreign_keys=on"
	default:
		return ""
	}
}
