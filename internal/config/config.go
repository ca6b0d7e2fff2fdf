package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
// and, when CONFIG_FILE is set, from a config file read by viper
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DBPath      string `json:"db_path"`
	DatabaseURL string `json:"database_url"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	SeedData    bool   `json:"seed_data"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret     string        `json:"jwt_secret"`
	JWTExpiration time.Duration `json:"jwt_expiration"`
	AdminEmail    string        `json:"admin_email"`
	AdminPassword string        `json:"admin_password"`
	AuthRateLimit float64       `json:"auth_rate_limit"`
	AuthRateBurst int           `json:"auth_rate_burst"`
	CORSOrigins   []string      `json:"cors_origins"`

	// Proxy IPs/CIDRs allowed to set X-Forwarded-For
	TrustedProxies []string `json:"trusted_proxies"`

	// Uploads
	UploadDir      string `json:"upload_dir"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`

	// Messaging
	AMQPURL      string `json:"amqp_url"`
	AMQPExchange string `json:"amqp_exchange"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, DBDriver: %s, DBPath: %s, DatabaseURL: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], JWTExpiration: %s, AdminEmail: %s, AdminPassword: [REDACTED], UploadDir: %s, AMQPURL: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBPath, maskDatabaseURL(c.DatabaseURL), c.DBHost, c.DBName, c.DBUser,
		c.LogLevel, c.JWTExpiration, c.AdminEmail, c.UploadDir, maskDatabaseURL(c.AMQPURL))
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

var defaults = map[string]any{
	"APP_ENV":          "development",
	"APP_PORT":         "8080",
	"APP_HOST":         "localhost",
	"DB_DRIVER":        "sqlite",
	"DB_PATH":          "pizzastore.sqlite",
	"DATABASE_URL":     "",
	"DB_HOST":          "localhost",
	"DB_PORT":          "5432",
	"DB_NAME":          "pizzastore",
	"DB_USER":          "user",
	"DB_PASSWORD":      "password",
	"DB_SSLMODE":       "disable",
	"SEED_DATA":        "true",
	"LOG_LEVEL":        "info",
	"JWT_SECRET":       "secret",
	"JWT_EXPIRATION":   "24h",
	"ADMIN_EMAIL":      "admin@pizzastore.local",
	"ADMIN_PASSWORD":   "admin12345",
	"AUTH_RATE_LIMIT":  "5",
	"AUTH_RATE_BURST":  "10",
	"CORS_ORIGINS":     "*",
	"TRUSTED_PROXIES":  "",
	"UPLOAD_DIR":       "uploads",
	"MAX_UPLOAD_BYTES": "5242880",
	"AMQP_URL":         "",
	"AMQP_EXCHANGE":    "pizzastore.orders",
}

// newViper builds a viper instance reading environment variables over defaults,
// plus the optional file named by CONFIG_FILE
func newViper() (*viper.Viper, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
		log.Infof("Loaded configuration file %s", v.ConfigFileUsed())
	}
	return v, nil
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// It also validates formats like DATABASE_URL, APP_PORT and JWT_EXPIRATION
// Returns an error if any variable is invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(v.GetString("APP_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL != "" {
		// validate URL with net/url
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	expiration, err := time.ParseDuration(v.GetString("JWT_EXPIRATION"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}
	if expiration <= 0 {
		return nil, errors.New("JWT_EXPIRATION must be positive")
	}

	maxUpload, err := strconv.ParseInt(v.GetString("MAX_UPLOAD_BYTES"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %w", err)
	}

	rateLimit, err := strconv.ParseFloat(v.GetString("AUTH_RATE_LIMIT"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	rateBurst, err := strconv.Atoi(v.GetString("AUTH_RATE_BURST"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_BURST: %w", err)
	}

	seed, err := strconv.ParseBool(v.GetString("SEED_DATA"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DATA: %w", err)
	}

	config := &Config{
		Environment:    v.GetString("APP_ENV"),
		Port:           port,
		Host:           v.GetString("APP_HOST"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:         v.GetString("DB_PATH"),
		DatabaseURL:    dbURL,
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		SeedData:       seed,
		LogLevel:       v.GetString("LOG_LEVEL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiration:  expiration,
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
		AuthRateLimit:  rateLimit,
		AuthRateBurst:  rateBurst,
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadBytes: maxUpload,
		AMQPURL:        v.GetString("AMQP_URL"),
		AMQPExchange:   v.GetString("AMQP_EXCHANGE"),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// splitList splits a comma separated value, dropping empty items
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}
