package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/pizzastore-api/docs" // Import generated docs
	"github.com/franciscosanchezn/pizzastore-api/internal/auth"
	"github.com/franciscosanchezn/pizzastore-api/internal/config"
	"github.com/franciscosanchezn/pizzastore-api/internal/database"
	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/metrics"
	"github.com/franciscosanchezn/pizzastore-api/internal/middleware"
	"github.com/franciscosanchezn/pizzastore-api/internal/repositories"
	"github.com/franciscosanchezn/pizzastore-api/internal/router"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/franciscosanchezn/pizzastore-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title PizzaStore API
// @version 1.0
// @description Pizza catalog, customers and orders with JWT and OAuth2 client credentials authentication.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)

	// Order events fan out to the live feed, metrics and RabbitMQ when configured
	hub := events.NewHub()
	publisher := events.Multi{hub, metrics.OrderRecorder{}}
	if configuration.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(events.AMQPConfig{
			URL:      configuration.AMQPURL,
			Exchange: configuration.AMQPExchange,
		})
		checkPanicErr(err)
		defer amqpPublisher.Close()
		publisher = append(publisher, amqpPublisher)
	}

	images, err := storage.NewLocalImageStore(configuration.UploadDir, "/uploads", configuration.MaxUploadBytes)
	checkPanicErr(err)

	// Initialize services
	store := repositories.NewStore(db)
	tokens := services.NewTokenService(configuration.JWTSecret, configuration.JWTExpiration)
	authLimiter := middleware.NewRateLimiter(configuration.AuthRateLimit, configuration.AuthRateBurst)
	done := make(chan struct{})
	authLimiter.StartCleanup(time.Minute, done)

	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.SetupRouter(router.Dependencies{
		DB:             db,
		Tokens:         tokens,
		Pizzas:         services.NewPizzaService(store, images),
		Customers:      services.NewCustomerService(store, tokens),
		Orders:         services.NewOrderService(store, publisher),
		Clients:        services.NewClientService(db),
		OAuth:          auth.NewOAuthService(db, tokens),
		Hub:            hub,
		AuthLimiter:    authLimiter,
		UploadDir:      configuration.UploadDir,
		CORSOrigins:    configuration.CORSOrigins,
		TrustedProxies: configuration.TrustedProxies,
	})

	// Start the server
	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	waitForShutdown(srv, hub, done)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then drains in-flight requests
func waitForShutdown(srv *http.Server, hub *events.Hub, done chan struct{}) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	close(done)
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter. LOG_LEVEL wins over
// the level implied by the environment.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	switch conf.Environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if os.Getenv("LOG_LEVEL") != "" {
		level, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			log.WithError(err).Warn("Ignoring invalid LOG_LEVEL")
			return
		}
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates and seeds the database
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)

	checkPanicErr(database.Migrate(db))
	checkPanicErr(database.EnsureAdmin(db, conf.AdminEmail, conf.AdminPassword))
	if conf.SeedData {
		checkPanicErr(database.SeedPizzas(db))
	}
	return db
}
