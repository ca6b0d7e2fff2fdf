// Package router assembles the gin engine: middleware chain, route table and
// per-route authorization.
package router

import (
	"net/http"

	"github.com/franciscosanchezn/pizzastore-api/internal/auth"
	"github.com/franciscosanchezn/pizzastore-api/internal/controllers"
	"github.com/franciscosanchezn/pizzastore-api/internal/events"
	"github.com/franciscosanchezn/pizzastore-api/internal/metrics"
	"github.com/franciscosanchezn/pizzastore-api/internal/middleware"
	"github.com/franciscosanchezn/pizzastore-api/internal/models"
	"github.com/franciscosanchezn/pizzastore-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// maxMultipartMemory keeps image uploads in memory up to this size
const maxMultipartMemory = 8 << 20

// Dependencies are the services the routes are served by
type Dependencies struct {
	DB             *gorm.DB
	Tokens         services.TokenService
	Pizzas         services.PizzaService
	Customers      services.CustomerService
	Orders         services.OrderService
	Clients        services.ClientService
	OAuth          *auth.OAuthService
	Hub            *events.Hub
	AuthLimiter    *middleware.RateLimiter
	UploadDir      string
	CORSOrigins    []string
	// TrustedProxies may set X-Forwarded-For, nil trusts no proxy
	TrustedProxies []string
}

// SetupRouter initializes the Gin router and sets up the routes
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.HandleMethodNotAllowed = true
	// the auth rate limiter keys on ClientIP, which must not follow spoofed headers
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		log.WithError(err).WithField("trusted_proxies", deps.TrustedProxies).Error("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		metrics.Instrument(),
		middleware.SecurityHeaders(),
		middleware.CORS(deps.CORSOrigins...),
		middleware.ErrorHandler(),
	)
	router.NoRoute(middleware.NotFound())
	router.NoMethod(middleware.MethodNotAllowed())

	setupRoutes(router, deps)
	return router
}

func setupRoutes(router *gin.Engine, deps Dependencies) {
	pizzaController := controllers.NewPizzaController(deps.Pizzas)
	customerController := controllers.NewCustomerController(deps.Customers, deps.Orders)
	orderController := controllers.NewOrderController(deps.Orders, deps.Hub)
	authController := controllers.NewAuthController(deps.Customers)
	clientController := controllers.NewClientController(deps.Clients)
	healthController := controllers.NewHealthController(deps.DB)

	router.GET("/health", healthController.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if deps.UploadDir != "" {
		router.StaticFS("/uploads", gin.Dir(deps.UploadDir, false))
	}

	// OAuth2 token endpoint (client_credentials only)
	router.POST("/oauth/token", deps.OAuth.HandleToken)

	api := router.Group("/api")

	authApi := api.Group("/auth")
	if deps.AuthLimiter != nil {
		authApi.Use(deps.AuthLimiter.Handler())
	}
	{
		authApi.POST("/register", authController.Register)
		authApi.POST("/login", authController.Login)
	}

	// public catalog
	api.GET("/pizzas", pizzaController.GetAllPizzas)
	api.GET("/pizzas/:id", pizzaController.GetPizzaByID)

	// Protected routes (requires JWT authentication)
	protectedApi := api.Group("")
	protectedApi.Use(middleware.JWTAuth(deps.Tokens))

	admin := middleware.RequireRole(models.RoleAdmin)
	anyRole := middleware.RequireRole(models.RoleAdmin, models.RoleCustomer)
	customer := middleware.RequireRole(models.RoleCustomer)

	pizzas := protectedApi.Group("/pizzas", admin)
	{
		pizzas.POST("", pizzaController.CreatePizza)
		pizzas.PUT("/:id", pizzaController.UpdatePizza)
		pizzas.DELETE("/:id", pizzaController.DeletePizza)
		pizzas.POST("/:id/image", pizzaController.UploadImage)
	}

	customers := protectedApi.Group("/customers", anyRole)
	{
		customers.GET("", customerController.ListCustomers)
		customers.GET("/:id", customerController.GetCustomer)
		customers.GET("/:id/orders", customerController.GetCustomerOrders)
		customers.GET("/:id/favorites", customerController.GetFavorites)
		customers.POST("/:id/favorites/:pizzaId", customerController.AddFavorite)
		customers.DELETE("/:id/favorites/:pizzaId", customerController.RemoveFavorite)
	}

	orders := protectedApi.Group("/orders")
	{
		orders.GET("", admin, orderController.ListOrders)
		orders.GET("/live", admin, orderController.Live)
		orders.GET("/:id", anyRole, orderController.GetOrder)
		orders.POST("", customer, orderController.CreateOrder)
		orders.PATCH("/:id/status", admin, orderController.UpdateStatus)
		orders.DELETE("/:id", admin, orderController.CancelOrder)
	}

	clients := protectedApi.Group("/clients", admin)
	{
		clients.POST("", clientController.CreateClient)
		clients.GET("", clientController.ListClients)
		clients.GET("/:id", clientController.GetClient)
		clients.DELETE("/:id", clientController.DeleteClient)
	}

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})
}
