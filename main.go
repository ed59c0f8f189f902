package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"organicindia/internal/handlers"
	"organicindia/internal/middleware"
	"organicindia/internal/models"
	"organicindia/internal/repositories"
	"organicindia/internal/services"
	"organicindia/pkg/rabbitmq"
)

// loadConfig sets the configuration defaults and pulls overrides from
// the environment.
func loadConfig() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "organicindia.db")
	viper.SetDefault("SESSION_SECRET", "change-me-in-production")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()
}

// openDatabase opens the configured database and migrates the schema.
func openDatabase() (*gorm.DB, error) {
	driver := viper.GetString("DATABASE_DRIVER")
	dsn := viper.GetString("DATABASE_DSN")

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Material{}, &models.Order{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewApp wires repositories, services, and handlers into a Fiber app.
// mqClient may be nil, in which case order events are not published.
func NewApp(mqClient *rabbitmq.Client) (*fiber.App, *services.AuthService, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}

	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	materialRepo := repositories.NewGORMMaterialRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, viper.GetString("SESSION_SECRET"))
	catalogService := services.NewCatalogService(materialRepo, userRepo)
	orderService := services.NewOrderService(orderRepo, materialRepo, mqClient)

	// Handlers
	renderer, err := handlers.NewRenderer()
	if err != nil {
		return nil, nil, err
	}
	authHandler := handlers.NewAuthHandler(authService, renderer)
	vendorHandler := handlers.NewVendorHandler(catalogService, orderService, renderer)
	supplierHandler := handlers.NewSupplierHandler(catalogService, orderService, renderer)

	app := fiber.New()
	app.Use(logger.New()) // Request logger

	// Public routes
	authHandler.RegisterRoutes(app)

	// Role-gated routes
	vendor := app.Group("/vendor", middleware.RequireRole(authService, models.RoleVendor))
	vendorHandler.RegisterRoutes(vendor)

	supplier := app.Group("/supplier", middleware.RequireRole(authService, models.RoleSupplier))
	supplierHandler.RegisterRoutes(supplier)

	// Status updates live at the top of the URL space but still require
	// the supplier role; ownership is checked against the order's material.
	app.Get("/update_order_status/:order_id/:status",
		middleware.RequireRole(authService, models.RoleSupplier),
		supplierHandler.HandleUpdateOrderStatus)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, authService, nil
}

func main() {
	loadConfig()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Optional RabbitMQ client ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set; order events will not be published")
	}

	app, _, err := NewApp(mqClient)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	// --- Fulfillment event consumer ---
	if mqClient != nil {
		log.Println("Starting marketplace event consumer...")
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received marketplace event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil // Return nil to acknowledge
		}
		if consumerErr := mqClient.ConsumeEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start marketplace event consumer: %v", consumerErr)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
