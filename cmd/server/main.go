package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food_ordering/internal/config"
	"food_ordering/internal/database"
	"food_ordering/internal/events"
	"food_ordering/internal/handlers"
	"food_ordering/internal/logging"
	"food_ordering/internal/migrations"
	"food_ordering/internal/redis"
	"food_ordering/internal/repository"
	"food_ordering/internal/services"
	"food_ordering/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := migrations.RunMigrations(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	publisher, err := events.New(events.Options{
		Broker:           cfg.EventBroker,
		RabbitMQURL:      cfg.RabbitMQURL,
		RabbitMQExchange: cfg.RabbitMQExchange,
		KafkaBrokers:     cfg.KafkaBrokers,
		KafkaTopic:       cfg.KafkaTopic,
	})
	if err != nil {
		log.Fatal().Err(err).Str("broker", cfg.EventBroker).Msg("Failed to start event publisher")
	}
	defer publisher.Close()

	// WhatsApp stays off until an API URL is configured.
	var sender services.MessageSender
	if cfg.WhatsAppEnabled() {
		sender = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	} else {
		log.Warn().Msg("WHATSAPP_API_URL not set, guest notifications are disabled")
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	hours := services.NewBusinessHours(cfg.Location, nil)
	whatsappService := services.NewWhatsAppService(sender)
	menuService := services.NewMenuService(productRepo, cfg.UploadDir, cfg.MaxUploadBytes)
	cartService := services.NewCartService(productRepo, redisClient, cfg.SessionTTL(), cfg.TaxRate)
	orderService := services.NewOrderService(services.OrderServiceDeps{
		Orders:        orderRepo,
		OrderItems:    orderItemRepo,
		Customers:     customerRepo,
		Reservations:  reservationRepo,
		Notifications: notificationRepo,
		Cart:          cartService,
		Redis:         redisClient,
		Publisher:     publisher,
		WhatsApp:      whatsappService,
		Hours:         hours,
		DeliveryFee:   cfg.DeliveryFee,
		StatusTTL:     cfg.CacheDuration(),
	})
	reservationService := services.NewReservationService(reservationRepo, hours, cfg.ReservationPhone, publisher, whatsappService)
	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(customerRepo, adminRepo)

	// Initialize handlers
	apiHandler := handlers.NewAPIHandler(menuService, cartService, orderService, reservationService, userService,
		hours, cfg.DeliveryFee, redisClient, cfg.SessionTTL())
	adminHandler := handlers.NewAdminHandler(menuService, orderService, reservationService, notificationService, userService,
		redisClient, cfg.SessionTTL())
	whatsappHandler := handlers.NewWhatsAppHandler(sender)

	// Setup routes
	router := handlers.NewRouter(handlers.RouterConfig{
		Sessions:      redisClient,
		SessionTTL:    cfg.SessionTTL(),
		SecureCookies: cfg.SecureCookies,
		UploadDir:     cfg.UploadDir,
	}, apiHandler, adminHandler, whatsappHandler)
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}
