package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brewshop/internal/auth"
	"brewshop/internal/config"
	"brewshop/internal/database"
	"brewshop/internal/handlers"
	"brewshop/internal/middleware"
	"brewshop/internal/migrations"
	"brewshop/internal/notify"
	"brewshop/internal/redis"
	"brewshop/internal/repository"
	"brewshop/internal/services"
	"brewshop/pkg/mailer"
	"brewshop/pkg/whatsapp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.LoginTokenTTL)

	// Notifications
	var mail mailer.Mailer = &mailer.LogMailer{From: cfg.EmailSender}
	if cfg.PostmarkAPIToken != "" {
		mail = mailer.NewPostmarkMailer(cfg.PostmarkAPIToken, cfg.EmailSender, cfg.PostmarkAPIURL)
	} else {
		log.Println("Warning: POSTMARK_API_TOKEN not set, e-mails will only be logged")
	}
	senders := map[notify.Channel]notify.Sender{
		notify.ChannelEmail: &notify.EmailSender{Mailer: mail},
	}
	channels := []notify.Channel{notify.ChannelEmail}
	if cfg.WhatsAppEnabled() {
		whatsappClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
		senders[notify.ChannelWhatsApp] = &notify.WhatsAppSender{Client: whatsappClient}
		channels = append(channels, notify.ChannelWhatsApp)
	}
	redisQueue := notify.NewRedisQueue(redisClient)
	queue := notify.OnlyChannels(redisQueue, channels...)
	dispatcher := notify.NewDispatcher(redisQueue, senders, cfg.NotifyMaxAttempts, cfg.NotifyBackoff)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := services.NewUserService(db, userRepo, tokens, queue, cfg.RecoveryTokenTTL)
	catalogService := services.NewCatalogService(productRepo, repository.NewCategoryRepository(db),
		repository.NewStoreRepository(db), redisClient)
	wishlistService := services.NewWishlistService(repository.NewWishlistRepository(db), productRepo)
	cartService := services.NewCartService(db, cartRepo, productRepo)
	shippingService := services.NewShippingService(db, cartRepo, shippingRepo)
	orderService := services.NewOrderService(db, orderRepo, cartRepo, shippingRepo, queue)
	trackingService := services.NewTrackingService(db, orderRepo, cartRepo, shippingRepo,
		repository.NewTrackingRepository(db), queue)
	paymentService := services.NewPaymentService(orderRepo, cartRepo, shippingRepo,
		repository.NewPaymentRepository(db), queue)
	reviewService := services.NewReviewService(db, repository.NewReviewRepository(db), productRepo)
	signupService := services.NewSignupService(repository.NewSignupRepository(db))

	err = migrations.RunMigrations(ctx, db, userService, migrations.Admin{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	rateLimit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		log.Fatal("Invalid RATE_LIMIT:", err)
	}

	// Initialize handlers
	sessions := handlers.NewSessions(redisClient, cfg.SessionTTL)
	router := &handlers.Router{
		Tokens:      tokens,
		RateLimit:   rateLimit,
		CORSOrigins: cfg.CORSOrigins,
		MediaRoot:   cfg.MediaRoot,
		API:         handlers.NewAPIHandler(sessions, db, redisClient),
		Catalog:     handlers.NewCatalogHandler(catalogService, wishlistService, sessions),
		Cart:        handlers.NewCartHandler(cartService, sessions),
		Order:       handlers.NewOrderHandler(shippingService, orderService, trackingService, paymentService, sessions),
		User:        handlers.NewUserHandler(userService),
		Review:      handlers.NewReviewHandler(reviewService, cfg.MediaRoot),
		Signup:      handlers.NewSignupHandler(signupService),
	}

	dispatcherDone := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(dispatcherDone)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: graceful shutdown failed: %v", err)
	}

	// unfinished messages stay claimed in redis and are requeued on next start
	select {
	case <-dispatcherDone:
	case <-shutdownCtx.Done():
		log.Println("Warning: notification dispatcher did not stop in time")
	}
}
