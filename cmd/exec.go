package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"ravehub/config"
	"ravehub/internal/handlers"
	"ravehub/internal/services/gateway/mercadopago"
	"ravehub/internal/services/notify"
	"ravehub/internal/services/orders"
	"ravehub/internal/services/review"
	"ravehub/internal/services/ticketing"
	"ravehub/internal/store"
	_ "ravehub/migrations"
	"ravehub/monitoring"
	"ravehub/security"
	"ravehub/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	// Initialize MercadoPago client
	gateway, err := mercadopago.New(&mercadopago.ClientConfig{
		BaseURL:       cfg.MercadoPagoBaseURL,
		AccessToken:   cfg.MercadoPagoAccessToken,
		WebhookKey:    cfg.MercadoPagoWebhookKey,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	db := store.New(app)
	stock := ticketing.NewStock(redisClient)
	notifyService := notify.NewService(db, notify.NewPubNubPublisher(pn))
	ticketService := ticketing.NewService(db, stock, notifyService, cfg.OnlinePaymentTTL, cfg.OfflineGrace)
	reviewService := review.NewService(db, notifyService)
	orderService := orders.NewService(db, gateway, notifyService)
	webhookService := orders.NewWebhookService(db, gateway,
		&orders.RedisDeduper{Redis: redisClient, TTL: cfg.WebhookDedupeTTL}, notifyService)

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, ticketService, reviewService)
	adminHandler := handlers.NewAdminHandler(app, reviewService)
	paymentHandler := handlers.NewPaymentHandler(app, gateway, orderService, webhookService)
	orderHandler := handlers.NewOrderHandler(app, orderService)
	eventHandler := handlers.NewEventHandler(app, db)
	notificationHandler := handlers.NewNotificationHandler(app, db)
	blogHandler := handlers.NewBlogHandler(app, db)

	rateLimiter := security.NewRateLimiter(redisClient, cfg.PurchaseRateLimit, cfg.PurchaseRateWindow)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Seed stock counters and keep them in sync with the catalog.
		go func() {
			if err := stock.SeedEvents(ctx, db); err != nil {
				slog.Error("stock.SeedEvents()", "error", err)
			}
			stock.SyncLoop(ctx, db, cfg.StockSyncInterval)
		}()

		if cfg.EnableMetrics {
			monitor := monitoring.NewMonitor(redisClient)
			go monitor.Collect(ctx)
			e.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		// Event catalog
		e.Router.GET("/api/v1/events", eventHandler.ListEvents)
		e.Router.GET("/api/v1/events/{eventId}", eventHandler.GetEvent)

		// Ticket purchase and delivery
		e.Router.POST("/api/v1/tickets/purchase", ticketHandler.Purchase).BindFunc(rateLimiter.PurchaseRateLimit())
		e.Router.GET("/api/v1/tickets", ticketHandler.ListMyTickets)
		e.Router.GET("/api/v1/tickets/{transactionId}/download", ticketHandler.Download)
		e.Router.GET("/api/v1/tickets/{transactionId}/installments", ticketHandler.ListInstallments)
		e.Router.POST("/api/v1/installments/{installmentId}/proof", ticketHandler.UploadProof)

		// Admin review queue
		e.Router.GET("/api/v1/admin/installments/pending", adminHandler.ListPendingInstallments)
		e.Router.POST("/api/v1/admin/installments/{installmentId}/approve", adminHandler.ApproveInstallment)
		e.Router.POST("/api/v1/admin/installments/{installmentId}/reject", adminHandler.RejectInstallment)

		// Orders and gateway checkout
		e.Router.POST("/api/v1/orders", orderHandler.Checkout)
		e.Router.GET("/api/v1/orders", orderHandler.ListMyOrders)
		e.Router.POST("/api/v1/payments/preference", paymentHandler.CreatePreference)
		e.Router.POST("/api/v1/payments/webhook", paymentHandler.MercadoPagoWebhook)
		e.Router.GET("/api/v1/payments/webhook", paymentHandler.Health)

		// Notifications
		e.Router.GET("/api/v1/notifications", notificationHandler.ListNotifications)
		e.Router.POST("/api/v1/notifications/{notificationId}/read", notificationHandler.MarkRead)
		e.Router.POST("/api/v1/notifications/read-all", notificationHandler.MarkAllRead)

		// Blog
		e.Router.GET("/api/v1/blog/posts", blogHandler.ListPosts)
		e.Router.GET("/api/v1/blog/posts/{slug}", blogHandler.GetPost)
		e.Router.POST("/api/v1/blog/posts/{slug}/comments", blogHandler.CreateComment)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
