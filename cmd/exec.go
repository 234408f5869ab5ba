package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v5"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"club-commerce/config"
	"club-commerce/internal/cartlock"
	"club-commerce/internal/fees"
	"club-commerce/internal/handlers"
	"club-commerce/internal/services"
	"club-commerce/internal/services/gateway"
	"club-commerce/internal/services/gateway/flashpay"
	"club-commerce/internal/store"
	"club-commerce/internal/venuetime"
	"club-commerce/monitoring"
	"club-commerce/security"
	"club-commerce/utils"

	_ "club-commerce/migrations"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub (buyer-facing push)
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	pn := pubnub.NewPubNub(pnConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Payment gateway
	var gw gateway.Gateway
	if cfg.FlashPay.BaseURL != "" {
		fp, err := flashpay.New(ctx, &cfg.FlashPay)
		if err != nil {
			return err
		}
		defer fp.Close(ctx)
		gw = fp
	} else {
		slog.Warn("flashpay not configured, paid checkouts disabled")
	}

	// Repositories and domain services
	st := store.New(app)
	loc := venuetime.Location(cfg.VenueUTCOffsetHours)

	lockStore := cartlock.NewRedisStore(redisClient)
	lockManager := cartlock.NewManager(lockStore, st.Carts, cfg.CartLockTTL, cfg.LockSweepEvery)

	cartService := services.NewCartService(st, lockManager, cfg.CartMaxAge)
	pricingService := services.NewPricingService(st, loc, cfg.EventGraceHours)

	var qrService *services.QRService
	if cfg.QRSecretKey != "" {
		var err error
		qrService, err = services.NewQRService(cfg.QRSecretKey)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("qr secret not configured, purchases will carry no entry codes")
	}

	feeTable := fees.Table{
		CoverCommissionRate: cfg.CoverCommissionRate,
		EventCommissionRate: cfg.EventCommissionRate,
		MenuCommissionRate:  cfg.MenuCommissionRate,
		GatewayFixed:        cfg.GatewayFixedFee,
		GatewayRate:         cfg.GatewayVariableRate,
		GatewayTaxRate:      cfg.GatewayFeeTaxRate,
		MinTransaction:      cfg.MinTransactionTotal,
	}

	checkoutService := services.NewCheckoutService(services.CheckoutDeps{
		Transactions: st.Transactions,
		Purchases:    st.Purchases,
		CartLines:    st.Carts,
		Stock:        st.Catalog,
		Carts:        cartService,
		Pricer:       pricingService,
		Locks:        lockManager,
		Gateway:      gw,
		Fees:         feeTable,
		QR:           qrService,
		Notifier:     services.NewNotifier(app, pn),
		Sessions:     services.NewSessionCache(redisClient, cfg.SessionTTL),
		Breaker: utils.BreakerSettings{
			MaxRequests:  uint32(cfg.BreakerMaxRequests),
			Interval:     cfg.BreakerWindow,
			Timeout:      cfg.BreakerCooldown,
			FailureRatio: cfg.BreakerFailureRatio,
		},
		PollInterval:    cfg.PollInterval,
		MaxPollAttempts: cfg.MaxPollAttempts,
	})

	// Out-of-band gateway confirmations
	if gw != nil {
		txChannel := make(chan *gateway.Transaction, 1)
		gw.SetTransactionChannel(txChannel)
		go func() {
			for {
				select {
				case t := <-txChannel:
					slog.Info("gateway notification", "reference", t.Reference, "status", t.Status)
					if err := checkoutService.ConfirmProvider(ctx, t); err != nil {
						slog.Error("checkoutService.ConfirmProvider()", "reference", t.Reference, "error", err)
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(app, cartService)
	checkoutHandler := handlers.NewCheckoutHandler(app, checkoutService)
	pricingHandler := handlers.NewPricingHandler(app, pricingService)

	rateLimiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	// Start background tasks
	go lockManager.Run(ctx)

	if cfg.EnableMetrics {
		monitoring.NewMonitor(redisClient)
		go serveOps(cfg.MetricsPort, redisClient)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Cart endpoints
		e.Router.GET("/api/v1/cart", cartHandler.GetCart).BindFunc(rateLimiter.CartGuard())
		e.Router.POST("/api/v1/cart/lines", cartHandler.AddLine).BindFunc(rateLimiter.CartGuard())
		e.Router.PATCH("/api/v1/cart/lines/{lineId}", cartHandler.UpdateLine).BindFunc(rateLimiter.CartGuard())
		e.Router.DELETE("/api/v1/cart", cartHandler.ClearCart).BindFunc(rateLimiter.CartGuard())

		// Pricing preview
		e.Router.POST("/api/v1/pricing/quote", pricingHandler.Quote).BindFunc(rateLimiter.AntiBotGuard())

		// Checkout endpoints
		e.Router.POST("/api/v1/checkout", checkoutHandler.Initiate).BindFunc(rateLimiter.CheckoutGuard())
		e.Router.GET("/api/v1/checkout/{reference}", checkoutHandler.Status)
		e.Router.GET("/api/v1/checkout/{reference}/purchases", checkoutHandler.Purchases)

		// Door redemption
		e.Router.POST("/api/v1/purchases/redeem", checkoutHandler.Redeem)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
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

// serveOps exposes prometheus metrics and a liveness probe on a
// separate port, away from the public API.
func serveOps(port string, redisClient *redis.Client) {
	e := echo.New()

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(200, map[string]string{"status": "healthy"})
	})

	log.Printf("ops server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, e); err != nil {
		slog.Error("ops server stopped", "error", err)
	}
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
