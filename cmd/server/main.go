package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/iliyamo/course-booking/internal/config"
	"github.com/iliyamo/course-booking/internal/database"
	"github.com/iliyamo/course-booking/internal/handler"
	"github.com/iliyamo/course-booking/internal/middleware"
	"github.com/iliyamo/course-booking/internal/notification"
	"github.com/iliyamo/course-booking/internal/payment"
	"github.com/iliyamo/course-booking/internal/queue"
	"github.com/iliyamo/course-booking/internal/repository"
	"github.com/iliyamo/course-booking/internal/repository/mongorepo"
	"github.com/iliyamo/course-booking/internal/router"
	"github.com/iliyamo/course-booking/internal/service"
)

// receiptDrainTimeout bounds how long shutdown waits for buffered receipts.
const receiptDrainTimeout = 15 * time.Second

// stores is the backend selected by STORE_DRIVER.
type stores struct {
	users    service.UserStore
	classes  service.ClassStore
	bookings service.BookingStore
	close    func()
}

func main() {
	cfg := config.Load() // Load environment config

	logger := log.New("course-booking")
	logger.SetLevel(logLevel(cfg.LogLevel))

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger = logger
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := log.JSON{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"subject":    middleware.Subject(c),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
			}
			logger.Infoj(fields)
			return nil
		},
	}))
	e.Use(middleware.Metrics())

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Fatalf("store (%s): %v", cfg.StoreDriver, err)
	}
	defer st.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Receipt delivery
	sender := notification.NewMailgunSender(cfg.EmailDomain, cfg.EmailAPIKey, cfg.EmailFrom, "", logger)
	policy := notification.RetryPolicy{
		Retries:        cfg.ReceiptRetries,
		AttemptTimeout: cfg.ReceiptTimeout,
		InitialBackoff: 500 * time.Millisecond,
	}
	var receipts service.ReceiptQueue
	switch cfg.ReceiptDispatch {
	case config.DispatchAMQP:
		pub := queue.NewPublisher(cfg.RabbitURL, logger)
		defer pub.Close()
		receipts = pub
		consumer := queue.NewConsumer(cfg.RabbitURL, sender, policy, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("receipt consumer stopped: %v", err)
			}
		}()
	default:
		d := notification.NewDispatcher(sender, cfg.ReceiptWorkers, cfg.ReceiptBuffer, policy, logger)
		d.Start(ctx)
		defer func() {
			// runs after the HTTP server has stopped taking bookings
			drainCtx, cancel := context.WithTimeout(context.Background(), receiptDrainTimeout)
			defer cancel()
			if err := d.Stop(drainCtx); err != nil {
				logger.Errorf("receipt drain: %v", err)
			}
		}()
		receipts = d
	}

	// Services and handlers
	users := service.NewUserService(st.users, st.classes, logger)
	h := router.Handlers{
		Users:       handler.NewUserHandler(users),
		Instructors: handler.NewInstructorHandler(users),
		Catalog:     handler.NewCatalogHandler(service.NewCatalogService(st.users, st.classes)),
		Bookings:    handler.NewBookingHandler(service.NewBookingService(st.users, st.bookings, receipts, logger), users),
		Payments: handler.NewPaymentHandler(service.NewPaymentService(
			payment.NewStripeProvider(cfg.PaymentSecretKey, nil), logger)),
	}
	switch {
	case cfg.JWTSecret != "" && cfg.TokenIssuerKey != "":
		h.Auth = handler.NewAuthHandler(users, cfg.JWTSecret, cfg.TokenIssuerKey, cfg.AccessTTLMin)
	case cfg.AuthEnabled:
		logger.Warn("TOKEN_ISSUER_KEY not set, POST /jwt disabled; tokens must come from another issuer")
	}
	if cfg.PaymentSecretKey == "" {
		logger.Warn("PAYMENT_SECRET_KEY not set, payment intents will fail")
	}

	// Redis backed cache and rate limiter; both pass through without Redis
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warnf("cache and rate limiting disabled: %v", err)
	} else if rdb != nil {
		defer rdb.Close()
	}

	router.RegisterRoutes(e, h, router.Options{
		AppName:     cfg.AppName,
		Port:        cfg.Port,
		AuthEnabled: cfg.AuthEnabled,
		JWTSecret:   cfg.JWTSecret,
		Cache:       middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	logger.Infoj(log.JSON{"event": "listening", "addr": addr, "env": cfg.Env,
		"store": cfg.StoreDriver, "receipts": cfg.ReceiptDispatch, "auth": cfg.AuthEnabled})

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func openStores(cfg config.Config, logger *log.Logger) (*stores, error) {
	if cfg.StoreDriver == config.DriverMongo {
		client, err := database.OpenMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.EnsureMongoIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return mongoStores(client, db), nil
	}

	db, err := database.Open(cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		users:    repository.NewUserRepo(db),
		classes:  repository.NewClassRepo(db),
		bookings: repository.NewBookingRepo(db),
		close:    func() { _ = db.Close() },
	}, nil
}

// mongoStores uses the users collection for classes too, since classes
// are embedded in their instructor's document.
func mongoStores(client *mongo.Client, db *mongo.Database) *stores {
	users := mongorepo.NewUserStore(db.Collection("users"))
	return &stores{
		users:    users,
		classes:  users,
		bookings: mongorepo.NewBookingStore(db.Collection("bookings")),
		close:    func() { _ = client.Disconnect(context.Background()) },
	}
}

func logLevel(s string) log.Lvl {
	switch s {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	}
	return log.INFO
}
