package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	config "github.com/phillip/event-listing-go/config"
	controllers "github.com/phillip/event-listing-go/controllers"
	logging "github.com/phillip/event-listing-go/logging"
	middleware "github.com/phillip/event-listing-go/middleware"
	repository "github.com/phillip/event-listing-go/repository"
	routes "github.com/phillip/event-listing-go/routes"
	services "github.com/phillip/event-listing-go/services"
	utils "github.com/phillip/event-listing-go/utils"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Error("config", zap.Error(err))
		return err
	}

	logger, err := logging.NewLogger(logging.Config{Component: "api", Level: cfg.LogLevel})
	if err != nil {
		zap.NewExample().Error("logger", zap.Error(err))
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.EnvFileLoaded {
		logger.Info("no .env file, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	client, err := config.Connect(connectCtx, cfg)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	db := client.Database(cfg.DBName)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}

	eventRepo := repository.NewEventRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	var images controllers.ImageStore
	if cfg.Cloudinary.CloudName != "" {
		store, err := utils.NewImageStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			logger.Error("cloudinary init failed", zap.Error(err))
			return err
		}
		images = store
	} else {
		logger.Warn("cloudinary not configured, image uploads disabled")
	}

	var notifier services.BookingNotifier
	if cfg.Mail.APIURL != "" {
		mailer, err := utils.NewMailer(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, cfg.Mail.FromName, cfg.Mail.Timeout)
		if err != nil {
			logger.Error("mailer init failed", zap.Error(err))
			return err
		}
		notifier = mailer
	} else {
		logger.Warn("mail not configured, booking confirmations disabled")
	}

	eventSvc := services.NewEventService(eventRepo, logger.Named("events"))
	bookingSvc := services.NewBookingService(eventRepo, bookingRepo, notifier, logger.Named("bookings"))

	rateStore, closeRateStore, err := middleware.NewRateStore(cfg.RedisURL, "bookings")
	if err != nil {
		logger.Error("rate limit store init failed", zap.Error(err))
		return err
	}
	defer func() { _ = closeRateStore() }()
	bookingLimit, err := middleware.RateLimit(rateStore, cfg.BookingRateLimit)
	if err != nil {
		logger.Error("invalid booking rate limit", zap.Error(err))
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(
		gin.Recovery(),
		logging.RequestLogger(logger),
		cors.New(corsConfig(cfg.CORSOrigins)),
		middleware.Timeout(cfg.RequestTimeout),
	)

	routes.SetupRoutes(r, cfg, routes.Handlers{
		Events:       eventSvc,
		Bookings:     bookingSvc,
		Images:       images,
		DB:           client,
		BookingLimit: bookingLimit,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", logging.RequestIDHeader},
		ExposeHeaders: []string{"ETag", "Last-Modified", logging.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}
