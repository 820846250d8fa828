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

	"reelshare/domain/repository"
	"reelshare/infrastructure/cache"
	"reelshare/infrastructure/clients/instagram"
	"reelshare/infrastructure/configuration"
	"reelshare/infrastructure/logger"
	"reelshare/infrastructure/persistence"
	"reelshare/infrastructure/pubsub"
	"reelshare/infrastructure/ratelimit"
	"reelshare/infrastructure/realtime"
	"reelshare/infrastructure/servicebus"
	"reelshare/infrastructure/webpush"
	"reelshare/infrastructure/worker"
	httpHandler "reelshare/interfaces/http"
	"reelshare/server"
	"reelshare/usecase"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	if err := run(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configuration.Load("config.env", ".env")
	cfg := configuration.C
	app := cfg.App
	if err := app.Validate(); err != nil {
		return err
	}

	mongoClient, err := persistence.NewMongoDb(ctx, cfg.Database.Mongo.URI)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while disconnecting MongoDB")
		}
	}()
	logger.GetLogger().Info("MongoDB connected successfully")

	db := mongoClient.Database(cfg.Database.Mongo.Name)
	perSubmitter := cfg.Reels.DuplicatePolicy == configuration.DuplicatePolicySubmitter
	if err := persistence.EnsureIndexes(ctx, db, perSubmitter); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	reelRepository := persistence.NewReelRepository(db)
	accountRepository := persistence.NewAccountRepository(db)
	pushRepository := persistence.NewPushSubscriptionRepository(db)

	healthChecks := map[string]httpHandler.HealthCheck{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var (
		resolutionCache repository.IResolutionCache
		limiter         repository.ISubmissionLimiter
	)
	if addr := cfg.RedisClient.Addr(); addr != "" {
		redisClient, err := cache.NewCache(ctx, addr, cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB())
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cache and rate limiting")
		} else {
			defer redisClient.Close()
			resolutionCache, limiter = redisBacked(redisClient, cfg)
			healthChecks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
			logger.GetLogger().Info("Redis client initialized successfully.")
		}
	}

	sources, err := instagram.NewSources(instagram.Options{
		Timeout:        cfg.Resolver.Timeout(),
		DirectEndpoint: cfg.Resolver.DirectEndpoint,
		JSONBaseURL:    cfg.Resolver.JSONBaseURL,
		OEmbedURL:      cfg.Resolver.OEmbedURL,
		PageBaseURL:    cfg.Resolver.PageBaseURL,
	}, cfg.Resolver.Order)
	if err != nil {
		return fmt.Errorf("build resolution sources: %w", err)
	}
	resolver := usecase.NewResolver(sources...)

	// a task may walk every source once, each bounded by the resolver timeout
	taskTimeout := time.Duration(len(sources)+1) * cfg.Resolver.Timeout()
	pool := worker.NewPool(cfg.Worker.QueueSize, cfg.Worker.Concurrency, taskTimeout)

	publisher := newPublisher(ctx, cfg)
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Error while closing event publisher")
			}
		}()
	}

	pushSender := webpush.NewSender(webpush.Options{
		PublicKey:  cfg.Push.VAPIDPublicKey,
		PrivateKey: cfg.Push.VAPIDPrivateKey,
		Subject:    cfg.Push.Subject,
		TTL:        cfg.Push.TTL,
	})
	if pushSender == nil {
		logger.GetLogger().Info("VAPID keys not configured - push notifications disabled")
	}

	hub := realtime.NewReelHub()
	notificationUsecase := usecase.NewNotificationUsecase(pushRepository, accountRepository, pushSender, usecase.NotificationOptions{
		Icon:  cfg.Push.Icon,
		Badge: cfg.Push.Badge,
	})
	reelUsecase := usecase.NewReelUsecase(reelRepository, accountRepository, resolver, pool, usecase.ReelDeps{
		Cache:     resolutionCache,
		Limiter:   limiter,
		Publisher: publisher,
		Status:    hub,
		Notifier:  notificationUsecase,
	}, usecase.ReelOptions{
		BulkLimit:    cfg.Reels.BulkLimit,
		PageSize:     int64(cfg.Reels.PageSize),
		PerSubmitter: perSubmitter,
		StaleAfter:   cfg.Reels.StaleAfter(),
		SweepBatch:   int64(cfg.Reels.SweepBatch),
	})
	accountUsecase := usecase.NewAccountUsecase(accountRepository, app.SecretKey, time.Duration(app.TokenTTLHour)*time.Hour)
	pushUsecase := usecase.NewPushUsecase(pushRepository, pushSender)

	router := server.InitiateRouter(
		app.SecretKey,
		app.AllowOrigins,
		accountRepository,
		httpHandler.NewAccountHandler(accountUsecase),
		httpHandler.NewReelHandler(reelUsecase, hub),
		httpHandler.NewPushHandler(pushUsecase, notificationUsecase),
		httpHandler.NewHealthHandler(healthChecks),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pool.Run(gctx)
	})

	g.Go(func() error {
		sweep(gctx, reelUsecase, cfg.Reels.SweepInterval())
		return nil
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
		var err error
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile)
		} else {
			if app.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func redisBacked(client *redis.Client, cfg configuration.Config) (repository.IResolutionCache, repository.ISubmissionLimiter) {
	var resolutionCache repository.IResolutionCache
	if ttl := cfg.Resolver.CacheTTL(); ttl > 0 {
		resolutionCache = cache.NewResolutionCache(client, ttl)
	}
	if cfg.Reels.SubmitLimit <= 0 {
		return resolutionCache, nil
	}
	limiter, err := ratelimit.NewFixedWindowLimiter(client, "reelshare:submit", cfg.Reels.SubmitLimit, cfg.Reels.SubmitWindow())
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Submission rate limiter disabled")
		return resolutionCache, nil
	}
	return resolutionCache, limiter
}

func newPublisher(ctx context.Context, cfg configuration.Config) repository.IReelEventPublisher {
	topic := cfg.Events.Topic
	if topic == "" {
		topic = "reel-events"
	}
	switch cfg.Events.Provider {
	case "pubsub":
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while instantiate PubSub")
			return nil
		}
		publisher, err := pubsub.NewReelEventPublisher(ctx, client, topic)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("PubSub topic not available - events disabled")
			_ = client.Close()
			return nil
		}
		return publisher
	case "servicebus":
		client, err := servicebus.NewServiceBus(cfg.ServiceBus.Namespace, cfg.ServiceBus.ConnectionString)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - events disabled")
			return nil
		}
		publisher, err := servicebus.NewReelEventPublisher(client, topic)
		if err != nil {
			_ = client.Close(ctx)
			return nil
		}
		return publisher
	case "":
		return nil
	}
	logger.GetLogger().WithField("provider", cfg.Events.Provider).Warn("Unknown events provider - events disabled")
	return nil
}

// sweep re-queues reels whose background resolution was lost, e.g. after a restart.
func sweep(ctx context.Context, reelUsecase usecase.IReelUsecase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := reelUsecase.SweepStale(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Stale reel sweep failed")
		} else if n > 0 {
			logger.GetLogger().WithField("requeued", n).Info("Re-queued stale pending reels")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
