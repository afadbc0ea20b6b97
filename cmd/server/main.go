// Command server runs the mock booking HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/mock-booking-api/internal/config"
	"github.com/iliyamo/mock-booking-api/internal/handler"
	"github.com/iliyamo/mock-booking-api/internal/middleware"
	"github.com/iliyamo/mock-booking-api/internal/queue"
	"github.com/iliyamo/mock-booking-api/internal/repository"
	"github.com/iliyamo/mock-booking-api/internal/router"
	"github.com/iliyamo/mock-booking-api/internal/service"
	"github.com/iliyamo/mock-booking-api/internal/upload"
)

// app is the wired server: Echo instance, shared service state and the
// optional Redis client behind the rate limiter.
type app struct {
	cfg config.Config
	e   *echo.Echo
	svc *service.Service
	rdb *redis.Client
}

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		log.Fatal(err)
	}
	a, err := newApp(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		log.Fatal(err) // Log and exit if the server failed
	}
}

// newApp checks the data file and builds every component from cfg.
func newApp(cfg config.Config) (*app, error) {
	store := repository.NewStore(cfg.DataFile)
	if _, err := store.Load(); err != nil { // Fail fast if the data file is missing or broken
		return nil, fmt.Errorf("data file %s: %w", cfg.DataFile, err)
	}

	var (
		photos *upload.Scratch
		err    error
	)
	if cfg.UploadDir == "" {
		photos, err = upload.NewTempScratch(cfg.UploadChunkBytes)
	} else {
		photos, err = upload.NewScratch(cfg.UploadDir, cfg.UploadChunkBytes)
	}
	if err != nil {
		return nil, err
	}

	var events service.EventPublisher
	if cfg.Events.Enabled {
		events = queue.NewPublisher(cfg.Events.URL, cfg.Events.Queue)
	}
	a := &app{cfg: cfg, svc: service.New(store, photos, events)}

	a.e = echo.New() // Create Echo instance
	a.e.HideBanner = true
	a.e.HidePort = true
	a.e.Use(echomw.Recover())
	if cfg.RequestLog {
		a.e.Use(echomw.Logger())
	}
	a.e.Use(middleware.Identity())
	if cfg.RateLimit.Enabled {
		a.rdb = config.NewRedisClient(cfg.Redis)
		if a.rdb == nil {
			log.Printf("ratelimit: redis at %s unreachable; rate limiting disabled", cfg.Redis.Address())
		}
		a.e.Use(middleware.RateLimit(cfg.RateLimit, a.rdb))
	}

	router.RegisterRoutes(a.e, router.Handlers{ // Register application routes
		Auth:     handler.NewAuthHandler(a.svc),
		Booking:  handler.NewBookingHandler(a.svc),
		Profile:  handler.NewProfileHandler(a.svc),
		Realtime: handler.NewRealtimeHandler(a.svc),
		Health:   handler.NewHealthHandler(a.svc),
	}, cfg.UploadMaxBody)
	return a, nil
}

// run serves HTTP (and the event consumer when enabled) until ctx is done,
// then shuts down and releases the service state.
func (a *app) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + a.cfg.Port
	g.Go(func() error {
		log.Printf("listening on %s (env=%s, data=%s, uploads=%s)", addr, a.cfg.Env, a.cfg.DataFile, a.svc.Photos.Dir())
		if err := a.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.cfg.Events.Enabled && a.cfg.Events.ConsumerEnabled {
		consumer := queue.NewConsumer(a.cfg.Events.URL, a.cfg.Events.Queue, a.cfg.Events.LogFile)
		g.Go(func() error { return consumer.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return a.e.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	a.svc.Close() // Close websockets and remove scratch storage
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return err
}
