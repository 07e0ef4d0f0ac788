package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	collectorhttp "hitstream/internal/collector/delivery/http"
	hitshttp "hitstream/internal/hits/delivery/http"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/infra/eventbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// App runs the collector and the hits API in one process, joined by the
// in-process event bus.
type App struct {
	cfg       Config
	logger    *zap.Logger
	collector http.Handler
	api       http.Handler
	bus       *eventbus.EventBus
	router    *eventbus.Router
}

func newApp(
	cfg Config,
	logger *zap.Logger,
	collectorHandler *collectorhttp.Handler,
	rateLimiter *collectorhttp.RateLimiter,
	reg *prometheus.Registry,
	hitsHandler *hitshttp.Handler,
	bus *eventbus.EventBus,
	router *eventbus.Router,
	hits *usecase.HitService,
) *App {
	router.AddRecorder("hits_recorder", hits)

	return &App{
		cfg:       cfg,
		logger:    logger,
		collector: collectorhttp.NewRouter(collectorHandler, logger, rateLimiter, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		// The Dapr subscription route is unused here; hits arrive over the bus.
		api:    hitshttp.NewRouter(hitsHandler, logger, hitshttp.Subscription{PubsubName: "local", Topic: eventbus.HitsTopic}),
		bus:    bus,
		router: router,
	}
}

// startConsumers runs the event router until ctx is done and waits for it
// to subscribe.
func (a *App) startConsumers(ctx context.Context) {
	go func() {
		if err := a.router.Run(ctx); err != nil {
			a.logger.Error("event router error", zap.Error(err))
		}
	}()
	<-a.router.Running()
}

// Run serves both HTTP surfaces until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.startConsumers(ctx)

	servers := []*http.Server{
		{Addr: ":" + a.cfg.CollectorPort, Handler: a.collector, ReadHeaderTimeout: 5 * time.Second},
		{Addr: ":" + a.cfg.APIPort, Handler: a.api, ReadHeaderTimeout: 5 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			a.logger.Info("http server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		errs = append(errs, a.router.Close(), a.bus.Close())
		return errors.Join(errs...)
	})

	return g.Wait()
}
