package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/portero/internal/app"
	mw "github.com/dropDatabas3/portero/internal/http/middlewares"
	"github.com/dropDatabas3/portero/internal/metrics"
	"github.com/dropDatabas3/portero/internal/observability/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Serve levanta el listener de la API y el de métricas, y los apaga en orden
// cuando el contexto se cancela. Bloquea hasta que ambos terminan.
func Serve(ctx context.Context, c *app.Container) error {
	api := &http.Server{
		Addr:              c.Cfg.Server.Addr,
		Handler:           NewRouter(c),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", mw.Chain(metrics.Register(nil), mw.WithRequestID()))
	mon := &http.Server{
		Addr:              c.Cfg.Server.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L().Info("api listening", zap.String("addr", api.Addr))
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.L().Info("metrics listening", zap.String("addr", mon.Addr))
		if err := mon.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.L().Info("shutting down")
		_ = mon.Shutdown(shctx)
		return api.Shutdown(shctx)
	})

	return g.Wait()
}
