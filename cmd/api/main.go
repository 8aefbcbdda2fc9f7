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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/netmonitor/internal/config"
	"github.com/hamed0406/netmonitor/internal/httpapi"
	"github.com/hamed0406/netmonitor/internal/logging"
	"github.com/hamed0406/netmonitor/internal/monitor"
	"github.com/hamed0406/netmonitor/internal/notify"
	"github.com/hamed0406/netmonitor/internal/probe"
	"github.com/hamed0406/netmonitor/internal/registry"
	"github.com/hamed0406/netmonitor/internal/repo/memory"
	"github.com/hamed0406/netmonitor/internal/scheduler"
	"github.com/hamed0406/netmonitor/internal/status"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("api_exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	targets, err := config.LoadTargets(cfg.TargetsFile)
	if err != nil {
		return err
	}
	if targets.Fallback {
		logger.Warn("targets_file_missing", zap.String("path", cfg.TargetsFile))
	}
	mon := targets.Monitoring

	reg := registry.New()
	if err := reg.Load(targets.Servers, targets.Uplinks); err != nil {
		return err
	}
	logger.Info("targets_loaded",
		zap.Int("servers", len(targets.Servers)),
		zap.Int("uplinks", len(targets.Uplinks)),
		zap.Bool("fallback", targets.Fallback),
	)

	prober := &probe.RetryProber{
		Inner:    probe.NewDispatcher(probe.NewTCPProber(), probe.NewPingProber()),
		Attempts: cfg.RetryAttempts,
		Backoff:  cfg.RetryBackoff,
	}
	agg := status.NewAggregator(logger, prober, mon.LatencyThresholds, mon.Timeout())
	agg.Diagnoser = probe.NewDiagnoser()

	store := memory.New(mon.HistoryCapacity)

	notifiers := notify.Multi{notify.Log{Logger: logger}}
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifiers = append(notifiers, slack)
	}
	alerter := scheduler.NewAlerter(logger, memory.NewAlertStore(), notifiers, scheduler.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecover,
		Cooldown:        cfg.AlertCooldown,
	})

	driver := scheduler.NewDriver(logger, reg, agg, store, mon.Interval(), cfg.MaxConcurrent, alerter)
	svc := monitor.NewService(logger, reg, agg, store, driver, monitor.Options{
		Interval:    mon.Interval(),
		Timeout:     mon.Timeout(),
		Concurrency: cfg.MaxConcurrent,
	})

	api := httpapi.NewServer(logger, svc, mon)
	httpSrv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(httpapi.RouterOptions{
			AllowedOrigins: cfg.AllowedOrigins,
			PublicRPM:      cfg.PublicRPM,
			PublicBurst:    cfg.PublicBurst,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		driver.Run(ctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("api_shutdown")
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
