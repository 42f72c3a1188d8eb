package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-blog-auth/internal/cache"
	"github.com/pribylovaa/go-blog-auth/internal/config"
	api "github.com/pribylovaa/go-blog-auth/internal/http"
	"github.com/pribylovaa/go-blog-auth/internal/mailer"
	"github.com/pribylovaa/go-blog-auth/internal/metrics"
	"github.com/pribylovaa/go-blog-auth/internal/service"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
	"github.com/pribylovaa/go-blog-auth/internal/storage/memory"
	"github.com/pribylovaa/go-blog-auth/internal/storage/mongo"
	"github.com/pribylovaa/go-blog-auth/internal/storage/postgres"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env, "driver", cfg.DB.Driver)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Подключение к хранилищу c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := openStorage(dbCtx, cfg.DB, cfg.Janitor.Retention)
	dbCancel()
	if err != nil {
		log.Error("storage_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("storage_connected", slog.String("driver", cfg.DB.Driver))

	m, err := metrics.New(nil)
	if err != nil {
		log.Error("metrics_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// Сервис.
	srvc := service.New(str, mailer.New(cfg.Mail), cfg)
	srvc.SetMetrics(m)

	var images cache.ImageCache
	if cfg.Redis.URL != "" {
		redisCtx, redisCancel := context.WithTimeout(rootCtx, 5*time.Second)
		images, err = cache.NewRedisCache(redisCtx, cfg.Redis.URL, cfg.Redis.Prefix, cfg.Redis.TTL)
		redisCancel()
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			_ = str.Close(context.Background())
			os.Exit(1)
		}
		srvc.SetImageCache(images)
		log.Info("redis_connected")
	}
	if cfg.Mail.Host == "" {
		log.Warn("smtp_not_configured")
	}
	log.Info("service_initialized")

	// Служебный сервер: livez/healthz/metrics.
	var ready int32 // 0 — not ready; 1 — ready

	opsMux := http.NewServeMux()
	opsMux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	opsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	opsMux.Handle("/metrics", promhttp.Handler())

	opsSrv := &http.Server{
		Addr:              cfg.Ops.Addr(),
		Handler:           opsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("ops_listen_start", slog.String("addr", opsSrv.Addr))
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("ops_serve_failed", slog.String("err", err.Error()))
		}
	}()

	// Публичный API.
	apiSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: api.NewRouter(srvc, api.Options{
			Logger:   log,
			Metrics:  m,
			Timeout:  cfg.Timeouts.Service,
			BasePath: cfg.HTTP.BasePath,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Timeouts.Service + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Фоновая очистка просроченных сессий и кодов.
	startJanitor(rootCtx, srvc, log, cfg.Janitor.Period)

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = apiSrv.Close()
	}

	// Дожидаемся писем, отправляемых в фоне.
	mailDone := make(chan struct{})
	go func() {
		srvc.Wait()
		close(mailDone)
	}()
	select {
	case <-mailDone:
	case <-shutdownCtx.Done():
		log.Warn("mail_wait_timeout")
	}

	_ = opsSrv.Shutdown(shutdownCtx)

	if images != nil {
		_ = images.Close()
	}
	if err := str.Close(shutdownCtx); err != nil {
		log.Warn("storage_close_failed", slog.String("err", err.Error()))
	}

	log.Info("service_stopped")
}

// openStorage подключает хранилище выбранного драйвера.
// Для postgres дополнительно применяются миграции.
func openStorage(ctx context.Context, cfg config.DBConfig, retention time.Duration) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		st, err := mongo.New(ctx, cfg.URL, retention)
		if err != nil {
			return nil, err
		}

		return st, nil
	case config.DriverPostgres:
		st, err := postgres.New(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}

		if err := st.Migrate(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, err
		}

		return st, nil
	default:
		return memory.New(), nil
	}
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// startJanitor периодически удаляет просроченные refresh-сессии и коды.
func startJanitor(ctx context.Context, svc *service.Service, log *slog.Logger, period time.Duration) {
	if period <= 0 {
		return
	}

	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := svc.Cleanup(ctx); err != nil {
					log.Error("janitor_failed", slog.String("err", err.Error()))
				}
			}
		}
	}()
}
