package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"packtrack.app/packtrack/config"
	"packtrack.app/packtrack/core/cache"
	"packtrack.app/packtrack/core/dictionary"
	"packtrack.app/packtrack/core/dupcheck"
	"packtrack.app/packtrack/core/records"
	"packtrack.app/packtrack/core/settings"
	"packtrack.app/packtrack/core/stats"
	"packtrack.app/packtrack/notify"
	v1 "packtrack.app/packtrack/sheetapi/v1"
	"packtrack.app/packtrack/tasks"
	"packtrack.app/packtrack/web"
	"packtrack.app/packtrack/web/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var durable cache.DurableStore
	if cfg.DataDir != "" {
		store, err := cache.OpenBadgerStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("durable cache open failed")
		}
		durable = store
	} else {
		log.Warn().Msg("no data_dir configured, cache will not survive restarts")
		durable = cache.NewMemoryStore()
	}
	defer durable.Close()

	notifier := notify.NewGoChannel()
	defer notifier.Close()

	queue := tasks.NewQueue(4, 64, log)
	queue.Start(ctx)
	defer queue.Stop()

	client := v1.NewSheetClient(cfg.SheetURL, log)
	if err := client.SelfTest(ctx); err != nil {
		log.Warn().Err(err).Msg("sheet service self test failed, starting anyway")
	}

	settingsStore := settings.NewStore(client.Settings, durable, notifier, log).
		WithSyncInterval(cfg.SettingsSyncInterval)
	settingsStore.InitFromCache()
	settingsStore.StartPeriodicSync(ctx)
	defer settingsStore.Stop()
	queue.Spawn("settings-initial-sync", func(ctx context.Context) error {
		_, err := settingsStore.RefreshFromServer(ctx)
		return err
	})

	dicts := dictionary.NewService(client.Dictionaries, client.Salaries, durable, log)
	statsService := stats.NewService(client.Records, durable, queue, settingsStore, log)
	recordService := records.NewService(client.Records, dupcheck.NewAnalyzer(dicts), settingsStore, statsService, log)

	h := handlers.New(client.Auth, dicts, settingsStore, recordService, statsService, client, cfg.JWTSecret, cfg.TokenTTL, log)
	router := web.NewRouter(h, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
