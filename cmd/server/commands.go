package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/mchic/setlist/internal/config"
	"github.com/mchic/setlist/internal/logging"
	"github.com/mchic/setlist/internal/server"
	"github.com/mchic/setlist/internal/service"
	"github.com/mchic/setlist/internal/store"
	ws "github.com/mchic/setlist/internal/websocket"
	"github.com/mchic/setlist/internal/worker"
)

func setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(nil, cfg.Server.LogLevel), nil
}

func serve(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Initialize WebSocket hub
	hub := ws.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not available", "addr", cfg.Redis.Addr, "err", err)
		}
	}

	var snapshots service.SnapshotScheduler
	if cfg.SnapshotsEnabled() {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		asynqClient := asynq.NewClient(redisOpt)
		defer asynqClient.Close()
		snapshots = service.NewSnapshotService(asynqClient)

		srv, mux := worker.NewServer(redisOpt, worker.NewSnapshotWorker(st, cfg.Backup.Dir, cfg.Backup.Keep, logger), logger)
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("failed to start snapshot worker: %w", err)
		}
		defer srv.Shutdown()
		logger.Info("snapshot worker started", "dir", cfg.Backup.Dir, "keep", cfg.Backup.Keep)
	}

	songs := service.NewSongService(st, hub, snapshots, logger)

	app := server.New(server.Deps{
		Config: cfg,
		Songs:  songs,
		Hub:    hub,
		Redis:  redisClient,
		Logger: logger,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	logger.Info("server starting", "addr", addr, "storage", cfg.Storage.Driver, "env", cfg.Server.Env)
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func reset(ctx context.Context, _ *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	songs, err := service.NewSongService(st, nil, nil, logger).Reset(ctx)
	if errors.Is(err, service.ErrResetUnsupported) {
		return fmt.Errorf("reset is only available for the %s store", config.DriverFile)
	}
	if err != nil {
		return err
	}

	logger.Info("setlist restored", "count", len(songs))
	return nil
}

func list(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	songs, err := st.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AUTHOR\tTITLE\tVOICES\tINSTRUMENTS\tKEY")
	for _, s := range songs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%+g\n",
			s.Author, s.Title, strings.Join(s.Voices, ","), strings.Join(s.Instruments, ","), s.KeyOffset)
	}
	return w.Flush()
}
