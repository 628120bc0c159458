package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/linekv/internal/infra/buildinfo"
	"github.com/yndnr/linekv/internal/infra/confloader"
	"github.com/yndnr/linekv/internal/infra/shutdown"
	"github.com/yndnr/linekv/internal/server/adminserver"
	"github.com/yndnr/linekv/internal/server/config"
	"github.com/yndnr/linekv/internal/server/lineserver"
	"github.com/yndnr/linekv/internal/storage/memory"
	"github.com/yndnr/linekv/internal/telemetry/logger"
	"github.com/yndnr/linekv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		listenAddr  = flag.String("listen", "", "Override server.listen.addr")
		adminAddr   = flag.String("admin", "", "Enable the admin endpoint on this address")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("linekv-server %s\n", buildinfo.String())
		return nil
	}

	overrides := map[string]any{}
	if *listenAddr != "" {
		overrides["server.listen.addr"] = *listenAddr
	}
	if *adminAddr != "" {
		overrides["server.admin.enabled"] = true
		overrides["server.admin.addr"] = *adminAddr
	}

	loader, cfg, err := loadConfig(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	nodeID := config.ResolveNodeID(cfg)

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()
	log = log.With("node_id", nodeID)

	info := buildinfo.Get()
	log.Info("starting linekv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewCollector(info.Version, info.Commit, nodeID))

	store := memory.New()
	lineSrv := lineserver.New(lineConfig(cfg), store, metrics, log.Slog())

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down line server")
		return lineSrv.Shutdown(ctx)
	})

	if err := lineSrv.Start(context.Background()); err != nil {
		return fmt.Errorf("start line server: %w", err)
	}

	if cfg.Server.Admin.Enabled {
		admin, err := startAdmin(cfg, nodeID, info.Version, lineSrv, metrics, log.Slog())
		if err != nil {
			_ = lineSrv.Shutdown(context.Background())
			return err
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin server")
			return admin.Shutdown(ctx)
		})
	}

	if watcher := watchConfig(loader, log); watcher != nil {
		shutdownHandler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	// A poll failure stops the loop on its own; turn it into a shutdown.
	go func() {
		select {
		case <-lineSrv.Done():
			if err := lineSrv.Err(); err != nil {
				log.Error("line server failed", "error", err)
				shutdownHandler.Trigger("line server failed")
			}
		case <-shutdownHandler.Done():
		}
	}()

	log.Info("server started, press Ctrl+C to stop", "addr", lineSrv.Addr().String())
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if err := lineSrv.Err(); err != nil {
		return fmt.Errorf("line server: %w", err)
	}

	log.Info("server stopped gracefully", "reason", shutdownHandler.Reason())
	return nil
}

// loadConfig loads configuration from defaults, file, environment and flags.
func loadConfig(configFile string, overrides map[string]any) (*confloader.Loader, *config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, err
	}
	return loader, cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     os.Stdout,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// lineConfig maps the file configuration onto the line server.
func lineConfig(cfg *config.ServerConfig) *lineserver.Config {
	l := cfg.Server.Listen
	return &lineserver.Config{
		Address:          l.Addr,
		Backlog:          l.Backlog,
		MaxConnections:   l.MaxConnections,
		MaxLineBytes:     l.MaxLineBytes,
		ReadChunkBytes:   l.ReadChunkBytes,
		MaxReadsPerEvent: l.MaxReadsPerEvent,
		MaxPendingBytes:  l.MaxPendingBytes,
		EventBatchSize:   l.EventBatchSize,
		PollTimeout:      l.PollTimeout,
		RateLimit:        cfg.Limits.CommandsPerSecond,
		RateBurst:        cfg.Limits.Burst,
		RateLimitClients: cfg.Limits.TrackedClients,
	}
}

func startAdmin(cfg *config.ServerConfig, nodeID, version string, lineSrv *lineserver.Server,
	metrics *metric.Registry, log *slog.Logger) (*adminserver.Server, error) {
	router := adminserver.NewRouter(&adminserver.RouterConfig{
		NodeID:  nodeID,
		Version: version,
		Ready: func() bool {
			select {
			case <-lineSrv.Done():
				return false
			default:
				return lineSrv.Addr() != nil
			}
		},
		Metrics: metrics,
		Logger:  log,
	})

	admin := adminserver.New(cfg.Server.Admin.Addr, router, log)
	if err := admin.Start(); err != nil {
		return nil, fmt.Errorf("start admin server: %w", err)
	}
	return admin, nil
}

// watchConfig reloads log.level when the config file changes. Other settings
// need a restart.
func watchConfig(loader *confloader.Loader, log logger.Logger) *confloader.Watcher {
	path := loader.FilePath()
	if path == "" {
		return nil
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		log.Warn("config watcher disabled", "error", err)
		return nil
	}
	if err := watcher.Watch(path); err != nil {
		log.Warn("config watcher disabled", "path", path, "error", err)
		_ = watcher.Stop()
		return nil
	}

	watcher.OnChange(func(string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if err := config.Verify(next); err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if next.Log.Level != logger.GetLevel() {
			logger.SetLevel(next.Log.Level)
			log.Info("log level changed", "level", next.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher
}
