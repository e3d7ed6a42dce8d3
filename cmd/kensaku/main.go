// Package main is the Kensaku CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/export"
	"github.com/hyperjump/kensaku/internal/metrics"
	"github.com/hyperjump/kensaku/internal/server"
	"github.com/hyperjump/kensaku/internal/session"
	"github.com/hyperjump/kensaku/internal/watcher"
	"github.com/hyperjump/kensaku/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kensaku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kensaku server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		// No config file installed: run on defaults.
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "suggest":
		runSuggest()
	case "import":
		runImport()
	case "export":
		runExport()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kensaku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, debugFlag bool) (*zap.Logger, bool) {
	debugMode := cfg.Debug || debugFlag
	level := cfg.LogLevel
	if debugMode {
		level = "debug"
	}
	logger, err := utils.NewLogger(debugMode, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger, debugMode
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (queries, rebuilds, content changes)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, debugMode := newLogger(cfg, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	monitor := metrics.NewSessionMonitor(nil)
	components, err := initializeComponents(cfg, logger, debugMode, session.WithMonitor(monitor))
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := components.Reload(ctx); err != nil {
		logger.Fatal("Initial index build failed", zap.Error(err))
	}
	logger.Info("index built", zap.Int("documents", components.Indexer.Len()))

	srvOpts := []server.ServerOption{server.WithReloader(components.Reload)}

	if cfg.Content.Watch && len(cfg.Content.Directories) > 0 {
		watchOpts := []watcher.WatcherOption{
			watcher.WithRecursive(cfg.Content.RecursiveOrDefault()),
			watcher.WithFilter(components.Loader.Supports),
		}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(cfg.Content.Directories, func(changed []string) {
			if err := components.Reload(ctx); err != nil {
				logger.Warn("reload after content change failed", zap.Int("changed", len(changed)), zap.Error(err))
			}
		}, watchOpts...)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		srvOpts = append(srvOpts, server.WithWatch(watchSvc))
	}

	if cfg.Export.Schedule != "" {
		scheduler := export.NewScheduler(components.Session, cfg.Export.Path, export.WithLogger(logger))
		if err := scheduler.Start(cfg.Export.Schedule); err != nil {
			logger.Fatal("Failed to start export scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	srv := server.NewServer(
		components.Session,
		components.Indexer,
		components.Storage,
		&cfg.Server,
		logger,
		srvOpts...,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

func printUsage() {
	fmt.Println(`kensaku - In-memory article search with filters, ranking and highlighting

Usage:
  kensaku server [flags]              Start the HTTP server
  kensaku search [flags] <query>      Search articles
  kensaku suggest [flags] <text>      Autocomplete titles, tags and categories
  kensaku import [flags] <path>...    Import content files into the article store
  kensaku export [flags]              Export search history and stats from the server
  kensaku status [flags]              Show index and storage status
  kensaku version                     Show version
  kensaku help                        Show this help

Query syntax:
  free text plus directives: category:<name> tag:<name> author:<name>
  date:<today|yesterday|week|month|YYYY-MM-DD|start..end> sort:<field>[:asc|desc]
  Multi-word values can be quoted: category:"Machine Learning"

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kensaku/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" to search content directly.
  --limit int        Number of results to print (default: 10, 0 = all)
  --sort string      Sort field: relevance, date, title, views, readingTime
  --order string     Sort direction: asc or desc (default: desc)
  --output string    Output format: text, compact or json (default: text)
  --explain          Print the score breakdown of each result

Import Flags:
  --config string    Config file path
  --server string    Server to reindex after import (default: http://localhost:8080; "" to skip)

Export Flags:
  --server string    Server URL (default: http://localhost:8080)
  --out string       Output file (default: stdout)

Examples:
  kensaku server
  kensaku search go concurrency
  kensaku search "tag:go sort:date:desc"
  kensaku search --server "" --explain goroutines
  kensaku suggest gor
  kensaku import ./content
  kensaku export --out history.json`)
}
