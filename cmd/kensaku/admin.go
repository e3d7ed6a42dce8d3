package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/export"
	"go.uber.org/zap"
)

// statusConfigResponse holds configuration info printed by status.
type statusConfigResponse struct {
	DatabasePath       string   `json:"database_path,omitempty"`
	ContentDirectories []string `json:"content_directories,omitempty"`
	DebounceMs         int      `json:"debounce_ms"`
	HistoryCapacity    int      `json:"history_capacity"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents        int                   `json:"documents"`
	Articles         int64                 `json:"articles"`
	State            string                `json:"state,omitempty"`
	DiskUsageBytes   *int64                `json:"disk_usage_bytes,omitempty"`
	WatchDirectories []string              `json:"watch_directories,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		res, err := statusDirect(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	}

	if err := writeStatus(os.Stdout, &status, *outputFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func statusDirect(cfg *config.Config) (*statusResponse, error) {
	components, err := openDirect(cfg)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	count, err := components.Storage.CountArticles(context.Background())
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	st, err := components.Session.State()
	if err != nil {
		return nil, err
	}
	status := &statusResponse{
		Documents: components.Indexer.Len(),
		Articles:  count,
		State:     st.String(),
		Config: &statusConfigResponse{
			DatabasePath:       cfg.Storage.DatabasePath,
			ContentDirectories: cfg.Content.Directories,
			DebounceMs:         cfg.Session.DebounceMs,
			HistoryCapacity:    cfg.Session.HistoryCapacity,
		},
	}
	if size, err := components.Storage.SizeBytes(); err == nil {
		status.DiskUsageBytes = &size
	}
	return status, nil
}

func writeStatus(w io.Writer, status *statusResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "text":
		fmt.Fprintf(w, "documents:          %d   # articles in the search index\n", status.Documents)
		fmt.Fprintf(w, "articles:           %d   # articles in the store\n", status.Articles)
		if status.State != "" {
			fmt.Fprintf(w, "state:              %s\n", status.State)
		}
		if status.DiskUsageBytes != nil {
			fmt.Fprintf(w, "disk_usage_bytes:   %d   # article store on disk\n", *status.DiskUsageBytes)
		}
		for _, d := range status.WatchDirectories {
			fmt.Fprintf(w, "watching:           %s\n", d)
		}
		if status.Config != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "# configuration")
			if status.Config.DatabasePath != "" {
				fmt.Fprintf(w, "database_path:      %s\n", status.Config.DatabasePath)
			}
			for _, d := range status.Config.ContentDirectories {
				fmt.Fprintf(w, "content_directory:  %s\n", d)
			}
			fmt.Fprintf(w, "debounce_ms:        %d\n", status.Config.DebounceMs)
			fmt.Fprintf(w, "history_capacity:   %d\n", status.Config.HistoryCapacity)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q; use text or json", format)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server to reindex after import (empty = skip)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kensaku import [flags] <file-or-directory>...")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, debugMode := newLogger(cfg, false)
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	total := 0
	for _, path := range fs.Args() {
		n, err := importPath(ctx, components, path)
		if err != nil {
			fmt.Printf("Import of %s failed: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d article(s) from %s\n", n, path)
		total += n
	}

	if *serverURL == "" || total == 0 {
		return
	}
	if err := reindexViaHTTP(*serverURL); err != nil {
		fmt.Printf("Server not reindexed (%v); it picks up the articles on its next reindex\n", err)
	}
}

// importPath loads a file or directory and upserts every article it yields.
func importPath(ctx context.Context, c *Components, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat path: %w", err)
	}
	load := c.Loader.LoadFile
	if info.IsDir() {
		load = c.Loader.LoadDir
	}
	articles, err := load(path)
	if err != nil {
		return 0, err
	}
	for _, a := range articles {
		if err := c.Storage.UpsertArticle(ctx, a); err != nil {
			return 0, fmt.Errorf("failed to store %s: %w", a.ID, err)
		}
	}
	return len(articles), nil
}

func reindexViaHTTP(serverURL string) error {
	resp, err := http.Post(serverURL+"/api/v1/reindex", "application/json", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	out := fs.String("out", "", "output file (empty = stdout)")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/export")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Export failed (%d): %s\n", resp.StatusCode, string(data))
		os.Exit(1)
	}

	if *out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := export.WriteFile(*out, data); err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported to %s\n", *out)
}
