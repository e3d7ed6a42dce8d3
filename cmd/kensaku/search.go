package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hyperjump/kensaku/internal/cli"
	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/models"
	"github.com/hyperjump/kensaku/internal/query"
	"github.com/hyperjump/kensaku/internal/ranking"
	"github.com/hyperjump/kensaku/internal/session"
	"go.uber.org/zap"
)

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kensaku search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Directives narrow and order the results:
  • category:<name> and tag:<name> may repeat; an article matches if it has any of the listed values.
  • author:<name> matches part of the author name.
  • date:week, date:2024-01-01..2024-03-31 restrict the publication date.
  • sort:date:asc orders results; relevance is the default.

Examples:
  kensaku search go concurrency
  kensaku search "machine learning" category:AI
  kensaku search --sort views --order desc tag:go
  kensaku search --server "" --explain goroutines
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// sortDirective turns the -sort and -order flags into a sort directive
// appended to the query. An empty field leaves the query's own order.
func sortDirective(field, order string) string {
	if strings.TrimSpace(field) == "" {
		return ""
	}
	return fmt.Sprintf("sort:%s:%s", models.ParseSortField(field), models.ParseSortDirection(order))
}

// limitResults trims the printed results; metadata keeps the full total.
func limitResults(resp *models.SearchResponse, limit int) {
	if limit > 0 && len(resp.Results) > limit {
		resp.Results = resp.Results[:limit]
	}
}

// explainResults recomputes each result's score with the configured weights.
func explainResults(resp *models.SearchResponse, raw string, cfg *ranking.RankingConfig) []cli.Explanation {
	terms := query.NewParser().Parse(raw, models.Filters{}, models.DefaultSort()).Terms()
	ranker := ranking.NewRanker(cfg)
	out := make([]cli.Explanation, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, cli.Explanation{
			ID:        r.ID,
			Title:     r.Title,
			Breakdown: ranker.RankWithBreakdown(&r.IndexedDocument, terms),
		})
	}
	return out
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load content and storage directly)")
	limit := fs.Int("limit", 10, "number of results to print (0 = all)")
	sortField := fs.String("sort", "", "sort field: relevance, date, title, views, readingTime")
	sortOrder := fs.String("order", "desc", "sort direction: asc or desc")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	explain := fs.Bool("explain", false, "print the score breakdown of each result")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	if directive := sortDirective(*sortField, *sortOrder); directive != "" {
		queryStr += " " + directive
	}

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, queryStr)
	} else {
		response, err = searchDirect(cfg, queryStr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	limitResults(response, *limit)
	if *explain {
		err = cli.WriteExplanations(os.Stdout, explainResults(response, queryStr, &cfg.Ranking), format)
	} else {
		err = cli.WriteSearchResults(os.Stdout, response, format)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// openDirect builds the components with an undebounced session and loads the index.
func openDirect(cfg *config.Config) (*Components, error) {
	logger, debugMode := newLogger(cfg, false)
	components, err := initializeComponents(cfg, logger, debugMode, session.WithDebounce(0))
	if err != nil {
		return nil, err
	}
	if err := components.Reload(context.Background()); err != nil {
		components.Close()
		return nil, err
	}
	logger.Debug("direct index loaded", zap.Int("documents", components.Indexer.Len()))
	return components, nil
}

func searchDirect(cfg *config.Config, queryStr string) (*models.SearchResponse, error) {
	components, err := openDirect(cfg)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	if err := components.Session.SubmitQuery(queryStr); err != nil {
		return nil, err
	}
	resp, err := components.Session.Flush()
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response published")
	}
	return resp, nil
}

func searchViaHTTP(serverURL string, queryStr string) (*models.SearchResponse, error) {
	body, err := json.Marshal(map[string]interface{}{"query": queryStr, "immediate": true})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSuggest() {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = load content and storage directly)")
	limit := fs.Int("limit", 0, "maximum suggestions (0 = configured default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	text := buildSearchQuery(fs.Args())
	if text == "" {
		fmt.Println("Usage: kensaku suggest [flags] <text>")
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var suggestions []string
	if *serverURL != "" {
		suggestions, err = suggestViaHTTP(*serverURL, text, *limit)
	} else {
		var cfg *config.Config
		cfg, _, err = loadConfig(*configPath)
		if err == nil {
			suggestions, err = suggestDirect(cfg, text, *limit)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSuggestions(os.Stdout, suggestions, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func suggestDirect(cfg *config.Config, text string, limit int) ([]string, error) {
	components, err := openDirect(cfg)
	if err != nil {
		return nil, err
	}
	defer components.Close()
	return components.Session.GetSuggestions(text, limit)
}

func suggestViaHTTP(serverURL, text string, limit int) ([]string, error) {
	params := url.Values{"q": {text}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	resp, err := http.Get(serverURL + "/api/v1/suggestions?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Suggestions, nil
}
