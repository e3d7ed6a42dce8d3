// Package content loads articles from files on disk.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/fileid"
	"github.com/hyperjump/kensaku/internal/models"
	"go.uber.org/zap"
)

// DefaultExtensions are the file types the loader reads when none are configured.
var DefaultExtensions = []string{".md", ".markdown", ".html", ".htm", ".json", ".txt", ".pdf", ".docx", ".xlsx"}

// parsers maps single-article file types to their parser. JSON is handled
// separately since a file may hold several articles.
var parsers = map[string]func([]byte) (*models.Article, error){
	".md":       parseMarkdown,
	".markdown": parseMarkdown,
	".html":     parseHTML,
	".htm":      parseHTML,
	".pdf":      pdfArticle,
	".docx":     docxArticle,
	".xlsx":     xlsxArticle,
}

// Loader reads articles from content files.
type Loader struct {
	extensions []string
	recursive  bool
	logger     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithExtensions restricts loading to the given extensions (with or without the dot).
func WithExtensions(exts []string) LoaderOption {
	return func(ld *Loader) {
		if len(exts) > 0 {
			ld.extensions = exts
		}
	}
}

// WithRecursive controls whether subdirectories are walked.
func WithRecursive(recursive bool) LoaderOption {
	return func(ld *Loader) { ld.recursive = recursive }
}

// NewLoader returns a recursive loader for DefaultExtensions.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{
		extensions: DefaultExtensions,
		recursive:  true,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Supports reports whether path has one of the loader's extensions.
func (ld *Loader) Supports(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return false
	}
	for _, a := range ld.extensions {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == ext {
			return true
		}
	}
	return false
}

// Recursive reports whether the loader walks subdirectories.
func (ld *Loader) Recursive() bool {
	return ld.recursive
}

// LoadDirs loads every supported file under dirs. Files that cannot be read
// or parsed are logged and skipped; a missing directory is an error.
func (ld *Loader) LoadDirs(dirs []string) ([]*models.Article, error) {
	var articles []*models.Article
	for _, dir := range dirs {
		loaded, err := ld.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		articles = append(articles, loaded...)
	}
	return articles, nil
}

// LoadDir loads every supported file in dir.
func (ld *Loader) LoadDir(dir string) ([]*models.Article, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	var articles []*models.Article
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absDir && (!ld.recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !ld.Supports(path) {
			return nil
		}
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		loaded, loadErr := ld.LoadFile(path)
		if loadErr != nil {
			ld.logger.Warn("skipping content file", zap.String("path", path), zap.Error(loadErr))
			return nil
		}
		articles = append(articles, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absDir, err)
	}
	ld.logger.Debug("content loaded", zap.String("dir", absDir), zap.Int("articles", len(articles)))
	return articles, nil
}

// LoadFile parses one content file. JSON files may hold one article or an array.
func (ld *Loader) LoadFile(path string) ([]*models.Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	var articles []*models.Article
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		articles, err = parseJSON(data)
	} else if parse, ok := parsers[ext]; ok {
		var a *models.Article
		a, err = parse(data)
		articles = []*models.Article{a}
	} else {
		articles = []*models.Article{parseText(data)}
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	for i, a := range articles {
		fillDefaults(a, path, i, info.ModTime())
	}
	return articles, nil
}

func parseJSON(data []byte) ([]*models.Article, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []*models.Article
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		out := list[:0]
		for _, a := range list {
			if a != nil {
				out = append(out, a)
			}
		}
		return out, nil
	}
	var a models.Article
	if err := json.Unmarshal(trimmed, &a); err != nil {
		return nil, err
	}
	return []*models.Article{&a}, nil
}

func parseMarkdown(data []byte) (*models.Article, error) {
	a, body, err := parseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	if a.Title == "" {
		a.Title = markdownTitle(body)
	}
	a.Content = string(body)
	return a, nil
}

func parseHTML(data []byte) (*models.Article, error) {
	a, body, err := parseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	if a.Title == "" {
		a.Title = documentTitle(body)
	}
	a.Content = string(body)
	return a, nil
}

func parseText(data []byte) *models.Article {
	return &models.Article{Content: strings.ToValidUTF8(string(data), "\ufffd")}
}

// fillDefaults derives missing identity fields from the file.
func fillDefaults(a *models.Article, path string, index int, modTime time.Time) {
	if a.ID == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		a.ID = fileid.ArticleID(abs, index)
	}
	if a.Title == "" {
		base := filepath.Base(path)
		a.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = modTime
	}
}
