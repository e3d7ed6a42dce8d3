package content

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kensaku/internal/models"
	"gopkg.in/yaml.v3"
)

const fence = "---"

var (
	htmlTitle    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	markdownH1   = regexp.MustCompile(`(?m)^#\s+(.+?)\s*#*\s*$`)
	keywordSplit = regexp.MustCompile(`[,;]`)
)

// splitFrontMatter separates a leading YAML block delimited by "---" lines
// from the body. Without a front matter block the whole input is the body.
func splitFrontMatter(data []byte) (meta []byte, body []byte) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, fence+"\n") {
		return nil, []byte(text)
	}
	rest := text[len(fence):]
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return nil, []byte(text)
	}
	meta = []byte(rest[:end])
	body = []byte(strings.TrimPrefix(rest[end+1+len(fence):], "\n"))
	return meta, body
}

// parseFrontMatter decodes the YAML header into a new Article and returns it with the body.
func parseFrontMatter(data []byte) (*models.Article, []byte, error) {
	meta, body := splitFrontMatter(data)
	a := &models.Article{}
	if len(bytes.TrimSpace(meta)) > 0 {
		if err := yaml.Unmarshal(meta, a); err != nil {
			return nil, nil, fmt.Errorf("invalid front matter: %w", err)
		}
	}
	return a, body, nil
}

func markdownTitle(body []byte) string {
	if m := markdownH1.FindSubmatch(body); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

func documentTitle(body []byte) string {
	if m := htmlTitle.FindSubmatch(body); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}

// splitKeywords turns a comma or semicolon separated keyword list into tags.
func splitKeywords(s string) []string {
	var tags []string
	for _, k := range keywordSplit.Split(s, -1) {
		if k = strings.TrimSpace(k); k != "" {
			tags = append(tags, k)
		}
	}
	return tags
}
