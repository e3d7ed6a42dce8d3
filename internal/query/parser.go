// Package query parses raw query strings with embedded field directives into structured queries.
package query

import (
	"regexp"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/models"
)

// directiveRegex matches key:value tokens at the start of the string or after whitespace.
// Values are either a double-quoted string or a run of non-space characters.
var directiveRegex = regexp.MustCompile(`(?i)(?:^|\s)(category|tag|author|date|sort):(?:"([^"]*)"|(\S+))`)

// Parser converts raw query strings into models.Query values.
type Parser struct {
	now func() time.Time
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithClock sets the time source used to resolve relative dates.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewParser creates a parser using the wall clock unless overridden.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts directives from raw and layers them over current filters and sort.
// Directives not present in raw leave the corresponding current state untouched.
// Malformed directive values are dropped; Parse never fails.
func (p *Parser) Parse(raw string, current models.Filters, currentSort models.Sort) *models.Query {
	q := &models.Query{
		Raw:     raw,
		Filters: current.Clone(),
		Sort:    currentSort,
	}
	if q.Sort.Field == "" {
		q.Sort = models.DefaultSort()
	}

	matches := directiveRegex.FindAllStringSubmatchIndex(raw, -1)
	var rest strings.Builder
	last := 0
	for _, m := range matches {
		// m[2]:m[3] is the key; the directive text begins there, after any leading space.
		rest.WriteString(raw[last:m[2]])
		last = m[1]

		key := strings.ToLower(raw[m[2]:m[3]])
		var value string
		if m[4] >= 0 {
			value = raw[m[4]:m[5]]
		} else {
			value = raw[m[6]:m[7]]
		}
		p.apply(q, key, strings.TrimSpace(value))
	}
	rest.WriteString(raw[last:])
	q.FreeText = indexer.Preprocess(rest.String())
	return q
}

func (p *Parser) apply(q *models.Query, key, value string) {
	if value == "" {
		return
	}
	switch key {
	case "category":
		q.Filters.AddCategory(value)
	case "tag":
		q.Filters.AddTag(value)
	case "author":
		q.Filters.Author = value
	case "date":
		if dr, ok := ParseDateRange(value, p.now()); ok {
			q.Filters.DateRange = &dr
		}
	case "sort":
		field, dir, _ := strings.Cut(value, ":")
		q.Sort = models.Sort{
			Field:     models.ParseSortField(field),
			Direction: models.ParseSortDirection(dir),
		}
	}
}
