// Package models defines core data structures for articles, queries, and search results.
package models

import "time"

// Article is a raw content item as supplied by a content collaborator.
// Content may contain HTML markup.
type Article struct {
	ID        string    `json:"id" yaml:"id" db:"id"`
	Title     string    `json:"title" yaml:"title" db:"title"`
	Content   string    `json:"content" yaml:"-" db:"content"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags" db:"tags"`
	Category  string    `json:"category,omitempty" yaml:"category" db:"category"`
	Author    string    `json:"author,omitempty" yaml:"author" db:"author"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at" db:"created_at"`
	Views     int       `json:"views" yaml:"views" db:"views"`
	ReadTime  int       `json:"readTime,omitempty" yaml:"read_time" db:"read_time"`
}

// IndexedDocument is the searchable form of an Article held by the document store.
type IndexedDocument struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	Tags               []string  `json:"tags"`
	Category           string    `json:"category"`
	Author             string    `json:"author"`
	PublishedAt        time.Time `json:"publishedAt"`
	Excerpt            string    `json:"excerpt"`
	WordCount          int       `json:"wordCount"`
	ReadingTimeMinutes int       `json:"readingTimeMinutes"`
	ViewCount          int       `json:"viewCount"`
}
