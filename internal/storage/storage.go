// Package storage defines the persistence interface for articles.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kensaku/internal/models"
)

var (
	// ErrNotFound is returned when no article has the requested ID.
	ErrNotFound = errors.New("article not found")
	// ErrExists is returned when creating an article whose ID is taken.
	ErrExists = errors.New("article already exists")
)

// Storage defines article persistence operations.
type Storage interface {
	CreateArticle(ctx context.Context, a *models.Article) error
	UpsertArticle(ctx context.Context, a *models.Article) error
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	UpdateArticle(ctx context.Context, a *models.Article) error
	DeleteArticle(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error

	// ListArticles returns articles newest first. limit <= 0 returns all.
	ListArticles(ctx context.Context, offset, limit int) ([]*models.Article, error)
	CountArticles(ctx context.Context) (int64, error)

	Close() error
}
