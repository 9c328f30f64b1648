package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"questioner.dev/reference-db/internal/logger"
	"questioner.dev/reference-db/internal/store"
)

const MaxCategoryNameLength = 100

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]store.Category, error)
	CreateCategory(ctx context.Context, name string, description *string) (int64, error)
}

type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]store.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory trims and validates the name and stores a blank description as NULL.
func (s *CategoryService) CreateCategory(ctx context.Context, name string, description *string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, invalid("Category name is required")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return 0, invalid("Category name too long")
	}

	id, err := s.repo.CreateCategory(ctx, name, optionalText(description))
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return 0, &ConflictError{Message: "Category name already exists"}
		}
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	logger.Infof("Created category %d (%q)", id, name)
	return id, nil
}

// optionalText trims v and maps blank input to nil.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
