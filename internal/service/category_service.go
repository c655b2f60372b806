package service

import (
	"context"
	"strings"

	"skillup-tracker/internal/model"
	"skillup-tracker/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

// FindByName matches a category label case-insensitively. It returns nil when nothing matches.
func (s *CategoryService) FindByName(ctx context.Context, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if strings.EqualFold(strings.TrimSpace(categories[i].Name), name) {
			return &categories[i], nil
		}
	}
	return nil, nil
}

// Seed creates the default categories that do not exist yet.
func (s *CategoryService) Seed(ctx context.Context) (int, error) {
	return s.repo.SeedDefaults(ctx)
}
