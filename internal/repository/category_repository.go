package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"skillup-tracker/internal/model"
)

// DefaultCategories is the seed set created by the migrate command.
var DefaultCategories = []model.Category{
	{Name: "Frontend", Color: "#3B82F6"},
	{Name: "Backend", Color: "#10B981"},
	{Name: "Python", Color: "#6366F1"},
	{Name: "JavaScript", Color: "#F59E0B"},
	{Name: "React", Color: "#06B6D4"},
	{Name: "Django", Color: "#059669"},
	{Name: "Database", Color: "#8B5CF6"},
	{Name: "DevOps", Color: "#EF4444"},
	{Name: "Mobile", Color: "#EC4899"},
	{Name: "Other", Color: "#6B7280"},
}

// CategoryRepository manages activity categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate finds a category by name, creating it with color when missing.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, name, color string) (*model.Category, bool, error) {
	if name == "" {
		return nil, false, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("name = ?", name).First(&category).Error
	switch {
	case err == nil:
		return &category, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if color == "" {
			color = model.DefaultCategoryColor
		}
		category = model.Category{Name: name, Color: color}
		if err := db.Create(&category).Error; err != nil {
			return nil, false, fmt.Errorf("create category: %w", err)
		}
		return &category, true, nil
	default:
		return nil, false, fmt.Errorf("find category: %w", err)
	}
}

// SeedDefaults creates any missing default category and reports how many were added.
func (r *CategoryRepository) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &CategoryRepository{db: tx}
		for _, def := range DefaultCategories {
			_, isNew, err := repo.GetOrCreate(ctx, def.Name, def.Color)
			if err != nil {
				return err
			}
			if isNew {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	return created, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category and detaches it from every activity that referenced it.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.LearningActivity{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach category: %w", err)
		}
		if err := tx.Delete(&model.Category{}, id).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}
