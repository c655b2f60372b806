package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"skillup-tracker/internal/model"
)

// DefaultActivityOrder is the store order every listing falls back to.
const DefaultActivityOrder = "date DESC, created_at DESC, id DESC"

var orderableActivityColumns = map[string]string{
	"date":       "date",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ActivityFilter narrows List results. Zero fields are ignored.
type ActivityFilter struct {
	Status     model.ActivityStatus
	CategoryID *uint
	Date       *model.Date
	Search     string
	// Ordering holds column names, optionally prefixed with "-" for descending.
	Ordering []string
}

// ActivityRepository handles CRUD for learning activities. Every query is scoped to one owner.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.LearningActivity) error {
	if err := r.db.WithContext(ctx).Omit("Category").Create(activity).Error; err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// ListByUser returns every activity owned by userID in store order.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uint) ([]model.LearningActivity, error) {
	var activities []model.LearningActivity
	if err := r.owned(ctx, userID).Order(DefaultActivityOrder).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// ListByUserOnDate returns the activities userID logged on day.
func (r *ActivityRepository) ListByUserOnDate(ctx context.Context, userID uint, day model.Date) ([]model.LearningActivity, error) {
	var activities []model.LearningActivity
	if err := r.owned(ctx, userID).Where("date = ?", day).Order(DefaultActivityOrder).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities on %s: %w", day, err)
	}
	return activities, nil
}

// List applies filter to the activities owned by userID.
func (r *ActivityRepository) List(ctx context.Context, userID uint, filter ActivityFilter) ([]model.LearningActivity, error) {
	query := r.owned(ctx, userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", *filter.Date)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(topic) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	query = query.Order(orderClause(filter.Ordering))

	var activities []model.LearningActivity
	if err := query.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

func (r *ActivityRepository) FindByID(ctx context.Context, userID, activityID uint) (*model.LearningActivity, error) {
	var activity model.LearningActivity
	if err := r.owned(ctx, userID).Where("id = ?", activityID).First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// Save persists every column of activity. The caller must have loaded it through FindByID.
func (r *ActivityRepository) Save(ctx context.Context, activity *model.LearningActivity) error {
	if err := r.db.WithContext(ctx).Omit("Category").Save(activity).Error; err != nil {
		return fmt.Errorf("save activity: %w", err)
	}
	return nil
}

// Delete removes an activity of userID. It reports whether a row was removed.
func (r *ActivityRepository) Delete(ctx context.Context, userID, activityID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, activityID).
		Delete(&model.LearningActivity{})
	if res.Error != nil {
		return false, fmt.Errorf("delete activity: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ActivityRepository) owned(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
}

func orderClause(fields []string) string {
	parts := make([]string, 0, len(fields)+1)
	for _, field := range fields {
		field = strings.TrimSpace(field)
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		column, ok := orderableActivityColumns[field]
		if !ok {
			continue
		}
		parts = append(parts, column+" "+dir)
	}
	if len(parts) == 0 {
		return DefaultActivityOrder
	}
	return strings.Join(append(parts, "id DESC"), ", ")
}
