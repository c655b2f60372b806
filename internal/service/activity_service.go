package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"skillup-tracker/internal/model"
	"skillup-tracker/internal/observability"
	"skillup-tracker/internal/repository"
)

const maxTopicLength = 200

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidStatus    = errors.New("status must be pending or completed")
	ErrTopicRequired    = errors.New("topic is required")
	ErrTopicTooLong     = fmt.Errorf("topic must be at most %d characters", maxTopicLength)
)

// ActivityInput represents data required to log an activity.
type ActivityInput struct {
	Topic       string
	Description string
	CategoryID  *uint
	// Date defaults to today in the service timezone.
	Date   *model.Date
	Status model.ActivityStatus
}

// ActivityPatch carries a partial update. Nil fields are left untouched.
type ActivityPatch struct {
	Topic         *string
	Description   *string
	CategoryID    *uint
	ClearCategory bool
	Date          *model.Date
	Status        *model.ActivityStatus
}

// ActivityService wraps activity-related business logic. Every call is scoped to the owner.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	categoryRepo *repository.CategoryRepository
	loc          *time.Location
	now          func() time.Time
}

func NewActivityService(activityRepo *repository.ActivityRepository, categoryRepo *repository.CategoryRepository, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{activityRepo: activityRepo, categoryRepo: categoryRepo, loc: loc, now: time.Now}
}

// WithClock overrides the time source used for default dates.
func (s *ActivityService) WithClock(now func() time.Time) *ActivityService {
	s.now = now
	return s
}

// Today is the current calendar day in the service timezone.
func (s *ActivityService) Today() model.Date {
	return model.Today(s.now(), s.loc)
}

func (s *ActivityService) Create(ctx context.Context, userID uint, input ActivityInput) (*model.LearningActivity, error) {
	topic, err := normalizeTopic(input.Topic)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.StatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	day := s.Today()
	if input.Date != nil && !input.Date.IsZero() {
		day = *input.Date
	}

	activity := model.LearningActivity{
		UserID:      userID,
		Topic:       topic,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  input.CategoryID,
		Date:        day,
		Status:      status,
	}
	if err := s.activityRepo.Create(ctx, &activity); err != nil {
		return nil, err
	}
	observability.RecordActivityLogged(string(status))

	return s.Get(ctx, userID, activity.ID)
}

func (s *ActivityService) List(ctx context.Context, userID uint, filter repository.ActivityFilter) ([]model.LearningActivity, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.activityRepo.List(ctx, userID, filter)
}

// ListOn returns the activities userID logged on day.
func (s *ActivityService) ListOn(ctx context.Context, userID uint, day model.Date) ([]model.LearningActivity, error) {
	return s.activityRepo.ListByUserOnDate(ctx, userID, day)
}

func (s *ActivityService) Get(ctx context.Context, userID, activityID uint) (*model.LearningActivity, error) {
	activity, err := s.activityRepo.FindByID(ctx, userID, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	return activity, nil
}

func (s *ActivityService) Update(ctx context.Context, userID, activityID uint, patch ActivityPatch) (*model.LearningActivity, error) {
	activity, err := s.Get(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}

	if patch.Topic != nil {
		topic, err := normalizeTopic(*patch.Topic)
		if err != nil {
			return nil, err
		}
		activity.Topic = topic
	}
	if patch.Description != nil {
		activity.Description = strings.TrimSpace(*patch.Description)
	}
	switch {
	case patch.ClearCategory:
		activity.CategoryID = nil
	case patch.CategoryID != nil:
		if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
			return nil, err
		}
		activity.CategoryID = patch.CategoryID
	}
	if patch.Date != nil && !patch.Date.IsZero() {
		activity.Date = *patch.Date
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		activity.Status = *patch.Status
	}

	activity.Category = nil
	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, activityID)
}

// Complete marks an activity as done.
func (s *ActivityService) Complete(ctx context.Context, userID, activityID uint) (*model.LearningActivity, error) {
	status := model.StatusCompleted
	return s.Update(ctx, userID, activityID, ActivityPatch{Status: &status})
}

func (s *ActivityService) Delete(ctx context.Context, userID, activityID uint) error {
	deleted, err := s.activityRepo.Delete(ctx, userID, activityID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrActivityNotFound
	}
	return nil
}

func (s *ActivityService) checkCategory(ctx context.Context, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func normalizeTopic(raw string) (string, error) {
	topic := strings.TrimSpace(raw)
	if topic == "" {
		return "", ErrTopicRequired
	}
	if len([]rune(topic)) > maxTopicLength {
		return "", ErrTopicTooLong
	}
	return topic, nil
}
