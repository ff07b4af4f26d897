package services

import (
	"context"
	"errors"
	"fmt"

	"calorietracker/models"
	"calorietracker/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type MealService struct {
	db    *gorm.DB
	foods *FoodService
	hub   *RealtimeHub
	log   *logrus.Logger
}

// NewMealService wires the entry store. hub may be nil.
func NewMealService(db *gorm.DB, foods *FoodService, hub *RealtimeHub, log *logrus.Logger) *MealService {
	return &MealService{db: db, foods: foods, hub: hub, log: log}
}

type LogMealInput struct {
	FoodItemID uint            `json:"foodItemId" binding:"required"`
	Quantity   float64         `json:"quantity" binding:"required"`
	MealType   models.MealType `json:"mealType" binding:"required"`
	Date       string          `json:"date" binding:"required"`
}

// UpdateMealInput is a partial update; nil fields are left unchanged.
type UpdateMealInput struct {
	Quantity *float64         `json:"quantity"`
	MealType *models.MealType `json:"mealType"`
	Date     *string          `json:"date"`
}

// Log records a food for a user. The food's per-serving macros are copied
// onto the entry so later catalog edits do not rewrite history.
func (s *MealService) Log(ctx context.Context, userID uint, in LogMealInput) (*models.MealEntry, error) {
	food, err := s.foods.Get(ctx, userID, in.FoodItemID)
	if err != nil {
		return nil, err
	}

	entry := &models.MealEntry{
		UserID:     userID,
		FoodItemID: food.ID,
		FoodName:   food.Name,
		Serving:    food.Serving,
		Calories:   food.Calories,
		Protein:    food.Protein,
		Carbs:      food.Carbs,
		Fat:        food.Fat,
		Quantity:   in.Quantity,
		MealType:   in.MealType,
		Date:       in.Date,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("create meal entry: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"entry_id":  entry.ID,
		"meal_type": entry.MealType.String(),
		"date":      entry.Date,
	}).Debug("meal entry logged")
	s.notify(ctx, userID, entry.Date)
	return entry, nil
}

// List returns a user's entries for one date in logging order.
func (s *MealService) List(ctx context.Context, userID uint, date string) ([]models.MealEntry, error) {
	var entries []models.MealEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list meal entries: %w", err)
	}
	return entries, nil
}

// ListRange returns a user's entries dated from..to inclusive.
func (s *MealService) ListRange(ctx context.Context, userID uint, from, to string) ([]models.MealEntry, error) {
	var entries []models.MealEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list meal entries %s..%s: %w", from, to, err)
	}
	return entries, nil
}

func (s *MealService) Get(ctx context.Context, userID, id uint) (*models.MealEntry, error) {
	var entry models.MealEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("meal entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get meal entry %d: %w", id, err)
	}
	return &entry, nil
}

// Update edits an entry. A quantity change keeps per-serving macros, so the
// entry's contribution is rescaled exactly once.
func (s *MealService) Update(ctx context.Context, userID, id uint, in UpdateMealInput) (*models.MealEntry, error) {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	oldDate := entry.Date

	updated := *entry
	if in.Quantity != nil {
		updated, err = updated.WithQuantity(*in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if in.MealType != nil {
		updated.MealType = *in.MealType
	}
	if in.Date != nil {
		updated.Date = *in.Date
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		return nil, fmt.Errorf("update meal entry %d: %w", id, err)
	}

	s.notify(ctx, userID, oldDate)
	if updated.Date != oldDate {
		s.notify(ctx, userID, updated.Date)
	}
	return &updated, nil
}

func (s *MealService) Delete(ctx context.Context, userID, id uint) error {
	entry, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return fmt.Errorf("delete meal entry %d: %w", id, err)
	}
	s.notify(ctx, userID, entry.Date)
	return nil
}

// SummaryEvent is pushed to a user's realtime connections after a change.
type SummaryEvent struct {
	Kind    string              `json:"kind"`
	Summary models.DailySummary `json:"summary"`
}

func (s *MealService) notify(ctx context.Context, userID uint, date string) {
	if s.hub == nil || s.hub.Connections(userID) == 0 {
		return
	}
	entries, err := s.List(ctx, userID, date)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("summary event skipped")
		return
	}
	s.hub.Publish(userID, SummaryEvent{
		Kind:    "summary.updated",
		Summary: utils.CalculateDailySummary(entries, date),
	})
}
