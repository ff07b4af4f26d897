package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calorietracker/models"

	"gorm.io/gorm"
)

type UserService struct{ db *gorm.DB }

func NewUserService(db *gorm.DB) *UserService { return &UserService{db: db} }

// ProfileInput is a partial update; nil fields are left unchanged.
type ProfileInput struct {
	Name             *string `json:"name"`
	Email            *string `json:"email"`
	DailyCalorieGoal *int    `json:"dailyCalorieGoal"`
	DailyProteinGoal *int    `json:"dailyProteinGoal"`
	DailyCarbsGoal   *int    `json:"dailyCarbsGoal"`
	DailyFatGoal     *int    `json:"dailyFatGoal"`
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		user.Name = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
		}
		if email != user.Email {
			taken, err := emailTaken(ctx, s.db, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}

	goals := user.Goals()
	setGoal(&goals.DailyCalorieGoal, in.DailyCalorieGoal)
	setGoal(&goals.DailyProteinGoal, in.DailyProteinGoal)
	setGoal(&goals.DailyCarbsGoal, in.DailyCarbsGoal)
	setGoal(&goals.DailyFatGoal, in.DailyFatGoal)
	if !goals.Valid() {
		return nil, fmt.Errorf("%w: goals must be positive integers", ErrInvalidInput)
	}
	user.DailyCalorieGoal = goals.DailyCalorieGoal
	user.DailyProteinGoal = goals.DailyProteinGoal
	user.DailyCarbsGoal = goals.DailyCarbsGoal
	user.DailyFatGoal = goals.DailyFatGoal

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("save user %d: %w", userID, err)
	}
	return user, nil
}

func setGoal(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
