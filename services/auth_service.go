package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"calorietracker/models"
	"calorietracker/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const minPasswordLength = 6

type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	log    *logrus.Logger
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration, log *logrus.Logger) *AuthService {
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl, log: log}
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	case len(password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters long", ErrInvalidInput, minPasswordLength)
	}

	taken, err := emailTaken(ctx, s.db, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	goals := models.DefaultGoals()
	user := &models.User{
		Name:             name,
		Email:            email,
		Password:         hashed,
		DailyCalorieGoal: goals.DailyCalorieGoal,
		DailyProteinGoal: goals.DailyProteinGoal,
		DailyCarbsGoal:   goals.DailyCarbsGoal,
		DailyFatGoal:     goals.DailyFatGoal,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.WithField("user_id", user.ID).Info("user registered")

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		s.log.WithField("user_id", user.ID).Warn("login with wrong password")
		return nil, ErrInvalidCredentials
	}
	return s.issue(&user)
}

func (s *AuthService) ParseToken(token string) (*utils.Claims, error) {
	return utils.ParseJWT(s.secret, token)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateJWT(s.secret, user.ID, user.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailTaken reports whether another user than exceptID owns email.
func emailTaken(ctx context.Context, db *gorm.DB, email string, exceptID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}
