package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"calorietracker/models"
	"calorietracker/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Report ranges and their lengths in days.
var reportRanges = map[string]int{
	"weekly":  7,
	"monthly": 30,
}

type SummaryService struct {
	db    *gorm.DB
	meals *MealService
	users *UserService
	log   *logrus.Logger
}

func NewSummaryService(db *gorm.DB, meals *MealService, users *UserService, log *logrus.Logger) *SummaryService {
	return &SummaryService{db: db, meals: meals, users: users, log: log}
}

type Progress struct {
	Consumed int64   `json:"consumed"`
	Goal     int     `json:"goal"`
	Percent  float64 `json:"percent"`
}

// DailyReport is a daily summary together with the user's goal progress.
type DailyReport struct {
	models.DailySummary
	Goals    models.Goals        `json:"goals"`
	Progress map[string]Progress `json:"progress"`
}

func (s *SummaryService) Daily(ctx context.Context, userID uint, date string) (*DailyReport, error) {
	if !utils.ValidDate(date) {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.meals.List(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	sum := utils.CalculateDailySummary(entries, date)
	goals := user.Goals()
	return &DailyReport{
		DailySummary: sum,
		Goals:        goals,
		Progress: map[string]Progress{
			"calories": progress(sum.TotalCalories, goals.DailyCalorieGoal),
			"protein":  progress(sum.TotalProtein, goals.DailyProteinGoal),
			"carbs":    progress(sum.TotalCarbs, goals.DailyCarbsGoal),
			"fat":      progress(sum.TotalFat, goals.DailyFatGoal),
		},
	}, nil
}

type ReportDay struct {
	Date      string `json:"date"`
	Calories  int64  `json:"calories"`
	Remaining int64  `json:"remaining"`
}

// Report returns calories and remaining budget for each day of a weekly or
// monthly range ending at end. Days without entries report zero calories.
func (s *SummaryService) Report(ctx context.Context, userID uint, rangeName string, end time.Time) ([]ReportDay, error) {
	days, ok := reportRanges[rangeName]
	if !ok {
		return nil, fmt.Errorf("%w: range must be 'weekly' or 'monthly'", ErrInvalidInput)
	}
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	dates := utils.DateRange(end, days)
	entries, err := s.meals.ListRange(ctx, userID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, err
	}

	goal := int64(user.DailyCalorieGoal)
	out := make([]ReportDay, 0, len(dates))
	for _, d := range dates {
		sum := utils.CalculateDailySummary(entries, d)
		out = append(out, ReportDay{
			Date:      d,
			Calories:  sum.TotalCalories,
			Remaining: goal - sum.TotalCalories,
		})
	}
	return out, nil
}

// SnapshotDay materializes DailyProgress for every user with entries on
// date. It returns the number of snapshots written.
func (s *SummaryService) SnapshotDay(ctx context.Context, date string) (int, error) {
	if !utils.ValidDate(date) {
		return 0, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, date)
	}

	var userIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.MealEntry{}).
		Where("date = ?", date).
		Distinct().
		Pluck("user_id", &userIDs).Error; err != nil {
		return 0, fmt.Errorf("list users for %s: %w", date, err)
	}

	for _, uid := range userIDs {
		entries, err := s.meals.List(ctx, uid, date)
		if err != nil {
			return 0, err
		}
		sum := utils.CalculateDailySummary(entries, date)

		dp := models.DailyProgress{UserID: uid, Date: date}
		err = s.db.WithContext(ctx).
			Where("user_id = ? AND date = ?", uid, date).
			Assign(map[string]interface{}{
				"calories": int(sum.TotalCalories),
				"protein":  int(sum.TotalProtein),
				"carbs":    int(sum.TotalCarbs),
				"fat":      int(sum.TotalFat),
				"entries":  len(entries),
			}).
			FirstOrCreate(&dp).Error
		if err != nil {
			return 0, fmt.Errorf("snapshot user %d on %s: %w", uid, date, err)
		}
	}

	s.log.WithFields(logrus.Fields{"date": date, "users": len(userIDs)}).Info("daily progress snapshot")
	return len(userIDs), nil
}

func (s *SummaryService) History(ctx context.Context, userID uint) ([]models.DailyProgress, error) {
	var rows []models.DailyProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("progress history: %w", err)
	}
	return rows, nil
}

func progress(consumed int64, goal int) Progress {
	return Progress{
		Consumed: consumed,
		Goal:     goal,
		Percent:  round2(utils.CalculatePercentage(float64(consumed), float64(goal))),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
