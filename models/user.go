package models

import (
	"time"
)

const (
	DefaultCalorieGoal = 2000
	DefaultProteinGoal = 150
	DefaultCarbsGoal   = 250
	DefaultFatGoal     = 70
)

type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"not null" json:"name"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"not null" json:"-"`
	DailyCalorieGoal int       `gorm:"not null;default:2000" json:"dailyCalorieGoal"`
	DailyProteinGoal int       `gorm:"not null;default:150" json:"dailyProteinGoal"`
	DailyCarbsGoal   int       `gorm:"not null;default:250" json:"dailyCarbsGoal"`
	DailyFatGoal     int       `gorm:"not null;default:70" json:"dailyFatGoal"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// Goals are the four daily nutrient targets of a user.
type Goals struct {
	DailyCalorieGoal int `json:"dailyCalorieGoal"`
	DailyProteinGoal int `json:"dailyProteinGoal"`
	DailyCarbsGoal   int `json:"dailyCarbsGoal"`
	DailyFatGoal     int `json:"dailyFatGoal"`
}

func DefaultGoals() Goals {
	return Goals{
		DailyCalorieGoal: DefaultCalorieGoal,
		DailyProteinGoal: DefaultProteinGoal,
		DailyCarbsGoal:   DefaultCarbsGoal,
		DailyFatGoal:     DefaultFatGoal,
	}
}

func (u User) Goals() Goals {
	return Goals{
		DailyCalorieGoal: u.DailyCalorieGoal,
		DailyProteinGoal: u.DailyProteinGoal,
		DailyCarbsGoal:   u.DailyCarbsGoal,
		DailyFatGoal:     u.DailyFatGoal,
	}
}

func (g Goals) Valid() bool {
	return g.DailyCalorieGoal > 0 && g.DailyProteinGoal > 0 && g.DailyCarbsGoal > 0 && g.DailyFatGoal > 0
}
