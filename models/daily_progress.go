package models

import (
	"time"
)

// DailyProgress is a materialized snapshot of one user's totals for one date.
type DailyProgress struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_progress_user_date,priority:1;not null" json:"-"`
	Date      string    `gorm:"type:varchar(10);uniqueIndex:idx_progress_user_date,priority:2;not null" json:"date"`
	Calories  int       `json:"calories"`
	Protein   int       `json:"protein"`
	Carbs     int       `json:"carbs"`
	Fat       int       `json:"fat"`
	Entries   int       `json:"entries"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}
