package models

import "time"

// FoodItem is a reference food with per-serving macros. Items with a zero
// OwnerID belong to the seeded catalog and are read-only.
type FoodItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null;default:0" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fat       float64   `json:"fat"`
	Serving   string    `json:"serving"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (f FoodItem) Macros() Macros {
	return Macros{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
}

func (f FoodItem) IsCatalog() bool { return f.OwnerID == 0 }
