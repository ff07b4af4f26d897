package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidMealType = errors.New("invalid meal type")
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
	ErrInvalidEntry    = errors.New("invalid meal entry")
)

// MealType is one of the four fixed meal categories. The zero value is not a
// valid meal type.
type MealType uint8

const (
	Breakfast MealType = iota + 1
	Lunch
	Dinner
	Snacks
)

// MealTypes lists every meal type in display order.
func MealTypes() []MealType { return []MealType{Breakfast, Lunch, Dinner, Snacks} }

func ParseMealType(s string) (MealType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "breakfast":
		return Breakfast, nil
	case "lunch":
		return Lunch, nil
	case "dinner":
		return Dinner, nil
	case "snacks", "snack":
		return Snacks, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMealType, s)
}

func (m MealType) Valid() bool { return m >= Breakfast && m <= Snacks }

func (m MealType) String() string {
	switch m {
	case Breakfast:
		return "breakfast"
	case Lunch:
		return "lunch"
	case Dinner:
		return "dinner"
	case Snacks:
		return "snacks"
	}
	return fmt.Sprintf("MealType(%d)", uint8(m))
}

// Label is the capitalized name shown in the UI.
func (m MealType) Label() string {
	if !m.Valid() {
		return "Unknown"
	}
	s := m.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func (m MealType) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMealType, uint8(m))
	}
	return json.Marshal(m.String())
}

func (m *MealType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMealType, string(b))
	}
	v, err := ParseMealType(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value stores the meal type as its lowercase slug.
func (m MealType) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMealType, uint8(m))
	}
	return m.String(), nil
}

func (m *MealType) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidMealType, src)
	}
	parsed, err := ParseMealType(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MealEntry is one logged food. Macros are stored per serving; the entry's
// contribution to any total is always Macros scaled by Quantity.
type MealEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_meal_entries_user_date,priority:1;not null" json:"-"`
	FoodItemID uint      `gorm:"not null" json:"foodItemId"`
	FoodName   string    `gorm:"not null" json:"foodName"`
	Serving    string    `json:"serving"`
	Calories   float64   `json:"calories"`
	Protein    float64   `json:"protein"`
	Carbs      float64   `json:"carbs"`
	Fat        float64   `json:"fat"`
	Quantity   float64   `gorm:"not null" json:"quantity"`
	MealType   MealType  `gorm:"type:varchar(16);not null" json:"mealType"`
	Date       string    `gorm:"type:varchar(10);index:idx_meal_entries_user_date,priority:2;not null" json:"date"` // YYYY-MM-DD
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (e MealEntry) Day() string       { return e.Date }
func (e MealEntry) Meal() MealType    { return e.MealType }
func (e MealEntry) Servings() float64 { return e.Quantity }

func (e MealEntry) PerServing() Macros {
	return Macros{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

// Totals returns the entry's contribution for its quantity.
func (e MealEntry) Totals() Macros { return e.PerServing().Scale(e.Quantity) }

// WithQuantity returns a copy of the entry logged at a new quantity. Per-serving
// macros are left untouched so repeated edits never compound.
func (e MealEntry) WithQuantity(q float64) (MealEntry, error) {
	if !validQuantity(q) {
		return e, fmt.Errorf("%w: %v", ErrInvalidQuantity, q)
	}
	e.Quantity = q
	return e, nil
}

func (e MealEntry) Validate() error {
	if !e.MealType.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidMealType)
	}
	if !validQuantity(e.Quantity) {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidQuantity)
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidEntry, e.Date)
	}
	if err := e.PerServing().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return nil
}

// EntryView is the wire shape of an entry, carrying both per-serving and
// quantity-scaled macros.
type EntryView struct {
	MealEntry
	TotalCalories float64 `json:"totalCalories"`
	TotalProtein  float64 `json:"totalProtein"`
	TotalCarbs    float64 `json:"totalCarbs"`
	TotalFat      float64 `json:"totalFat"`
}

func (e MealEntry) View() EntryView {
	t := e.Totals()
	return EntryView{
		MealEntry:     e,
		TotalCalories: t.Calories,
		TotalProtein:  t.Protein,
		TotalCarbs:    t.Carbs,
		TotalFat:      t.Fat,
	}
}

func validQuantity(q float64) bool {
	return q > 0 && !math.IsNaN(q) && !math.IsInf(q, 0)
}
