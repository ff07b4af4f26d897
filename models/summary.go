package models

// Loggable is anything that can be counted toward a daily summary.
type Loggable interface {
	Day() string
	Meal() MealType
	PerServing() Macros
	Servings() float64
}

// Buckets partitions a day's entries by meal type.
type Buckets[T any] struct {
	Breakfast []T `json:"breakfast"`
	Lunch     []T `json:"lunch"`
	Dinner    []T `json:"dinner"`
	Snacks    []T `json:"snacks"`
}

func NewBuckets[T any]() Buckets[T] {
	return Buckets[T]{
		Breakfast: []T{},
		Lunch:     []T{},
		Dinner:    []T{},
		Snacks:    []T{},
	}
}

// For returns the bucket holding entries of meal type m, or nil for an
// invalid meal type.
func (b *Buckets[T]) For(m MealType) *[]T {
	switch m {
	case Breakfast:
		return &b.Breakfast
	case Lunch:
		return &b.Lunch
	case Dinner:
		return &b.Dinner
	case Snacks:
		return &b.Snacks
	}
	return nil
}

// DaySummary aggregates one calendar date. Totals are rounded once, after
// summation.
type DaySummary[T any] struct {
	Date          string     `json:"date"`
	TotalCalories int64      `json:"totalCalories"`
	TotalProtein  int64      `json:"totalProtein"`
	TotalCarbs    int64      `json:"totalCarbs"`
	TotalFat      int64      `json:"totalFat"`
	Meals         Buckets[T] `json:"meals"`
}

// Entries returns the summary's entries in display order.
func (s DaySummary[T]) Entries() []T {
	var out []T
	for _, m := range MealTypes() {
		out = append(out, *s.Meals.For(m)...)
	}
	return out
}

type (
	MealBuckets  = Buckets[MealEntry]
	DailySummary = DaySummary[MealEntry]
)

func NewMealBuckets() MealBuckets { return NewBuckets[MealEntry]() }
