package utils

import (
	"math"
	"time"

	"calorietracker/models"

	"github.com/shopspring/decimal"
)

type macroSum struct {
	calories, protein, carbs, fat decimal.Decimal
}

func (s *macroSum) add(m models.Macros, qty float64) {
	q := decimal.NewFromFloat(qty)
	s.calories = s.calories.Add(decimal.NewFromFloat(m.Calories).Mul(q))
	s.protein = s.protein.Add(decimal.NewFromFloat(m.Protein).Mul(q))
	s.carbs = s.carbs.Add(decimal.NewFromFloat(m.Carbs).Mul(q))
	s.fat = s.fat.Add(decimal.NewFromFloat(m.Fat).Mul(q))
}

// SummarizeDay selects the entries dated exactly date, buckets them by meal
// type and sums macros scaled by quantity. Totals are rounded once at the
// end. Entries with an invalid meal type, or with a NaN or infinite macro or
// quantity, belong to no bucket and are left out of the totals too, so the
// buckets always partition the counted entries.
func SummarizeDay[T models.Loggable](entries []T, date string) models.DaySummary[T] {
	out := models.DaySummary[T]{Date: date, Meals: models.NewBuckets[T]()}

	var sum macroSum
	for _, e := range entries {
		if e.Day() != date {
			continue
		}
		bucket := out.Meals.For(e.Meal())
		if bucket == nil {
			continue
		}
		m, q := e.PerServing(), e.Servings()
		if !finite(q, m.Calories, m.Protein, m.Carbs, m.Fat) {
			continue
		}
		*bucket = append(*bucket, e)
		sum.add(m, q)
	}

	out.TotalCalories = roundInt(sum.calories)
	out.TotalProtein = roundInt(sum.protein)
	out.TotalCarbs = roundInt(sum.carbs)
	out.TotalFat = roundInt(sum.fat)
	return out
}

// CalculateDailySummary is SummarizeDay over stored meal entries.
func CalculateDailySummary(entries []models.MealEntry, date string) models.DailySummary {
	return SummarizeDay(entries, date)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CalculatePercentage returns current as a percentage of goal, capped at 100.
func CalculatePercentage(current, goal float64) float64 {
	if goal == 0 {
		return 0
	}
	return math.Min(current/goal*100, 100)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// DateRange returns the days calendar dates ending at end, oldest first.
func DateRange(end time.Time, days int) []string {
	out := make([]string, 0, days)
	start := end.AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		out = append(out, start.AddDate(0, 0, i).Format(models.DateLayout))
	}
	return out
}

func Today() string { return time.Now().Format(models.DateLayout) }

func roundInt(d decimal.Decimal) int64 { return d.Round(0).IntPart() }
