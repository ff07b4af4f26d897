package services

import (
	"context"
	"testing"
	"time"

	"calorietracker/internal/testutil"
	"calorietracker/models"
	"calorietracker/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	auth      *AuthService
	users     *UserService
	foods     *FoodService
	meals     *MealService
	summaries *SummaryService
	hub       *RealtimeHub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := utils.DiscardLogger()

	hub := NewRealtimeHub(log)
	users := NewUserService(db)
	foods := NewFoodService(db)
	meals := NewMealService(db, foods, hub, log)
	env := &testEnv{
		db:        db,
		auth:      NewAuthService(db, "test-secret", time.Hour, log),
		users:     users,
		foods:     foods,
		meals:     meals,
		summaries: NewSummaryService(db, meals, users, log),
		hub:       hub,
	}
	_, err := foods.SeedCatalog(context.Background())
	require.NoError(t, err)
	return env
}

func (e *testEnv) register(t *testing.T, email string) *models.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), "Test User", email, "secret1")
	require.NoError(t, err)
	return res.User
}

// food creates a user-owned food with round numbers.
func (e *testEnv) food(t *testing.T, userID uint, cal float64) *models.FoodItem {
	t.Helper()
	f, err := e.foods.Create(context.Background(), userID, FoodInput{
		Name: "Test Food", Calories: cal, Protein: 10, Carbs: 10, Fat: 10, Serving: "1 unit",
	})
	require.NoError(t, err)
	return f
}

func (e *testEnv) log(t *testing.T, userID, foodID uint, qty float64, mt models.MealType, date string) *models.MealEntry {
	t.Helper()
	entry, err := e.meals.Log(context.Background(), userID, LogMealInput{
		FoodItemID: foodID, Quantity: qty, MealType: mt, Date: date,
	})
	require.NoError(t, err)
	return entry
}
