package services

import (
	"context"
	"testing"

	"calorietracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCopiesFoodMacros(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	f := env.food(t, u.ID, 100)

	e := env.log(t, u.ID, f.ID, 2, models.Lunch, "2024-01-15")
	assert.Equal(t, "Test Food", e.FoodName)
	assert.Equal(t, 100.0, e.Calories)
	assert.Equal(t, 200.0, e.Totals().Calories)

	// later food edits leave logged entries alone
	_, err := env.foods.Update(ctx, u.ID, f.ID, FoodInput{Name: "Other", Calories: 999})
	require.NoError(t, err)
	got, err := env.meals.Get(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Calories)
	assert.Equal(t, models.Lunch, got.MealType)
}

func TestLogValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	f := env.food(t, u.ID, 100)

	_, err := env.meals.Log(ctx, u.ID, LogMealInput{FoodItemID: f.ID, Quantity: -1, MealType: models.Lunch, Date: "2024-01-15"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = env.meals.Log(ctx, u.ID, LogMealInput{FoodItemID: f.ID, Quantity: 1, MealType: models.Lunch, Date: "Jan 15"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.meals.Log(ctx, u.ID, LogMealInput{FoodItemID: 9999, Quantity: 1, MealType: models.Lunch, Date: "2024-01-15"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIsScopedByUserAndDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@b.co")
	bob := env.register(t, "bob@b.co")
	f := env.food(t, alice.ID, 100)
	list, err := env.foods.List(ctx, bob.ID)
	require.NoError(t, err)

	first := env.log(t, alice.ID, f.ID, 1, models.Breakfast, "2024-01-15")
	second := env.log(t, alice.ID, f.ID, 1, models.Dinner, "2024-01-15")
	env.log(t, alice.ID, f.ID, 1, models.Dinner, "2024-01-16")
	env.log(t, bob.ID, list[0].ID, 1, models.Dinner, "2024-01-15")

	entries, err := env.meals.List(ctx, alice.ID, "2024-01-15")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)

	ranged, err := env.meals.ListRange(ctx, alice.ID, "2024-01-15", "2024-01-16")
	require.NoError(t, err)
	assert.Len(t, ranged, 3)

	_, err = env.meals.Get(ctx, bob.ID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuantityRescalesOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	f := env.food(t, u.ID, 100)
	e := env.log(t, u.ID, f.ID, 1, models.Lunch, "2024-01-15")

	for _, q := range []float64{3, 3, 3} {
		qty := q
		_, err := env.meals.Update(ctx, u.ID, e.ID, UpdateMealInput{Quantity: &qty})
		require.NoError(t, err)
	}

	got, err := env.meals.Get(ctx, u.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Calories)
	assert.Equal(t, 3.0, got.Quantity)

	sum, err := env.summaries.Daily(ctx, u.ID, "2024-01-15")
	require.NoError(t, err)
	assert.EqualValues(t, 300, sum.TotalCalories)
}

func TestUpdateMovesEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	f := env.food(t, u.ID, 100)
	e := env.log(t, u.ID, f.ID, 1, models.Lunch, "2024-01-15")

	mt, date := models.Snacks, "2024-01-16"
	got, err := env.meals.Update(ctx, u.ID, e.ID, UpdateMealInput{MealType: &mt, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, models.Snacks, got.MealType)
	assert.Equal(t, "2024-01-16", got.Date)

	old, err := env.meals.List(ctx, u.ID, "2024-01-15")
	require.NoError(t, err)
	assert.Empty(t, old)

	zero := 0.0
	_, err = env.meals.Update(ctx, u.ID, e.ID, UpdateMealInput{Quantity: &zero})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	bad := "2024-02-30"
	_, err = env.meals.Update(ctx, u.ID, e.ID, UpdateMealInput{Date: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	other := env.register(t, "b@b.co")
	f := env.food(t, u.ID, 100)
	e := env.log(t, u.ID, f.ID, 1, models.Lunch, "2024-01-15")

	assert.ErrorIs(t, env.meals.Delete(ctx, other.ID, e.ID), ErrNotFound)
	require.NoError(t, env.meals.Delete(ctx, u.ID, e.ID))
	assert.ErrorIs(t, env.meals.Delete(ctx, u.ID, e.ID), ErrNotFound)
}
