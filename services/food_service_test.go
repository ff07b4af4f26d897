package services

import (
	"context"
	"testing"

	"calorietracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	n, err := env.foods.SeedCatalog(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	var count int64
	require.NoError(t, env.db.Model(&models.FoodItem{}).Count(&count).Error)
	assert.EqualValues(t, len(Catalog), count)
}

func TestFoodListAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@b.co")
	bob := env.register(t, "bob@b.co")

	mine := env.food(t, alice.ID, 250)

	list, err := env.foods.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, len(Catalog)+1)
	assert.Equal(t, "Banana", list[0].Name)
	assert.Equal(t, mine.ID, list[len(list)-1].ID)

	list, err = env.foods.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, list, len(Catalog))

	_, err = env.foods.Get(ctx, bob.ID, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	upd, err := env.foods.Update(ctx, alice.ID, mine.ID, FoodInput{Name: "Renamed", Calories: 1})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", upd.Name)

	require.NoError(t, env.foods.Delete(ctx, alice.ID, mine.ID))
	_, err = env.foods.Get(ctx, alice.ID, mine.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")

	list, err := env.foods.List(ctx, u.ID)
	require.NoError(t, err)
	banana := list[0]

	_, err = env.foods.Update(ctx, u.ID, banana.ID, FoodInput{Name: "Plantain"})
	assert.ErrorIs(t, err, ErrFoodImmutable)
	assert.ErrorIs(t, env.foods.Delete(ctx, u.ID, banana.ID), ErrFoodImmutable)
}

func TestCreateFoodValidation(t *testing.T) {
	env := newTestEnv(t)
	u := env.register(t, "a@b.co")

	_, err := env.foods.Create(context.Background(), u.ID, FoodInput{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.foods.Create(context.Background(), u.ID, FoodInput{Name: "x", Calories: -5})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
