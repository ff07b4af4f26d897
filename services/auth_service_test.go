package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, " Ada ", "Ada@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "Ada", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, 2000, res.User.DailyCalorieGoal)
	assert.Equal(t, 70, res.User.DailyFatGoal)
	assert.NotEqual(t, "secret1", res.User.Password)

	claims, err := env.auth.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := env.auth.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = env.auth.Login(ctx, "ada@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, "", "a@b.co", "secret1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.auth.Register(ctx, "A", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.auth.Register(ctx, "A", "a@b.co", "12345")
	assert.ErrorIs(t, err, ErrInvalidInput)

	env.register(t, "a@b.co")
	_, err = env.auth.Register(ctx, "B", "A@B.CO", "secret1")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@b.co")
	env.register(t, "taken@b.co")

	name, goal := "Grace", 1800
	got, err := env.users.UpdateProfile(ctx, u.ID, ProfileInput{Name: &name, DailyCalorieGoal: &goal})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, 1800, got.DailyCalorieGoal)
	assert.Equal(t, 150, got.DailyProteinGoal)

	stored, err := env.users.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1800, stored.DailyCalorieGoal)

	zero := 0
	_, err = env.users.UpdateProfile(ctx, u.ID, ProfileInput{DailyFatGoal: &zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	taken := "Taken@b.co"
	_, err = env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	same := "a@b.co"
	_, err = env.users.UpdateProfile(ctx, u.ID, ProfileInput{Email: &same})
	assert.NoError(t, err)

	_, err = env.users.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
