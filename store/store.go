// Package store holds the client-side tracker state: food items, logged
// entries, goals, the selected date and the signed-in session. State is
// persisted as JSON blobs through a KV.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"calorietracker/client"
	"calorietracker/models"
	"calorietracker/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	StateKey = "calorie_tracker_state"
	AuthKey  = "calorie_tracker_auth"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidGoals = errors.New("goals must be positive integers")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrInvalidFood  = errors.New("invalid food item")
	ErrNoAPI        = errors.New("store has no api client")
)

// AuthAPI is the part of the tracker API the store signs in through.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Signup(ctx context.Context, name, email, password string) (*client.AuthResponse, error)
}

type Food struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Serving  string  `json:"serving"`
}

// Entry is a logged food. Macros are per serving, as on the server.
type Entry struct {
	ID         string          `json:"id"`
	FoodItemID string          `json:"foodItemId"`
	FoodName   string          `json:"foodName"`
	Calories   float64         `json:"calories"`
	Protein    float64         `json:"protein"`
	Carbs      float64         `json:"carbs"`
	Fat        float64         `json:"fat"`
	Serving    string          `json:"serving"`
	Quantity   float64         `json:"quantity"`
	MealType   models.MealType `json:"mealType"`
	Date       string          `json:"date"`
}

func (e Entry) Day() string           { return e.Date }
func (e Entry) Meal() models.MealType { return e.MealType }
func (e Entry) Servings() float64     { return e.Quantity }
func (e Entry) PerServing() models.Macros {
	return models.Macros{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}

func (e Entry) meal() models.MealEntry {
	return models.MealEntry{
		FoodName: e.FoodName,
		Serving:  e.Serving,
		Calories: e.Calories,
		Protein:  e.Protein,
		Carbs:    e.Carbs,
		Fat:      e.Fat,
		Quantity: e.Quantity,
		MealType: e.MealType,
		Date:     e.Date,
	}
}

type Auth struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
	// Error is the message of the last failed sign-in. It is not persisted.
	Error string `json:"-"`
}

func (a Auth) Authenticated() bool { return a.Token != "" }

type snapshot struct {
	FoodItems   []Food        `json:"foodItems"`
	MealEntries []Entry       `json:"mealEntries"`
	UserProfile *models.Goals `json:"userProfile"`
	CurrentDate string        `json:"currentDate"`
}

// rawSnapshot decodes a saved snapshot field by field so one bad item does
// not discard the rest.
type rawSnapshot struct {
	FoodItems   []json.RawMessage `json:"foodItems"`
	MealEntries []json.RawMessage `json:"mealEntries"`
	UserProfile json.RawMessage   `json:"userProfile"`
	CurrentDate json.RawMessage   `json:"currentDate"`
}

type Option func(*Store)

// WithAPI lets the store sign in through api.
func WithAPI(api AuthAPI) Option {
	return func(s *Store) { s.api = api }
}

// WithClock overrides the clock used to pick the default current date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is safe for concurrent use.
type Store struct {
	kv  KV
	api AuthAPI
	log *logrus.Logger
	now func() time.Time

	mu      sync.RWMutex
	foods   []Food
	entries []Entry
	profile models.Goals
	date    string
	auth    Auth
}

func New(kv KV, log *logrus.Logger, opts ...Option) *Store {
	s := &Store{kv: kv, log: log, now: time.Now, profile: models.DefaultGoals()}
	for _, o := range opts {
		o(s)
	}
	s.date = s.today()
	return s
}

func (s *Store) today() string { return s.now().Format(models.DateLayout) }

// Initialize restores saved state and then the saved session.
func (s *Store) Initialize(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		return err
	}
	_, err := s.CheckAuthStatus(ctx)
	return err
}

// Load restores persisted state. A missing or unreadable blob leaves the
// current state untouched; unreadable items inside a readable blob are
// skipped and everything else is kept.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StateKey)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if !ok || isBlank(raw) {
		return nil
	}

	var snap rawSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.WithError(err).Warn("ignoring unreadable tracker state")
		return nil
	}

	foods := decodeItems[Food](s.log, "food item", snap.FoodItems)
	entries := decodeItems[Entry](s.log, "meal entry", snap.MealEntries)

	profile := models.DefaultGoals()
	if len(snap.UserProfile) > 0 && string(snap.UserProfile) != "null" {
		var g models.Goals
		if err := json.Unmarshal(snap.UserProfile, &g); err == nil && g.Valid() {
			profile = g
		} else {
			s.log.WithField("profile", string(snap.UserProfile)).Warn("ignoring unreadable goals")
		}
	}

	date := s.today()
	var saved string
	if json.Unmarshal(snap.CurrentDate, &saved) == nil && utils.ValidDate(saved) {
		date = saved
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.foods = foods
	s.entries = entries
	s.profile = profile
	s.date = date
	return nil
}

func decodeItems[T any](log *logrus.Logger, kind string, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			log.WithError(err).WithField("index", i).Warnf("skipping unreadable %s", kind)
			continue
		}
		out = append(out, v)
	}
	return out
}

// Save persists foods, entries, goals and the current date.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	profile := s.profile
	b, err := json.Marshal(snapshot{
		FoodItems:   nonNil(s.foods),
		MealEntries: nonNil(s.entries),
		UserProfile: &profile,
		CurrentDate: s.date,
	})
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.kv.Set(ctx, StateKey, b); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// CheckAuthStatus restores the persisted session. Anything other than a
// stored object carrying a token signs the user out.
func (s *Store) CheckAuthStatus(ctx context.Context) (Auth, error) {
	raw, ok, err := s.kv.Get(ctx, AuthKey)
	if err != nil {
		s.setAuth(Auth{})
		return Auth{}, fmt.Errorf("load auth: %w", err)
	}

	var a Auth
	if ok {
		if err := json.Unmarshal(raw, &a); err != nil {
			s.log.WithError(err).Warn("ignoring unreadable auth state")
			a = Auth{}
		}
	}
	if !a.Authenticated() {
		a = Auth{}
	}
	s.setAuth(a)
	return a, nil
}

// Login signs in through the API and persists the session. On failure the
// store is signed out and Auth().Error carries the reason.
func (s *Store) Login(ctx context.Context, email, password string) (Auth, error) {
	if s.api == nil {
		return Auth{}, ErrNoAPI
	}
	res, err := s.api.Login(ctx, email, password)
	return s.finishSignIn(ctx, res, err)
}

// Signup registers through the API and persists the session.
func (s *Store) Signup(ctx context.Context, name, email, password string) (Auth, error) {
	if s.api == nil {
		return Auth{}, ErrNoAPI
	}
	res, err := s.api.Signup(ctx, name, email, password)
	return s.finishSignIn(ctx, res, err)
}

func (s *Store) finishSignIn(ctx context.Context, res *client.AuthResponse, err error) (Auth, error) {
	if err != nil {
		s.setAuth(Auth{Error: err.Error()})
		return Auth{}, err
	}
	user := res.User
	if err := s.SetAuth(ctx, res.Token, &user); err != nil {
		return Auth{}, err
	}
	return s.Auth(), nil
}

func (s *Store) SetAuth(ctx context.Context, token string, user *models.User) error {
	a := Auth{Token: token, User: user}
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode auth: %w", err)
	}
	s.setAuth(a)
	if err := s.kv.Set(ctx, AuthKey, b); err != nil {
		return fmt.Errorf("save auth: %w", err)
	}
	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.setAuth(Auth{})
	if err := s.kv.Set(ctx, AuthKey, nil); err != nil {
		return fmt.Errorf("clear auth: %w", err)
	}
	return nil
}

// UpdateUser replaces the signed-in user without touching the token.
func (s *Store) UpdateUser(user *models.User) {
	s.mu.Lock()
	s.auth.User = user
	s.mu.Unlock()
}

func (s *Store) setAuth(a Auth) {
	s.mu.Lock()
	s.auth = a
	s.mu.Unlock()
}

func (s *Store) Auth() Auth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) AddFoodItem(ctx context.Context, f Food) (Food, error) {
	if f.Name == "" {
		return Food{}, fmt.Errorf("%w: name is required", ErrInvalidFood)
	}
	m := models.Macros{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
	if err := m.Validate(); err != nil {
		return Food{}, fmt.Errorf("%w: %w", ErrInvalidFood, err)
	}
	f.ID = uuid.NewString()

	s.mu.Lock()
	s.foods = append(s.foods, f)
	s.mu.Unlock()
	return f, s.Save(ctx)
}

func (s *Store) AddMealEntry(ctx context.Context, e Entry) (Entry, error) {
	if err := e.meal().Validate(); err != nil {
		return Entry{}, err
	}
	e.ID = uuid.NewString()

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return e, s.Save(ctx)
}

// UpdateMealQuantity changes only the quantity of an entry.
func (s *Store) UpdateMealQuantity(ctx context.Context, id string, quantity float64) (Entry, error) {
	s.mu.Lock()
	i := s.entryIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return Entry{}, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	if _, err := s.entries[i].meal().WithQuantity(quantity); err != nil {
		s.mu.Unlock()
		return Entry{}, err
	}
	s.entries[i].Quantity = quantity
	updated := s.entries[i]
	s.mu.Unlock()
	return updated, s.Save(ctx)
}

func (s *Store) DeleteMealEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.entryIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
	s.mu.Unlock()
	return s.Save(ctx)
}

func (s *Store) entryIndex(id string) int {
	for i, e := range s.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) UpdateProfile(ctx context.Context, g models.Goals) error {
	if !g.Valid() {
		return ErrInvalidGoals
	}
	s.mu.Lock()
	s.profile = g
	s.mu.Unlock()
	return s.Save(ctx)
}

// ChangeDate selects the date the summary is computed for. It is not
// persisted until the next Save.
func (s *Store) ChangeDate(date string) error {
	if !utils.ValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	s.mu.Lock()
	s.date = date
	s.mu.Unlock()
	return nil
}

func (s *Store) CurrentDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

func (s *Store) Profile() models.Goals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) FoodItems() []Food {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Food{}, s.foods...)
}

func (s *Store) MealEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry{}, s.entries...)
}

// Summary is a daily summary over stored entries.
type Summary = models.DaySummary[Entry]

// DailySummary summarizes the current date.
func (s *Store) DailySummary() Summary {
	return s.SummaryFor(s.CurrentDate())
}

// SummaryFor runs the shared daily calculator over the stored entries.
func (s *Store) SummaryFor(date string) Summary {
	return utils.SummarizeDay(s.MealEntries(), date)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
