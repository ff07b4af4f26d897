package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calorietracker/models"

	"gorm.io/gorm"
)

// Catalog is the seeded reference food list.
var Catalog = []models.FoodItem{
	{Name: "Banana", Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4, Serving: "1 medium (118g)"},
	{Name: "Apple", Calories: 95, Protein: 0.5, Carbs: 25, Fat: 0.3, Serving: "1 medium (182g)"},
	{Name: "Greek Yogurt", Calories: 130, Protein: 20, Carbs: 9, Fat: 0, Serving: "1 cup (245g)"},
	{Name: "Chicken Breast", Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6, Serving: "100g"},
	{Name: "Brown Rice", Calories: 216, Protein: 5, Carbs: 45, Fat: 1.8, Serving: "1 cup cooked (195g)"},
	{Name: "Avocado", Calories: 234, Protein: 2.9, Carbs: 12, Fat: 21, Serving: "1 medium (150g)"},
	{Name: "Almonds", Calories: 161, Protein: 6, Carbs: 6, Fat: 14, Serving: "1 oz (28g)"},
	{Name: "Salmon", Calories: 206, Protein: 28, Carbs: 0, Fat: 9, Serving: "100g"},
	{Name: "Broccoli", Calories: 31, Protein: 3, Carbs: 6, Fat: 0.4, Serving: "1 cup chopped (91g)"},
	{Name: "Oatmeal", Calories: 154, Protein: 5, Carbs: 28, Fat: 3, Serving: "1 cup cooked (234g)"},
	{Name: "Eggs", Calories: 155, Protein: 13, Carbs: 1, Fat: 11, Serving: "2 large eggs (100g)"},
	{Name: "Sweet Potato", Calories: 112, Protein: 2, Carbs: 26, Fat: 0.1, Serving: "1 medium baked (128g)"},
	{Name: "Spinach", Calories: 7, Protein: 0.9, Carbs: 1, Fat: 0.1, Serving: "1 cup fresh (30g)"},
	{Name: "Quinoa", Calories: 222, Protein: 8, Carbs: 39, Fat: 4, Serving: "1 cup cooked (185g)"},
	{Name: "Blueberries", Calories: 84, Protein: 1, Carbs: 21, Fat: 0.5, Serving: "1 cup (148g)"},
}

type FoodService struct{ db *gorm.DB }

func NewFoodService(db *gorm.DB) *FoodService { return &FoodService{db: db} }

type FoodInput struct {
	Name     string  `json:"name" binding:"required"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Serving  string  `json:"serving"`
}

func (in FoodInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	m := models.Macros{Calories: in.Calories, Protein: in.Protein, Carbs: in.Carbs, Fat: in.Fat}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// SeedCatalog inserts catalog items missing by name. It returns the number
// of items created.
func (s *FoodService) SeedCatalog(ctx context.Context) (int, error) {
	var existing []string
	if err := s.db.WithContext(ctx).Model(&models.FoodItem{}).
		Where("owner_id = ?", 0).
		Pluck("name", &existing).Error; err != nil {
		return 0, fmt.Errorf("list catalog: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	var missing []models.FoodItem
	for _, f := range Catalog {
		if !have[f.Name] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if err := s.db.WithContext(ctx).Create(&missing).Error; err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}
	return len(missing), nil
}

// List returns the catalog followed by the user's own foods.
func (s *FoodService) List(ctx context.Context, userID uint) ([]models.FoodItem, error) {
	var foods []models.FoodItem
	err := s.db.WithContext(ctx).
		Where("owner_id IN ?", []uint{0, userID}).
		Order("owner_id ASC, id ASC").
		Find(&foods).Error
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// Get returns a food visible to userID.
func (s *FoodService) Get(ctx context.Context, userID, id uint) (*models.FoodItem, error) {
	var food models.FoodItem
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id IN ?", id, []uint{0, userID}).
		First(&food).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("food %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get food %d: %w", id, err)
	}
	return &food, nil
}

func (s *FoodService) Create(ctx context.Context, userID uint, in FoodInput) (*models.FoodItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	food := &models.FoodItem{OwnerID: userID}
	apply(food, in)
	if err := s.db.WithContext(ctx).Create(food).Error; err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	return food, nil
}

func (s *FoodService) Update(ctx context.Context, userID, id uint, in FoodInput) (*models.FoodItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	food, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	apply(food, in)
	if err := s.db.WithContext(ctx).Save(food).Error; err != nil {
		return nil, fmt.Errorf("update food %d: %w", id, err)
	}
	return food, nil
}

// Delete removes a user's food. Entries already logged keep their
// denormalized copy.
func (s *FoodService) Delete(ctx context.Context, userID, id uint) error {
	food, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(food).Error; err != nil {
		return fmt.Errorf("delete food %d: %w", id, err)
	}
	return nil
}

func (s *FoodService) owned(ctx context.Context, userID, id uint) (*models.FoodItem, error) {
	food, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if food.IsCatalog() {
		return nil, ErrFoodImmutable
	}
	return food, nil
}

func apply(food *models.FoodItem, in FoodInput) {
	food.Name = strings.TrimSpace(in.Name)
	food.Calories = in.Calories
	food.Protein = in.Protein
	food.Carbs = in.Carbs
	food.Fat = in.Fat
	food.Serving = strings.TrimSpace(in.Serving)
}
