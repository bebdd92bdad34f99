package postgres

import (
	"context"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"gorm.io/gorm"
)

// gormFoodRepository implements repository.FoodRepository.
type gormFoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository creates a new food repository bound to db.
func NewFoodRepository(db *gorm.DB) repository.FoodRepository {
	return &gormFoodRepository{db: db}
}

func (r *gormFoodRepository) Create(ctx context.Context, food *domain.Food) (uint, error) {
	if err := r.db.WithContext(ctx).Create(food).Error; err != nil {
		return 0, err
	}
	return food.ID, nil
}

func (r *gormFoodRepository) GetByID(ctx context.Context, id uint) (*domain.Food, error) {
	var food domain.Food
	if err := r.db.WithContext(ctx).First(&food, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &food, nil
}

// Search matches query as a case-insensitive substring of name or brand,
// verified foods first, then alphabetical.
func (r *gormFoodRepository) Search(ctx context.Context, query string, limit int) ([]domain.Food, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	var foods []domain.Food
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR brand ILIKE ?", pattern, pattern).
		Order("is_verified DESC, name ASC").
		Limit(limit).
		Find(&foods).Error
	if err != nil {
		return nil, err
	}
	return foods, nil
}

// gormNutritionRepository implements repository.NutritionRepository.
type gormNutritionRepository struct {
	db *gorm.DB
}

// NewNutritionRepository creates a new nutrition repository bound to db.
func NewNutritionRepository(db *gorm.DB) repository.NutritionRepository {
	return &gormNutritionRepository{db: db}
}

// CreatePlan stores the plan, its ordered meals and their foods in one
// transaction; a failure partway leaves no partial plan behind.
func (r *gormNutritionRepository) CreatePlan(ctx context.Context, plan *domain.NutritionPlan) (uint, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(plan).Error
	})
	if err != nil {
		return 0, err
	}
	return plan.ID, nil
}

func (r *gormNutritionRepository) GetPlanByID(ctx context.Context, id uint) (*domain.NutritionPlan, error) {
	var plan domain.NutritionPlan
	err := r.db.WithContext(ctx).
		Preload("Meals", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Meals.Foods").
		Preload("Meals.Foods.Food").
		First(&plan, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &plan, nil
}

func (r *gormNutritionRepository) ListPlansByNutritionist(ctx context.Context, nutritionistID uint) ([]domain.NutritionPlan, error) {
	var plans []domain.NutritionPlan
	err := r.db.WithContext(ctx).
		Where("nutritionist_id = ?", nutritionistID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (r *gormNutritionRepository) ListPlansByAthlete(ctx context.Context, athleteID uint) ([]domain.NutritionPlan, error) {
	var plans []domain.NutritionPlan
	err := r.db.WithContext(ctx).
		Where("athlete_id = ?", athleteID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (r *gormNutritionRepository) UpdatePlanStatus(ctx context.Context, id uint, status domain.PlanStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.NutritionPlan{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormNutritionRepository) MealFoods(ctx context.Context, mealID uint) ([]domain.MealFood, error) {
	var foods []domain.MealFood
	err := r.db.WithContext(ctx).
		Preload("Food").
		Where("meal_id = ?", mealID).
		Find(&foods).Error
	return foods, err
}

// PlanFoods collects every meal food under the plan, across all meals.
func (r *gormNutritionRepository) PlanFoods(ctx context.Context, planID uint) ([]domain.MealFood, error) {
	var foods []domain.MealFood
	err := r.db.WithContext(ctx).
		Preload("Food").
		Joins("JOIN meals ON meals.id = meal_foods.meal_id").
		Where("meals.plan_id = ?", planID).
		Find(&foods).Error
	return foods, err
}

func (r *gormNutritionRepository) CreateFoodLog(ctx context.Context, log *domain.FoodLog) (uint, error) {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return 0, err
	}
	return log.ID, nil
}

func (r *gormNutritionRepository) ListFoodLogs(ctx context.Context, athleteID uint, filter repository.FoodLogFilter) ([]domain.FoodLog, error) {
	query := r.db.WithContext(ctx).Model(&domain.FoodLog{}).
		Where("athlete_id = ?", athleteID)

	if filter.DateFrom != nil {
		query = query.Where("logged_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("logged_at <= ?", *filter.DateTo)
	}

	limit := filter.Page.Limit
	if limit <= 0 {
		limit = 50
	}

	var logs []domain.FoodLog
	err := query.
		Preload("Food").
		Order("logged_at DESC").
		Limit(limit).
		Offset(filter.Page.Offset()).
		Find(&logs).Error
	return logs, err
}
