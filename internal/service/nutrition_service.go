package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"fitcoach/coaching-app/internal/analysis"
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrFoodNotFound     = errors.New("food not found")
	ErrPlanNotFound     = errors.New("nutrition plan not found")
	ErrPlanEmpty        = errors.New("nutrition plan needs at least one meal")
	ErrMealEmpty        = errors.New("every meal needs at least one food")
	ErrClientNotManaged = errors.New("athlete is not one of your clients")
	ErrInvalidMealType  = errors.New("invalid meal type")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidPlanDates = errors.New("plan end date must be after the start date")
	ErrEmptyImage       = errors.New("image payload is empty")
)

// FoodInput describes a new food database entry. Foods created through the
// API start unverified.
type FoodInput struct {
	Name              string
	Brand             string
	Barcode           string
	ServingSize       string
	ServingUnit       string
	Calories          float64
	Protein           float64
	Carbs             float64
	Fat               float64
	Fiber             float64
	Sugar             float64
	Sodium            float64
	Category          string
}

// MealFoodInput is one quantified food inside a meal of a new plan.
type MealFoodInput struct {
	FoodID   uint
	Quantity float64
	Unit     string
}

// MealInput is one ordered meal of a new plan. Order is taken from the
// slice position.
type MealInput struct {
	MealType       domain.MealType
	Name           string
	Description    string
	TargetCalories float64
	Foods          []MealFoodInput
}

// PlanInput describes a new nutrition plan for one client.
type PlanInput struct {
	AthleteProfileID uint
	Name             string
	Description      string
	TotalCalories    int
	ProteinGrams     float64
	CarbsGrams       float64
	FatGrams         float64
	StartDate        *time.Time
	EndDate          *time.Time
	Meals            []MealInput
}

// FoodLogInput is one intake entry reported by an athlete.
type FoodLogInput struct {
	FoodID   uint
	MealID   *uint
	Quantity float64
	Unit     string
	MealType domain.MealType
	LoggedAt time.Time
}

type NutritionService interface {
	CreateFood(ctx context.Context, userID uint, input FoodInput) (*domain.Food, error)
	SearchFoods(ctx context.Context, query string, limit int) ([]domain.Food, error)

	CreatePlan(ctx context.Context, nutritionistUserID uint, input PlanInput) (*domain.NutritionPlan, error)
	GetPlan(ctx context.Context, userID uint, planID uint) (*domain.NutritionPlan, error)
	ListPlansForNutritionist(ctx context.Context, nutritionistUserID uint) ([]domain.NutritionPlan, error)
	ListPlansForAthlete(ctx context.Context, athleteUserID uint) ([]domain.NutritionPlan, error)
	UpdatePlanStatus(ctx context.Context, nutritionistUserID, planID uint, status domain.PlanStatus) error

	MealTotals(ctx context.Context, mealID uint) (*domain.NutritionTotals, error)
	PlanTotals(ctx context.Context, planID uint) (*domain.NutritionTotals, error)

	LogFood(ctx context.Context, athleteUserID uint, input FoodLogInput) (*domain.FoodLog, error)
	ListFoodLogs(ctx context.Context, athleteUserID uint, filter repository.FoodLogFilter) ([]domain.FoodLog, error)
	DailyIntake(ctx context.Context, athleteUserID uint, day time.Time) (*domain.NutritionTotals, error)

	AnalyzeFoodImage(ctx context.Context, userID uint, image []byte) (*domain.FoodAnalysisRecord, error)
	AnalysisHistory(ctx context.Context, userID uint, page repository.Page) ([]domain.FoodAnalysisRecord, int64, error)
}

type nutritionService struct {
	nutritionRepo    repository.NutritionRepository
	foodRepo         repository.FoodRepository
	nutritionistRepo repository.NutritionistRepository
	athleteRepo      repository.AthleteRepository
	analysisRepo     repository.AnalysisRepository
	analyzer         analysis.Analyzer
	notifier         NotificationService
	log              *logrus.Logger
}

func NewNutritionService(
	nutritionRepo repository.NutritionRepository,
	foodRepo repository.FoodRepository,
	nutritionistRepo repository.NutritionistRepository,
	athleteRepo repository.AthleteRepository,
	analysisRepo repository.AnalysisRepository,
	analyzer analysis.Analyzer,
	notifier NotificationService,
	log *logrus.Logger,
) NutritionService {
	return &nutritionService{
		nutritionRepo:    nutritionRepo,
		foodRepo:         foodRepo,
		nutritionistRepo: nutritionistRepo,
		athleteRepo:      athleteRepo,
		analysisRepo:     analysisRepo,
		analyzer:         analyzer,
		notifier:         notifier,
		log:              log,
	}
}

func (s *nutritionService) CreateFood(ctx context.Context, userID uint, input FoodInput) (*domain.Food, error) {
	if input.Name == "" || input.ServingSize == "" || input.ServingUnit == "" {
		return nil, errors.New("food name, serving size and serving unit cannot be empty")
	}
	food := &domain.Food{
		Name:               input.Name,
		Brand:              input.Brand,
		Barcode:            input.Barcode,
		ServingSize:        input.ServingSize,
		ServingUnit:        input.ServingUnit,
		CaloriesPerServing: input.Calories,
		ProteinPerServing:  input.Protein,
		CarbsPerServing:    input.Carbs,
		FatPerServing:      input.Fat,
		FiberPerServing:    input.Fiber,
		SugarPerServing:    input.Sugar,
		SodiumPerServing:   input.Sodium,
		Category:           input.Category,
		IsVerified:         false,
		CreatedBy:          &userID,
	}
	id, err := s.foodRepo.Create(ctx, food)
	if err != nil {
		return nil, err
	}
	food.ID = id
	return food, nil
}

func (s *nutritionService) SearchFoods(ctx context.Context, query string, limit int) ([]domain.Food, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.foodRepo.Search(ctx, query, limit)
}

// CreatePlan validates the whole plan before anything is written, then
// persists plan, meals and foods in one transaction.
func (s *nutritionService) CreatePlan(ctx context.Context, nutritionistUserID uint, input PlanInput) (*domain.NutritionPlan, error) {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if input.Name == "" {
		return nil, errors.New("plan name cannot be empty")
	}
	if len(input.Meals) == 0 {
		return nil, ErrPlanEmpty
	}
	if input.StartDate != nil && input.EndDate != nil && !input.EndDate.After(*input.StartDate) {
		return nil, ErrInvalidPlanDates
	}

	athlete, err := s.athleteRepo.GetByID(ctx, input.AthleteProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if athlete.NutritionistID != nil && *athlete.NutritionistID != nutritionist.ID {
		return nil, ErrClientNotManaged
	}

	plan := &domain.NutritionPlan{
		NutritionistID: nutritionist.ID,
		AthleteID:      athlete.ID,
		Name:           input.Name,
		Description:    input.Description,
		TotalCalories:  input.TotalCalories,
		ProteinGrams:   input.ProteinGrams,
		CarbsGrams:     input.CarbsGrams,
		FatGrams:       input.FatGrams,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Status:         domain.PlanActive,
	}
	for i, m := range input.Meals {
		if !m.MealType.Valid() {
			return nil, ErrInvalidMealType
		}
		if m.Name == "" {
			return nil, errors.New("meal name cannot be empty")
		}
		if len(m.Foods) == 0 {
			return nil, ErrMealEmpty
		}
		meal := domain.Meal{
			MealType:       m.MealType,
			Name:           m.Name,
			Description:    m.Description,
			TargetCalories: m.TargetCalories,
			OrderIndex:     i + 1,
		}
		for _, f := range m.Foods {
			if f.Quantity <= 0 {
				return nil, ErrInvalidQuantity
			}
			if _, err := s.foodRepo.GetByID(ctx, f.FoodID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("%w: id %d", ErrFoodNotFound, f.FoodID)
				}
				return nil, err
			}
			meal.Foods = append(meal.Foods, domain.MealFood{
				FoodID:   f.FoodID,
				Quantity: f.Quantity,
				Unit:     f.Unit,
			})
		}
		plan.Meals = append(plan.Meals, meal)
	}

	if athlete.NutritionistID == nil {
		// Writing a plan for an unclaimed athlete adds them to the roster.
		if err := s.nutritionistRepo.AssignClient(ctx, nutritionist.ID, athlete.ID); err != nil {
			if errors.Is(err, repository.ErrCapacity) {
				return nil, ErrRosterFull
			}
			return nil, err
		}
		athlete.NutritionistID = &nutritionist.ID
	}

	id, err := s.nutritionRepo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, NotifyInput{
		UserID:   athlete.UserID,
		Title:    "New nutrition plan",
		Message:  fmt.Sprintf("Your nutritionist created the plan %q for you.", input.Name),
		Type:     domain.NotifyNutrition,
		Priority: domain.PriorityMedium,
	})

	return s.nutritionRepo.GetPlanByID(ctx, id)
}

// GetPlan is visible to its authoring nutritionist and its target athlete
// only. Callers of either role pass their user id; ownership is resolved
// against both sides.
func (s *nutritionService) GetPlan(ctx context.Context, userID uint, planID uint) (*domain.NutritionPlan, error) {
	plan, err := s.nutritionRepo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if nutritionist, nerr := s.nutritionistRepo.GetByUserID(ctx, userID); nerr == nil && plan.NutritionistID == nutritionist.ID {
		return plan, nil
	}
	if athlete, aerr := s.athleteRepo.GetByUserID(ctx, userID); aerr == nil && plan.AthleteID == athlete.ID {
		return plan, nil
	}
	return nil, ErrPlanNotFound
}

func (s *nutritionService) ListPlansForNutritionist(ctx context.Context, nutritionistUserID uint) ([]domain.NutritionPlan, error) {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.nutritionRepo.ListPlansByNutritionist(ctx, nutritionist.ID)
}

func (s *nutritionService) ListPlansForAthlete(ctx context.Context, athleteUserID uint) ([]domain.NutritionPlan, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.nutritionRepo.ListPlansByAthlete(ctx, athlete.ID)
}

func (s *nutritionService) UpdatePlanStatus(ctx context.Context, nutritionistUserID, planID uint, status domain.PlanStatus) error {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	plan, err := s.nutritionRepo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	if plan.NutritionistID != nutritionist.ID {
		return ErrPlanNotFound
	}
	return s.nutritionRepo.UpdatePlanStatus(ctx, planID, status)
}

func (s *nutritionService) MealTotals(ctx context.Context, mealID uint) (*domain.NutritionTotals, error) {
	foods, err := s.nutritionRepo.MealFoods(ctx, mealID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(foods)
	return &totals, nil
}

func (s *nutritionService) PlanTotals(ctx context.Context, planID uint) (*domain.NutritionTotals, error) {
	foods, err := s.nutritionRepo.PlanFoods(ctx, planID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(foods)
	return &totals, nil
}

func (s *nutritionService) LogFood(ctx context.Context, athleteUserID uint, input FoodLogInput) (*domain.FoodLog, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if input.MealType != "" && !input.MealType.Valid() {
		return nil, ErrInvalidMealType
	}
	food, err := s.foodRepo.GetByID(ctx, input.FoodID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	if input.LoggedAt.IsZero() {
		input.LoggedAt = time.Now()
	}

	log := &domain.FoodLog{
		AthleteID: athlete.ID,
		MealID:    input.MealID,
		FoodID:    food.ID,
		Quantity:  input.Quantity,
		Unit:      input.Unit,
		MealType:  input.MealType,
		LoggedAt:  input.LoggedAt,
	}
	id, err := s.nutritionRepo.CreateFoodLog(ctx, log)
	if err != nil {
		return nil, err
	}
	log.ID = id
	log.Food = food
	return log, nil
}

func (s *nutritionService) ListFoodLogs(ctx context.Context, athleteUserID uint, filter repository.FoodLogFilter) ([]domain.FoodLog, error) {
	athlete, err := s.athleteRepo.GetByUserID(ctx, athleteUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return s.nutritionRepo.ListFoodLogs(ctx, athlete.ID, filter)
}

// DailyIntake aggregates the athlete's logged intake for one calendar day.
func (s *nutritionService) DailyIntake(ctx context.Context, athleteUserID uint, day time.Time) (*domain.NutritionTotals, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	logs, err := s.ListFoodLogs(ctx, athleteUserID, repository.FoodLogFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}

	portions := make([]domain.MealFood, 0, len(logs))
	for _, l := range logs {
		portions = append(portions, domain.MealFood{Quantity: l.Quantity, Food: l.Food})
	}
	totals := ComputeTotals(portions)
	return &totals, nil
}

// AnalyzeFoodImage runs the analyzer on the uploaded image and persists the
// structured result in the user's history.
func (s *nutritionService) AnalyzeFoodImage(ctx context.Context, userID uint, image []byte) (*domain.FoodAnalysisRecord, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}
	result, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		return nil, err
	}

	ingredients, _ := json.Marshal(result.Ingredients)
	tips, _ := json.Marshal(result.Tips)
	record := &domain.FoodAnalysisRecord{
		UserID:        userID,
		FoodName:      result.FoodName,
		Confidence:    result.Confidence,
		Calories:      result.Calories,
		Protein:       result.Protein,
		Carbohydrates: result.Carbs,
		Fat:           result.Fat,
		Fiber:         result.Fiber,
		ServingSize:   result.ServingSize,
		Ingredients:   ingredients,
		Tips:          tips,
	}
	id, err := s.analysisRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id
	return record, nil
}

func (s *nutritionService) AnalysisHistory(ctx context.Context, userID uint, page repository.Page) ([]domain.FoodAnalysisRecord, int64, error) {
	return s.analysisRepo.ListByUser(ctx, userID, page)
}

// ComputeTotals sums quantity times per-serving values over the portions.
// Quantities are serving equivalents; no unit conversion happens here. Each
// field is rounded to two decimal places.
func ComputeTotals(portions []domain.MealFood) domain.NutritionTotals {
	var t domain.NutritionTotals
	for _, p := range portions {
		if p.Food == nil {
			continue
		}
		t.Calories += p.Quantity * p.Food.CaloriesPerServing
		t.Protein += p.Quantity * p.Food.ProteinPerServing
		t.Carbs += p.Quantity * p.Food.CarbsPerServing
		t.Fat += p.Quantity * p.Food.FatPerServing
		t.Fiber += p.Quantity * p.Food.FiberPerServing
	}
	t.Calories = round2(t.Calories)
	t.Protein = round2(t.Protein)
	t.Carbs = round2(t.Carbs)
	t.Fat = round2(t.Fat)
	t.Fiber = round2(t.Fiber)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
