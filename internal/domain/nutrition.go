package domain

import (
	"time"
)

// MealType classifies a meal or a food-log entry.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// Valid reports whether m is one of the four known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// PlanStatus is the lifecycle state of a nutrition plan.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanPaused    PlanStatus = "paused"
	PlanCompleted PlanStatus = "completed"
)

// Food is reference data: one row per food with per-serving macro values,
// searched by substring match on name or brand.
type Food struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null;index" json:"name"`
	Brand             string    `json:"brand,omitempty"`
	Barcode           string    `json:"barcode,omitempty"`
	ServingSize       string    `gorm:"not null" json:"servingSize"`
	ServingUnit       string    `gorm:"not null" json:"servingUnit"`
	CaloriesPerServing float64  `json:"caloriesPerServing"`
	ProteinPerServing  float64  `json:"proteinPerServing"`
	CarbsPerServing    float64  `json:"carbsPerServing"`
	FatPerServing      float64  `json:"fatPerServing"`
	FiberPerServing    float64  `json:"fiberPerServing,omitempty"`
	SugarPerServing    float64  `json:"sugarPerServing,omitempty"`
	SodiumPerServing   float64  `json:"sodiumPerServing,omitempty"`
	Category           string   `json:"category,omitempty"`
	IsVerified         bool     `gorm:"default:false" json:"isVerified"`
	CreatedBy          *uint    `json:"createdBy,omitempty"` // User.ID
	CreatedAt          time.Time `json:"createdAt"`
}

// NutritionPlan is authored by one nutritionist and targets exactly one
// athlete over a date range.
type NutritionPlan struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	NutritionistID uint       `gorm:"not null;index" json:"nutritionistId"`
	AthleteID      uint       `gorm:"not null;index" json:"athleteId"`
	Name           string     `gorm:"not null" json:"name"`
	Description    string     `json:"description,omitempty"`
	TotalCalories  int        `json:"totalCalories,omitempty"`
	ProteinGrams   float64    `json:"proteinGrams,omitempty"`
	CarbsGrams     float64    `json:"carbsGrams,omitempty"`
	FatGrams       float64    `json:"fatGrams,omitempty"`
	FiberGrams     float64    `json:"fiberGrams,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	Status         PlanStatus `gorm:"default:active" json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Meals are ordered by OrderIndex, dense from 1.
	Meals []Meal `gorm:"foreignKey:PlanID" json:"meals,omitempty"`
}

// Meal is one ordered slot in a nutrition plan.
type Meal struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	PlanID         uint     `gorm:"not null;index" json:"planId"`
	MealType       MealType `gorm:"not null" json:"mealType"`
	Name           string   `gorm:"not null" json:"name"`
	Description    string   `json:"description,omitempty"`
	TargetCalories float64  `json:"targetCalories,omitempty"`
	OrderIndex     int      `gorm:"not null" json:"orderIndex"`

	Foods []MealFood `gorm:"foreignKey:MealID" json:"foods,omitempty"`
}

// MealFood is a quantified food inside a meal. Quantity is expressed in
// serving-equivalent units; no unit conversion is performed when totals
// are aggregated.
type MealFood struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	MealID   uint    `gorm:"not null;index" json:"mealId"`
	FoodID   uint    `gorm:"not null" json:"foodId"`
	Quantity float64 `gorm:"not null" json:"quantity"`
	Unit     string  `gorm:"not null" json:"unit"`

	Food *Food `gorm:"foreignKey:FoodID" json:"food,omitempty"`
}

// FoodLog is an athlete's actual intake, independent of any plan.
type FoodLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AthleteID uint      `gorm:"not null;index" json:"athleteId"`
	MealID    *uint     `json:"mealId,omitempty"`
	FoodID    uint      `gorm:"not null" json:"foodId"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"not null" json:"unit"`
	MealType  MealType  `json:"mealType,omitempty"`
	LoggedAt  time.Time `gorm:"index" json:"loggedAt"`

	Food *Food `gorm:"foreignKey:FoodID" json:"food,omitempty"`
}

// NutritionTotals is the aggregate of quantity x per-serving values across
// the foods under a meal or plan, each field rounded to 2 decimal places.
type NutritionTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}
