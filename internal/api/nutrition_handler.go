package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// maxAnalysisImageBytes bounds uploads to the analyzer.
const maxAnalysisImageBytes = 10 << 20

// NutritionHandler serves the food database, nutrition plans, intake logs
// and food image analysis.
type NutritionHandler struct {
	nutritionService service.NutritionService
}

func NewNutritionHandler(nutritionService service.NutritionService) *NutritionHandler {
	return &NutritionHandler{nutritionService: nutritionService}
}

type CreateFoodRequest struct {
	Name        string  `json:"name" binding:"required"`
	Brand       string  `json:"brand"`
	Barcode     string  `json:"barcode"`
	ServingSize string  `json:"servingSize" binding:"required"`
	ServingUnit string  `json:"servingUnit" binding:"required"`
	Calories    float64 `json:"calories" binding:"min=0"`
	Protein     float64 `json:"protein" binding:"min=0"`
	Carbs       float64 `json:"carbs" binding:"min=0"`
	Fat         float64 `json:"fat" binding:"min=0"`
	Fiber       float64 `json:"fiber" binding:"min=0"`
	Sugar       float64 `json:"sugar" binding:"min=0"`
	Sodium      float64 `json:"sodium" binding:"min=0"`
	Category    string  `json:"category"`
}

type MealFoodRequest struct {
	FoodID   uint    `json:"foodId" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"required"`
}

type MealRequest struct {
	MealType       domain.MealType   `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description"`
	TargetCalories float64           `json:"targetCalories"`
	Foods          []MealFoodRequest `json:"foods" binding:"required,min=1,dive"`
}

type CreatePlanRequest struct {
	AthleteID     uint          `json:"athleteId" binding:"required"`
	Name          string        `json:"name" binding:"required"`
	Description   string        `json:"description"`
	TotalCalories int           `json:"totalCalories"`
	ProteinGrams  float64       `json:"proteinGrams"`
	CarbsGrams    float64       `json:"carbsGrams"`
	FatGrams      float64       `json:"fatGrams"`
	StartDate     *time.Time    `json:"startDate"`
	EndDate       *time.Time    `json:"endDate"`
	Meals         []MealRequest `json:"meals" binding:"required,min=1,dive"`
}

type UpdatePlanStatusRequest struct {
	Status domain.PlanStatus `json:"status" binding:"required,oneof=active paused completed"`
}

type LogFoodRequest struct {
	FoodID   uint            `json:"foodId" binding:"required"`
	MealID   *uint           `json:"mealId"`
	Quantity float64         `json:"quantity" binding:"required,gt=0"`
	Unit     string          `json:"unit" binding:"required"`
	MealType domain.MealType `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
	LoggedAt *time.Time      `json:"loggedAt"`
}

func (h *NutritionHandler) CreateFood(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	food, err := h.nutritionService.CreateFood(c.Request.Context(), userID, service.FoodInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Barcode:     req.Barcode,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fat:         req.Fat,
		Fiber:       req.Fiber,
		Sugar:       req.Sugar,
		Sodium:      req.Sodium,
		Category:    req.Category,
	})
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (h *NutritionHandler) SearchFoods(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		abortWithError(c, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	foods, err := h.nutritionService.SearchFoods(c.Request.Context(), query, limit)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods})
}

func (h *NutritionHandler) CreatePlan(c *gin.Context) {
	nutritionistUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.PlanInput{
		AthleteProfileID: req.AthleteID,
		Name:             req.Name,
		Description:      req.Description,
		TotalCalories:    req.TotalCalories,
		ProteinGrams:     req.ProteinGrams,
		CarbsGrams:       req.CarbsGrams,
		FatGrams:         req.FatGrams,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	}
	for _, m := range req.Meals {
		meal := service.MealInput{
			MealType:       m.MealType,
			Name:           m.Name,
			Description:    m.Description,
			TargetCalories: m.TargetCalories,
		}
		for _, f := range m.Foods {
			meal.Foods = append(meal.Foods, service.MealFoodInput{
				FoodID:   f.FoodID,
				Quantity: f.Quantity,
				Unit:     f.Unit,
			})
		}
		input.Meals = append(input.Meals, meal)
	}

	plan, err := h.nutritionService.CreatePlan(c.Request.Context(), nutritionistUserID, input)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *NutritionHandler) GetPlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	planID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.nutritionService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *NutritionHandler) ListPlans(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	role, err := currentRole(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var plans []domain.NutritionPlan
	if role == domain.RoleNutritionist {
		plans, err = h.nutritionService.ListPlansForNutritionist(c.Request.Context(), userID)
	} else {
		plans, err = h.nutritionService.ListPlansForAthlete(c.Request.Context(), userID)
	}
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h *NutritionHandler) UpdatePlanStatus(c *gin.Context) {
	nutritionistUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	planID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	var req UpdatePlanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.nutritionService.UpdatePlanStatus(c.Request.Context(), nutritionistUserID, planID, req.Status); err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "plan status updated"})
}

func (h *NutritionHandler) MealTotals(c *gin.Context) {
	mealID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := h.nutritionService.MealTotals(c.Request.Context(), mealID)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *NutritionHandler) PlanTotals(c *gin.Context) {
	planID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	totals, err := h.nutritionService.PlanTotals(c.Request.Context(), planID)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *NutritionHandler) LogFood(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req LogFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.FoodLogInput{
		FoodID:   req.FoodID,
		MealID:   req.MealID,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		MealType: req.MealType,
	}
	if req.LoggedAt != nil {
		input.LoggedAt = *req.LoggedAt
	}

	log, err := h.nutritionService.LogFood(c.Request.Context(), athleteUserID, input)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *NutritionHandler) ListFoodLogs(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	page, limit := pageQuery(c, 50)
	filter := repository.FoodLogFilter{Page: repository.Page{Number: page, Limit: limit}}
	if from, perr := time.Parse("2006-01-02", c.Query("from")); perr == nil {
		filter.DateFrom = &from
	}
	if to, perr := time.Parse("2006-01-02", c.Query("to")); perr == nil {
		filter.DateTo = &to
	}

	logs, err := h.nutritionService.ListFoodLogs(c.Request.Context(), athleteUserID, filter)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (h *NutritionHandler) DailyIntake(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	day := time.Now()
	if parsed, perr := time.Parse("2006-01-02", c.Query("date")); perr == nil {
		day = parsed
	}

	totals, err := h.nutritionService.DailyIntake(c.Request.Context(), athleteUserID, day)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "totals": totals})
}

// AnalyzeFood accepts a multipart image upload and returns the structured
// nutritional estimate.
func (h *NutritionHandler) AnalyzeFood(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxAnalysisImageBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "could not read image")
		return
	}

	record, err := h.nutritionService.AnalyzeFoodImage(c.Request.Context(), userID, image)
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *NutritionHandler) AnalysisHistory(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	page, limit := pageQuery(c, 20)

	records, total, err := h.nutritionService.AnalysisHistory(c.Request.Context(), userID, repository.Page{Number: page, Limit: limit})
	if err != nil {
		abortOnNutritionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total, "page": page, "limit": limit})
}

func abortOnNutritionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFoodNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrProfileNotFound),
		errors.Is(err, service.ErrClientNotManaged):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRosterFull):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrPlanEmpty),
		errors.Is(err, service.ErrMealEmpty),
		errors.Is(err, service.ErrInvalidMealType),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPlanDates),
		errors.Is(err, service.ErrEmptyImage):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
