package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler serves the exercise library, templates, assignments and
// the athlete dashboard.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type CreateExerciseRequest struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category" binding:"required"`
	MuscleGroups string `json:"muscleGroups"`
	Equipment    string `json:"equipment"`
	Instructions string `json:"instructions"`
	VideoURL     string `json:"videoUrl"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	IsPublic     bool   `json:"isPublic"`
}

type TemplateExerciseRequest struct {
	ExerciseID      uint   `json:"exerciseId" binding:"required"`
	Sets            int    `json:"sets"`
	Reps            string `json:"reps"`
	Weight          string `json:"weight"`
	DurationSeconds int    `json:"durationSeconds"`
	RestSeconds     int    `json:"restSeconds"`
	Notes           string `json:"notes"`
}

type CreateTemplateRequest struct {
	Name            string                    `json:"name" binding:"required"`
	Description     string                    `json:"description"`
	Difficulty      string                    `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	DurationMinutes int                       `json:"durationMinutes"`
	Category        string                    `json:"category"`
	IsPublic        bool                      `json:"isPublic"`
	Exercises       []TemplateExerciseRequest `json:"exercises" binding:"required,min=1,dive"`
}

type AssignWorkoutRequest struct {
	AthleteID     uint      `json:"athleteId" binding:"required"`
	TemplateID    uint      `json:"templateId" binding:"required"`
	ScheduledDate time.Time `json:"scheduledDate" binding:"required"`
	Notes         string    `json:"notes"`
}

type UpdateStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" binding:"required,oneof=pending in_progress completed skipped"`
}

type ExerciseLogRequest struct {
	ExerciseID       uint   `json:"exerciseId" binding:"required"`
	SetsCompleted    int    `json:"setsCompleted"`
	RepsCompleted    string `json:"repsCompleted"`
	WeightUsed       string `json:"weightUsed"`
	DurationSeconds  int    `json:"durationSeconds"`
	RestSeconds      int    `json:"restSeconds"`
	DifficultyRating int    `json:"difficultyRating" binding:"omitempty,min=1,max=10"`
	Notes            string `json:"notes"`
}

type CompleteWorkoutRequest struct {
	Notes string               `json:"notes"`
	Logs  []ExerciseLogRequest `json:"logs" binding:"dive"`
}

type FeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

func (h *WorkoutHandler) CreateExercise(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.workoutService.CreateExercise(c.Request.Context(), trainerUserID, service.ExerciseInput{
		Name:         req.Name,
		Category:     req.Category,
		MuscleGroups: req.MuscleGroups,
		Equipment:    req.Equipment,
		Instructions: req.Instructions,
		VideoURL:     req.VideoURL,
		Difficulty:   req.Difficulty,
		IsPublic:     req.IsPublic,
	})
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

func (h *WorkoutHandler) ListExercises(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	exercises, err := h.workoutService.ListExercises(c.Request.Context(), trainerUserID, repository.ExerciseFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
	})
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

func (h *WorkoutHandler) CreateTemplate(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.TemplateInput{
		Name:            req.Name,
		Description:     req.Description,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		Category:        req.Category,
		IsPublic:        req.IsPublic,
	}
	for _, e := range req.Exercises {
		input.Exercises = append(input.Exercises, service.TemplateExerciseInput{
			ExerciseID:      e.ExerciseID,
			Sets:            e.Sets,
			Reps:            e.Reps,
			Weight:          e.Weight,
			DurationSeconds: e.DurationSeconds,
			RestSeconds:     e.RestSeconds,
			Notes:           e.Notes,
		})
	}

	template, err := h.workoutService.CreateTemplate(c.Request.Context(), trainerUserID, input)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, template)
}

func (h *WorkoutHandler) GetTemplate(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.workoutService.GetTemplate(c.Request.Context(), trainerUserID, templateID)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *WorkoutHandler) ListTemplates(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	templates, err := h.workoutService.ListTemplates(c.Request.Context(), trainerUserID,
		c.Query("owned") == "true",
		repository.TemplateFilter{
			Category:   c.Query("category"),
			Difficulty: c.Query("difficulty"),
		})
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *WorkoutHandler) AssignWorkout(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AssignWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	assignment, err := h.workoutService.AssignWorkout(c.Request.Context(), trainerUserID, service.AssignmentInput{
		AthleteProfileID: req.AthleteID,
		TemplateID:       req.TemplateID,
		ScheduledDate:    req.ScheduledDate,
		Notes:            req.Notes,
	})
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

func (h *WorkoutHandler) TrainerAssignments(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	assignments, err := h.workoutService.TrainerAssignments(c.Request.Context(), trainerUserID, assignmentFilterFromQuery(c))
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *WorkoutHandler) AthleteAssignments(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	assignments, err := h.workoutService.AthleteAssignments(c.Request.Context(), athleteUserID, assignmentFilterFromQuery(c))
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *WorkoutHandler) UpdateStatus(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	assignmentID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	assignment, err := h.workoutService.UpdateStatus(c.Request.Context(), athleteUserID, assignmentID, req.Status)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	assignmentID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.CompletionInput{Notes: req.Notes}
	for _, l := range req.Logs {
		input.Logs = append(input.Logs, service.ExerciseLogInput{
			ExerciseID:       l.ExerciseID,
			SetsCompleted:    l.SetsCompleted,
			RepsCompleted:    l.RepsCompleted,
			WeightUsed:       l.WeightUsed,
			DurationSeconds:  l.DurationSeconds,
			RestSeconds:      l.RestSeconds,
			DifficultyRating: l.DifficultyRating,
			Notes:            l.Notes,
		})
	}

	assignment, err := h.workoutService.CompleteWorkout(c.Request.Context(), athleteUserID, assignmentID, input)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (h *WorkoutHandler) AddFeedback(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	assignmentID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.workoutService.AddFeedback(c.Request.Context(), trainerUserID, assignmentID, req.Feedback); err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback recorded"})
}

func (h *WorkoutHandler) Dashboard(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	dashboard, err := h.workoutService.Dashboard(c.Request.Context(), athleteUserID)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *WorkoutHandler) TrainerDashboard(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	dashboard, err := h.workoutService.TrainerDashboard(c.Request.Context(), trainerUserID)
	if err != nil {
		abortOnWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func assignmentFilterFromQuery(c *gin.Context) repository.AssignmentFilter {
	page, limit := pageQuery(c, 20)
	filter := repository.AssignmentFilter{
		Status: domain.AssignmentStatus(c.Query("status")),
		Page:   repository.Page{Number: page, Limit: limit},
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.DateTo = &to
	}
	return filter
}

func abortOnWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrTemplateNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateEmpty),
		errors.Is(err, service.ErrInvalidRating):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotYourAssignment):
		// Indistinguishable from a missing assignment so athletes cannot
		// probe for other people's IDs.
		abortWithError(c, http.StatusNotFound, service.ErrAssignmentNotFound.Error())
	case errors.Is(err, service.ErrAthleteNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyCompleted),
		errors.Is(err, service.ErrInvalidTransition):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
