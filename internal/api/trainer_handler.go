package api

import (
	"errors"
	"fmt"
	"net/http"

	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves roster management for trainers.
type TrainerHandler struct {
	trainerService  service.TrainerService
	progressService service.ProgressService
}

func NewTrainerHandler(trainerService service.TrainerService, progressService service.ProgressService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService, progressService: progressService}
}

type AssignAthleteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *TrainerHandler) AssignAthlete(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AssignAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.trainerService.AssignAthlete(c.Request.Context(), trainerUserID, req.Email)
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, athlete)
}

func (h *TrainerHandler) ListAthletes(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	page, limit := pageQuery(c, 20)

	athletes, total, err := h.trainerService.ListAthletes(c.Request.Context(), trainerUserID, repository.AthleteFilter{
		Search: c.Query("search"),
		Page:   repository.Page{Number: page, Limit: limit},
	})
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"athletes": athletes, "total": total, "page": page, "limit": limit})
}

func (h *TrainerHandler) RemoveAthlete(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	athleteID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.trainerService.RemoveAthlete(c.Request.Context(), trainerUserID, athleteID); err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "athlete removed from roster"})
}

func (h *TrainerHandler) Capacity(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	count, max, err := h.trainerService.Capacity(c.Request.Context(), trainerUserID)
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": count, "max": max, "unlimited": max == -1})
}

// AthleteProgress lets a trainer review a roster athlete's progress ledger.
func (h *TrainerHandler) AthleteProgress(c *gin.Context) {
	trainerUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	athleteID, err := parseIDParam(c, "id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	// The roster check rides on the listing: only linked athletes appear.
	athletes, _, err := h.trainerService.ListAthletes(c.Request.Context(), trainerUserID, repository.AthleteFilter{})
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	linked := false
	for _, a := range athletes {
		if a.ID == athleteID {
			linked = true
			break
		}
	}
	if !linked {
		abortWithError(c, http.StatusNotFound, service.ErrNotYourAthlete.Error())
		return
	}

	page, limit := pageQuery(c, 20)
	records, total, err := h.progressService.ListForAthlete(c.Request.Context(), athleteID, repository.ProgressFilter{
		Page: repository.Page{Number: page, Limit: limit},
	})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Could not load progress records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total, "page": page, "limit": limit})
}

func abortOnRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAthleteNotFound), errors.Is(err, service.ErrNotYourAthlete):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotAnAthlete):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyAssigned), errors.Is(err, service.ErrAthleteHasCoach):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrRosterFull):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
