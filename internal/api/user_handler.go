package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Phone        *string `json:"phone"`
	ProfileImage *string `json:"profileImage"`
}

type UpdateAthleteProfileRequest struct {
	BirthDate             *time.Time `json:"birthDate"`
	Gender                *string    `json:"gender"`
	Height                *float64   `json:"height"`
	Weight                *float64   `json:"weight"`
	FitnessLevel          *string    `json:"fitnessLevel"`
	Goals                 *string    `json:"goals"`
	MedicalConditions     *string    `json:"medicalConditions"`
	EmergencyContactName  *string    `json:"emergencyContactName"`
	EmergencyContactPhone *string    `json:"emergencyContactPhone"`
}

type UpdateCoachProfileRequest struct {
	Certification   *string `json:"certification"`
	Specialization  *string `json:"specialization"`
	YearsExperience *int    `json:"yearsExperience"`
	Bio             *string `json:"bio"`
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateAthleteProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req UpdateAthleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.userService.UpdateAthleteProfile(c.Request.Context(), userID, service.AthleteProfileUpdate{
		BirthDate:             req.BirthDate,
		Gender:                req.Gender,
		Height:                req.Height,
		Weight:                req.Weight,
		FitnessLevel:          req.FitnessLevel,
		Goals:                 req.Goals,
		MedicalConditions:     req.MedicalConditions,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update athlete profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateTrainerProfile(c *gin.Context) {
	h.updateCoachProfile(c, true)
}

func (h *UserHandler) UpdateNutritionistProfile(c *gin.Context) {
	h.updateCoachProfile(c, false)
}

func (h *UserHandler) updateCoachProfile(c *gin.Context, trainer bool) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req UpdateCoachProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	update := service.CoachProfileUpdate{
		Certification:   req.Certification,
		Specialization:  req.Specialization,
		YearsExperience: req.YearsExperience,
		Bio:             req.Bio,
	}
	var (
		profile interface{}
		uerr    error
	)
	if trainer {
		profile, uerr = h.userService.UpdateTrainerProfile(c.Request.Context(), userID, update)
	} else {
		profile, uerr = h.userService.UpdateNutritionistProfile(c.Request.Context(), userID, update)
	}
	if uerr != nil {
		if errors.Is(uerr, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, uerr.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Could not update profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}
