package api

import (
	"fmt"
	"net/http"

	"fitcoach/coaching-app/internal/repository"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// NutritionistHandler serves client roster management for nutritionists.
type NutritionistHandler struct {
	nutritionistService service.NutritionistService
}

func NewNutritionistHandler(nutritionistService service.NutritionistService) *NutritionistHandler {
	return &NutritionistHandler{nutritionistService: nutritionistService}
}

type AssignClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *NutritionistHandler) AssignClient(c *gin.Context) {
	nutritionistUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req AssignClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.nutritionistService.AssignClient(c.Request.Context(), nutritionistUserID, req.Email)
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *NutritionistHandler) ListClients(c *gin.Context) {
	nutritionistUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	page, limit := pageQuery(c, 20)

	clients, total, err := h.nutritionistService.ListClients(c.Request.Context(), nutritionistUserID, repository.AthleteFilter{
		Search: c.Query("search"),
		Page:   repository.Page{Number: page, Limit: limit},
	})
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients, "total": total, "page": page, "limit": limit})
}

func (h *NutritionistHandler) Capacity(c *gin.Context) {
	nutritionistUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	count, max, err := h.nutritionistService.Capacity(c.Request.Context(), nutritionistUserID)
	if err != nil {
		abortOnRosterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": count, "max": max, "unlimited": max == -1})
}
