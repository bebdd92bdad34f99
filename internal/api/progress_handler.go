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

// ProgressHandler serves the athlete's progress ledger and photo uploads.
type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

type RecordProgressRequest struct {
	RecordType domain.ProgressType `json:"recordType" binding:"required,oneof=weight body_fat muscle_mass measurements photos"`
	Value      *float64            `json:"value"`
	Unit       string              `json:"unit"`
	BodyPart   string              `json:"bodyPart"`
	ImageKey   string              `json:"imageKey"`
	Notes      string              `json:"notes"`
	RecordedAt *time.Time          `json:"recordedAt"`
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType"`
}

func (h *ProgressHandler) RecordProgress(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	input := service.ProgressInput{
		RecordType: req.RecordType,
		Value:      req.Value,
		Unit:       req.Unit,
		BodyPart:   req.BodyPart,
		ImageKey:   req.ImageKey,
		Notes:      req.Notes,
	}
	if req.RecordedAt != nil {
		input.RecordedAt = *req.RecordedAt
	}

	record, err := h.progressService.RecordProgress(c.Request.Context(), athleteUserID, input)
	if err != nil {
		abortOnProgressError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *ProgressHandler) ListProgress(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	page, limit := pageQuery(c, 20)
	filter := repository.ProgressFilter{
		RecordType: domain.ProgressType(c.Query("type")),
		Page:       repository.Page{Number: page, Limit: limit},
	}
	if from, perr := time.Parse("2006-01-02", c.Query("from")); perr == nil {
		filter.DateFrom = &from
	}
	if to, perr := time.Parse("2006-01-02", c.Query("to")); perr == nil {
		filter.DateTo = &to
	}

	records, total, err := h.progressService.ListProgress(c.Request.Context(), athleteUserID, filter)
	if err != nil {
		abortOnProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "total": total, "page": page, "limit": limit})
}

// PhotoUploadURL issues a presigned PUT target; the client uploads directly
// to object storage and then records the returned key.
func (h *ProgressHandler) PhotoUploadURL(c *gin.Context) {
	athleteUserID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	// An empty body is fine; content type defaults to image/jpeg.
	var req PhotoUploadRequest
	_ = c.ShouldBindJSON(&req)

	target, err := h.progressService.PhotoUploadURL(c.Request.Context(), athleteUserID, req.ContentType)
	if err != nil {
		abortOnProgressError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func abortOnProgressError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidProgressType),
		errors.Is(err, service.ErrValueRequired),
		errors.Is(err, service.ErrImageRequired):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
