package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"fitcoach/coaching-app/internal/service"
)

func TestWorkoutErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"missing assignment", service.ErrAssignmentNotFound, http.StatusNotFound, service.ErrAssignmentNotFound.Error()},
		// Someone else's assignment must read exactly like a missing one.
		{"foreign assignment", service.ErrNotYourAssignment, http.StatusNotFound, service.ErrAssignmentNotFound.Error()},
		{"already completed", service.ErrAlreadyCompleted, http.StatusConflict, service.ErrAlreadyCompleted.Error()},
		{"empty template", service.ErrTemplateEmpty, http.StatusBadRequest, service.ErrTemplateEmpty.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			abortOnWorkoutError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestNutritionErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unmanaged client", service.ErrClientNotManaged, http.StatusNotFound},
		{"meal without foods", service.ErrMealEmpty, http.StatusBadRequest},
		{"roster full", service.ErrRosterFull, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			abortOnNutritionError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
