package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/payment"
	"fitcoach/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxWebhookBodyBytes bounds inbound webhook payloads.
const maxWebhookBodyBytes = 1 << 20

// SubscriptionHandler serves the plan catalog, the billing flow and the
// payment webhook.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	webhookSecret       string
	log                 *logrus.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, webhookSecret string, log *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		webhookSecret:       webhookSecret,
		log:                 log,
	}
}

type SubscribeRequest struct {
	PlanID        string              `json:"planId" binding:"required"`
	BillingCycle  domain.BillingCycle `json:"billingCycle" binding:"required,oneof=monthly yearly"`
	PaymentMethod string              `json:"paymentMethod"`
}

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	role := domain.Role(c.Query("role"))
	if role != "" && !role.Valid() {
		abortWithError(c, http.StatusBadRequest, "unknown role filter")
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": h.subscriptionService.ListPlans(role)})
}

func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sub, err := h.subscriptionService.Current(c.Request.Context(), userID)
	if err != nil {
		abortOnSubscriptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	sub, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, req.PlanID, req.BillingCycle, req.PaymentMethod)
	if err != nil {
		abortOnSubscriptionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	sub, err := h.subscriptionService.Cancel(c.Request.Context(), userID)
	if err != nil {
		abortOnSubscriptionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Webhook verifies the gateway signature over the raw body before anything
// in the payload is trusted, then applies the event.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payloadBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "could not read request body")
		return
	}

	event, err := payment.ConstructEvent(payloadBytes, c.GetHeader("Webhook-Signature"), h.webhookSecret, time.Now())
	if err != nil {
		h.log.WithError(err).Warn("webhook rejected")
		abortWithError(c, http.StatusBadRequest, "signature verification failed")
		return
	}

	if err := h.subscriptionService.HandleWebhook(c.Request.Context(), event); err != nil {
		if errors.Is(err, service.ErrUnhandledEventType) {
			// Acknowledge unknown types so the gateway stops retrying.
			h.log.WithField("type", event.Type).Info("ignoring webhook event")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.log.WithError(err).WithField("eventId", event.ID).Error("webhook processing failed")
		abortWithError(c, http.StatusInternalServerError, "webhook processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func abortOnSubscriptionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSubscription), errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanUnknown),
		errors.Is(err, service.ErrInvalidCycle):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanRoleMismatch):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyCancelled):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
