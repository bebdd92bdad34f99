package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/email"
	"fitcoach/coaching-app/internal/payment"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrPlanUnknown        = errors.New("unknown subscription plan")
	ErrPlanRoleMismatch   = errors.New("plan is not available for this account type")
	ErrInvalidCycle       = errors.New("billing cycle must be monthly or yearly")
	ErrNoSubscription     = errors.New("no subscription found")
	ErrAlreadyCancelled   = errors.New("subscription is already cancelled")
	ErrUnhandledEventType = errors.New("unhandled webhook event type")
)

// SubscriptionView is the read model returned to clients: the stored row
// plus the status derived at read time.
type SubscriptionView struct {
	domain.Subscription
	EffectiveStatus domain.SubscriptionStatus `json:"effectiveStatus"`
	DaysUntilExpiry int                       `json:"daysUntilExpiry"`
}

type SubscriptionService interface {
	ListPlans(role domain.Role) []domain.Plan
	Current(ctx context.Context, userID uint) (*SubscriptionView, error)
	Subscribe(ctx context.Context, userID uint, planID string, cycle domain.BillingCycle, paymentMethod string) (*SubscriptionView, error)
	Cancel(ctx context.Context, userID uint) (*SubscriptionView, error)
	// HandleWebhook applies a verified gateway event to the local state.
	HandleWebhook(ctx context.Context, event payment.Event) error
	// ExpireOverdue persists the expired transition for rows whose expiry
	// has passed. Run periodically; reads already report these rows as
	// expired through EffectiveStatus.
	ExpireOverdue(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	userRepo         repository.UserRepository
	trainerRepo      repository.TrainerRepository
	nutritionistRepo repository.NutritionistRepository
	gateway          payment.Gateway
	notifier         NotificationService
	mailer           email.Mailer
	log              *logrus.Logger
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	trainerRepo repository.TrainerRepository,
	nutritionistRepo repository.NutritionistRepository,
	gateway payment.Gateway,
	notifier NotificationService,
	mailer email.Mailer,
	log *logrus.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		trainerRepo:      trainerRepo,
		nutritionistRepo: nutritionistRepo,
		gateway:          gateway,
		notifier:         notifier,
		mailer:           mailer,
		log:              log,
	}
}

func (s *subscriptionService) ListPlans(role domain.Role) []domain.Plan {
	return domain.PlansForRole(role)
}

func (s *subscriptionService) Current(ctx context.Context, userID uint) (*SubscriptionView, error) {
	sub, err := s.subscriptionRepo.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	return view(sub), nil
}

// Subscribe charges the user for the chosen plan and replaces any current
// subscription. The profile's tier, caps and expiry follow the new plan.
func (s *subscriptionService) Subscribe(ctx context.Context, userID uint, planID string, cycle domain.BillingCycle, paymentMethod string) (*SubscriptionView, error) {
	plan, ok := domain.PlanByID(planID)
	if !ok {
		return nil, ErrPlanUnknown
	}
	if !cycle.Valid() {
		return nil, ErrInvalidCycle
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if plan.TargetRole != user.Role {
		return nil, ErrPlanRoleMismatch
	}

	customer, err := s.gateway.CreateCustomer(ctx, user.Email, user.FullName())
	if err != nil {
		return nil, fmt.Errorf("creating gateway customer: %w", err)
	}
	gatewaySub, err := s.gateway.CreateSubscription(ctx, customer.ID, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("creating gateway subscription: %w", err)
	}

	now := time.Now()
	expiresAt := now.AddDate(0, 1, 0)
	if cycle == domain.BillingYearly {
		expiresAt = now.AddDate(1, 0, 0)
	}

	sub := &domain.Subscription{
		UserID:                user.ID,
		PlanID:                plan.ID,
		PlanName:              plan.Name,
		PlanPrice:             math.Round(plan.PriceFor(cycle)*100) / 100,
		BillingCycle:          cycle,
		Status:                domain.SubActive,
		StartedAt:             now,
		ExpiresAt:             expiresAt,
		AutoRenew:             true,
		PaymentMethod:         paymentMethod,
		GatewaySubscriptionID: gatewaySub.ID,
	}
	id, err := s.subscriptionRepo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id

	if err := s.syncProfile(ctx, user, plan, domain.SubActive, &expiresAt); err != nil {
		s.log.WithError(err).WithField("userId", user.ID).Error("profile tier sync failed")
	}

	s.notifier.Notify(ctx, NotifyInput{
		UserID:   user.ID,
		Title:    "Subscription active",
		Message:  fmt.Sprintf("Your %s plan is active until %s.", plan.Name, expiresAt.Format("02 Jan 2006")),
		Type:     domain.NotifySubscription,
		Priority: domain.PriorityMedium,
	})
	go func() {
		if mailErr := s.mailer.SendSubscriptionEvent(user.Email, user.FullName(), domain.SubActive, plan.Name); mailErr != nil {
			s.log.WithError(mailErr).WithField("userId", user.ID).Warn("subscription email failed")
		}
	}()

	return view(sub), nil
}

// Cancel keeps the subscription usable until its paid-for expiry but stops
// renewal.
func (s *subscriptionService) Cancel(ctx context.Context, userID uint) (*SubscriptionView, error) {
	sub, err := s.subscriptionRepo.Current(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSubscription
		}
		return nil, err
	}
	if sub.Status == domain.SubCancelled {
		return nil, ErrAlreadyCancelled
	}

	if sub.GatewaySubscriptionID != "" {
		if _, gerr := s.gateway.CancelSubscription(ctx, sub.GatewaySubscriptionID); gerr != nil {
			return nil, fmt.Errorf("cancelling gateway subscription: %w", gerr)
		}
	}
	if err := s.subscriptionRepo.UpdateStatus(ctx, sub.ID, domain.SubCancelled, false); err != nil {
		return nil, err
	}
	sub.Status = domain.SubCancelled
	sub.AutoRenew = false

	if user, uerr := s.userRepo.GetByID(ctx, userID); uerr == nil {
		// Caps and expiry stay in place until the paid period runs out.
		if plan, ok := domain.PlanByID(sub.PlanID); ok {
			expiresAt := sub.ExpiresAt
			if serr := s.syncProfile(ctx, user, plan, domain.SubCancelled, &expiresAt); serr != nil {
				s.log.WithError(serr).WithField("userId", user.ID).Error("profile tier sync failed")
			}
		}
		s.notifier.Notify(ctx, NotifyInput{
			UserID:   user.ID,
			Title:    "Subscription cancelled",
			Message:  fmt.Sprintf("Your %s plan stays available until %s.", sub.PlanName, sub.ExpiresAt.Format("02 Jan 2006")),
			Type:     domain.NotifySubscription,
			Priority: domain.PriorityMedium,
		})
		go func() {
			if mailErr := s.mailer.SendSubscriptionEvent(user.Email, user.FullName(), domain.SubCancelled, sub.PlanName); mailErr != nil {
				s.log.WithError(mailErr).WithField("userId", user.ID).Warn("subscription email failed")
			}
		}()
	}

	return view(sub), nil
}

// HandleWebhook applies one verified gateway event. Events referencing
// unknown subscriptions are logged and dropped rather than retried forever.
func (s *subscriptionService) HandleWebhook(ctx context.Context, event payment.Event) error {
	switch event.Type {
	case payment.EventSubscriptionUpdated:
		var data payment.SubscriptionEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decoding subscription event: %w", err)
		}
		sub, err := s.subscriptionRepo.GetByGatewayID(ctx, data.SubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.WithField("gatewayId", data.SubscriptionID).Warn("webhook for unknown subscription")
				return nil
			}
			return err
		}
		status := mapGatewayStatus(data.Status)
		return s.subscriptionRepo.UpdateStatus(ctx, sub.ID, status, sub.AutoRenew)

	case payment.EventSubscriptionDeleted:
		var data payment.SubscriptionEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decoding subscription event: %w", err)
		}
		sub, err := s.subscriptionRepo.GetByGatewayID(ctx, data.SubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.WithField("gatewayId", data.SubscriptionID).Warn("webhook for unknown subscription")
				return nil
			}
			return err
		}
		return s.subscriptionRepo.UpdateStatus(ctx, sub.ID, domain.SubCancelled, false)

	case payment.EventPaymentSucceeded:
		var data payment.InvoiceEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decoding invoice event: %w", err)
		}
		s.log.WithFields(logrus.Fields{
			"gatewayId":  data.SubscriptionID,
			"amountPaid": data.AmountPaid,
		}).Info("payment succeeded")
		return nil

	case payment.EventPaymentFailed:
		var data payment.InvoiceEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decoding invoice event: %w", err)
		}
		sub, err := s.subscriptionRepo.GetByGatewayID(ctx, data.SubscriptionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.WithField("gatewayId", data.SubscriptionID).Warn("webhook for unknown subscription")
				return nil
			}
			return err
		}
		s.notifier.Notify(ctx, NotifyInput{
			UserID:   sub.UserID,
			Title:    "Payment failed",
			Message:  "We could not charge your payment method. Update it to keep your plan active.",
			Type:     domain.NotifySubscription,
			Priority: domain.PriorityHigh,
		})
		return s.subscriptionRepo.UpdateStatus(ctx, sub.ID, domain.SubPaused, sub.AutoRenew)
	}
	return fmt.Errorf("%w: %s", ErrUnhandledEventType, event.Type)
}

func (s *subscriptionService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.subscriptionRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.WithField("count", n).Info("expired overdue subscriptions")
	}
	return n, nil
}

// syncProfile mirrors the purchased tier onto the role profile so capacity
// checks read it without a join on subscriptions.
func (s *subscriptionService) syncProfile(ctx context.Context, user *domain.User, plan domain.Plan, status domain.SubscriptionStatus, expiresAt *time.Time) error {
	switch user.Role {
	case domain.RoleTrainer:
		profile, err := s.trainerRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		profile.SubscriptionPlan = plan.ID
		profile.SubscriptionStatus = string(status)
		profile.SubscriptionExpiresAt = expiresAt
		profile.MaxAthletes = plan.MaxAthletes
		return s.trainerRepo.Update(ctx, profile)
	case domain.RoleNutritionist:
		profile, err := s.nutritionistRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			return err
		}
		profile.SubscriptionPlan = plan.ID
		profile.SubscriptionStatus = string(status)
		profile.SubscriptionExpiresAt = expiresAt
		profile.MaxClients = plan.MaxClients
		return s.nutritionistRepo.Update(ctx, profile)
	}
	return nil
}

func mapGatewayStatus(status string) domain.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return domain.SubActive
	case "past_due", "unpaid", "paused":
		return domain.SubPaused
	case "canceled", "cancelled":
		return domain.SubCancelled
	}
	return domain.SubPaused
}

func view(sub *domain.Subscription) *SubscriptionView {
	now := time.Now()
	return &SubscriptionView{
		Subscription:    *sub,
		EffectiveStatus: sub.EffectiveStatus(now),
		DaysUntilExpiry: sub.DaysUntilExpiry(now),
	}
}
