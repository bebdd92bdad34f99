package service

import (
	"context"
	"errors"
	"strings"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
)

type NutritionistService interface {
	// AssignClient mirrors TrainerService.AssignAthlete for the nutrition
	// side of the coaching relationship.
	AssignClient(ctx context.Context, nutritionistUserID uint, athleteEmail string) (*domain.AthleteProfile, error)
	ListClients(ctx context.Context, nutritionistUserID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error)
	Capacity(ctx context.Context, nutritionistUserID uint) (count int64, max int, err error)
}

type nutritionistService struct {
	userRepo         repository.UserRepository
	nutritionistRepo repository.NutritionistRepository
	notifier         NotificationService
	log              *logrus.Logger
}

func NewNutritionistService(
	userRepo repository.UserRepository,
	nutritionistRepo repository.NutritionistRepository,
	notifier NotificationService,
	log *logrus.Logger,
) NutritionistService {
	return &nutritionistService{
		userRepo:         userRepo,
		nutritionistRepo: nutritionistRepo,
		notifier:         notifier,
		log:              log,
	}
}

func (s *nutritionistService) AssignClient(ctx context.Context, nutritionistUserID uint, athleteEmail string) (*domain.AthleteProfile, error) {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	athleteUser, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(athleteEmail)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athleteUser.IsAthlete() || athleteUser.Athlete == nil {
		return nil, ErrNotAnAthlete
	}
	athlete := athleteUser.Athlete
	if athlete.NutritionistID != nil && *athlete.NutritionistID != nutritionist.ID {
		return nil, ErrAthleteHasCoach
	}

	if err := s.nutritionistRepo.AssignClient(ctx, nutritionist.ID, athlete.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyAssigned
		case errors.Is(err, repository.ErrCapacity):
			return nil, ErrRosterFull
		}
		return nil, err
	}
	athlete.NutritionistID = &nutritionist.ID

	nutritionistUser, err := s.userRepo.GetByID(ctx, nutritionistUserID)
	if err == nil {
		s.notifier.Notify(ctx, NotifyInput{
			UserID:   athleteUser.ID,
			Title:    "You have a new nutritionist",
			Message:  nutritionistUser.FullName() + " added you as a client.",
			Type:     domain.NotifyApproval,
			Priority: domain.PriorityMedium,
			SenderID: &nutritionistUser.ID,
		})
	} else {
		s.log.WithError(err).WithField("nutritionistUserId", nutritionistUserID).Warn("assignment notification skipped")
	}

	return athlete, nil
}

func (s *nutritionistService) ListClients(ctx context.Context, nutritionistUserID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrProfileNotFound
		}
		return nil, 0, err
	}
	return s.nutritionistRepo.ListClients(ctx, nutritionist.ID, filter)
}

func (s *nutritionistService) Capacity(ctx context.Context, nutritionistUserID uint) (int64, int, error) {
	nutritionist, err := s.nutritionistRepo.GetByUserID(ctx, nutritionistUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, 0, ErrProfileNotFound
		}
		return 0, 0, err
	}
	count, err := s.nutritionistRepo.CountClients(ctx, nutritionist.ID)
	if err != nil {
		return 0, 0, err
	}
	return count, nutritionist.MaxClients, nil
}
