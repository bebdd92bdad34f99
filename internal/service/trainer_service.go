package service

import (
	"context"
	"errors"
	"strings"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrNotAnAthlete    = errors.New("user is not an athlete")
	ErrAlreadyAssigned = errors.New("athlete is already on your roster")
	ErrAthleteHasCoach = errors.New("athlete is already assigned to another coach")
	ErrRosterFull      = errors.New("roster is at the plan's capacity limit")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotYourAthlete  = errors.New("athlete is not on your roster")
)

type TrainerService interface {
	// AssignAthlete adds the athlete identified by email to the trainer's
	// roster, subject to the plan's capacity cap.
	AssignAthlete(ctx context.Context, trainerUserID uint, athleteEmail string) (*domain.AthleteProfile, error)
	RemoveAthlete(ctx context.Context, trainerUserID, athleteProfileID uint) error
	ListAthletes(ctx context.Context, trainerUserID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error)
	// Capacity returns the current roster size and the plan cap (-1 for
	// unlimited).
	Capacity(ctx context.Context, trainerUserID uint) (count int64, max int, err error)
}

type trainerService struct {
	userRepo    repository.UserRepository
	trainerRepo repository.TrainerRepository
	notifier    NotificationService
	log         *logrus.Logger
}

func NewTrainerService(
	userRepo repository.UserRepository,
	trainerRepo repository.TrainerRepository,
	notifier NotificationService,
	log *logrus.Logger,
) TrainerService {
	return &trainerService{
		userRepo:    userRepo,
		trainerRepo: trainerRepo,
		notifier:    notifier,
		log:         log,
	}
}

func (s *trainerService) AssignAthlete(ctx context.Context, trainerUserID uint, athleteEmail string) (*domain.AthleteProfile, error) {
	trainer, err := s.trainerRepo.GetByUserID(ctx, trainerUserID)
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
	if athlete.TrainerID != nil && *athlete.TrainerID != trainer.ID {
		return nil, ErrAthleteHasCoach
	}

	if err := s.trainerRepo.AssignAthlete(ctx, trainer.ID, athlete.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAlreadyAssigned
		case errors.Is(err, repository.ErrCapacity):
			return nil, ErrRosterFull
		}
		return nil, err
	}
	athlete.TrainerID = &trainer.ID

	trainerUser, err := s.userRepo.GetByID(ctx, trainerUserID)
	if err == nil {
		s.notifier.Notify(ctx, NotifyInput{
			UserID:   athleteUser.ID,
			Title:    "You have a new trainer",
			Message:  trainerUser.FullName() + " added you to their roster.",
			Type:     domain.NotifyApproval,
			Priority: domain.PriorityMedium,
			SenderID: &trainerUser.ID,
		})
	} else {
		s.log.WithError(err).WithField("trainerUserId", trainerUserID).Warn("assignment notification skipped")
	}

	return athlete, nil
}

func (s *trainerService) RemoveAthlete(ctx context.Context, trainerUserID, athleteProfileID uint) error {
	trainer, err := s.trainerRepo.GetByUserID(ctx, trainerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	if err := s.trainerRepo.RemoveAthlete(ctx, trainer.ID, athleteProfileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotYourAthlete
		}
		return err
	}
	return nil
}

func (s *trainerService) ListAthletes(ctx context.Context, trainerUserID uint, filter repository.AthleteFilter) ([]domain.AthleteProfile, int64, error) {
	trainer, err := s.trainerRepo.GetByUserID(ctx, trainerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrProfileNotFound
		}
		return nil, 0, err
	}
	return s.trainerRepo.ListAthletes(ctx, trainer.ID, filter)
}

func (s *trainerService) Capacity(ctx context.Context, trainerUserID uint) (int64, int, error) {
	trainer, err := s.trainerRepo.GetByUserID(ctx, trainerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, 0, ErrProfileNotFound
		}
		return 0, 0, err
	}
	count, err := s.trainerRepo.CountAthletes(ctx, trainer.ID)
	if err != nil {
		return 0, 0, err
	}
	return count, trainer.MaxAthletes, nil
}
