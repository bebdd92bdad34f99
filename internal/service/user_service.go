package service

import (
	"context"
	"errors"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// ProfileUpdate carries the base-identity fields a user may change. Nil
// pointers mean "leave unchanged"; email and role are immutable here.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	ProfileImage *string
}

// AthleteProfileUpdate carries the athlete-owned biometric fields.
type AthleteProfileUpdate struct {
	BirthDate             *time.Time
	Gender                *string
	Height                *float64
	Weight                *float64
	FitnessLevel          *string
	Goals                 *string
	MedicalConditions     *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

// CoachProfileUpdate carries the fields trainers and nutritionists may edit
// on their own profile. Subscription tier and caps are owned by the billing
// flow, never by this update.
type CoachProfileUpdate struct {
	Certification   *string
	Specialization  *string
	YearsExperience *int
	Bio             *string
}

type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*domain.User, error)
	UpdateAthleteProfile(ctx context.Context, userID uint, update AthleteProfileUpdate) (*domain.AthleteProfile, error)
	UpdateTrainerProfile(ctx context.Context, userID uint, update CoachProfileUpdate) (*domain.TrainerProfile, error)
	UpdateNutritionistProfile(ctx context.Context, userID uint, update CoachProfileUpdate) (*domain.NutritionistProfile, error)
}

type userService struct {
	userRepo         repository.UserRepository
	athleteRepo      repository.AthleteRepository
	trainerRepo      repository.TrainerRepository
	nutritionistRepo repository.NutritionistRepository
}

func NewUserService(
	userRepo repository.UserRepository,
	athleteRepo repository.AthleteRepository,
	trainerRepo repository.TrainerRepository,
	nutritionistRepo repository.NutritionistRepository,
) UserService {
	return &userService{
		userRepo:         userRepo,
		athleteRepo:      athleteRepo,
		trainerRepo:      trainerRepo,
		nutritionistRepo: nutritionistRepo,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.ProfileImage != nil {
		user.ProfileImage = *update.ProfileImage
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAthleteProfile(ctx context.Context, userID uint, update AthleteProfileUpdate) (*domain.AthleteProfile, error) {
	profile, err := s.athleteRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if update.BirthDate != nil {
		profile.BirthDate = update.BirthDate
	}
	if update.Gender != nil {
		profile.Gender = *update.Gender
	}
	if update.Height != nil {
		profile.Height = *update.Height
	}
	if update.Weight != nil {
		profile.Weight = *update.Weight
	}
	if update.FitnessLevel != nil {
		profile.FitnessLevel = *update.FitnessLevel
	}
	if update.Goals != nil {
		profile.Goals = *update.Goals
	}
	if update.MedicalConditions != nil {
		profile.MedicalConditions = *update.MedicalConditions
	}
	if update.EmergencyContactName != nil {
		profile.EmergencyContactName = *update.EmergencyContactName
	}
	if update.EmergencyContactPhone != nil {
		profile.EmergencyContactPhone = *update.EmergencyContactPhone
	}
	if err := s.athleteRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *userService) UpdateTrainerProfile(ctx context.Context, userID uint, update CoachProfileUpdate) (*domain.TrainerProfile, error) {
	profile, err := s.trainerRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	applyCoachUpdate(&profile.Certification, &profile.Specialization, &profile.YearsExperience, &profile.Bio, update)
	if err := s.trainerRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *userService) UpdateNutritionistProfile(ctx context.Context, userID uint, update CoachProfileUpdate) (*domain.NutritionistProfile, error) {
	profile, err := s.nutritionistRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	applyCoachUpdate(&profile.Certification, &profile.Specialization, &profile.YearsExperience, &profile.Bio, update)
	if err := s.nutritionistRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func applyCoachUpdate(cert, spec *string, years *int, bio *string, update CoachProfileUpdate) {
	if update.Certification != nil {
		*cert = *update.Certification
	}
	if update.Specialization != nil {
		*spec = *update.Specialization
	}
	if update.YearsExperience != nil {
		*years = *update.YearsExperience
	}
	if update.Bio != nil {
		*bio = *update.Bio
	}
}
