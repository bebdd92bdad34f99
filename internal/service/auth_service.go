package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/email"
	"fitcoach/coaching-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailTaken           = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountDisabled      = errors.New("account is deactivated")
	ErrInvalidRole          = errors.New("role must be trainer, athlete or nutritionist")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrInvalidResetToken    = errors.New("reset token is invalid or expired")
	ErrWrongPassword        = errors.New("current password is incorrect")
)

const resetTokenTTL = time.Hour

// RegisterInput is everything needed to create an account. The role profile
// is created alongside the user with tier defaults.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      domain.Role
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ChangePassword(ctx context.Context, userID uint, current, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	userRepo      repository.UserRepository
	resetRepo     repository.PasswordResetRepository
	mailer        email.Mailer
	log           *logrus.Logger
	jwtSecret     string
	jwtExpiration time.Duration
	resetBaseURL  string
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	mailer email.Mailer,
	log *logrus.Logger,
	jwtSecret string,
	jwtExpiration time.Duration,
	resetBaseURL string,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 24
	}
	return &authService{
		userRepo:      userRepo,
		resetRepo:     resetRepo,
		mailer:        mailer,
		log:           log,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		resetBaseURL:  resetBaseURL,
	}
}

// Register creates the user together with its empty role profile in one
// transaction, then sends the welcome email without blocking the response.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.FirstName == "" || input.LastName == "" {
		return nil, errors.New("email, first name and last name cannot be empty")
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(input.Password) < 8 {
		return nil, ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         input.Role,
		IsActive:     true,
	}
	// The profile row carries tier defaults (capacity caps, basic plan) from
	// its column defaults; only the association needs to exist.
	switch input.Role {
	case domain.RoleTrainer:
		user.Trainer = &domain.TrainerProfile{}
	case domain.RoleAthlete:
		user.Athlete = &domain.AthleteProfile{}
	case domain.RoleNutritionist:
		user.Nutritionist = &domain.NutritionistProfile{}
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = id

	go func() {
		if mailErr := s.mailer.SendWelcome(user.Email, user.FullName(), user.Role); mailErr != nil {
			s.log.WithError(mailErr).WithField("email", user.Email).Warn("welcome email failed")
		}
	}()

	return user, nil
}

// Login authenticates and returns a signed JWT. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, emailAddr, password string) (string, *domain.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return token, user, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, current, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hashed))
}

// RequestPasswordReset issues a single-use token and emails the reset link.
// An unknown email returns success so the endpoint cannot be used to probe
// which addresses are registered.
func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if _, err := s.resetRepo.Create(ctx, token); err != nil {
		return err
	}

	resetURL := s.resetBaseURL + "/reset-password?token=" + token.Token
	go func() {
		if mailErr := s.mailer.SendPasswordReset(user.Email, user.FullName(), resetURL); mailErr != nil {
			s.log.WithError(mailErr).WithField("userId", user.ID).Warn("password reset email failed")
		}
	}()
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	record, err := s.resetRepo.GetValid(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	if err := s.userRepo.UpdatePassword(ctx, record.UserID, string(hashed)); err != nil {
		return err
	}
	return s.resetRepo.MarkUsed(ctx, record.ID)
}

// generateJWT creates a signed HS256 token carrying the user id and role.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"uid":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.jwtExpiration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
