package domain

import (
	"time"
)

// Role distinguishes the three user types. It is fixed at registration and
// determines which profile record extends the base User row.
type Role string

const (
	RoleTrainer      Role = "trainer"
	RoleAthlete      Role = "athlete"
	RoleNutritionist Role = "nutritionist"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainer, RoleAthlete, RoleNutritionist:
		return true
	}
	return false
}

// User is the base identity record. Exactly one of the three profile
// associations is populated, matching Role.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null" json:"-"`
	FirstName     string    `gorm:"not null" json:"firstName"`
	LastName      string    `gorm:"not null" json:"lastName"`
	Role          Role      `gorm:"not null;index" json:"role"`
	Phone         string    `json:"phone,omitempty"`
	ProfileImage  string    `json:"profileImage,omitempty"`
	IsActive      bool      `gorm:"default:true" json:"isActive"`
	EmailVerified bool      `gorm:"default:false" json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Trainer      *TrainerProfile      `gorm:"foreignKey:UserID" json:"trainer,omitempty"`
	Athlete      *AthleteProfile      `gorm:"foreignKey:UserID" json:"athlete,omitempty"`
	Nutritionist *NutritionistProfile `gorm:"foreignKey:UserID" json:"nutritionist,omitempty"`
}

// FullName joins first and last name for display and email templates.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsTrainer() bool      { return u.Role == RoleTrainer }
func (u *User) IsAthlete() bool      { return u.Role == RoleAthlete }
func (u *User) IsNutritionist() bool { return u.Role == RoleNutritionist }

// TrainerProfile extends a User with role 'trainer'.
// MaxAthletes is the capacity ceiling imposed by the subscription tier;
// -1 means unlimited.
type TrainerProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Certification         string     `json:"certification,omitempty"`
	Specialization        string     `json:"specialization,omitempty"`
	YearsExperience       int        `json:"yearsExperience,omitempty"`
	Bio                   string     `json:"bio,omitempty"`
	SubscriptionPlan      string     `gorm:"default:basic" json:"subscriptionPlan"`
	SubscriptionStatus    string     `gorm:"default:active" json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	MaxAthletes           int        `gorm:"default:10" json:"maxAthletes"`
}

// NutritionistProfile extends a User with role 'nutritionist'.
// Mirrors TrainerProfile with MaxClients in place of MaxAthletes.
type NutritionistProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	Certification         string     `json:"certification,omitempty"`
	Specialization        string     `json:"specialization,omitempty"`
	YearsExperience       int        `json:"yearsExperience,omitempty"`
	Bio                   string     `json:"bio,omitempty"`
	SubscriptionPlan      string     `gorm:"default:basic" json:"subscriptionPlan"`
	SubscriptionStatus    string     `gorm:"default:active" json:"subscriptionStatus"`
	SubscriptionExpiresAt *time.Time `json:"subscriptionExpiresAt,omitempty"`
	MaxClients            int        `gorm:"default:15" json:"maxClients"`
}

// AthleteProfile extends a User with role 'athlete'. TrainerID and
// NutritionistID are the (at most one each) coaching relationships; both
// reference the respective profile table, not the users table.
type AthleteProfile struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"userId"`
	TrainerID             *uint      `gorm:"index" json:"trainerId,omitempty"`
	NutritionistID        *uint      `gorm:"index" json:"nutritionistId,omitempty"`
	BirthDate             *time.Time `json:"birthDate,omitempty"`
	Gender                string     `json:"gender,omitempty"`
	Height                float64    `json:"height,omitempty"`
	Weight                float64    `json:"weight,omitempty"`
	FitnessLevel          string     `json:"fitnessLevel,omitempty"`
	Goals                 string     `json:"goals,omitempty"`
	MedicalConditions     string     `json:"medicalConditions,omitempty"`
	EmergencyContactName  string     `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string     `json:"emergencyContactPhone,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// PasswordResetToken is a single-use token emailed to a user who requested
// a password reset.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
