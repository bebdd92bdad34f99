// Package email sends transactional mail. Every send is fire-and-forget:
// callers never fail their primary operation because a mail could not be
// delivered, and failures are only logged.
package email

import (
	"fmt"
	"time"

	"fitcoach/coaching-app/internal/domain"
)

// Mailer is the narrow interface the services depend on.
type Mailer interface {
	SendWelcome(to, name string, role domain.Role) error
	SendWorkoutAssigned(to, name, workoutName string, scheduledDate time.Time) error
	SendSubscriptionEvent(to, name string, status domain.SubscriptionStatus, planName string) error
	SendPasswordReset(to, name, resetURL string) error
	SendBulk(to []string, subject, htmlBody string) error
}

func welcomeBody(name string, role domain.Role) (subject, body string) {
	roleLabel := map[domain.Role]string{
		domain.RoleTrainer:      "trainer",
		domain.RoleAthlete:      "athlete",
		domain.RoleNutritionist: "nutritionist",
	}[role]
	subject = "Welcome to FitCoach"
	body = fmt.Sprintf(
		`<h2>Welcome, %s!</h2>
<p>Your %s account is ready. Log in to get started.</p>`,
		name, roleLabel,
	)
	return subject, body
}

func workoutBody(name, workoutName string, scheduledDate time.Time) (subject, body string) {
	subject = "New workout assigned: " + workoutName
	body = fmt.Sprintf(
		`<h2>Hi %s,</h2>
<p>Your trainer scheduled <strong>%s</strong> for %s.</p>`,
		name, workoutName, scheduledDate.Format("Monday, 02 Jan 2006"),
	)
	return subject, body
}

func subscriptionBody(name string, status domain.SubscriptionStatus, planName string) (subject, body string) {
	subject = fmt.Sprintf("Your subscription is %s", status)
	body = fmt.Sprintf(
		`<h2>Hi %s,</h2>
<p>Your <strong>%s</strong> subscription is now <strong>%s</strong>.</p>`,
		name, planName, status,
	)
	return subject, body
}

func passwordResetBody(name, resetURL string) (subject, body string) {
	subject = "Password reset request"
	body = fmt.Sprintf(
		`<h2>Hi %s,</h2>
<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, ignore this email.</p>`,
		name, resetURL,
	)
	return subject, body
}
