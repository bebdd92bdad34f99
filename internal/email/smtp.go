package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"fitcoach/coaching-app/internal/config"
	"fitcoach/coaching-app/internal/domain"

	"github.com/sirupsen/logrus"
)

// smtpMailer delivers mail over plain SMTP with AUTH.
type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
	log  *logrus.Entry
}

// NewMailer builds a Mailer from config. When no SMTP host is configured it
// returns a log-only mailer, which keeps local development working without
// a mail server.
func NewMailer(cfg config.SMTPConfig, log *logrus.Logger) Mailer {
	if cfg.Host == "" {
		log.Warn("SMTP host not configured, using log-only mailer")
		return &logMailer{log: log.WithField("component", "mailer")}
	}
	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		from: cfg.From,
		log:  log.WithField("component", "mailer"),
	}
}

func (m *smtpMailer) send(to []string, subject, htmlBody string) error {
	headers := []string{
		"From: " + m.from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody

	if err := smtp.SendMail(m.addr, m.auth, m.from, to, []byte(msg)); err != nil {
		m.log.WithError(err).WithField("subject", subject).Error("send failed")
		return err
	}
	return nil
}

func (m *smtpMailer) SendWelcome(to, name string, role domain.Role) error {
	subject, body := welcomeBody(name, role)
	return m.send([]string{to}, subject, body)
}

func (m *smtpMailer) SendWorkoutAssigned(to, name, workoutName string, scheduledDate time.Time) error {
	subject, body := workoutBody(name, workoutName, scheduledDate)
	return m.send([]string{to}, subject, body)
}

func (m *smtpMailer) SendSubscriptionEvent(to, name string, status domain.SubscriptionStatus, planName string) error {
	subject, body := subscriptionBody(name, status, planName)
	return m.send([]string{to}, subject, body)
}

func (m *smtpMailer) SendPasswordReset(to, name, resetURL string) error {
	subject, body := passwordResetBody(name, resetURL)
	return m.send([]string{to}, subject, body)
}

func (m *smtpMailer) SendBulk(to []string, subject, htmlBody string) error {
	// One message per recipient so addresses never leak to each other.
	var firstErr error
	for _, addr := range to {
		if err := m.send([]string{addr}, subject, htmlBody); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// logMailer records sends without delivering anything.
type logMailer struct {
	log *logrus.Entry
}

func (m *logMailer) logSend(to, subject string) error {
	m.log.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email (not sent)")
	return nil
}

func (m *logMailer) SendWelcome(to, name string, role domain.Role) error {
	subject, _ := welcomeBody(name, role)
	return m.logSend(to, subject)
}

func (m *logMailer) SendWorkoutAssigned(to, name, workoutName string, scheduledDate time.Time) error {
	subject, _ := workoutBody(name, workoutName, scheduledDate)
	return m.logSend(to, subject)
}

func (m *logMailer) SendSubscriptionEvent(to, name string, status domain.SubscriptionStatus, planName string) error {
	subject, _ := subscriptionBody(name, status, planName)
	return m.logSend(to, subject)
}

func (m *logMailer) SendPasswordReset(to, name, resetURL string) error {
	subject, _ := passwordResetBody(name, resetURL)
	return m.logSend(to, subject)
}

func (m *logMailer) SendBulk(to []string, subject, htmlBody string) error {
	return m.logSend(strings.Join(to, ","), subject)
}
