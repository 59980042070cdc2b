package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/config"
	"github.com/Dan9191/cleancare-api/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDigest emails the daily dashboard summary to one recipient
func (s *Sender) SendDigest(to, username string, stats *models.DashboardStats) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Clean Care daily digest for %s", stats.GeneratedAt.Format("2006-01-02"))
	e.Text = []byte(DigestBody(username, stats))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", to, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// DigestBody renders the plain-text digest
func DigestBody(username string, stats *models.DashboardStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	fmt.Fprintf(&b, "Complaints: %d total, %d pending, %d in progress, %d solved.\n",
		stats.TotalComplaints, stats.PendingComplaints, stats.InProgressComplaints, stats.SolvedComplaints)
	fmt.Fprintf(&b, "Users: %d total, %d admins, %d super admins.\n",
		stats.TotalUsers, stats.TotalAdmins, stats.TotalSuperAdmins)
	fmt.Fprintf(&b, "Satisfaction score: %.1f / 5\n", stats.SatisfactionScore)
	fmt.Fprintf(&b, "Average service time: %.2f hours\n", stats.AvgServiceTime)

	if len(stats.WardPerformance) > 0 {
		b.WriteString("\nWard performance:\n")
		for _, w := range stats.WardPerformance {
			fmt.Fprintf(&b, "  Ward %d: %d total, %d pending, %d resolved\n", w.WardNumber, w.Total, w.Pending, w.Resolved)
		}
	}

	trend := stats.WeeklyTrend
	if len(trend.Labels) > 0 {
		b.WriteString("\nLast 7 days (submitted/resolved):\n")
		for i, label := range trend.Labels {
			fmt.Fprintf(&b, "  %s: %d/%d\n", label, trend.Submitted[i], trend.Resolved[i])
		}
	}

	b.WriteString("\nBest regards,\nClean Care")
	return b.String()
}
