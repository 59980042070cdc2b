package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/cleancare-api/internal/models"
)

const digestTimeout = time.Minute

// StatsSource provides the figures and recipients for the digest.
type StatsSource interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	DigestRecipients(ctx context.Context) ([]*models.User, error)
}

// Mailer delivers a digest to one address.
type Mailer interface {
	SendDigest(to, username string, stats *models.DashboardStats) error
}

// Digest computes the dashboard and reports it to superusers.
type Digest struct {
	src    StatsSource
	mailer Mailer
	log    *logrus.Logger
}

// NewDigest creates the job. A nil mailer only logs the summary.
func NewDigest(src StatsSource, mailer Mailer, log *logrus.Logger) *Digest {
	return &Digest{src: src, mailer: mailer, log: log}
}

// Run performs one digest. It returns the number of emails sent.
// A failed recipient is logged and the rest are still tried.
func (d *Digest) Run(ctx context.Context) (int, error) {
	stats, err := d.src.DashboardStats(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to compute dashboard: %w", err)
	}
	d.log.WithFields(logrus.Fields{
		"total_complaints":   stats.TotalComplaints,
		"pending_complaints": stats.PendingComplaints,
		"solved_complaints":  stats.SolvedComplaints,
		"satisfaction_score": stats.SatisfactionScore,
		"avg_service_time":   stats.AvgServiceTime,
	}).Info("Daily digest")

	if d.mailer == nil {
		return 0, nil
	}
	recipients, err := d.src.DigestRecipients(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	sent := 0
	for _, u := range recipients {
		if err := d.mailer.SendDigest(u.Email, u.Username, stats); err != nil {
			d.log.WithFields(logrus.Fields{"user_id": u.ID, "error": err}).Warn("Digest not delivered")
			continue
		}
		sent++
	}
	return sent, nil
}

// Schedule registers the digest on a new UTC cron scheduler. The caller starts
// and stops it. An empty spec yields a scheduler with no jobs.
func Schedule(spec string, d *Digest, log *logrus.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cron.PrintfLogger(log)))
	if spec == "" {
		log.Info("Daily digest disabled")
		return c, nil
	}
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
		defer cancel()
		if _, err := d.Run(ctx); err != nil {
			log.WithError(err).Error("Daily digest failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid DIGEST_CRON %q: %w", spec, err)
	}
	return c, nil
}
