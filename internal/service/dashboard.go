package service

import (
	"context"
	"math"
	"time"

	"github.com/Dan9191/cleancare-api/internal/models"
)

const trendDays = 7

type dashboardInputs struct {
	statusCounts map[models.ComplaintStatus]int64
	wards        []models.WardPerformance
	users        models.UserCounts
	avgRating    float64
	rated        bool
	solved       []models.ComplaintTimes
	recent       []models.ComplaintTimes
}

// DashboardStats aggregates live complaint and user records into the dashboard view
func (s *Service) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := s.clock()
	in := dashboardInputs{}
	var err error

	if in.statusCounts, err = s.repo.ComplaintStatusCounts(ctx); err != nil {
		return nil, err
	}
	if in.wards, err = s.repo.WardPerformance(ctx); err != nil {
		return nil, err
	}
	if in.users, err = s.repo.UserCounts(ctx); err != nil {
		return nil, err
	}
	if in.avgRating, in.rated, err = s.repo.AverageRating(ctx); err != nil {
		return nil, err
	}
	if in.solved, err = s.repo.SolvedComplaintTimes(ctx); err != nil {
		return nil, err
	}
	if in.recent, err = s.repo.ComplaintTimesSince(ctx, trendStart(now)); err != nil {
		return nil, err
	}

	return buildDashboard(now, in), nil
}

// DigestRecipients returns the active superusers that have an email address on file.
func (s *Service) DigestRecipients(ctx context.Context) ([]*models.User, error) {
	supers, err := s.repo.ListSuperusers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(supers))
	for _, u := range supers {
		if u.IsActive && u.Email != "" {
			out = append(out, u)
		}
	}
	return out, nil
}

func buildDashboard(now time.Time, in dashboardInputs) *models.DashboardStats {
	stats := &models.DashboardStats{
		PendingComplaints:    in.statusCounts[models.StatusPending],
		InProgressComplaints: in.statusCounts[models.StatusInProgress],
		SolvedComplaints:     in.statusCounts[models.StatusSolved],
		TotalUsers:           in.users.Total,
		TotalAdmins:          in.users.Admins,
		TotalSuperAdmins:     in.users.SuperAdmins,
		WardPerformance:      in.wards,
		GeneratedAt:          now,
	}
	if stats.WardPerformance == nil {
		stats.WardPerformance = []models.WardPerformance{}
	}

	for _, status := range models.ComplaintStatuses {
		stats.TotalComplaints += in.statusCounts[status]
	}
	stats.ComplaintsByStatus = make([]models.StatusBreakdown, 0, len(models.ComplaintStatuses))
	for _, status := range models.ComplaintStatuses {
		count := in.statusCounts[status]
		pct := 0.0
		if stats.TotalComplaints > 0 {
			pct = round(float64(count)/float64(stats.TotalComplaints)*100, 1)
		}
		stats.ComplaintsByStatus = append(stats.ComplaintsByStatus, models.StatusBreakdown{
			Status:     status,
			Count:      count,
			Percentage: pct,
		})
	}

	if in.rated {
		stats.SatisfactionScore = round(in.avgRating, 1)
	}
	stats.AvgServiceTime = averageServiceHours(in.solved)
	stats.WeeklyTrend = weeklyTrend(now, in.recent)
	return stats
}

func averageServiceHours(solved []models.ComplaintTimes) float64 {
	var total time.Duration
	var n int
	for _, ct := range solved {
		if ct.ResolvedAt == nil {
			continue
		}
		total += ct.ResolvedAt.Sub(ct.CreatedAt)
		n++
	}
	if n == 0 {
		return 0
	}
	return round(total.Hours()/float64(n), 2)
}

// trendStart is midnight UTC of the oldest day in the trend window.
func trendStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(trendDays - 1))
}

func weeklyTrend(now time.Time, recent []models.ComplaintTimes) models.WeeklyTrend {
	start := trendStart(now)
	trend := models.WeeklyTrend{
		Labels:    make([]string, trendDays),
		Submitted: make([]int64, trendDays),
		Resolved:  make([]int64, trendDays),
	}
	for i := range trend.Labels {
		trend.Labels[i] = start.AddDate(0, 0, i).Weekday().String()[:3]
	}
	for _, ct := range recent {
		if i, ok := dayIndex(start, ct.CreatedAt); ok {
			trend.Submitted[i]++
		}
		if ct.ResolvedAt != nil {
			if i, ok := dayIndex(start, *ct.ResolvedAt); ok {
				trend.Resolved[i]++
			}
		}
	}
	return trend
}

func dayIndex(start, t time.Time) (int, bool) {
	if t.Before(start) {
		return 0, false
	}
	i := int(t.Sub(start) / (24 * time.Hour))
	if i >= trendDays {
		return 0, false
	}
	return i, true
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
