package models

import "time"

// DashboardStats is the aggregate view served by the dashboard endpoint.
// It is rebuilt from the store on every request.
type DashboardStats struct {
	TotalComplaints      int64             `json:"total_complaints"`
	SolvedComplaints     int64             `json:"solved_complaints"`
	PendingComplaints    int64             `json:"pending_complaints"`
	InProgressComplaints int64             `json:"in_progress_complaints"`
	TotalUsers           int64             `json:"total_users"`
	TotalAdmins          int64             `json:"total_admins"`
	TotalSuperAdmins     int64             `json:"total_super_admins"`
	SatisfactionScore    float64           `json:"satisfaction_score"`
	AvgServiceTime       float64           `json:"avg_service_time"` // hours
	ComplaintsByStatus   []StatusBreakdown `json:"complaints_by_status"`
	WardPerformance      []WardPerformance `json:"ward_performance"`
	WeeklyTrend          WeeklyTrend       `json:"weekly_trend"`
	GeneratedAt          time.Time         `json:"generated_at"`
}

// StatusBreakdown is one row of the complaints-by-status chart
type StatusBreakdown struct {
	Status     ComplaintStatus `json:"status"`
	Count      int64           `json:"count"`
	Percentage float64         `json:"percentage"`
}

// WardPerformance summarizes complaints in one ward.
// Total includes in-progress complaints, so it can exceed Pending+Resolved.
type WardPerformance struct {
	WardNumber int   `json:"ward_number"`
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Resolved   int64 `json:"resolved"`
}

// WeeklyTrend holds parallel per-day series, oldest day first
type WeeklyTrend struct {
	Labels    []string `json:"labels"`
	Submitted []int64  `json:"submitted"`
	Resolved  []int64  `json:"resolved"`
}

// UserCounts is the role breakdown of the user table.
type UserCounts struct {
	Total       int64
	Admins      int64
	SuperAdmins int64
}

// ComplaintTimes carries the timestamps needed for duration and trend math.
type ComplaintTimes struct {
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
