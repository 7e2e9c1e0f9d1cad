package dto

// DashboardSummary captures the totals shown on the administrative dashboard.
type DashboardSummary struct {
	TotalStudents int     `json:"totalStudents"`
	TotalFees     float64 `json:"totalFees"`
	PendingFees   int     `json:"pendingFees"`
	TotalClasses  int     `json:"totalClasses"`
}
