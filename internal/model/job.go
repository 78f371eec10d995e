package model

import (
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a cut job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobCompleted JobStatus = "completed"
	JobCancelled JobStatus = "cancelled"
)

// ParseJobStatus converts user input into a JobStatus.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch JobStatus(strings.ToLower(strings.TrimSpace(s))) {
	case JobPending:
		return JobPending, true
	case JobCompleted:
		return JobCompleted, true
	case JobCancelled:
		return JobCancelled, true
	default:
		return "", false
	}
}

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// CanTransition reports whether a job may move from s to next.
// Only pending jobs move, and only to completed or cancelled.
func (s JobStatus) CanTransition(next JobStatus) bool {
	return s == JobPending && next.Terminal()
}

// CutJob is a customer order to cut a material into pieces.
// Material is a copy taken at creation time, not a live reference.
type CutJob struct {
	ID           string     `json:"id"`
	OrderCode    string     `json:"orderCode,omitempty"`
	CustomerName string     `json:"customerName"`
	Material     Material   `json:"material"`
	Length       float64    `json:"length"`   // feet per piece
	Quantity     int        `json:"quantity"` // pieces
	TotalCost    float64    `json:"totalCost"`
	LaborCost    float64    `json:"laborCost"`
	WasteCost    float64    `json:"wasteCost"`
	Status       JobStatus  `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// TotalLength returns the feet of material the job consumes.
func (j CutJob) TotalLength() float64 {
	return j.Length * float64(j.Quantity)
}

// Matches reports whether the job's customer, material name or order code
// contains query, ignoring case. An empty query matches everything.
func (j CutJob) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.CustomerName), q) ||
		strings.Contains(strings.ToLower(j.Material.Name), q) ||
		strings.Contains(strings.ToLower(j.OrderCode), q)
}

// FilterJobs returns jobs matching query and, when status is non-empty,
// having that status.
func FilterJobs(jobs []CutJob, query string, status JobStatus) []CutJob {
	out := []CutJob{}
	for _, j := range jobs {
		if status != "" && j.Status != status {
			continue
		}
		if !j.Matches(query) {
			continue
		}
		out = append(out, j)
	}
	return out
}

// Ticket is the flattened view of a job handed to the ticket renderer.
type Ticket struct {
	OrderCode    string    `json:"orderCode"`
	CustomerName string    `json:"customerName"`
	MaterialName string    `json:"materialName"`
	Length       float64   `json:"length"`
	Quantity     int       `json:"quantity"`
	TotalLength  float64   `json:"totalLength"`
	TotalCost    float64   `json:"totalCost"`
	JobID        string    `json:"jobId,omitempty"`
	Status       JobStatus `json:"status,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Ticket flattens the job for printing.
func (j CutJob) Ticket() Ticket {
	return Ticket{
		OrderCode:    j.OrderCode,
		CustomerName: j.CustomerName,
		MaterialName: j.Material.Name,
		Length:       j.Length,
		Quantity:     j.Quantity,
		TotalLength:  j.TotalLength(),
		TotalCost:    j.TotalCost,
		JobID:        j.ID,
		Status:       j.Status,
		Notes:        j.Notes,
		CreatedAt:    j.CreatedAt,
	}
}

// DashboardSummary holds the headline numbers of the register dashboard.
type DashboardSummary struct {
	PendingJobs    int     `json:"pendingJobs"`
	CompletedToday int     `json:"completedToday"`
	TotalRevenue   float64 `json:"totalRevenue"` // sum of completed job totals
	ReorderAlerts  int     `json:"reorderAlerts"`
	Materials      int     `json:"materials"`
}

// Summarize computes the dashboard numbers. "Today" is the calendar day
// of now in now's location.
func Summarize(jobs []CutJob, materials []Material, now time.Time) DashboardSummary {
	y, m, d := now.Date()
	summary := DashboardSummary{
		ReorderAlerts: len(AlertsFor(materials)),
		Materials:     len(materials),
	}
	for _, j := range jobs {
		switch j.Status {
		case JobPending:
			summary.PendingJobs++
		case JobCompleted:
			summary.TotalRevenue += j.TotalCost
			if j.CompletedAt != nil {
				cy, cm, cd := j.CompletedAt.In(now.Location()).Date()
				if cy == y && cm == m && cd == d {
					summary.CompletedToday++
				}
			}
		}
	}
	return summary
}
