package store

import (
	"strconv"
	"strings"

	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// JobRepository owns cut jobs and the stock they consume.
type JobRepository struct {
	s *Store
}

// CreateJobRequest holds the cut job form input.
type CreateJobRequest struct {
	CustomerName string  `json:"customerName"`
	MaterialID   string  `json:"materialId"`
	Length       float64 `json:"length"`   // feet per piece
	Quantity     int     `json:"quantity"` // pieces
	Notes        string  `json:"notes,omitempty"`
}

// Validate checks the required form fields.
func (req CreateJobRequest) Validate() error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return model.NewValidationError("customerName", "customer name is required")
	}
	if strings.TrimSpace(req.MaterialID) == "" {
		return model.NewValidationError("materialId", "select a material")
	}
	if !(req.Length > 0) {
		return model.NewValidationError("length", "length must be greater than zero")
	}
	if req.Quantity <= 0 {
		return model.NewValidationError("quantity", "quantity must be greater than zero")
	}
	return nil
}

// CreateJob validates the request, checks stock, prices the job and
// persists it while deducting the consumed feet from the material.
// Either both the job and the stock change are stored, or neither is.
func (r *JobRepository) CreateJob(req CreateJobRequest) (model.CutJob, error) {
	if err := req.Validate(); err != nil {
		return model.CutJob{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	materials, err := r.s.loadMaterials()
	if err != nil {
		return model.CutJob{}, err
	}
	m := model.FindMaterial(materials, req.MaterialID)
	if m == nil {
		return model.CutJob{}, &model.NotFoundError{Kind: "material", ID: req.MaterialID}
	}

	needed := req.Length * float64(req.Quantity)
	if needed > m.CurrentStock {
		return model.CutJob{}, &model.InsufficientStockError{
			MaterialID: m.ID,
			Available:  m.CurrentStock,
			Needed:     needed,
		}
	}

	jobs, err := r.s.loadJobs()
	if err != nil {
		return model.CutJob{}, err
	}
	pricing, err := r.s.loadPricing()
	if err != nil {
		return model.CutJob{}, err
	}
	code, err := r.s.codes.Generate(model.ExistingOrderCodes(jobs))
	if err != nil {
		return model.CutJob{}, err
	}

	cost := model.Price(pricing, m, req.Length, req.Quantity)
	now := r.s.now()
	job := model.CutJob{
		ID:           nextJobID(jobs, now.UnixMilli()),
		OrderCode:    code,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Material:     *m,
		Length:       req.Length,
		Quantity:     req.Quantity,
		TotalCost:    cost.TotalCost,
		LaborCost:    cost.LaborCost,
		WasteCost:    cost.WasteCost,
		Status:       model.JobPending,
		CreatedAt:    now,
		Notes:        strings.TrimSpace(req.Notes),
	}

	previous := make([]model.Material, len(materials))
	copy(previous, materials)
	m.CurrentStock -= needed

	if err := r.s.save(KeyMaterials, materials); err != nil {
		return model.CutJob{}, err
	}
	if err := r.s.save(KeyJobs, append(jobs, job)); err != nil {
		if rerr := r.s.save(KeyMaterials, previous); rerr != nil {
			r.s.log.Error("Failed to restore stock after job write failure",
				zap.String("material_id", job.Material.ID), zap.Error(rerr))
		}
		return model.CutJob{}, err
	}

	r.s.log.Info("Job created",
		zap.String("job_id", job.ID),
		zap.String("order_code", job.OrderCode),
		zap.String("material_id", job.Material.ID),
		zap.Float64("feet", needed),
		zap.Float64("total_cost", job.TotalCost))
	return job, nil
}

// nextJobID derives an id from the creation time, moving forward one
// millisecond at a time past ids already taken.
func nextJobID(jobs []model.CutJob, millis int64) string {
	taken := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		taken[j.ID] = true
	}
	for taken[strconv.FormatInt(millis, 10)] {
		millis++
	}
	return strconv.FormatInt(millis, 10)
}

// UpdateStatus moves a pending job to completed or cancelled. Completing
// stamps CompletedAt. Stock is not touched: it was deducted at creation
// and is not returned on cancellation.
func (r *JobRepository) UpdateStatus(id string, status model.JobStatus) (model.CutJob, error) {
	next, ok := model.ParseJobStatus(string(status))
	if !ok {
		return model.CutJob{}, model.NewValidationError("status", "unknown status %q", status)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	jobs, err := r.s.loadJobs()
	if err != nil {
		return model.CutJob{}, err
	}
	idx := -1
	for i := range jobs {
		if jobs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.CutJob{}, &model.NotFoundError{Kind: "job", ID: id}
	}

	job := &jobs[idx]
	if !job.Status.CanTransition(next) {
		return model.CutJob{}, model.NewValidationError("status",
			"cannot change a %s job to %s", job.Status, next)
	}
	job.Status = next
	if next == model.JobCompleted {
		now := r.s.now()
		job.CompletedAt = &now
	}
	if err := r.s.save(KeyJobs, jobs); err != nil {
		return model.CutJob{}, err
	}

	r.s.log.Info("Job status changed",
		zap.String("job_id", job.ID),
		zap.String("order_code", job.OrderCode),
		zap.String("status", string(next)))
	return *job, nil
}

// List returns all jobs in creation order.
func (r *JobRepository) List() ([]model.CutJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.loadJobs()
}

// Get returns the job with the given id.
func (r *JobRepository) Get(id string) (model.CutJob, error) {
	jobs, err := r.List()
	if err != nil {
		return model.CutJob{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return model.CutJob{}, &model.NotFoundError{Kind: "job", ID: id}
}

// FindByOrderCode returns the job whose order code matches, ignoring case.
func (r *JobRepository) FindByOrderCode(code string) (model.CutJob, error) {
	jobs, err := r.List()
	if err != nil {
		return model.CutJob{}, err
	}
	want := strings.ToUpper(strings.TrimSpace(code))
	for _, j := range jobs {
		if j.OrderCode == want {
			return j, nil
		}
	}
	return model.CutJob{}, &model.NotFoundError{Kind: "job", ID: code}
}

// Search filters jobs by a case-insensitive query over customer, material
// and order code, and by status when status is non-empty.
func (r *JobRepository) Search(query string, status model.JobStatus) ([]model.CutJob, error) {
	jobs, err := r.List()
	if err != nil {
		return nil, err
	}
	return model.FilterJobs(jobs, query, status), nil
}

// Dashboard summarizes jobs and stock as of the store clock.
func (s *Store) Dashboard() (model.DashboardSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs, err := s.loadJobs()
	if err != nil {
		return model.DashboardSummary{}, err
	}
	materials, err := s.loadMaterials()
	if err != nil {
		return model.DashboardSummary{}, err
	}
	return model.Summarize(jobs, materials, s.now()), nil
}
