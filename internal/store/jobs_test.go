package store

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pineJob(customer string) CreateJobRequest {
	return CreateJobRequest{CustomerName: customer, MaterialID: "1", Length: 8, Quantity: 3}
}

func TestCreateJobDeductsStock(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			job, err := s.Jobs().CreateJob(pineJob("  Dana Smith "))
			require.NoError(t, err)

			assert.Equal(t, "Dana Smith", job.CustomerName)
			assert.Equal(t, model.JobPending, job.Status)
			assert.True(t, model.IsOrderCode(job.OrderCode))
			assert.Equal(t, strconv.FormatInt(testNow.UnixMilli(), 10), job.ID)
			assert.Equal(t, 134.25, job.TotalCost)
			assert.Equal(t, 15.0, job.LaborCost)
			assert.Equal(t, 8.4, job.WasteCost)
			assert.Equal(t, 1200.0, job.Material.CurrentStock, "snapshot holds pre-deduction stock")
			assert.Nil(t, job.CompletedAt)

			m, err := s.Materials().Get("1")
			require.NoError(t, err)
			assert.Equal(t, 1176.0, m.CurrentStock)

			jobs, err := s.Jobs().List()
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			assert.Equal(t, job.ID, jobs[0].ID)
			assert.True(t, jobs[0].CreatedAt.Equal(testNow))
		})
	}
}

func TestCreateJobInsufficientStock(t *testing.T) {
	s, _ := newMemoryStore(t)
	require.NoError(t, s.Materials().SetStock("1", 10))

	_, err := s.Jobs().CreateJob(pineJob("Dana"))
	var ise *model.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 10.0, ise.Available)
	assert.Equal(t, 24.0, ise.Needed)

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.CurrentStock)

	jobs, err := s.Jobs().List()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCreateJobUsesExactStock(t *testing.T) {
	s, _ := newMemoryStore(t)
	require.NoError(t, s.Materials().SetStock("1", 24))

	_, err := s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.CurrentStock)
}

func TestCreateJobValidation(t *testing.T) {
	s, _ := newMemoryStore(t)

	cases := map[string]CreateJobRequest{
		"customerName": {CustomerName: "   ", MaterialID: "1", Length: 8, Quantity: 3},
		"materialId":   {CustomerName: "Dana", Length: 8, Quantity: 3},
		"length":       {CustomerName: "Dana", MaterialID: "1", Length: 0, Quantity: 3},
		"quantity":     {CustomerName: "Dana", MaterialID: "1", Length: 8, Quantity: 0},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := s.Jobs().CreateJob(req)
			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, field, ve.Field)
		})
	}

	_, err := s.Jobs().CreateJob(CreateJobRequest{CustomerName: "Dana", MaterialID: "99", Length: 8, Quantity: 3})
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, m.CurrentStock)
}

func TestCreateJobRestoresStockWhenJobWriteFails(t *testing.T) {
	s, fs, _ := newFaultyStore(t)
	_, err := s.Materials().List()
	require.NoError(t, err)
	_, err = s.Pricing().Get()
	require.NoError(t, err)

	fs.failPut = failKey(KeyJobs)
	_, err = s.Jobs().CreateJob(pineJob("Dana"))
	require.Error(t, err)
	fs.failPut = nil

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1200.0, m.CurrentStock)
	jobs, err := s.Jobs().List()
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestStockConservation(t *testing.T) {
	s, _ := newMemoryStore(t)
	reqs := []CreateJobRequest{
		{CustomerName: "A", MaterialID: "1", Length: 8, Quantity: 3},
		{CustomerName: "B", MaterialID: "1", Length: 2.5, Quantity: 4},
		{CustomerName: "C", MaterialID: "3", Length: 6, Quantity: 10},
		{CustomerName: "D", MaterialID: "1", Length: 500, Quantity: 3}, // rejected
	}
	for _, req := range reqs {
		_, _ = s.Jobs().CreateJob(req)
	}

	jobs, err := s.Jobs().List()
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	used := map[string]float64{}
	for _, j := range jobs {
		used[j.Material.ID] += j.TotalLength()
	}
	for _, initial := range model.DefaultCatalog() {
		m, err := s.Materials().Get(initial.ID)
		require.NoError(t, err)
		assert.Equal(t, initial.CurrentStock-used[initial.ID], m.CurrentStock, initial.Name)
	}
}

func TestCreateJobUniqueIdentifiers(t *testing.T) {
	s, _ := newMemoryStore(t, WithOrderCodes(codeSequence("AAAA", "AAAA", "BBBB")))

	first, err := s.Jobs().CreateJob(pineJob("A"))
	require.NoError(t, err)
	second, err := s.Jobs().CreateJob(pineJob("B"))
	require.NoError(t, err)

	assert.Equal(t, "AAAA", first.OrderCode)
	assert.Equal(t, "BBBB", second.OrderCode)
	assert.Equal(t, strconv.FormatInt(testNow.UnixMilli()+1, 10), second.ID)
}

func TestJobSnapshotIsIndependent(t *testing.T) {
	s, _ := newMemoryStore(t)
	job, err := s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	m.Name = "2x4 Pine (kiln dried)"
	m.UnitCost = 9.99
	_, err = s.Materials().Save(m)
	require.NoError(t, err)

	stored, err := s.Jobs().Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "2x4 Pine", stored.Material.Name)
	assert.Equal(t, 3.5, stored.Material.UnitCost)
	assert.Equal(t, 134.25, stored.TotalCost)
}

func TestUpdateStatus(t *testing.T) {
	s, _ := newMemoryStore(t)
	job, err := s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	done, err := s.Jobs().UpdateStatus(job.ID, model.JobCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.JobCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(testNow))

	// Completion does not deduct again.
	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1176.0, m.CurrentStock)

	_, err = s.Jobs().UpdateStatus(job.ID, model.JobCancelled)
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve), "completed jobs are final")
}

func TestCancelDoesNotRestock(t *testing.T) {
	s, _ := newMemoryStore(t)
	job, err := s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	cancelled, err := s.Jobs().UpdateStatus(job.ID, model.JobCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.JobCancelled, cancelled.Status)
	assert.Nil(t, cancelled.CompletedAt)

	m, err := s.Materials().Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1176.0, m.CurrentStock)

	_, err = s.Jobs().UpdateStatus(job.ID, model.JobCompleted)
	assert.Error(t, err)
}

func TestUpdateStatusErrors(t *testing.T) {
	s, _ := newMemoryStore(t)
	job, err := s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	_, err = s.Jobs().UpdateStatus("missing", model.JobCompleted)
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = s.Jobs().UpdateStatus(job.ID, "shipped")
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = s.Jobs().UpdateStatus(job.ID, model.JobPending)
	assert.True(t, errors.As(err, &ve))
}

func TestJobLookups(t *testing.T) {
	s, _ := newMemoryStore(t, WithOrderCodes(codeSequence("K7Q2", "M3X9")))
	first, err := s.Jobs().CreateJob(pineJob("Dana Smith"))
	require.NoError(t, err)
	_, err = s.Jobs().CreateJob(CreateJobRequest{CustomerName: "Lee", MaterialID: "3", Length: 2, Quantity: 5})
	require.NoError(t, err)
	_, err = s.Jobs().UpdateStatus(first.ID, model.JobCompleted)
	require.NoError(t, err)

	found, err := s.Jobs().FindByOrderCode("k7q2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = s.Jobs().FindByOrderCode("ZZZZ")
	var nf *model.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = s.Jobs().Get("nope")
	assert.True(t, errors.As(err, &nf))

	jobs, err := s.Jobs().Search("steel", "")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Lee", jobs[0].CustomerName)

	jobs, err = s.Jobs().Search("", model.JobCompleted)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, first.ID, jobs[0].ID)

	jobs, err = s.Jobs().Search("m3x9", model.JobCompleted)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestDashboard(t *testing.T) {
	s, _ := newMemoryStore(t)
	first, err := s.Jobs().CreateJob(pineJob("A"))
	require.NoError(t, err)
	_, err = s.Jobs().CreateJob(pineJob("B"))
	require.NoError(t, err)
	_, err = s.Jobs().UpdateStatus(first.ID, model.JobCompleted)
	require.NoError(t, err)
	require.NoError(t, s.Materials().SetStock("4", 50))

	summary, err := s.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PendingJobs)
	assert.Equal(t, 1, summary.CompletedToday)
	assert.Equal(t, 134.25, summary.TotalRevenue)
	assert.Equal(t, 1, summary.ReorderAlerts)
	assert.Equal(t, 4, summary.Materials)
}

func TestConcurrentJobsKeepStockConsistent(t *testing.T) {
	s, _ := newMemoryStore(t)
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := s.Jobs().CreateJob(CreateJobRequest{CustomerName: "C", MaterialID: "2", Length: 10, Quantity: 5})
			done <- err
		}()
	}
	ok := 0
	timeout := time.After(10 * time.Second)
	for i := 0; i < 20; i++ {
		select {
		case err := <-done:
			if err == nil {
				ok++
			}
		case <-timeout:
			t.Fatal("timed out waiting for jobs")
		}
	}

	// 800ft of 2x6 covers sixteen 50ft jobs.
	assert.Equal(t, 16, ok)
	m, err := s.Materials().Get("2")
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.CurrentStock)
}
