package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// Store owns the persisted collections. All repositories obtained from
// one Store share its lock, so every read-modify-write across materials,
// jobs and pricing is atomic within the process. Separate processes on
// the same storage are not coordinated.
type Store struct {
	mu      sync.Mutex
	storage Storage
	log     *zap.Logger
	now     func() time.Time
	codes   *model.OrderCodeGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for state-change events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used for job timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOrderCodes overrides the order code generator.
func WithOrderCodes(g *model.OrderCodeGenerator) Option {
	return func(s *Store) { s.codes = g }
}

// New returns a Store over the given storage backend.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		log:     zap.NewNop(),
		now:     time.Now,
		codes:   model.NewOrderCodeGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Materials returns the material repository.
func (s *Store) Materials() *MaterialRepository {
	return &MaterialRepository{s: s}
}

// Jobs returns the job repository.
func (s *Store) Jobs() *JobRepository {
	return &JobRepository{s: s}
}

// Pricing returns the pricing configuration repository.
func (s *Store) Pricing() *PricingRepository {
	return &PricingRepository{s: s}
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}

// load decodes key into v. It reports false when the key is absent.
func (s *Store) load(key string, v any) (bool, error) {
	data, ok, err := s.storage.Get(key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.storage.Put(key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// loadMaterials returns the stored catalog, seeding the default catalog
// when none has been saved. Caller holds s.mu.
func (s *Store) loadMaterials() ([]model.Material, error) {
	var materials []model.Material
	ok, err := s.load(KeyMaterials, &materials)
	if err != nil {
		return nil, err
	}
	if !ok {
		materials = model.DefaultCatalog()
		if err := s.save(KeyMaterials, materials); err != nil {
			return nil, err
		}
		s.log.Info("Seeded default material catalog", zap.Int("materials", len(materials)))
		return materials, nil
	}
	if materials == nil {
		materials = []model.Material{}
	}
	return materials, nil
}

// loadJobs returns the stored jobs. Caller holds s.mu.
func (s *Store) loadJobs() ([]model.CutJob, error) {
	var jobs []model.CutJob
	if _, err := s.load(KeyJobs, &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []model.CutJob{}
	}
	return jobs, nil
}

// loadPricing returns the stored pricing, saving the defaults when none
// has been saved. Caller holds s.mu.
func (s *Store) loadPricing() (model.PricingConfig, error) {
	var cfg model.PricingConfig
	ok, err := s.load(KeyPricing, &cfg)
	if err != nil {
		return model.PricingConfig{}, err
	}
	if !ok {
		cfg = model.DefaultPricing()
		if err := s.save(KeyPricing, cfg); err != nil {
			return model.PricingConfig{}, err
		}
	}
	return cfg, nil
}
