package store

import (
	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// PricingRepository holds the store-wide pricing configuration.
type PricingRepository struct {
	s *Store
}

// Get returns the pricing configuration, saving the defaults on first use.
func (r *PricingRepository) Get() (model.PricingConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.loadPricing()
}

// Set replaces the pricing configuration.
func (r *PricingRepository) Set(cfg model.PricingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.save(KeyPricing, cfg); err != nil {
		return err
	}
	r.s.log.Info("Pricing updated",
		zap.Float64("labor_rate_per_cut", cfg.LaborRatePerCut),
		zap.Float64("waste_allowance_percent", cfg.WasteAllowancePercent),
		zap.Float64("markup_percent", cfg.MarkupPercent))
	return nil
}
