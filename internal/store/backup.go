package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// BackupVersion is written into every backup file.
const BackupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all register data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"createdAt"`
	Config    model.AppConfig     `json:"config"`
	Materials []model.Material    `json:"materials"`
	Jobs      []model.CutJob      `json:"jobs"`
	Pricing   model.PricingConfig `json:"pricing"`
}

// Snapshot collects the three stored collections into a BackupData.
func (s *Store) Snapshot(config model.AppConfig) (BackupData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	materials, err := s.loadMaterials()
	if err != nil {
		return BackupData{}, err
	}
	jobs, err := s.loadJobs()
	if err != nil {
		return BackupData{}, err
	}
	pricing, err := s.loadPricing()
	if err != nil {
		return BackupData{}, err
	}
	return BackupData{
		Version:   BackupVersion,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Config:    config,
		Materials: materials,
		Jobs:      jobs,
		Pricing:   pricing,
	}, nil
}

// Restore replaces all three collections with the backup contents.
// If a write fails, collections already overwritten are put back, and
// collections that did not exist before are removed again.
func (s *Store) Restore(backup BackupData) error {
	if backup.Version == "" {
		return fmt.Errorf("invalid backup: missing version field")
	}
	if err := backup.Pricing.Validate(); err != nil {
		return err
	}
	for _, m := range backup.Materials {
		if m.ID == "" {
			return model.NewValidationError("id", "material %q has no id", m.Name)
		}
	}

	materials := backup.Materials
	if materials == nil {
		materials = []model.Material{}
	}
	jobs := backup.Jobs
	if jobs == nil {
		jobs = []model.CutJob{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type saved struct {
		key  string
		data []byte
		ok   bool
	}
	var written []saved
	rollback := func() {
		for i := len(written) - 1; i >= 0; i-- {
			w := written[i]
			var err error
			if w.ok {
				err = s.storage.Put(w.key, w.data)
			} else {
				err = s.storage.Delete(w.key)
			}
			if err != nil {
				s.log.Error("Failed to roll back restore", zap.String("key", w.key), zap.Error(err))
			}
		}
	}

	values := []struct {
		key string
		v   any
	}{
		{KeyMaterials, materials},
		{KeyJobs, jobs},
		{KeyPricing, backup.Pricing},
	}
	for _, item := range values {
		prev, ok, err := s.storage.Get(item.key)
		if err != nil {
			rollback()
			return fmt.Errorf("failed to read %s: %w", item.key, err)
		}
		if err := s.save(item.key, item.v); err != nil {
			rollback()
			return err
		}
		written = append(written, saved{key: item.key, data: prev, ok: ok})
	}

	s.log.Info("Data restored",
		zap.String("backup_created_at", backup.CreatedAt),
		zap.Int("materials", len(materials)),
		zap.Int("jobs", len(jobs)))
	return nil
}

// ExportAllData writes a backup of the store and config to a single JSON
// file at the specified path.
func ExportAllData(exportPath string, s *Store, config model.AppConfig) error {
	backup, err := s.Snapshot(config)
	if err != nil {
		return fmt.Errorf("failed to collect backup data: %w", err)
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller applies it with Store.Restore.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentExports == nil {
		backup.Config.RecentExports = []string{}
	}
	return backup, nil
}
