package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/cutdesk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAndImportAllData(t *testing.T) {
	src, _ := newMemoryStore(t)
	job, err := src.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)
	require.NoError(t, src.Pricing().Set(model.PricingConfig{LaborRatePerCut: 4, WasteAllowancePercent: 8, MarkupPercent: 30}))

	cfg := model.DefaultAppConfig()
	cfg.StoreName = "Corner Hardware"
	path := filepath.Join(t.TempDir(), "deep", "nested", "backup.json")
	require.NoError(t, ExportAllData(path, src, cfg))

	backup, err := ImportAllData(path)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, backup.Version)
	assert.NotEmpty(t, backup.CreatedAt)
	assert.Equal(t, "Corner Hardware", backup.Config.StoreName)
	require.Len(t, backup.Jobs, 1)

	for name, dst := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, dst.Restore(backup))

			got, err := dst.Jobs().Get(job.ID)
			require.NoError(t, err)
			assert.Equal(t, job.OrderCode, got.OrderCode)

			m, err := dst.Materials().Get("1")
			require.NoError(t, err)
			assert.Equal(t, 1176.0, m.CurrentStock)

			pricing, err := dst.Pricing().Get()
			require.NoError(t, err)
			assert.Equal(t, 30.0, pricing.MarkupPercent)
		})
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json}"), 0644))

	_, err := ImportAllData(path)
	assert.Error(t, err)
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"materials":[]}`), 0644))

	_, err := ImportAllData(path)
	assert.Error(t, err)
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	s, _ := newMemoryStore(t)

	err := s.Restore(BackupData{Version: BackupVersion, Pricing: model.PricingConfig{LaborRatePerCut: -5}})
	var ve *model.ValidationError
	assert.True(t, errors.As(err, &ve))

	err = s.Restore(BackupData{Version: BackupVersion, Materials: []model.Material{{Name: "No ID"}}})
	assert.True(t, errors.As(err, &ve))

	materials, err := s.Materials().List()
	require.NoError(t, err)
	assert.Len(t, materials, 4)
}

func TestRestoreRollsBackOnWriteFailure(t *testing.T) {
	s, fs, _ := newFaultyStore(t)
	_, err := s.Materials().List()
	require.NoError(t, err)
	_, err = s.Jobs().CreateJob(pineJob("Dana"))
	require.NoError(t, err)

	fs.failPut = failKey(KeyPricing)
	err = s.Restore(BackupData{Version: BackupVersion, Materials: []model.Material{}, Jobs: []model.CutJob{}})
	require.Error(t, err)
	fs.failPut = nil

	materials, err := s.Materials().List()
	require.NoError(t, err)
	assert.Len(t, materials, 4)
	jobs, err := s.Jobs().List()
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestRestoreOnFreshStoreLeavesNothingBehind(t *testing.T) {
	s, fs, ms := newFaultyStore(t)
	fs.failPut = failKey(KeyJobs)

	backup := BackupData{
		Version: BackupVersion,
		Materials: []model.Material{
			{ID: "x", Name: "Restored", Type: model.MaterialWood, UnitCost: 1, CurrentStock: 10, ReorderThreshold: 1, Supplier: "S"},
		},
		Pricing: model.DefaultPricing(),
	}
	require.Error(t, s.Restore(backup))

	for _, key := range []string{KeyMaterials, KeyJobs, KeyPricing} {
		_, ok, err := ms.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, "%s should not exist after a failed restore", key)
	}

	fs.failPut = nil
	materials, err := s.Materials().List()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCatalog(), materials)
}
