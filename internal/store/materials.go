package store

import (
	"strings"

	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// MaterialRepository owns the material catalog and its stock levels.
type MaterialRepository struct {
	s *Store
}

// List returns all materials, seeding the default catalog on first use.
func (r *MaterialRepository) List() ([]model.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.loadMaterials()
}

// Get returns the material with the given ID.
func (r *MaterialRepository) Get(id string) (model.Material, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	materials, err := r.s.loadMaterials()
	if err != nil {
		return model.Material{}, err
	}
	m := model.FindMaterial(materials, id)
	if m == nil {
		return model.Material{}, &model.NotFoundError{Kind: "material", ID: id}
	}
	return *m, nil
}

// SetStock overwrites a material's current stock. Negative values are
// accepted; callers are responsible for preventing them.
func (r *MaterialRepository) SetStock(id string, stock float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	materials, err := r.s.loadMaterials()
	if err != nil {
		return err
	}
	m := model.FindMaterial(materials, id)
	if m == nil {
		return &model.NotFoundError{Kind: "material", ID: id}
	}
	previous := m.CurrentStock
	m.CurrentStock = stock
	if err := r.s.save(KeyMaterials, materials); err != nil {
		return err
	}
	r.s.log.Info("Stock updated",
		zap.String("material_id", id),
		zap.Float64("previous", previous),
		zap.Float64("current", stock))
	return nil
}

// UpsertAll replaces the whole catalog.
func (r *MaterialRepository) UpsertAll(materials []model.Material) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if materials == nil {
		materials = []model.Material{}
	}
	return r.s.save(KeyMaterials, materials)
}

// Save validates m and replaces the catalog entry with the same ID, or
// appends it when the ID is new or empty. It returns the saved material.
func (r *MaterialRepository) Save(m model.Material) (model.Material, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Supplier = strings.TrimSpace(m.Supplier)
	if m.Type == "" {
		m.Type = model.MaterialWood
	}
	if err := m.Validate(); err != nil {
		return model.Material{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	materials, err := r.s.loadMaterials()
	if err != nil {
		return model.Material{}, err
	}

	if m.ID == "" {
		m.ID = model.NewMaterialID()
	}
	if existing := model.FindMaterial(materials, m.ID); existing != nil {
		*existing = m
	} else {
		materials = append(materials, m)
	}
	if err := r.s.save(KeyMaterials, materials); err != nil {
		return model.Material{}, err
	}
	r.s.log.Info("Material saved", zap.String("material_id", m.ID), zap.String("name", m.Name))
	return m, nil
}

// Merge appends materials whose IDs are not yet in the catalog and
// returns how many were added. Duplicate IDs are skipped.
func (r *MaterialRepository) Merge(imported []model.Material) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	materials, err := r.s.loadMaterials()
	if err != nil {
		return 0, err
	}

	ids := make(map[string]bool, len(materials))
	for _, m := range materials {
		ids[m.ID] = true
	}
	added := 0
	for _, m := range imported {
		if m.ID == "" {
			m.ID = model.NewMaterialID()
		}
		if ids[m.ID] {
			continue
		}
		materials = append(materials, m)
		ids[m.ID] = true
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := r.s.save(KeyMaterials, materials); err != nil {
		return 0, err
	}
	r.s.log.Info("Materials imported", zap.Int("added", added))
	return added, nil
}
