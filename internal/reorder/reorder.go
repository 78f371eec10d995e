// Package reorder turns catalog stock levels into reorder alerts and
// supplier purchase order drafts.
package reorder

import (
	"strings"
	"time"

	"github.com/piwi3910/cutdesk/internal/model"
	"go.uber.org/zap"
)

// DefaultManagerCode confirms bulk reorders when none is configured.
const DefaultManagerCode = "MANAGER2024"

// MsgIncorrectManagerCode is returned when the manager code does not match.
const MsgIncorrectManagerCode = "Incorrect password. Please contact your manager."

// Catalog lists the current materials.
type Catalog interface {
	List() ([]model.Material, error)
}

// Engine computes alerts and purchase orders from a catalog. It never
// changes stored state.
type Engine struct {
	catalog     Catalog
	managerCode string
	log         *zap.Logger
	now         func() time.Time
}

// New returns an Engine. An empty managerCode selects DefaultManagerCode.
func New(catalog Catalog, managerCode string, log *zap.Logger) *Engine {
	if managerCode == "" {
		managerCode = DefaultManagerCode
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{catalog: catalog, managerCode: managerCode, log: log, now: time.Now}
}

// Alerts returns an alert for every material at or below its threshold.
// It is recomputed from the catalog on every call.
func (e *Engine) Alerts() ([]model.ReorderAlert, error) {
	materials, err := e.catalog.List()
	if err != nil {
		return nil, err
	}
	return model.AlertsFor(materials), nil
}

// LowStockIDs returns the ids of every material needing a reorder.
func (e *Engine) LowStockIDs() ([]string, error) {
	alerts, err := e.Alerts()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(alerts))
	for _, a := range alerts {
		ids = append(ids, a.MaterialID)
	}
	return ids, nil
}

// PlanAlerts plans purchase orders for every material currently alerting.
func (e *Engine) PlanAlerts() ([]model.SupplierOrder, error) {
	materials, err := e.catalog.List()
	if err != nil {
		return nil, err
	}
	low := []model.Material{}
	for _, m := range materials {
		if m.NeedsReorder() {
			low = append(low, m)
		}
	}
	return e.number(model.PlanPurchaseOrders(low)), nil
}

// Plan plans purchase orders for the given material ids, in the order
// given. Unknown ids return a NotFoundError.
func (e *Engine) Plan(ids []string) ([]model.SupplierOrder, error) {
	materials, err := e.catalog.List()
	if err != nil {
		return nil, err
	}
	selected := make([]model.Material, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		m := model.FindMaterial(materials, id)
		if m == nil {
			return nil, &model.NotFoundError{Kind: "material", ID: id}
		}
		selected = append(selected, *m)
	}
	return e.number(model.PlanPurchaseOrders(selected)), nil
}

// BulkReorder plans purchase orders for the selected materials after the
// manager confirms with their code. The code check is a confirmation
// step at the register, not an access control.
func (e *Engine) BulkReorder(ids []string, managerCode string) ([]model.SupplierOrder, error) {
	if len(ids) == 0 {
		return nil, model.NewValidationError("materialIds", "select materials to reorder")
	}
	if strings.TrimSpace(managerCode) != e.managerCode {
		e.log.Warn("Bulk reorder rejected", zap.Int("materials", len(ids)))
		return nil, &model.AuthorizationError{Message: MsgIncorrectManagerCode}
	}
	orders, err := e.Plan(ids)
	if err != nil {
		return nil, err
	}
	e.log.Info("Bulk reorder planned",
		zap.Int("materials", len(ids)),
		zap.Int("suppliers", len(orders)),
		zap.Float64("grand_total", model.GrandTotal(orders)))
	return orders, nil
}

func (e *Engine) number(orders []model.SupplierOrder) []model.SupplierOrder {
	now := e.now()
	used := make(map[string]bool, len(orders))
	for i := range orders {
		n := model.NewPurchaseOrderNumber(now)
		for used[n] {
			n = model.NewPurchaseOrderNumber(now)
		}
		used[n] = true
		orders[i].Number = n
	}
	return orders
}
