package model

// Severity grades how urgently a material needs restocking.
type Severity string

const (
	SeverityCritical Severity = "critical" // at or below half the threshold
	SeverityLow      Severity = "low"      // at or below the threshold
	SeverityWarning  Severity = "warning"  // within 150% of the threshold
	SeverityInStock  Severity = "in-stock"
)

// StockSeverity classifies the material's current stock level.
func StockSeverity(m Material) Severity {
	switch {
	case m.CurrentStock <= m.ReorderThreshold*0.5:
		return SeverityCritical
	case m.CurrentStock <= m.ReorderThreshold:
		return SeverityLow
	case m.CurrentStock <= m.ReorderThreshold*1.5:
		return SeverityWarning
	default:
		return SeverityInStock
	}
}

// NeedsReorder reports whether stock is at or below the reorder threshold.
func (m Material) NeedsReorder() bool {
	return m.CurrentStock <= m.ReorderThreshold
}

// ReorderAlert flags a material at or below its reorder threshold.
type ReorderAlert struct {
	MaterialID       string   `json:"materialId"`
	MaterialName     string   `json:"materialName"`
	CurrentStock     float64  `json:"currentStock"`
	ReorderThreshold float64  `json:"reorderThreshold"`
	Supplier         string   `json:"supplier"`
	Severity         Severity `json:"severity"`
}

// AlertsFor returns an alert for every material that needs reordering,
// in catalog order.
func AlertsFor(materials []Material) []ReorderAlert {
	alerts := []ReorderAlert{}
	for _, m := range materials {
		if !m.NeedsReorder() {
			continue
		}
		alerts = append(alerts, ReorderAlert{
			MaterialID:       m.ID,
			MaterialName:     m.Name,
			CurrentStock:     m.CurrentStock,
			ReorderThreshold: m.ReorderThreshold,
			Supplier:         m.Supplier,
			Severity:         StockSeverity(m),
		})
	}
	return alerts
}
