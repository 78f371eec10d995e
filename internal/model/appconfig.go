package model

// AppConfig holds register preferences that are not part of the
// business data.
type AppConfig struct {
	// Printed on tickets and purchase orders
	StoreName    string `json:"store_name"`
	StorePhone   string `json:"store_phone"`
	StoreAddress string `json:"store_address"`

	// Register preferences
	DefaultMeasurement MeasurementSystem `json:"default_measurement"`
	RecentExports      []string          `json:"recent_exports"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		StoreName:          "Hardware Store",
		DefaultMeasurement: Imperial,
		RecentExports:      []string{},
	}
}

const maxRecentExports = 10

// AddRecentExport records path as the most recent export, dropping
// duplicates and keeping at most ten entries.
func (c *AppConfig) AddRecentExport(path string) {
	recent := []string{path}
	for _, p := range c.RecentExports {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentExports {
		recent = recent[:maxRecentExports]
	}
	c.RecentExports = recent
}
