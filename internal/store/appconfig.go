package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/cutdesk/internal/model"
)

// DefaultDataDir returns the default data directory, ~/.cutdesk/.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cutdesk")
}

// AppConfigPath returns the path of the preferences file in dataDir.
func AppConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	if config.RecentExports == nil {
		config.RecentExports = []string{}
	}
	if config.DefaultMeasurement == "" {
		config.DefaultMeasurement = model.Imperial
	}
	return config, nil
}
