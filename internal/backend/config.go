package backend

import (
	"errors"
	"fmt"
	"strings"

	"cashflow/internal/config"
)

// Config holds what the factory needs to build an exporter.
type Config struct {
	Type Type

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig derives the export backend from the application config. An empty
// EXPORT_BACKEND picks sheets when a spreadsheet is configured, memory otherwise.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(strings.ToLower(strings.TrimSpace(appConfig.ExportBackend)))
	if t == "" {
		t = MemoryBackend
		if appConfig.GoogleSpreadsheetID != "" {
			t = SheetsBackend
		}
	}

	cfg := Config{
		Type:                     t,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export backend %q: must be one of %s", c.Type, strings.Join(TypeStrings(), ", "))
	}

	if c.Type == SheetsBackend {
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return errors.New("either service account JSON or file must be provided for sheets backend")
		}
	}
	return nil
}

// TypeStrings returns all valid backend type strings
func TypeStrings() []string {
	return []string{SheetsBackend.String(), MemoryBackend.String()}
}
