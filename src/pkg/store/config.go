package store

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/config"
)

type Config struct {
	// ExportDir holds orders.json, payments.json, cash_movements.json and
	// clients.json, each optionally brotli-compressed as *.json.br.
	ExportDir string `json:"export_dir,omitempty"`
	// Timezone is used for date-only values in the export. Empty means the
	// report timezone.
	Timezone string `json:"timezone,omitempty"`
}

func DefaultValueConfig() Config {
	return Config{
		ExportDir: "./data/export",
	}
}

// Location resolves Timezone, using fallback when it is empty or unknown.
func (c Config) Location(fallback *time.Location) *time.Location {
	if c.Timezone == "" {
		return fallback
	}
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Invalid timezone '%s'; falling back to '%s'", c.Timezone, fallback)
		return fallback
	}
	return location
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "store", "not provided", "default store config")
		return
	}

	defaultConfig := DefaultValueConfig()
	Cfg = *localConfig

	tl.ApplyDefaults(&Cfg, defaultConfig, func(field string, defVal any) {
		tl.Log(
			tl.Info, palette.Purple,
			"%s field is %s in %s configuration. Using default value: %v",
			field, "missing", config.GetPackageName(), tl.PrettyForStderr(defVal),
		)
	})

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "store", "provided", "local store config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
