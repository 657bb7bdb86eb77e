package reporting

import (
	"fmt"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/config"
)

type Config struct {
	ShopName string `json:"shop_name,omitempty"`
	Author   string `json:"author,omitempty"`
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	RepeatTableHeaders     *bool    `json:"repeat_table_headers,omitempty"`
	TopClients             int      `json:"top_clients,omitempty"`
	TopCategories          int      `json:"top_categories,omitempty"`
	CounterpartyCategories []string `json:"counterparty_categories,omitempty"`

	LogoPath      string  `json:"logo_path,omitempty"`
	LogoMaxWidth  float64 `json:"logo_max_width,omitempty"`
	LogoMaxHeight float64 `json:"logo_max_height,omitempty"`
}

func DefaultValueConfig() Config {
	repeatTableHeaders := true
	return Config{
		ShopName:               "Embroidery shop",
		Author:                 "Embroidery shop",
		Currency:               "COP",
		Timezone:               "America/Bogota",
		RepeatTableHeaders:     &repeatTableHeaders,
		TopClients:             5,
		TopCategories:          5,
		CounterpartyCategories: []string{"Venta", "Abono", "Cobro", "Sale", "Payment", "Collection"},
		LogoMaxWidth:           90,
		LogoMaxHeight:          60,
	}
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		tl.Log(tl.Warning, palette.PurpleBright, "Invalid timezone '%s'; falling back to UTC", c.Timezone)
		return time.UTC
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
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "report", "not provided", "default report config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "report", "provided", "local report config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
