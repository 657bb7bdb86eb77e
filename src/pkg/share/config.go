package share

import (
	"fmt"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"

	"embroidery-reports/src/pkg/config"
)

type Config struct {
	Provider       string `json:"provider,omitempty"`
	Sender         string `json:"sender,omitempty"`
	SubjectPrefix  string `json:"subject_prefix,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	// SendEmails must be true for anything to leave the process.
	SendEmails *bool `json:"send_emails,omitempty"`
}

func DefaultValueConfig() Config {
	sendEmails := false
	return Config{
		Provider:       string(ProviderMailgun),
		SubjectPrefix:  "[Reports]",
		TimeoutSeconds: 30,
		SendEmails:     &sendEmails,
	}
}

// create config with default values before config gets initialized
var Cfg Config = DefaultValueConfig()

/*
If local Config is provided - use it. Replace all missing values with default ones.

If not provided - just use defaultConfig.
*/
func InitializeConfig(localConfig *Config) {
	if localConfig == nil {
		tl.Log(tl.Info, palette.Purple, "%s config is %s, keeping %s", "share", "not provided", "default share config")
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

	tl.Log(tl.Info, palette.Green, "%s config was %s, using %s", "share", "provided", "local share config")
	tl.LogJSON(tl.Verbose, palette.CyanDim, fmt.Sprintf("%s configuration", config.GetPackageName()), Cfg)
}
