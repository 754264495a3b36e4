package config

import (
	"strings"

	"github.com/spf13/viper"
)

// App holds application-level settings for processes embedding the engine.
// These are distinct from the override document: the document tunes checks,
// App tunes the process around them.
type App struct {
	OverridePath string  `mapstructure:"override_path"`
	LogLevel     string  `mapstructure:"log_level"`
	LogFormat    string  `mapstructure:"log_format"`
	ReportOKMin  float64 `mapstructure:"report_ok_min"`
	ReportWarn   float64 `mapstructure:"report_warn_min"`
	ReportWidth  int     `mapstructure:"report_width"`
}

// LoadApp loads application settings from an optional qa-eval.yaml config
// file, RTQA_* environment variables, and built-in defaults, in that
// precedence order. A missing config file is not an error.
func LoadApp() (*App, error) {
	v := viper.New()
	v.SetConfigName("qa-eval")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/qa-eval")

	v.SetEnvPrefix("RTQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("override_path", "qa-overrides.json")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("report_ok_min", 0.9)
	v.SetDefault("report_warn_min", 0.5)
	v.SetDefault("report_width", 40)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	app := &App{}
	if err := v.Unmarshal(app); err != nil {
		return nil, err
	}
	return app, nil
}
