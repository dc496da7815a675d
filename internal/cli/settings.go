package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Settings configures the command-line client.
type Settings struct {
	Server      string        `mapstructure:"server"`
	PrefsPath   string        `mapstructure:"prefs"`
	CatalogFile string        `mapstructure:"catalog"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ExportDir   string        `mapstructure:"export_dir"`
	LogLevel    string        `mapstructure:"log_level"`

	SpreadsheetID      string `mapstructure:"spreadsheet_id"`
	SheetName          string `mapstructure:"sheet_name"`
	ServiceAccountFile string `mapstructure:"service_account_file"`
}

const envPrefix = "BUDGETBUDDY"

// defaultPrefsPath keeps the preference database under the user config dir.
func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "budgetbuddy-prefs.db")
	}
	return filepath.Join(dir, "budgetbuddy", "prefs.db")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("prefs", defaultPrefsPath())
	v.SetDefault("catalog", "")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("export_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("spreadsheet_id", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("service_account_file", "")

	// BUDGETBUDDY_SERVER, BUDGETBUDDY_PREFS, ...
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	return v
}

// LoadSettings merges defaults, the config file, BUDGETBUDDY_* variables and
// flags, in increasing priority. An empty path looks for .budgetbuddy.yaml in
// the home directory and the working directory; a missing file is fine there
// but not when path is explicit.
func LoadSettings(path string, flags *pflag.FlagSet) (Settings, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".budgetbuddy")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if s.Server == "" {
		return Settings{}, errors.New("server URL must not be empty")
	}
	if s.Timeout <= 0 {
		return Settings{}, fmt.Errorf("invalid timeout %v: must be positive", s.Timeout)
	}
	return s, nil
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"server":     "server",
	"prefs":      "prefs",
	"catalog":    "catalog",
	"timeout":    "timeout",
	"export_dir": "dir",
	"log_level":  "log-level",
}
