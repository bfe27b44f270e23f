// Package config provides configuration loading and defaults for
// glucowatch.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level glucowatch configuration. Clinical cut-points
// and detector windows are deliberately not configurable: they are
// fixed constants validated against labeled fixtures.
type Config struct {
	// CacheDir is where the result cache database lives.
	CacheDir string `mapstructure:"cache_dir"`

	// MaxQuestions caps the generated question list per analysis.
	MaxQuestions int `mapstructure:"max_questions"`

	// AnalysisTimeout bounds one full pipeline run.
	AnalysisTimeout time.Duration `mapstructure:"analysis_timeout"`

	Output Output `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default
// location) and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("cache_dir", DefaultCacheDir)
	v.SetDefault("max_questions", DefaultMaxQuestions)
	v.SetDefault("analysis_timeout", DefaultAnalysisTimeout)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// A missing config file is not an error; defaults apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.CacheDir = expandPath(cfg.CacheDir)
	return &cfg, nil
}

// DBPath returns the full path to the SQLite result cache.
func (c *Config) DBPath() string {
	return filepath.Join(c.CacheDir, DefaultDBName)
}
