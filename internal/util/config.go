package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLocale      = "en-US"
	ConfigFileName     = "config.toml"
)

type Configuration struct {
	Version      string
	BuildDate    string
	Commit       string
	RootPath     string
	TailsHome    string
	MaxCallDepth int
	HTTPTimeout  time.Duration
	Locale       string
	LogLevel     string
	LogFile      string
	DebugAST     bool
}

// FileConfig mirrors the keys accepted in config.toml. Empty or zero values
// leave the current setting alone.
type FileConfig struct {
	RootPath     string `toml:"root_path"`
	MaxCallDepth int    `toml:"max_call_depth"`
	HTTPTimeout  string `toml:"http_timeout"`
	Locale       string `toml:"locale"`
	LogLevel     string `toml:"log_level"`
	LogFile      string `toml:"log_file"`
	DebugAST     bool   `toml:"debug_ast"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		RootPath:     ".",
		MaxCallDepth: 1000,
		HTTPTimeout:  DefaultHTTPTimeout,
		Locale:       DefaultLocale,
		LogLevel:     "NONE",
	}
}

// ConfigPath picks the config file to load: an explicit path wins, then
// $TAILS_HOME/config.toml when it exists. An empty result means no file.
func ConfigPath(explicit, tailsHome string) string {
	if explicit != "" {
		return explicit
	}
	if tailsHome == "" {
		return ""
	}
	candidate := filepath.Join(tailsHome, ConfigFileName)
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// LoadConfigFile decodes a TOML file and overlays its values onto cfg.
func LoadConfigFile(path string, cfg *Configuration) error {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Configuration) error {
	if fc.RootPath != "" {
		cfg.RootPath = fc.RootPath
	}
	if fc.MaxCallDepth > 0 {
		cfg.MaxCallDepth = fc.MaxCallDepth
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("http_timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if fc.Locale != "" {
		cfg.Locale = fc.Locale
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.DebugAST {
		cfg.DebugAST = true
	}
	return nil
}
