package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings. Nil fields are unset.
type PracticeConfig struct {
	Module        *string  `toml:"module"`
	Lesson        *string  `toml:"lesson"`
	Layout        *string  `toml:"layout"`
	SegmentLength *int     `toml:"segment-length"`
	Lang          *string  `toml:"lang"`
	Words         *int     `toml:"words"`
	CapsPct       *float64 `toml:"caps"`
	PunctPct      *float64 `toml:"punct"`
	PunctSet      *string  `toml:"punct-set"`
	FocusWeak     *bool    `toml:"focus-weak"`
	WeakTop       *int     `toml:"weak-top"`
	WeakFactor    *float64 `toml:"weak-factor"`
	WeakWindow    *int     `toml:"weak-window"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an
// error. Unknown keys are rejected so typos surface early.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}
