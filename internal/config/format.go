// Package config loads the data-format settings file. Fields are
// pointer-typed so a partial JSON file only overrides what it names.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/rapio/internal/grid"
)

// maxConfigSize bounds the settings file against accidental large reads.
const maxConfigSize = 1 << 20

// FormatConfig is the on-disk shape of the writer settings.
type FormatConfig struct {
	// Output format key when the filename suffix does not decide.
	Format *string `json:"format,omitempty"`

	// DeflateLevel tunes output compression, 0-9.
	DeflateLevel *int `json:"deflate_level,omitempty"`

	// MakeSparse toggles the pixel run-length encoding on write.
	MakeSparse *bool `json:"make_sparse,omitempty"`

	// Direct bypasses generated scratch paths and writes to exactly
	// the named file.
	Direct *bool `json:"direct,omitempty"`
}

// LoadFormatConfig reads a settings file. The file must be .json and
// under the size cap; absent optional fields stay nil.
func LoadFormatConfig(path string) (*FormatConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config: settings file must have .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config: settings file %s exceeds %d bytes", cleanPath, maxConfigSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var c FormatConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", cleanPath, err)
	}
	if c.DeflateLevel != nil && (*c.DeflateLevel < 0 || *c.DeflateLevel > 9) {
		return nil, fmt.Errorf("config: deflate_level %d out of range 0-9", *c.DeflateLevel)
	}
	return &c, nil
}

// ApplyToKeys folds the settings into a dispatcher keys map, leaving
// keys the caller already set untouched.
func (c *FormatConfig) ApplyToKeys(keys map[string]string) {
	setIfAbsent := func(k, v string) {
		if _, ok := keys[k]; !ok {
			keys[k] = v
		}
	}
	if c.Format != nil {
		setIfAbsent("format", *c.Format)
	}
	if c.DeflateLevel != nil {
		setIfAbsent(grid.KeyDeflateLevel, strconv.Itoa(*c.DeflateLevel))
	}
	if c.MakeSparse != nil {
		v := "off"
		if *c.MakeSparse {
			v = "on"
		}
		setIfAbsent(grid.KeyMakeSparse, v)
	}
	if c.Direct != nil && *c.Direct {
		setIfAbsent(grid.KeyFilePathMode, "direct")
	}
}
