package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/rapio/internal/grid"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "format.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFormatConfig(t *testing.T) {
	path := writeConfig(t, `{"deflate_level": 4, "make_sparse": true, "format": "netcdf"}`)
	c, err := LoadFormatConfig(path)
	if err != nil {
		t.Fatalf("LoadFormatConfig: %v", err)
	}
	if c.DeflateLevel == nil || *c.DeflateLevel != 4 {
		t.Errorf("DeflateLevel = %v", c.DeflateLevel)
	}
	if c.MakeSparse == nil || !*c.MakeSparse {
		t.Errorf("MakeSparse = %v", c.MakeSparse)
	}
	if c.Direct != nil {
		t.Errorf("Direct should stay nil when omitted")
	}
}

func TestLoadFormatConfigErrors(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		if _, err := LoadFormatConfig("settings.yaml"); err == nil {
			t.Error("expected extension error")
		}
	})
	t.Run("bad json", func(t *testing.T) {
		path := writeConfig(t, `{deflate`)
		if _, err := LoadFormatConfig(path); err == nil {
			t.Error("expected parse error")
		}
	})
	t.Run("deflate out of range", func(t *testing.T) {
		path := writeConfig(t, `{"deflate_level": 12}`)
		if _, err := LoadFormatConfig(path); err == nil {
			t.Error("expected range error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFormatConfig("nope/format.json"); err == nil {
			t.Error("expected stat error")
		}
	})
}

func TestApplyToKeys(t *testing.T) {
	lvl := 3
	sparse := false
	direct := true
	c := &FormatConfig{DeflateLevel: &lvl, MakeSparse: &sparse, Direct: &direct}

	keys := map[string]string{grid.KeyDeflateLevel: "9"}
	c.ApplyToKeys(keys)

	// Caller-set keys win.
	if keys[grid.KeyDeflateLevel] != "9" {
		t.Errorf("deflate = %q, want caller's 9", keys[grid.KeyDeflateLevel])
	}
	if keys[grid.KeyMakeSparse] != "off" {
		t.Errorf("MakeSparse = %q, want off", keys[grid.KeyMakeSparse])
	}
	if keys[grid.KeyFilePathMode] != "direct" {
		t.Errorf("filepathmode = %q, want direct", keys[grid.KeyFilePathMode])
	}
}
