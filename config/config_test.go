package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zha.yaml")
	yamlContent := "database_path: /var/lib/zha/custom.db\nnetwork:\n  channel: 25\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DatabasePath != "/var/lib/zha/custom.db" {
		t.Errorf("got %q", cfg.DatabasePath)
	}
	if cfg.Network.Channel != 25 {
		t.Errorf("got %d", cfg.Network.Channel)
	}
	// Fields absent from the file fall back to defaults().
	if cfg.Device.BaudRate != 115200 {
		t.Errorf("got %d", cfg.Device.BaudRate)
	}
	if !cfg.Startup.AutoForm {
		t.Error("expected AutoForm default true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
