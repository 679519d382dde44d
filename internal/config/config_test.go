package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load(nil)
	if cfg.MetadataURL != "http://169.254.169.254/" {
		t.Errorf("unexpected default metadata URL %q", cfg.MetadataURL)
	}
	if cfg.AdapterBackend != "iproute" {
		t.Errorf("unexpected default backend %q", cfg.AdapterBackend)
	}
	if cfg.Schedule != "@every 15m" {
		t.Errorf("unexpected default schedule %q", cfg.Schedule)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("expected no config file, got %q", cfg.ConfigFile)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NETINIT_METADATA_URL", "http://10.0.0.1/")
	t.Setenv("NETINIT_ADAPTER_BACKEND", "noop")
	t.Setenv("NETINIT_REQUEST_TIMEOUT", "30")

	cfg := Load(nil)
	if cfg.MetadataURL != "http://10.0.0.1/" {
		t.Errorf("expected the env metadata URL, got %q", cfg.MetadataURL)
	}
	if cfg.AdapterBackend != "noop" {
		t.Errorf("expected the env backend, got %q", cfg.AdapterBackend)
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("expected the env timeout, got %d", cfg.RequestTimeout)
	}
}

func TestLoad_ConfigFileOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("NETINIT_DATA_DIR", "/from-env")

	yaml := "data_dir: /from-file\nmetadata_file: /mnt/config/network_data.json\n"
	if err := os.WriteFile(filepath.Join(dir, "netinit.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg := Load(nil)
	if cfg.DataDir != "/from-file" {
		t.Errorf("expected the file value to win over env, got %q", cfg.DataDir)
	}
	if cfg.MetadataFile != "/mnt/config/network_data.json" {
		t.Errorf("expected the file metadata path, got %q", cfg.MetadataFile)
	}
	if cfg.ConfigFile == "" {
		t.Error("expected the config file to be reported as the source")
	}
}

func TestLoad_OptsHaveHighestPriority(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NETINIT_METADATA_URL", "http://10.0.0.1/")

	cfg := Load(&Config{MetadataURL: "http://192.168.0.1/", AdapterBackend: "noop"})
	if cfg.MetadataURL != "http://192.168.0.1/" {
		t.Errorf("expected the opts value to win, got %q", cfg.MetadataURL)
	}
	if cfg.AdapterBackend != "noop" {
		t.Errorf("expected the opts backend, got %q", cfg.AdapterBackend)
	}
}

func TestLoad_InvalidBackendFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Load(&Config{AdapterBackend: "netsh"})
	if cfg.AdapterBackend != "iproute" {
		t.Errorf("expected the fallback backend, got %q", cfg.AdapterBackend)
	}
}
