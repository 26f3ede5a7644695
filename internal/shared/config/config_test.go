package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"proxyfetch/internal/shared/types"
)

func TestLoadIni_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PROXYFETCH_SOURCE", "")
	t.Setenv("PROXYFETCH_SEED", "")

	cfg, err := LoadIni(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("LoadIni() error = %v", err)
	}
	if cfg.SourceConf.Name != types.SourceFreeProxyList {
		t.Errorf("Name = %q, want %q", cfg.SourceConf.Name, types.SourceFreeProxyList)
	}
	if cfg.Timeout != types.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, types.DefaultTimeout)
	}
}

func TestLoadIni_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxyfetch.ini")
	content := `
[source]
name = free-proxy-list
timeout = 3s

[fetch]
seed = 7
upstream_limit = 5

[log]
level = debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROXYFETCH_SOURCE", "pubproxy")
	t.Setenv("PROXYFETCH_SEED", "42")

	cfg, err := LoadIni(path)
	if err != nil {
		t.Fatalf("LoadIni() error = %v", err)
	}
	if cfg.SourceConf.Name != types.SourcePubProxy {
		t.Errorf("Name = %q, want env override %q", cfg.SourceConf.Name, types.SourcePubProxy)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Timeout != 3*time.Second || cfg.UpstreamLimit != 5 || cfg.Level != "debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.UserAgent != types.DefaultUserAgent {
		t.Errorf("UserAgent default lost: %q", cfg.UserAgent)
	}
}

func TestLoadIniBytes(t *testing.T) {
	t.Setenv("PROXYFETCH_SOURCE", "")
	t.Setenv("PROXYFETCH_SEED", "5")

	cfg, err := LoadIniBytes([]byte("[source]\nname = pubproxy\ntimeout = 400ms\n"))
	if err != nil {
		t.Fatalf("LoadIniBytes() error = %v", err)
	}
	if cfg.SourceConf.Name != types.SourcePubProxy {
		t.Errorf("Name = %q, want %q", cfg.SourceConf.Name, types.SourcePubProxy)
	}
	if cfg.LastCheckMinutes != 60 {
		t.Errorf("LastCheckMinutes default lost: %d", cfg.LastCheckMinutes)
	}
	if cfg.Timeout != 400*time.Millisecond {
		t.Errorf("Timeout = %v, want 400ms", cfg.Timeout)
	}
	if cfg.Seed != 5 {
		t.Errorf("Seed = %d, want env override 5", cfg.Seed)
	}
}
