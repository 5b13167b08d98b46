package hxview

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
module: shop
web_root: /shop
debug: true
extensions: [html, md]
roots:
  - name: app
    dir: ./app
session:
  key: secret
  max_age: 24h
  encrypt: true
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Module != "shop" || cfg.WebRoot != "/shop" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[1] != "md" {
		t.Errorf("Extensions = %v", cfg.Extensions)
	}
	if len(cfg.Roots) != 1 || cfg.Roots[0].Name != "app" || cfg.Roots[0].Dir != "./app" {
		t.Errorf("Roots = %+v", cfg.Roots)
	}
	if cfg.Session.MaxAge != 24*time.Hour || !cfg.Session.Encrypt {
		t.Errorf("Session = %+v", cfg.Session)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want default :8080", cfg.Addr)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		contain string
	}{
		{"no roots", `module: x`, "at least one root"},
		{"root without name", "roots:\n  - dir: ./a", "name is required"},
		{"root without dir", "roots:\n  - name: a", "dir is required"},
		{"bad yaml", "roots: [", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.contain) {
				t.Errorf("ParseConfig() error = %v, want it to contain %q", err, tt.contain)
			}
		})
	}
}

func TestLoadConfigEngine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site", "app", "views", "home.html"), `<h1>{{ webRoot }}</h1>`)
	writeFile(t, filepath.Join(dir, "site", "app", "layouts", "main.html"), `<main>{{ insertContent }}</main>`)
	writeFile(t, filepath.Join(dir, "site", "hxview.yaml"), `
module: site
web_root: /site
roots:
  - name: app
    dir: app
`)

	cfg, err := LoadConfig(filepath.Join(dir, "site", "hxview.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	e, err := cfg.Engine()
	if err != nil {
		t.Fatal(err)
	}

	got, err := e.NewView(nil).SetSource("home").SetLayout("main").Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != "<main><h1>/site</h1></main>" {
		t.Errorf("Render() = %q", got)
	}

	// The built-in root is appended unless disabled.
	loc, err := cfg.Locator()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(loc.Roots()); n != 2 {
		t.Errorf("len(Roots()) = %d, want 2", n)
	}
	cfg.NoBuiltin = true
	if loc, err = cfg.Locator(); err != nil {
		t.Fatal(err)
	}
	if n := len(loc.Roots()); n != 1 {
		t.Errorf("len(Roots()) with no_builtin = %d, want 1", n)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig(missing) error = nil")
	}
}

func TestConfigSessionStore(t *testing.T) {
	cfg := &Config{}
	store, err := cfg.SessionStore()
	if err != nil || store != nil {
		t.Errorf("SessionStore() without key = %v, %v, want nil, nil", store, err)
	}

	cfg.Session.Key = "0123456789abcdef0123456789abcdef"
	if store, err = cfg.SessionStore(); err != nil || store == nil {
		t.Errorf("SessionStore() = %v, %v", store, err)
	}

	t.Setenv("HXVIEW_TEST_KEY", "")
	cfg.Session.KeyEnv = "HXVIEW_TEST_KEY"
	if _, err := cfg.SessionStore(); err == nil {
		t.Error("SessionStore() with empty key variable error = nil")
	}

	t.Setenv("HXVIEW_TEST_KEY", "from-env")
	if store, err = cfg.SessionStore(); err != nil || store == nil {
		t.Errorf("SessionStore() from env = %v, %v", store, err)
	}
}
