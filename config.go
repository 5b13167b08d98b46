package hxview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm/hxview/lib/locator"
	"github.com/pthm/hxview/lib/session"
)

// Config describes an application in YAML:
//
//	module: shop
//	web_root: /shop
//	debug: true
//	error_layout: main
//	roots:
//	  - name: app
//	    dir: ./app
//	  - name: shared
//	    dir: ./vendor/shared
//	session:
//	  key_env: SHOP_SESSION_KEY
//	  max_age: 24h
//
// Relative root directories are resolved against the directory of the
// configuration file.
type Config struct {
	Module      string        `yaml:"module"`
	WebRoot     string        `yaml:"web_root"`
	Debug       bool          `yaml:"debug"`
	Extensions  []string      `yaml:"extensions"`
	ErrorLayout string        `yaml:"error_layout"`
	Roots       []RootConfig  `yaml:"roots"`
	NoBuiltin   bool          `yaml:"no_builtin"`
	Session     SessionConfig `yaml:"session"`
	Addr        string        `yaml:"addr"`

	baseDir string
}

// RootConfig is one search root on disk.
type RootConfig struct {
	Name string `yaml:"name"`
	Dir  string `yaml:"dir"`
}

// SessionConfig configures the session cookie. Without a key, no session
// store is created.
type SessionConfig struct {
	Key     string        `yaml:"key"`
	KeyEnv  string        `yaml:"key_env"`
	Cookie  string        `yaml:"cookie"`
	Path    string        `yaml:"path"`
	MaxAge  time.Duration `yaml:"max_age"`
	Secure  bool          `yaml:"secure"`
	Encrypt bool          `yaml:"encrypt"`
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("hxview: reading config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("hxview: %s: %w", file, err)
	}
	cfg.baseDir = filepath.Dir(file)
	return cfg, nil
}

// ParseConfig decodes and validates YAML configuration. Relative
// directories are taken as relative to the working directory.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Roots) == 0 {
		return nil, errors.New("at least one root is required")
	}
	for i, r := range cfg.Roots {
		if r.Name == "" {
			return nil, fmt.Errorf("roots[%d]: name is required", i)
		}
		if r.Dir == "" {
			return nil, fmt.Errorf("roots[%d]: dir is required", i)
		}
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return &cfg, nil
}

func (c *Config) dir(d string) string {
	if filepath.IsAbs(d) || c.baseDir == "" {
		return d
	}
	return filepath.Join(c.baseDir, d)
}

// Locator builds the locator: configured roots in order, then the
// built-in root unless no_builtin is set.
func (c *Config) Locator() (*locator.Locator, error) {
	roots := make([]locator.Root, 0, len(c.Roots)+1)
	for _, r := range c.Roots {
		roots = append(roots, locator.DirRoot(r.Name, c.dir(r.Dir)))
	}
	if !c.NoBuiltin {
		roots = append(roots, BuiltinRoot())
	}
	return locator.New(roots...)
}

// Options returns the engine options the configuration sets.
func (c *Config) Options() []Option {
	opts := []Option{
		WithModule(c.Module),
		WithWebRoot(c.WebRoot),
		WithDebug(c.Debug),
		WithErrorLayout(c.ErrorLayout),
	}
	if len(c.Extensions) > 0 {
		opts = append(opts, WithExtensions(c.Extensions...))
	}
	return opts
}

// Engine builds an engine over Locator. opts are applied after the
// configured settings.
func (c *Config) Engine(opts ...Option) (*Engine, error) {
	loc, err := c.Locator()
	if err != nil {
		return nil, err
	}
	return NewEngine(loc, append(c.Options(), opts...)...), nil
}

// SessionStore builds the cookie store, or returns nil when no key is
// configured.
func (c *Config) SessionStore(opts ...session.Option) (*session.Store, error) {
	key := c.Session.Key
	if c.Session.KeyEnv != "" {
		key = os.Getenv(c.Session.KeyEnv)
		if key == "" {
			return nil, fmt.Errorf("hxview: session key variable %s is empty", c.Session.KeyEnv)
		}
	}
	if key == "" {
		return nil, nil
	}

	base := []session.Option{
		session.WithSecure(c.Session.Secure),
		session.WithEncryption(c.Session.Encrypt),
	}
	if c.Session.Cookie != "" {
		base = append(base, session.WithCookieName(c.Session.Cookie))
	}
	if c.Session.Path != "" {
		base = append(base, session.WithPath(c.Session.Path))
	}
	if c.Session.MaxAge > 0 {
		base = append(base, session.WithMaxAge(c.Session.MaxAge))
	}
	return session.NewStore([]byte(key), append(base, opts...)...)
}
