// Package config loads the YAML host configuration of the fsl command.
//
// A configuration file looks like:
//
//	root: work
//	env:
//	  USER: alice
//	paths:
//	  OUT: work/out
//	permissions:
//	  allow_write: [work/out]
//	  disallow_read: [work/secret]
//	journal: journal.db
//
// Relative paths are resolved against the directory containing the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
	"src.fsl.sh/pkg/eval"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/fsop"
	"src.fsl.sh/pkg/parse"
)

// Config is the host configuration.
type Config struct {
	// Root directory of the sandbox. Defaults to the directory of the
	// configuration file.
	Root string `yaml:"root"`
	// Environment bindings with string values.
	Env map[string]string `yaml:"env"`
	// Environment bindings with path values.
	Paths map[string]string `yaml:"paths"`
	// Permission sets of the sandbox.
	Permissions Permissions `yaml:"permissions"`
	// Path of the run journal. Empty disables it.
	Journal string `yaml:"journal"`
	// Directory for backups of deleted files.
	TempDir string `yaml:"temp_dir"`
	// Maximum nesting of function calls.
	MaxCallDepth int `yaml:"max_call_depth"`

	// Absolute path of the directory of the loaded file.
	BaseDir string `yaml:"-"`
}

// Permissions mirrors fsop.Permissions with YAML keys.
type Permissions struct {
	AllowRead     []string `yaml:"allow_read"`
	DisallowRead  []string `yaml:"disallow_read"`
	AllowWrite    []string `yaml:"allow_write"`
	DisallowWrite []string `yaml:"disallow_write"`
}

// Default returns the configuration used when no file is given: the root is
// the working directory and everything is allowed.
func Default() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Config{Root: wd, BaseDir: wd}, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Dir(absPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses configuration data, resolving relative paths against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(baseDir, *p)
		}
	}
	if cfg.Root == "" {
		cfg.Root = baseDir
	}
	resolve(&cfg.Root)
	resolve(&cfg.Journal)
	resolve(&cfg.TempDir)
	for name, p := range cfg.Paths {
		resolve(&p)
		cfg.Paths[name] = p
	}
	for _, ps := range []*[]string{
		&cfg.Permissions.AllowRead, &cfg.Permissions.DisallowRead,
		&cfg.Permissions.AllowWrite, &cfg.Permissions.DisallowWrite} {
		for i := range *ps {
			resolve(&(*ps)[i])
		}
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	for _, names := range []map[string]string{cfg.Env, cfg.Paths} {
		for name := range names {
			if !parse.IsIdentifier(name) {
				return fmt.Errorf("bad environment name %q", name)
			}
		}
	}
	for name := range cfg.Paths {
		if _, ok := cfg.Env[name]; ok {
			return fmt.Errorf("%s is bound in both env and paths", name)
		}
	}
	if cfg.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative, got %d", cfg.MaxCallDepth)
	}
	return nil
}

// Sandbox creates the sandbox described by the configuration.
func (cfg *Config) Sandbox() (*fsop.Sandbox, error) {
	p := cfg.Permissions
	sb, err := fsop.NewSandbox(cfg.Root, fsop.Permissions{
		AllowRead: p.AllowRead, DisallowRead: p.DisallowRead,
		AllowWrite: p.AllowWrite, DisallowWrite: p.DisallowWrite,
	})
	if err != nil {
		return nil, err
	}
	sb.TempDir = cfg.TempDir
	return sb, nil
}

// NewEvaler creates an Evaler in the sandbox of the configuration, with the
// environment bindings added.
func (cfg *Config) NewEvaler() (*eval.Evaler, error) {
	sb, err := cfg.Sandbox()
	if err != nil {
		return nil, err
	}
	ev := eval.NewEvaler(sb)
	ev.MaxCallDepth = cfg.MaxCallDepth
	for _, name := range sortedKeys(cfg.Env) {
		ev.AddEnv(name, cfg.Env[name])
	}
	for _, name := range sortedKeys(cfg.Paths) {
		ev.AddEnv(name, vals.Path(cfg.Paths[name]))
	}
	return ev, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
