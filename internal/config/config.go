package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is looked up next to the executable when no catalog is given.
	DefaultFileName = "workloads.yaml"

	DefaultSuite          = "Balanced"
	DefaultTimeoutSeconds = 600
	DefaultLogDir         = "logs"

	// Built-in suites that cannot be redefined by a catalog.
	FullSuite   = "Full"
	CustomSuite = "Custom"
)

// Config is the catalog: workloads, preset suites and run options.
type Config struct {
	Debug            bool       `yaml:"debug" toml:"debug"`
	AutoStartSeconds int        `yaml:"auto_start_seconds" toml:"auto_start_seconds"`
	DefaultSuite     string     `yaml:"default_suite" toml:"default_suite"`
	TimeoutSeconds   int        `yaml:"timeout_seconds" toml:"timeout_seconds"`
	LogDir           string     `yaml:"log_dir" toml:"log_dir"`
	Report           string     `yaml:"report" toml:"report"`
	Suites           []Suite    `yaml:"suites" toml:"suites"`
	Workloads        []Workload `yaml:"workloads" toml:"workloads"`

	// path is the file the config was read from; relative paths resolve
	// against its directory.
	path string
}

// Suite is a named preset list of workload names.
type Suite struct {
	Name      string   `yaml:"name" toml:"name"`
	Workloads []string `yaml:"workloads" toml:"workloads"`
}

// Workload is one catalog entry as written in the file.
type Workload struct {
	Name             string `yaml:"name" toml:"name"`
	EstimatedSeconds int    `yaml:"estimated_seconds" toml:"estimated_seconds"`
	Installer        string `yaml:"installer" toml:"installer"`
	InstalledMarker  string `yaml:"installed_marker" toml:"installed_marker"`
	Tooltip          string `yaml:"tooltip,omitempty" toml:"tooltip"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DefaultSuite:   DefaultSuite,
		TimeoutSeconds: DefaultTimeoutSeconds,
		LogDir:         DefaultLogDir,
	}
}

// Load reads a catalog file. The format is chosen by extension: .toml is
// decoded as TOML, everything else as YAML.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read catalog: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(contents), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode catalog %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode catalog %s: %w", path, err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cfg.path = abs
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values that have a non-zero default.
func (c *Config) ApplyDefaults() {
	if strings.TrimSpace(c.DefaultSuite) == "" {
		c.DefaultSuite = DefaultSuite
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Path returns the file the config was loaded from, if any.
func (c Config) Path() string {
	return c.path
}

// BaseDir is the directory relative workload paths resolve against.
func (c Config) BaseDir() string {
	if c.path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return filepath.Dir(c.path)
}

// Resolve turns a catalog-relative path into an absolute one.
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BaseDir(), filepath.FromSlash(path))
}

// LogPath returns the resolved log directory, or "" when logging to file is off.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return ""
	}
	return c.Resolve(c.LogDir)
}

// SuiteNames lists the preset suites in catalog order.
func (c Config) SuiteNames() []string {
	names := make([]string, 0, len(c.Suites))
	for _, s := range c.Suites {
		names = append(names, s.Name)
	}
	return names
}

// SuiteMembers maps each preset suite to its member workload names.
func (c Config) SuiteMembers() map[string][]string {
	members := make(map[string][]string, len(c.Suites))
	for _, s := range c.Suites {
		members[s.Name] = append([]string(nil), s.Workloads...)
	}
	return members
}

// Validate checks the catalog for errors that make it unusable.
func (c Config) Validate() error {
	var errs []error

	seen := make(map[string]bool)
	for i, s := range c.Suites {
		name := strings.TrimSpace(s.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("suites[%d]: name is required", i))
			continue
		case strings.EqualFold(name, FullSuite), strings.EqualFold(name, CustomSuite):
			errs = append(errs, fmt.Errorf("suite %q is built in and cannot be redefined", name))
		case seen[name]:
			errs = append(errs, fmt.Errorf("suite %q is defined more than once", name))
		}
		seen[name] = true
	}

	if c.DefaultSuite != FullSuite && !seen[c.DefaultSuite] {
		errs = append(errs, fmt.Errorf("default_suite %q is not a defined suite", c.DefaultSuite))
	}
	if c.AutoStartSeconds < 0 {
		errs = append(errs, errors.New("auto_start_seconds must not be negative"))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeout_seconds must not be negative"))
	}

	return errors.Join(errs...)
}

// Warnings reports suite members that name no catalog workload.
func (c Config) Warnings() []string {
	known := make(map[string]bool, len(c.Workloads))
	for _, w := range c.Workloads {
		known[w.Name] = true
	}

	var warnings []string
	for _, s := range c.Suites {
		for _, member := range s.Workloads {
			if !known[member] {
				warnings = append(warnings, fmt.Sprintf("suite %q lists unknown workload %q", s.Name, member))
			}
		}
	}
	return warnings
}
