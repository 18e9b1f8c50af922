package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrConfigMissing indicates the configuration file does not exist.
// This is a hard stop: no request may be processed without a project
// table.
var ErrConfigMissing = errors.New("configuration file missing")

// settingsGroup is the reserved top-level group holding process-wide
// settings. It is excluded from the project namespace, so a project
// literally named "_" can never match.
const settingsGroup = "_"

// TargetTable maps target names (a branch name, or "branch/task") to
// build command strings. Keys are unique within a project.
type TargetTable map[string]string

// ProjectTable maps project identifiers ("org/repo") to their
// configured targets.
type ProjectTable map[string]TargetTable

// Settings contains process-wide configuration values
type Settings struct {
	SpoolDir      string
	Notifications string // default notification mode
	Mode          string // "normal" or "dry-run"
	MailTo        string // optional mail recipient
	LogLevel      string // debug, info, warn, error
	LogFormat     string // json or text
	Listen        string // standalone listener address
}

// Config is the full gateway configuration, loaded once per invocation
// and immutable thereafter.
type Config struct {
	Settings Settings
	Projects ProjectTable
}

// Load reads and parses the configuration file. The document is a
// mapping from group name to key/value pairs: the reserved "_" group
// carries settings, every other group is a project whose keys are
// target names and whose values are build commands.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	var raw map[string]map[string]string
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{Projects: make(ProjectTable)}
	for name, group := range raw {
		if name == settingsGroup {
			cfg.Settings = settingsFrom(group)
			continue
		}
		targets := make(TargetTable, len(group))
		for target, command := range group {
			targets[target] = command
		}
		cfg.Projects[name] = targets
	}

	applyDefaults(&cfg.Settings)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Targets returns the target table for a project. Lookups fail closed:
// a project absent from the table has no valid targets, and the
// reserved settings group never matches.
func (c *Config) Targets(project string) (TargetTable, bool) {
	if project == settingsGroup {
		return nil, false
	}
	targets, ok := c.Projects[project]
	return targets, ok
}

// settingsFrom reads the reserved settings group
func settingsFrom(group map[string]string) Settings {
	return Settings{
		SpoolDir:      group["spool_dir"],
		Notifications: group["notifications"],
		Mode:          group["mode"],
		MailTo:        group["mailto"],
		LogLevel:      group["log_level"],
		LogFormat:     group["log_format"],
		Listen:        group["listen"],
	}
}

// applyDefaults fills unset settings
func applyDefaults(s *Settings) {
	if s.SpoolDir == "" {
		s.SpoolDir = "/var/spool/hookspool"
	}
	if s.Notifications == "" {
		s.Notifications = "all"
	}
	if s.Mode == "" {
		s.Mode = "normal"
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "json"
	}
	if s.Listen == "" {
		s.Listen = ":8482"
	}
}

// validate reports every structural problem in the project table at
// once rather than stopping at the first.
func (c *Config) validate() error {
	var errs error
	for project, targets := range c.Projects {
		if project == "" {
			errs = multierr.Append(errs, errors.New("empty project name"))
			continue
		}
		if len(targets) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("project %s has no targets", project))
		}
		for target, command := range targets {
			if target == "" {
				errs = multierr.Append(errs, fmt.Errorf("project %s has an empty target name", project))
			}
			if command == "" {
				errs = multierr.Append(errs, fmt.Errorf("project %s target %s has an empty build command", project, target))
			}
		}
	}
	return errs
}
