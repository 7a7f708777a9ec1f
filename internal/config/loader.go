package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/devops-chapter/skills-analysis/pkg/logger"
)

const (
	// DefaultFile is read from the working directory when SKILLS_CONFIG is unset.
	DefaultFile = "config.json"

	envPrefix  = "SKILLS_"
	envFileVar = envPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, the config file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file: SKILLS_CONFIG, or config.json in the working directory
//  3. env (prefix SKILLS_, "__" separates nesting levels)
//
// The result is validated before it is returned.
func Load(ctx context.Context) (*Config, error) {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = DefaultFile
	}
	return LoadFile(ctx, path)
}

// LoadFile is Load with an explicit config file path.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError("", err)
	}

	k := koanf.New(".")

	parser, err := parserFor(path)
	if err != nil {
		return nil, loadError("config", err)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, loadError("config", fmt.Errorf("%s: %w", path, err))
	}

	// Environment variables: SKILLS_LOG_LEVEL -> log_level,
	// SKILLS_INPUT__TEAM_NAME -> input.team_name.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		if s == envFileVar {
			return ""
		}
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadError("env", err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadError("config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file type %q", filepath.Ext(path))
	}
}

// Validate checks every field and normalizes the processes list. It returns
// the first problem found as *Error.
func (c *Config) Validate() error {
	required := []struct{ field, value string }{
		{"input.csv_file", c.Input.CSVFile},
		{"input.mapping_file", c.Input.MappingFile},
		{"input.team_name", c.Input.TeamName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return Invalid(r.field, "must not be empty")
		}
	}
	c.Input.TeamName = strings.TrimSpace(c.Input.TeamName)

	if err := c.normalizeProcesses(); err != nil {
		return err
	}

	for _, f := range []struct{ field, path string }{
		{"input.csv_file", c.Input.CSVFile},
		{"input.mapping_file", c.Input.MappingFile},
	} {
		info, err := os.Stat(f.path)
		if err != nil {
			return InvalidWrap(f.field, err)
		}
		if info.IsDir() {
			return Invalid(f.field, "%s is a directory", f.path)
		}
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format != FormatCSV && c.Output.Format != FormatTXT {
		return Invalid("output.format", "unknown format %q (want %s or %s)", c.Output.Format, FormatCSV, FormatTXT)
	}

	c.Matching.Policy = strings.ToLower(strings.TrimSpace(c.Matching.Policy))
	switch c.Matching.Policy {
	case PolicyExact, PolicySubstring, PolicyFuzzy:
	default:
		return Invalid("matching.policy", "unknown policy %q", c.Matching.Policy)
	}
	if c.Matching.MinScore < 0 {
		return Invalid("matching.min_score", "must not be negative")
	}

	if c.MadLibs.TopSkills < 0 {
		return Invalid("mad_libs.top_skills", "must not be negative")
	}

	if err := c.Columns.validate(); err != nil {
		return err
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return InvalidWrap("log_level", err)
	}
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != logger.FormatText && c.LogFormat != logger.FormatJSON {
		return Invalid("log_format", "unknown format %q", c.LogFormat)
	}
	return nil
}

func (c *Config) normalizeProcesses() error {
	seen := make(map[string]bool, len(c.Processes))
	out := make([]string, 0, len(c.Processes))
	for _, p := range c.Processes {
		p = strings.TrimSpace(p)
		switch p {
		case ProcessMadLibs, ProcessCurrentSkills, ProcessFutureSkills:
		default:
			return Invalid("processes", "unknown process %q", p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	c.Processes = out
	return nil
}

func (cols *Columns) validate() error {
	for _, r := range []struct{ field, value string }{
		{"columns.name", cols.Name},
		{"columns.classification", cols.Classification},
		{"columns.team", cols.Team},
		{"columns.separators", cols.Separators},
	} {
		if r.value == "" {
			return Invalid(r.field, "must not be empty")
		}
	}

	patterns := []struct {
		field    string
		value    string
		groups   int
		optional bool
	}{
		{"columns.current_level", cols.CurrentLevel, 2, false},
		{"columns.team_need", cols.TeamNeed, 2, false},
		{"columns.current_text", cols.CurrentText, 0, true},
		{"columns.future_use", cols.FutureUse, 1, false},
		{"columns.future_learn", cols.FutureLearn, 1, false},
	}
	for _, p := range patterns {
		if p.value == "" {
			if p.optional {
				continue
			}
			return Invalid(p.field, "must not be empty")
		}
		re, err := regexp.Compile(p.value)
		if err != nil {
			return InvalidWrap(p.field, err)
		}
		if re.NumSubexp() < p.groups {
			return InvalidWrap(p.field, fmt.Errorf("%w: need %d capture groups, have %d",
				errTooFewGroups, p.groups, re.NumSubexp()))
		}
	}
	return nil
}

var errTooFewGroups = errors.New("too few capture groups")
