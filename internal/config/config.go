// Package config loads the directive grammar configuration of the
// checkin-directives CLI.
//
// The configuration is optional. When no file is present the built-in
// grammar from the directive package is used. A file may override any
// subset of the fields; empty fields inherit the defaults.
//
// Supported formats, selected by file extension:
//   - YAML (.yaml, .yml) via gopkg.in/yaml.v3
//   - JSON with comments (.json, .jsonc) via github.com/tidwall/jsonc
//   - TOML (.toml) via github.com/BurntSushi/toml
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/checkin-directives/internal/directive"
	"github.com/mmr-tortoise/checkin-directives/internal/model"
)

// FileBaseName is the base name of the configuration file, looked up in the
// repository root with each supported extension.
const FileBaseName = ".checkin-directives"

// searchExtensions lists the extensions tried by Find, in priority order.
var searchExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// Config is the on-disk configuration.
type Config struct {
	// WorkItem configures the work item directive.
	WorkItem WorkItemConfig `yaml:"workItem" json:"workItem" toml:"work_item"`

	// Force configures the force directive.
	Force ForceConfig `yaml:"force" json:"force" toml:"force"`
}

// WorkItemConfig describes how work item directives are recognized.
type WorkItemConfig struct {
	// Pattern is a Go regular expression with item_id and action groups.
	Pattern string `yaml:"pattern" json:"pattern" toml:"pattern" validate:"required,regexp"`

	// AssociateKeyword is the action keyword that associates a work item.
	AssociateKeyword string `yaml:"associateKeyword" json:"associateKeyword" toml:"associate_keyword" validate:"required"`

	// ResolveKeyword is the action keyword that resolves a work item.
	ResolveKeyword string `yaml:"resolveKeyword" json:"resolveKeyword" toml:"resolve_keyword" validate:"required,nefield=AssociateKeyword"`
}

// ForceConfig describes how the force directive is recognized.
type ForceConfig struct {
	// Pattern is a Go regular expression with a reason group.
	Pattern string `yaml:"pattern" json:"pattern" toml:"pattern" validate:"required,regexp"`
}

// Default returns the configuration matching the built-in grammar.
func Default() *Config {
	spec := directive.DefaultGrammarSpec()
	return &Config{
		WorkItem: WorkItemConfig{
			Pattern:          spec.WorkItemPattern,
			AssociateKeyword: spec.AssociateKeyword,
			ResolveKeyword:   spec.ResolveKeyword,
		},
		Force: ForceConfig{
			Pattern: spec.ForcePattern,
		},
	}
}

// GrammarSpec converts the configuration to an uncompiled grammar.
func (c *Config) GrammarSpec() directive.GrammarSpec {
	return directive.GrammarSpec{
		WorkItemPattern:  c.WorkItem.Pattern,
		ForcePattern:     c.Force.Pattern,
		AssociateKeyword: c.WorkItem.AssociateKeyword,
		ResolveKeyword:   c.WorkItem.ResolveKeyword,
	}
}

// Grammar compiles the configuration into a directive grammar.
func (c *Config) Grammar() (*directive.Grammar, error) {
	g, err := directive.CompileGrammar(c.GrammarSpec())
	if err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig, "invalid directive grammar", err)
	}
	return g, nil
}

// applyDefaults fills every empty field from Default.
func (c *Config) applyDefaults() {
	def := Default()
	if c.WorkItem.Pattern == "" {
		c.WorkItem.Pattern = def.WorkItem.Pattern
	}
	if c.WorkItem.AssociateKeyword == "" {
		c.WorkItem.AssociateKeyword = def.WorkItem.AssociateKeyword
	}
	if c.WorkItem.ResolveKeyword == "" {
		c.WorkItem.ResolveKeyword = def.WorkItem.ResolveKeyword
	}
	if c.Force.Pattern == "" {
		c.Force.Pattern = def.Force.Pattern
	}
}

// Load reads the configuration file at path, fills in defaults, and
// validates the result.
//
// Returns a CLIError with ExitConfigNotFound if the file does not exist and
// ExitInvalidConfig if it cannot be parsed or fails validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user or Find
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigNotFound,
				fmt.Sprintf("configuration file not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return nil, model.WrapCLIError(
			model.ExitInvalidConfig,
			fmt.Sprintf("failed to parse configuration file %s", path),
			err,
		)
	}
	cfg.applyDefaults()

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, model.WrapCLIError(
			model.ExitInvalidConfig,
			fmt.Sprintf("invalid configuration file %s", path),
			joinValidationErrors(errs),
		)
	}

	return &cfg, nil
}

// decode parses data according to the extension of path.
func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		// Comments and trailing commas are stripped before decoding.
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("unsupported configuration format %q (valid: .yaml, .yml, .json, .jsonc, .toml)", ext)
	}
}

// Find looks for a configuration file in dir. It returns the path of the
// first candidate that exists, or an empty string if there is none.
func Find(dir string) string {
	for _, ext := range searchExtensions {
		path := filepath.Join(dir, FileBaseName+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Resolve returns the effective configuration and the path it came from.
//
// An explicit path must exist. Without one, dir is searched with Find; if
// nothing is found the defaults are returned with an empty path.
func Resolve(explicitPath, dir string) (*Config, string, error) {
	path := explicitPath
	if path == "" && dir != "" {
		path = Find(dir)
	}
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Marshal serializes the configuration as YAML or, when asJSON is set,
// as indented JSON.
func Marshal(cfg *Config, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize configuration: %w", err)
		}
		return append(data, '\n'), nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize configuration: %w", err)
	}
	return data, nil
}
