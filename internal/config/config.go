package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"nrtrewriter/internal/crawler"

	"github.com/joho/godotenv"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "nrtrewriter.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

type Config struct {
	Workers            int      `yaml:"workers" json:"workers"`
	DryRun             bool     `yaml:"dry_run" json:"dry_run"`
	Properties         bool     `yaml:"properties" json:"properties"`
	NullableAttributes []string `yaml:"nullable_attributes" json:"nullable_attributes,omitempty"`
	Ignore             []string `yaml:"ignore" json:"ignore,omitempty"`
	LogLevel           string   `yaml:"log_level" json:"log_level"`
	// AuditDB is the SQLite file runs are recorded in; empty disables the
	// audit trail.
	AuditDB string `yaml:"audit_db" json:"audit_db,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers:            runtime.NumCPU(),
		Properties:         true,
		NullableAttributes: []string{"CanBeNull"},
		Ignore:             slices.Clone(crawler.DefaultIgnored),
		LogLevel:           "info",
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies
// NRT_* environment overrides. A missing file is not an error; an invalid
// one is.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := decode(file, cfg); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(file []byte, cfg *Config) error {
	var doc map[string]any
	if err := yaml.Unmarshal(file, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if err := validate(doc); err != nil {
		return err
	}
	return yaml.Unmarshal(file, cfg)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("NRT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NRT_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("NRT_DRY_RUN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NRT_DRY_RUN: %w", err)
		}
		cfg.DryRun = b
	}
	if v := os.Getenv("NRT_PROPERTIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NRT_PROPERTIES: %w", err)
		}
		cfg.Properties = b
	}
	if v := os.Getenv("NRT_NULLABLE_ATTRIBUTES"); v != "" {
		cfg.NullableAttributes = splitList(v)
	}
	if v := os.Getenv("NRT_IGNORE"); v != "" {
		cfg.Ignore = splitList(v)
	}
	if v := os.Getenv("NRT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("NRT_AUDIT_DB"); v != "" {
		cfg.AuditDB = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the effective configuration, overrides included, against
// the embedded schema.
func (c *Config) Validate() error {
	if err := validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func validate(v any) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	if schemaErr != nil {
		return fmt.Errorf("config schema: %w", schemaErr)
	}
	// Round-trip through JSON so YAML integers and maps arrive in the shape
	// the validator expects.
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
