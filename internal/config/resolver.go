// Package config resolves runtime settings from the config file, environment
// variables, and CLI flags, recording where each value came from. Precedence
// is CLI over environment over file over built-in default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath    string
	CLIWordNetDir string
	CLIDBPath     string
	CLIExamples   string
	CLIResults    string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	WordNetDir ResolvedValue `json:"wordnet_dir"`
	DBPath     ResolvedValue `json:"db_path"`

	GenExamples ResolvedValue `json:"gen_examples"`
	GenResults  ResolvedValue `json:"gen_results"`
}

type fileConfig struct {
	WordNetDir string `yaml:"wordnet_dir"`
	DBPath     string `yaml:"db_path"`
	Generator  struct {
		Examples int `yaml:"examples"`
		Results  int `yaml:"results"`
	} `yaml:"generator"`
}

// Built-in defaults.
const (
	DefaultGenExamples = 100
	DefaultGenResults  = 3
)

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mealparse", "config.yaml")
}

func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:  path,
		GenExamples: ResolvedValue{Value: strconv.Itoa(DefaultGenExamples), Source: SourceDefault, From: "built-in default"},
		GenResults:  ResolvedValue{Value: strconv.Itoa(DefaultGenResults), Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.WordNetDir, cfg.WordNetDir, SourceConfig, path)
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		if cfg.Generator.Examples > 0 {
			apply(&out.GenExamples, strconv.Itoa(cfg.Generator.Examples), SourceConfig, path)
		}
		if cfg.Generator.Results > 0 {
			apply(&out.GenResults, strconv.Itoa(cfg.Generator.Results), SourceConfig, path)
		}
	}

	// WNHOME is the conventional WordNet install root; its dict/
	// subdirectory holds the database files. MEALPARSE_WORDNET outranks it.
	if v := strings.TrimSpace(os.Getenv("WNHOME")); v != "" {
		out.WordNetDir = ResolvedValue{Value: filepath.Join(v, "dict"), Source: SourceEnv, From: "WNHOME"}
	}
	applyEnv(&out.WordNetDir, "MEALPARSE_WORDNET")
	applyEnv(&out.DBPath, "MEALPARSE_DB")
	applyEnv(&out.GenExamples, "MEALPARSE_GEN_EXAMPLES")
	applyEnv(&out.GenResults, "MEALPARSE_GEN_RESULTS")

	apply(&out.WordNetDir, opts.CLIWordNetDir, SourceCLI, "--wordnet")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.GenExamples, opts.CLIExamples, SourceCLI, "--examples")
	apply(&out.GenResults, opts.CLIResults, SourceCLI, "--results")

	if out.WordNetDir.Value != "" {
		out.WordNetDir.Value = expandUserPath(out.WordNetDir.Value)
	}
	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// Examples returns the resolved generator example count.
func (r ResolvedConfig) Examples() int {
	return atoiOr(r.GenExamples.Value, DefaultGenExamples)
}

// Results returns the resolved per-example result count.
func (r ResolvedConfig) Results() int {
	return atoiOr(r.GenResults.Value, DefaultGenResults)
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
