// Package config loads mslc tool configuration from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mslc"
	"github.com/gogpu/mslc/glsl"
	"github.com/gogpu/mslc/hlsl"
)

// Artifact targets written by the build tool.
const (
	TargetBytecode = "bc"
	TargetMetadata = "md"
	TargetGLSL     = "glsl"
	TargetHLSL     = "hlsl"
)

// AllTargets lists every known target in output order.
var AllTargets = []string{TargetBytecode, TargetMetadata, TargetGLSL, TargetHLSL}

// SearchPaths are tried in order by Find.
var SearchPaths = []string{
	"mslc.toml",
	"mslc.yaml",
	"~/.config/mslc/config.toml",
	"~/.config/mslc/config.yaml",
}

// Limits bounds the compiler buffers.
type Limits struct {
	MaxTokens   int               `toml:"max_tokens" yaml:"max_tokens"`
	MaxNodes    int               `toml:"max_nodes" yaml:"max_nodes"`
	MaxBytecode datasize.ByteSize `toml:"max_bytecode" yaml:"max_bytecode"`
	MaxMetadata datasize.ByteSize `toml:"max_metadata" yaml:"max_metadata"`
}

// Config is the tool configuration.
type Config struct {
	// OutDir receives artifacts. Empty writes next to each source.
	OutDir string `toml:"out_dir" yaml:"out_dir"`

	// Targets selects the artifacts to write.
	Targets []string `toml:"targets" yaml:"targets"`

	// Jobs bounds parallel compilations. Zero means one per CPU.
	Jobs int `toml:"jobs" yaml:"jobs"`

	// GLSLVersion is a version string such as "410" or "300 es".
	GLSLVersion string `toml:"glsl_version" yaml:"glsl_version"`

	// ShaderModel is an HLSL shader model such as "5.1".
	ShaderModel string `toml:"shader_model" yaml:"shader_model"`

	// EntryPoint names the generated HLSL entry function.
	EntryPoint string `toml:"entry_point" yaml:"entry_point"`

	// LogLevel is a slog level name.
	LogLevel string `toml:"log_level" yaml:"log_level"`

	Limits Limits `toml:"limits" yaml:"limits"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Targets:     append([]string(nil), AllTargets...),
		GLSLVersion: "410",
		ShaderModel: "5.0",
		EntryPoint:  "main",
		LogLevel:    "info",
		Limits: Limits{
			MaxTokens:   mslc.DefaultMaxTokens,
			MaxNodes:    mslc.DefaultMaxNodes,
			MaxBytecode: datasize.ByteSize(mslc.DefaultMaxBytecodeSize),
			MaxMetadata: datasize.ByteSize(mslc.DefaultMaxMetadataSize),
		},
	}
}

// Load reads the file at path over the defaults. The format follows the
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	full, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(full)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Path = full
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first existing file of SearchPaths, or "" if none
// exists.
func Find() (string, error) {
	for _, p := range SearchPaths {
		full, err := homedir.Expand(p)
		if err != nil {
			return "", fmt.Errorf("config: %w", err)
		}
		if _, err := os.Stat(full); err == nil {
			return full, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config: %w", err)
		}
	}
	return "", nil
}

// Resolve loads path when given, otherwise the first file found by Find,
// otherwise the defaults.
func Resolve(path string) (*Config, error) {
	if path == "" {
		found, err := Find()
		if err != nil {
			return nil, err
		}
		if found == "" {
			return Default(), nil
		}
		path = found
	}
	return Load(path)
}

// Validate checks field values.
func (c *Config) Validate() error {
	for _, t := range c.Targets {
		if !isTarget(t) {
			return fmt.Errorf("unknown target %q", t)
		}
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if _, err := c.GLSL(); err != nil {
		return err
	}
	if _, err := c.HLSL(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Wants reports whether target is selected.
func (c *Config) Wants(target string) bool {
	for _, t := range c.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// Compiler returns the compiler options described by the limits.
func (c *Config) Compiler(logger *slog.Logger) mslc.Options {
	return mslc.Options{
		MaxTokens:       c.Limits.MaxTokens,
		MaxNodes:        c.Limits.MaxNodes,
		MaxBytecodeSize: int(c.Limits.MaxBytecode.Bytes()),
		MaxMetadataSize: int(c.Limits.MaxMetadata.Bytes()),
		Logger:          logger,
	}
}

// GLSL returns the GLSL backend options.
func (c *Config) GLSL() (glsl.Options, error) {
	opts := glsl.DefaultOptions()
	if c.GLSLVersion == "" {
		return opts, nil
	}
	v, err := glsl.ParseVersion(c.GLSLVersion)
	if err != nil {
		return opts, err
	}
	opts.LangVersion = v
	return opts, nil
}

// HLSL returns the HLSL backend options.
func (c *Config) HLSL() (hlsl.Options, error) {
	opts := hlsl.DefaultOptions()
	if c.EntryPoint != "" {
		opts.EntryPoint = c.EntryPoint
	}
	if c.ShaderModel == "" {
		return opts, nil
	}
	sm, err := hlsl.ParseShaderModel(c.ShaderModel)
	if err != nil {
		return opts, err
	}
	opts.ShaderModel = sm
	return opts, nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log level: %w", err)
	}
	return l, nil
}

func isTarget(t string) bool {
	for _, known := range AllTargets {
		if t == known {
			return true
		}
	}
	return false
}
