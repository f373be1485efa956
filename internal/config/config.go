package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	imageaugmentor "github.com/menta2k/image-augmentor"
	"github.com/menta2k/image-augmentor/pkg/affine"
	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// SupportedSchema is the only accepted schema_version.
const SupportedSchema = "v1"

// EnvPrefix prefixes environment overrides. Nested keys are joined with
// "__", e.g. AUGMENT_AFFINE__ROTATION_RANGE=30.
const EnvPrefix = "AUGMENT_"

// Config holds the augmentation pipeline configuration
type Config struct {
	SchemaVersion string       `koanf:"schema_version" yaml:"schema_version" toml:"schema_version"`
	Affine        AffineConfig `koanf:"affine" yaml:"affine" toml:"affine"`
	Fill          FillConfig   `koanf:"fill" yaml:"fill" toml:"fill"`
	TargetFill    FillConfig   `koanf:"target_fill" yaml:"target_fill" toml:"target_fill"`
	GrayTarget    bool         `koanf:"gray_target" yaml:"gray_target" toml:"gray_target"`
	Seed          uint64       `koanf:"seed" yaml:"seed" toml:"seed"` // 0 = random
	Output        OutputConfig `koanf:"output" yaml:"output" toml:"output"`
}

// AffineConfig holds the random transform ranges
type AffineConfig struct {
	RotationRange    float64   `koanf:"rotation_range" yaml:"rotation_range" toml:"rotation_range"`          // degrees
	TranslationRange []float64 `koanf:"translation_range" yaml:"translation_range" toml:"translation_range"` // fraction of height, width
	ShearRange       float64   `koanf:"shear_range" yaml:"shear_range" toml:"shear_range"`                   // radians
	ZoomRange        []float64 `koanf:"zoom_range" yaml:"zoom_range" toml:"zoom_range"`
}

// FillConfig holds an out-of-bounds fill mode
type FillConfig struct {
	Mode  string  `koanf:"mode" yaml:"mode" toml:"mode"`
	Value float64 `koanf:"value" yaml:"value" toml:"value"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DType    string `koanf:"dtype" yaml:"dtype" toml:"dtype"` // empty keeps float32
	Format   string `koanf:"format" yaml:"format" toml:"format"`
	Quality  int    `koanf:"quality" yaml:"quality" toml:"quality"`
	Lossless bool   `koanf:"lossless" yaml:"lossless" toml:"lossless"`
	Dir      string `koanf:"dir" yaml:"dir" toml:"dir"`
	Prefix   string `koanf:"prefix" yaml:"prefix" toml:"prefix"`
	Suffix   string `koanf:"suffix" yaml:"suffix" toml:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		SchemaVersion: SupportedSchema,
		Affine: AffineConfig{
			RotationRange:    15,
			TranslationRange: []float64{0.1, 0.1},
			ZoomRange:        []float64{0.9, 1.1},
		},
		Fill:       FillConfig{Mode: string(affine.Constant)},
		TargetFill: FillConfig{Mode: string(affine.Nearest)},
		GrayTarget: true,
		Output: OutputConfig{
			Format:  "png",
			Quality: 90,
			Dir:     "./out",
			Suffix:  "_aug",
		},
	}
}

// Load merges the YAML or TOML file at path (if present) and AUGMENT_
// environment variables over Default.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	sv := k.String("schema_version")
	if sv != "" && sv != SupportedSchema {
		return nil, fmt.Errorf("schema_version %q not supported (want %q)", sv, SupportedSchema)
	}

	cfg := Default()
	// Lists replace the defaults rather than merging element-wise.
	if k.Exists("affine.translation_range") {
		cfg.Affine.TranslationRange = nil
	}
	if k.Exists("affine.zoom_range") {
		cfg.Affine.ZoomRange = nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SchemaVersion = SupportedSchema
	return cfg, nil
}

// envKey maps AUGMENT_AFFINE__ROTATION_RANGE to affine.rotation_range.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// envValue splits list keys on commas or spaces, so
// AUGMENT_AFFINE__ZOOM_RANGE="0.8,1.2" sets both zoom bounds.
func envValue(key, value string) (string, interface{}) {
	key = envKey(key)
	switch key {
	case "affine.translation_range", "affine.zoom_range":
		return key, strings.FieldsFunc(value, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	}
	return key, value
}

// SaveToFile saves configuration to a YAML file, or TOML when filename
// ends in .toml
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	marshal := c.Marshal
	if isTOML(filename) {
		marshal = c.EncodeTOML
	}
	data, err := marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// EncodeTOML renders the configuration as TOML.
func (c *Config) EncodeTOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Affine.RotationRange < 0 {
		return fmt.Errorf("affine.rotation_range must not be negative")
	}
	if c.Affine.ShearRange < 0 {
		return fmt.Errorf("affine.shear_range must not be negative")
	}
	if n := len(c.Affine.TranslationRange); n > 2 {
		return fmt.Errorf("affine.translation_range must have 1 or 2 values, got %d", n)
	}
	for _, v := range c.Affine.TranslationRange {
		if v < 0 {
			return fmt.Errorf("affine.translation_range must not be negative")
		}
	}
	if z := c.Affine.ZoomRange; len(z) > 0 {
		if len(z) != 2 {
			return fmt.Errorf("affine.zoom_range must have 2 values, got %d", len(z))
		}
		if z[0] <= 0 || z[1] <= 0 || z[0] > z[1] {
			return fmt.Errorf("affine.zoom_range must satisfy 0 < low <= high, got %v", z)
		}
	}
	if _, err := affine.ParseFillMode(c.Fill.Mode); err != nil {
		return fmt.Errorf("fill.mode: %w", err)
	}
	if _, err := affine.ParseFillMode(c.TargetFill.Mode); err != nil {
		return fmt.Errorf("target_fill.mode: %w", err)
	}
	if c.Output.DType != "" {
		if _, err := tensor.ParseDType(c.Output.DType); err != nil {
			return fmt.Errorf("output.dtype: %w", err)
		}
	}
	switch strings.ToLower(c.Output.Format) {
	case "png", "jpg", "jpeg", "webp":
	default:
		return fmt.Errorf("output.format must be png, jpg or webp, got %q", c.Output.Format)
	}
	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}
	return nil
}

// ToOptions converts the file configuration to augmenter options. The
// random source and logger are left for the caller.
func (c *Config) ToOptions() (imageaugmentor.Options, error) {
	if err := c.Validate(); err != nil {
		return imageaugmentor.Options{}, err
	}
	fill, _ := affine.ParseFillMode(c.Fill.Mode)
	targetFill, _ := affine.ParseFillMode(c.TargetFill.Mode)

	opts := imageaugmentor.Options{
		Affine: affine.Config{
			RotationRange:    c.Affine.RotationRange,
			TranslationRange: append([]float64(nil), c.Affine.TranslationRange...),
			ShearRange:       c.Affine.ShearRange,
			ZoomRange:        append([]float64(nil), c.Affine.ZoomRange...),
		},
		Fill:       affine.Fill{Mode: fill, Value: c.Fill.Value},
		TargetFill: affine.Fill{Mode: targetFill, Value: c.TargetFill.Value},
		GrayTarget: c.GrayTarget,
	}
	if c.Output.DType != "" {
		opts.Cast = true
		opts.OutputDType, _ = tensor.ParseDType(c.Output.DType)
	}
	return opts, nil
}

// DefaultPath returns the default configuration file path
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./augment.yaml"
	}
	return filepath.Join(home, ".config", "image-augmentor", "config.yaml")
}
