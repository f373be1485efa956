package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/image-augmentor/pkg/affine"
	"github.com/menta2k/image-augmentor/pkg/tensor"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "augment.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Affine.RotationRange != 15 || cfg.Output.Format != "png" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
schema_version: v1
affine:
  rotation_range: 0
  translation_range: [0.2]
  shear_range: 0.1
fill:
  mode: reflect
output:
  format: webp
  quality: 75
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Affine.RotationRange != 0 {
		t.Errorf("rotation_range = %v, expected explicit 0", cfg.Affine.RotationRange)
	}
	if len(cfg.Affine.TranslationRange) != 1 || cfg.Affine.TranslationRange[0] != 0.2 {
		t.Errorf("translation_range = %v, expected [0.2]", cfg.Affine.TranslationRange)
	}
	if len(cfg.Affine.ZoomRange) != 2 {
		t.Errorf("zoom_range should keep its default, got %v", cfg.Affine.ZoomRange)
	}
	if cfg.Fill.Mode != "reflect" || cfg.TargetFill.Mode != "nearest" {
		t.Errorf("unexpected fills %+v %+v", cfg.Fill, cfg.TargetFill)
	}
	if cfg.Output.Format != "webp" || cfg.Output.Quality != 75 || cfg.Output.Suffix != "_aug" {
		t.Errorf("unexpected output %+v", cfg.Output)
	}
}

func TestLoadRejectsSchema(t *testing.T) {
	path := writeFile(t, "schema_version: v2\n")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unsupported schema_version")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AUGMENT_AFFINE__ROTATION_RANGE", "42")
	t.Setenv("AUGMENT_OUTPUT__FORMAT", "jpg")
	t.Setenv("AUGMENT_AFFINE__ZOOM_RANGE", "0.8,1.2")
	t.Setenv("AUGMENT_AFFINE__TRANSLATION_RANGE", "0.05 0.15")

	cfg, err := Load(writeFile(t, "affine:\n  rotation_range: 10\n  zoom_range: [0.5, 1.5]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Affine.RotationRange != 42 {
		t.Errorf("rotation_range = %v, expected env value 42", cfg.Affine.RotationRange)
	}
	if cfg.Output.Format != "jpg" {
		t.Errorf("format = %q, expected jpg", cfg.Output.Format)
	}
	if z := cfg.Affine.ZoomRange; len(z) != 2 || z[0] != 0.8 || z[1] != 1.2 {
		t.Errorf("zoom_range = %v, expected [0.8 1.2]", z)
	}
	if tr := cfg.Affine.TranslationRange; len(tr) != 2 || tr[0] != 0.05 || tr[1] != 0.15 {
		t.Errorf("translation_range = %v, expected [0.05 0.15]", tr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("env-overridden config should be valid: %v", err)
	}
}

func TestLoadEnvSingleTranslation(t *testing.T) {
	t.Setenv("AUGMENT_AFFINE__TRANSLATION_RANGE", "0.3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tr := cfg.Affine.TranslationRange; len(tr) != 1 || tr[0] != 0.3 {
		t.Errorf("translation_range = %v, expected [0.3]", tr)
	}
}

func TestLoadEnvSchemaVersion(t *testing.T) {
	t.Setenv("AUGMENT_SCHEMA_VERSION", "v9")

	if _, err := Load(""); err == nil {
		t.Error("Expected error for schema_version set from the environment")
	}
	if _, err := Load(writeFile(t, "schema_version: v1\n")); err == nil {
		t.Error("Environment schema_version should override the file and be rejected")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Affine.ShearRange = 0.3
	cfg.Seed = 7
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Affine.ShearRange != 0.3 || loaded.Seed != 7 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative rotation", func(c *Config) { c.Affine.RotationRange = -1 }},
		{"negative shear", func(c *Config) { c.Affine.ShearRange = -0.1 }},
		{"three translations", func(c *Config) { c.Affine.TranslationRange = []float64{0.1, 0.1, 0.1} }},
		{"negative translation", func(c *Config) { c.Affine.TranslationRange = []float64{-0.1} }},
		{"one zoom value", func(c *Config) { c.Affine.ZoomRange = []float64{1} }},
		{"inverted zoom", func(c *Config) { c.Affine.ZoomRange = []float64{1.2, 0.8} }},
		{"zero zoom", func(c *Config) { c.Affine.ZoomRange = []float64{0, 1} }},
		{"unknown fill", func(c *Config) { c.Fill.Mode = "smear" }},
		{"unknown target fill", func(c *Config) { c.TargetFill.Mode = "" }},
		{"unknown dtype", func(c *Config) { c.Output.DType = "complex" }},
		{"unknown format", func(c *Config) { c.Output.Format = "gif" }},
		{"quality", func(c *Config) { c.Output.Quality = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateWrapsFillError(t *testing.T) {
	cfg := Default()
	cfg.Fill.Mode = "smear"
	if err := cfg.Validate(); !errors.Is(err, affine.ErrUnknownFillMode) {
		t.Errorf("Expected ErrUnknownFillMode, got %v", err)
	}
}

func TestToOptions(t *testing.T) {
	cfg := Default()
	cfg.Fill = FillConfig{Mode: "Wrap", Value: 3}
	cfg.Output.DType = "uint8"

	opts, err := cfg.ToOptions()
	if err != nil {
		t.Fatalf("ToOptions failed: %v", err)
	}
	if opts.Fill.Mode != affine.Wrap || opts.Fill.Value != 3 {
		t.Errorf("unexpected fill %+v", opts.Fill)
	}
	if opts.TargetFill.Mode != affine.Nearest {
		t.Errorf("unexpected target fill %+v", opts.TargetFill)
	}
	if !opts.Cast || opts.OutputDType != tensor.Uint8 {
		t.Errorf("expected uint8 cast, got %v %v", opts.Cast, opts.OutputDType)
	}
	if opts.Affine.RotationRange != 15 || len(opts.Affine.ZoomRange) != 2 {
		t.Errorf("unexpected affine config %+v", opts.Affine)
	}

	cfg.Affine.ZoomRange[0] = 0.5
	if opts.Affine.ZoomRange[0] == 0.5 {
		t.Error("ToOptions should copy range slices")
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augment.toml")
	body := `
schema_version = "v1"

[affine]
rotation_range = 30
zoom_range = [0.5, 2.0]

[target_fill]
mode = "constant"
value = 255
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Affine.RotationRange != 30 {
		t.Errorf("rotation_range = %v, expected 30", cfg.Affine.RotationRange)
	}
	if len(cfg.Affine.ZoomRange) != 2 || cfg.Affine.ZoomRange[0] != 0.5 || cfg.Affine.ZoomRange[1] != 2 {
		t.Errorf("zoom_range = %v, expected [0.5 2]", cfg.Affine.ZoomRange)
	}
	if cfg.TargetFill.Mode != "constant" || cfg.TargetFill.Value != 255 {
		t.Errorf("unexpected target fill %+v", cfg.TargetFill)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augment.toml")
	cfg := Default()
	cfg.Fill = FillConfig{Mode: "mirror", Value: 1.5}
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Fill != cfg.Fill {
		t.Errorf("fill = %+v, expected %+v", loaded.Fill, cfg.Fill)
	}
	if len(loaded.Affine.TranslationRange) != 2 || loaded.Output.Quality != 90 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
