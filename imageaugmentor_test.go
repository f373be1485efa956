package imageaugmentor

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/image-augmentor/pkg/affine"
	"github.com/menta2k/image-augmentor/pkg/tensor"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Create a pattern with a bright subject in the center
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				// Central bright region (subject)
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				// Background
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

// createTestMask labels the same central region as createTestImage
func createTestMask(width, height int) image.Image {
	mask := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				mask.SetGray(x, y, color.Gray{Y: 1})
			}
		}
	}
	return mask
}

func TestNew(t *testing.T) {
	aug, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if aug.composer == nil || aug.pipeline == nil {
		t.Error("components are nil")
	}
	if n := len(aug.Stages()); n != 3 {
		t.Errorf("Expected 3 default stages, got %d", n)
	}
}

func TestNewWithOptionsInvalid(t *testing.T) {
	opts := DefaultOptions()
	opts.Affine = affine.Config{}
	if _, err := NewWithOptions(opts); !errors.Is(err, affine.ErrNoTransforms) {
		t.Errorf("Expected ErrNoTransforms, got %v", err)
	}

	opts.Affine = affine.Config{ZoomRange: []float64{2, 1}}
	if _, err := NewWithOptions(opts); !errors.Is(err, affine.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
}

func TestAugmentImageKeepsSize(t *testing.T) {
	opts := DefaultOptions()
	opts.Rand = affine.NewRand(1)
	aug, err := NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}

	img := createTestImage(60, 40)
	out, err := aug.AugmentImage(img)
	if err != nil {
		t.Fatalf("AugmentImage failed: %v", err)
	}
	if out.Bounds().Dx() != 60 || out.Bounds().Dy() != 40 {
		t.Errorf("Expected 60x40, got %dx%d", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestAugmentImageIdentity(t *testing.T) {
	opts := DefaultOptions()
	opts.Affine = affine.Config{ZoomRange: []float64{1, 1}}
	aug, err := NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}

	img := createTestImage(30, 20)
	out, err := aug.AugmentImage(img)
	if err != nil {
		t.Fatalf("AugmentImage failed: %v", err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			r1, g1, b1, a1 := img.At(x, y).RGBA()
			r2, g2, b2, a2 := out.At(x, y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				t.Fatalf("pixel (%d,%d) changed under identity augmentation", x, y)
			}
		}
	}
}

func TestAugmentImagePairAligned(t *testing.T) {
	opts := DefaultOptions()
	opts.Affine = affine.Config{RotationRange: 30, TranslationRange: []float64{0.1}}
	opts.Fill = affine.Fill{Mode: affine.Nearest}
	opts.Rand = affine.NewRand(5)
	aug, err := NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}

	img := createTestImage(48, 48)
	mask := createTestMask(48, 48)

	for trial := 0; trial < 5; trial++ {
		out, outMask, err := aug.AugmentImagePair(img, mask)
		if err != nil {
			t.Fatalf("AugmentImagePair failed: %v", err)
		}
		for y := 0; y < 48; y++ {
			for x := 0; x < 48; x++ {
				r, _, _, _ := out.At(x, y).RGBA()
				m, _, _, _ := outMask.At(x, y).RGBA()
				bright := r>>8 == 255
				labelled := m>>8 == 1
				if bright != labelled {
					t.Fatalf("trial %d: image and mask disagree at (%d,%d)", trial, x, y)
				}
			}
		}
	}
}

func TestAugmentPairCast(t *testing.T) {
	opts := DefaultOptions()
	opts.Cast = true
	opts.OutputDType = tensor.Uint8
	aug, err := NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}

	x := tensor.FromImage(createTestImage(20, 20))
	y := tensor.FromGray(createTestMask(20, 20))
	xOut, yOut, err := aug.AugmentPair(x, y)
	if err != nil {
		t.Fatalf("AugmentPair failed: %v", err)
	}
	if xOut.DType() != tensor.Uint8 || yOut.DType() != tensor.Uint8 {
		t.Errorf("Expected uint8 outputs, got %s and %s", xOut.DType(), yOut.DType())
	}

	single, err := aug.Augment(x)
	if err != nil {
		t.Fatalf("Augment failed: %v", err)
	}
	if single.DType() != tensor.Uint8 {
		t.Errorf("Expected uint8 output, got %s", single.DType())
	}

	if _, _, err := aug.AugmentPair(x, nil); err == nil {
		t.Error("Expected error for nil target")
	}
}

func TestAugmentPairShapeMismatch(t *testing.T) {
	aug, _ := New()
	x := tensor.FromImage(createTestImage(20, 20))
	y := tensor.FromGray(createTestMask(20, 10))
	if _, _, err := aug.AugmentPair(x, y); !errors.Is(err, affine.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestAugmentImageErrorReturnsNil(t *testing.T) {
	opts := DefaultOptions()
	opts.Fill = affine.Fill{Mode: affine.FillMode("smear")}
	aug, err := NewWithOptions(opts)
	if err != nil {
		t.Fatalf("NewWithOptions failed: %v", err)
	}

	img, err := aug.AugmentImage(createTestImage(20, 20))
	if !errors.Is(err, affine.ErrUnknownFillMode) {
		t.Errorf("Expected ErrUnknownFillMode, got %v", err)
	}
	if img != nil {
		t.Errorf("Expected nil image on error, got %T", img)
	}

	out, label, err := aug.AugmentImagePair(createTestImage(20, 20), createTestMask(20, 20))
	if err == nil || out != nil || label != nil {
		t.Errorf("Expected nil images and an error, got %T, %T, %v", out, label, err)
	}
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	if version == "" {
		t.Error("Version should not be empty")
	}

	if version != Version {
		t.Errorf("GetVersion() returned %s, expected %s", version, Version)
	}
}

func BenchmarkAugmentImage(b *testing.B) {
	aug, _ := New()
	img := createTestImage(400, 300)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		aug.AugmentImage(img)
	}
}
