package clinic

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestMaskTransform_ClampWrapInvert(t *testing.T) {
	clamped := MaskTransform{ScaleX: 2, ScaleY: 1, OffsetY: -0.25, Clamp: true}
	u, v := clamped.Apply(0.75, 0.1)
	if u != 1 || v != 0 {
		t.Fatalf("clamp: expected (1, 0), got (%v, %v)", u, v)
	}

	wrapped := MaskTransform{ScaleX: 2, ScaleY: 1, OffsetY: -0.25}
	u, v = wrapped.Apply(0.75, 0)
	if u != 0.5 || v != 0.75 {
		t.Fatalf("wrap: expected (0.5, 0.75), got (%v, %v)", u, v)
	}

	flipped := IdentityTransform()
	flipped.InvertV = true
	u, v = flipped.Apply(0.5, 0.25)
	if u != 0.5 || v != 0.75 {
		t.Fatalf("invertV: expected (0.5, 0.75), got (%v, %v)", u, v)
	}
}

// alphaStrip builds a width×1 mask image with the given alphas.
func alphaStrip(alphas ...uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(alphas), 1))
	for x, a := range alphas {
		img.SetNRGBA(x, 0, color.NRGBA{R: 255, G: 255, B: 255, A: a})
	}
	return img
}

func TestNewZoneMask_AlphaWhenVarying(t *testing.T) {
	m, err := NewZoneMask(alphaStrip(0, 255), IdentityTransform())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.UsesAlpha() {
		t.Fatal("varying alpha should be used")
	}
	if m.Sample(0.49, 0) != 0 {
		t.Fatalf("expected 0 just left of centre, got %v", m.Sample(0.49, 0))
	}
	// Nearest sampling rounds half up.
	if m.Sample(0.5, 0) != 1 {
		t.Fatalf("expected 1 at the midpoint, got %v", m.Sample(0.5, 0))
	}
}

func TestNewZoneMask_LumaWhenAlphaFlat(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 250})
	img.SetNRGBA(2, 0, color.NRGBA{G: 255, A: 255})

	m, err := NewZoneMask(img, IdentityTransform())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.UsesAlpha() {
		t.Fatal("alpha range of 5 should fall back to luma")
	}
	if got := m.Sample(0, 0); got != 0 {
		t.Fatalf("black should sample 0, got %v", got)
	}
	if got := m.Sample(0.5, 0); math.Abs(got-1) > 1e-9 {
		t.Fatalf("white should sample 1, got %v", got)
	}
	if got := m.Sample(1, 0); math.Abs(got-0.7152) > 1e-9 {
		t.Fatalf("pure green should sample its luma weight, got %v", got)
	}
}

func TestNewZoneMask_Errors(t *testing.T) {
	if _, err := NewZoneMask(nil, IdentityTransform()); err == nil {
		t.Fatal("nil image should fail")
	}
	if _, err := NewZoneMask(image.NewNRGBA(image.Rectangle{}), IdentityTransform()); err == nil {
		t.Fatal("empty image should fail")
	}
}

func TestZoneMask_TransformFlipsSampling(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{A: 0})

	tr := IdentityTransform()
	plain, _ := NewZoneMask(img, tr)
	tr.InvertV = true
	flipped, _ := NewZoneMask(img, tr)

	if plain.Sample(0, 0) != 1 || flipped.Sample(0, 0) != 0 {
		t.Fatalf("invertV should swap rows: plain=%v flipped=%v", plain.Sample(0, 0), flipped.Sample(0, 0))
	}
}

func TestDefaultMaskCatalog_Shapes(t *testing.T) {
	masks := DefaultMaskCatalog(64)
	for _, z := range AllZones {
		if masks[z] == nil {
			t.Fatalf("missing default mask for %s", z)
		}
		if !masks[z].UsesAlpha() {
			t.Fatalf("default %s mask should be alpha-based", z)
		}
	}
	if masks[ZoneForehead].Sample(0.5, 0.22) != 1 {
		t.Fatal("forehead centre should be inside the forehead mask")
	}
	if masks[ZoneForehead].Sample(0.5, 0.88) != 0 {
		t.Fatal("chin centre should be outside the forehead mask")
	}
	if masks[ZoneCheeks].Sample(0.27, 0.58) != 1 || masks[ZoneCheeks].Sample(0.73, 0.58) != 1 {
		t.Fatal("both cheeks should be inside the cheeks mask")
	}
	if masks[ZoneChin].Sample(0.5, 0.88) != 1 {
		t.Fatal("chin centre should be inside the chin mask")
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func TestLoadMaskCatalog_ResolvesAliases(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Frente.png"), alphaStrip(0, 255))
	writePNG(t, filepath.Join(dir, "forehead.png"), alphaStrip(255, 0))
	writePNG(t, filepath.Join(dir, "mentón.png"), alphaStrip(255, 0))
	if err := os.WriteFile(filepath.Join(dir, "cheeks.png"), []byte("not a png"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	diag := NewDiagLog()
	masks, err := LoadMaskCatalog(dir, nil, WithDiagLog(diag))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if masks[ZoneForehead] == nil || masks[ZoneChin] == nil {
		t.Fatalf("expected forehead and chin masks, got %v", masks)
	}
	if masks[ZoneCheeks] != nil {
		t.Fatal("corrupt cheeks file should be skipped")
	}
	// "Frente.png" sorts before "forehead.png" and wins.
	if masks[ZoneForehead].Sample(0, 0) != 0 {
		t.Fatal("expected the first forehead file to win")
	}
	if n := diag.Count("mask", "duplicate"); n != 1 {
		t.Fatalf("expected 1 duplicate diagnostic, got %d", n)
	}
	if n := diag.Count("mask", "unreadable"); n != 1 {
		t.Fatalf("expected 1 unreadable diagnostic, got %d", n)
	}
	if n := diag.Count("mask", "missing"); n != 1 {
		t.Fatalf("expected 1 missing diagnostic, got %d", n)
	}
}

func TestLoadMaskCatalog_AppliesTransforms(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "chin.png"), alphaStrip(0, 255))

	tr := IdentityTransform()
	tr.ScaleX = 0.5
	masks, err := LoadMaskCatalog(dir, map[Zone]MaskTransform{ZoneChin: tr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if masks[ZoneChin].Transform() != tr {
		t.Fatal("chin mask should carry its configured transform")
	}
	if masks[ZoneChin].Sample(0.9, 0) != 0 {
		t.Fatal("scaled sampling should stay on the left half of the mask")
	}
}

func TestLoadMaskCatalog_MissingDir(t *testing.T) {
	if _, err := LoadMaskCatalog(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("missing directory should fail")
	}
}
