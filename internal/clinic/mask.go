package clinic

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif" // mask decoders
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// alphaVariationThreshold is the minimum alpha range (0-255) across a mask
// for its alpha channel to carry the zone shape. Flat-alpha masks are read
// by luma instead.
const alphaVariationThreshold = 10

// MaskTransform maps canvas UV into mask UV: scale, then offset, then clamp
// or wrap into [0,1], then optionally flip V.
type MaskTransform struct {
	ScaleX, ScaleY   float64
	OffsetX, OffsetY float64
	Clamp            bool // false wraps (x - floor(x))
	InvertV          bool
}

// IdentityTransform is scale 1, offset 0, clamped.
func IdentityTransform() MaskTransform {
	return MaskTransform{ScaleX: 1, ScaleY: 1, Clamp: true}
}

// Apply maps canvas UV (u, v) to mask UV.
func (tr MaskTransform) Apply(u, v float64) (float64, float64) {
	uu := u*tr.ScaleX + tr.OffsetX
	vv := v*tr.ScaleY + tr.OffsetY
	if tr.Clamp {
		uu = clamp01(uu)
		vv = clamp01(vv)
	} else {
		uu -= math.Floor(uu)
		vv -= math.Floor(vv)
	}
	if tr.InvertV {
		vv = 1 - vv
	}
	return uu, vv
}

// ZoneMask is the reference raster for one zone. Sample values are
// computed once at construction, so a mask is read-only and safe to share.
type ZoneMask struct {
	width, height int
	transform     MaskTransform
	useAlpha      bool
	values        []float64 // row-major, [0,1]
}

// NewZoneMask converts img into a zone mask. The alpha channel is used when
// it varies by more than alphaVariationThreshold across the image,
// otherwise perceptual luma.
func NewZoneMask(img image.Image, tr MaskTransform) (*ZoneMask, error) {
	if img == nil {
		return nil, errors.New("nil mask image")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty mask image %v", b)
	}

	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(nrgba, image.Point{}, img, b, xdraw.Src, nil)

	m := &ZoneMask{
		width:     b.Dx(),
		height:    b.Dy(),
		transform: tr,
		useAlpha:  hasAlphaVariation(nrgba),
		values:    make([]float64, b.Dx()*b.Dy()),
	}
	for y := 0; y < m.height; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < m.width; x++ {
			p := row[x*4 : x*4+4]
			if m.useAlpha {
				m.values[y*m.width+x] = float64(p[3]) / 255
			} else {
				m.values[y*m.width+x] = (0.2126*float64(p[0]) + 0.7152*float64(p[1]) + 0.0722*float64(p[2])) / 255
			}
		}
	}
	return m, nil
}

func hasAlphaVariation(img *image.NRGBA) bool {
	minA, maxA := uint8(255), uint8(0)
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			a := row[x*4+3]
			minA = min(minA, a)
			maxA = max(maxA, a)
			if int(maxA)-int(minA) > alphaVariationThreshold {
				return true
			}
		}
	}
	return false
}

func (m *ZoneMask) Width() int { return m.width }
func (m *ZoneMask) Height() int { return m.height }
func (m *ZoneMask) Transform() MaskTransform { return m.transform }

// UsesAlpha reports whether samples come from the alpha channel.
func (m *ZoneMask) UsesAlpha() bool { return m.useAlpha }

// Sample returns the mask value in [0,1] at canvas UV (u, v), after the
// mask transform, using the nearest mask pixel.
func (m *ZoneMask) Sample(u, v float64) float64 {
	uu, vv := m.transform.Apply(u, v)
	mx := clampInt(roundHalfUp(uu*float64(m.width-1)), 0, m.width-1)
	my := clampInt(roundHalfUp(vv*float64(m.height-1)), 0, m.height-1)
	return m.values[my*m.width+mx]
}

// MaskCatalog resolves a zone to its mask.
type MaskCatalog map[Zone]*ZoneMask

// LoadZoneMask decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file into a mask.
func LoadZoneMask(path string, tr MaskTransform) (*ZoneMask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mask: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mask %s: %w", path, err)
	}
	m, err := NewZoneMask(img, tr)
	if err != nil {
		return nil, fmt.Errorf("mask %s (%s): %w", path, format, err)
	}
	return m, nil
}

// LoadMaskCatalog loads one mask per zone from dir. A file belongs to a zone
// when its base name (without extension) is any zone alias, so
// "forehead.png", "Frente.bmp" and "mentón.webp" all work. Files that fail
// to decode are skipped and reported; the first readable file per zone
// wins. Zones without a transform in transforms use IdentityTransform.
func LoadMaskCatalog(dir string, transforms map[Zone]MaskTransform, opts ...Option) (MaskCatalog, error) {
	rep := newReporter(opts)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read mask dir: %w", err)
	}

	masks := MaskCatalog{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		zone, err := ParseZone(strings.TrimSuffix(name, filepath.Ext(name)))
		if err != nil {
			continue
		}
		if _, ok := masks[zone]; ok {
			rep.warn("mask", "duplicate", fmt.Sprintf("%s: %s ignored", zone, name), 0)
			continue
		}
		tr, ok := transforms[zone]
		if !ok {
			tr = IdentityTransform()
		}
		m, err := LoadZoneMask(filepath.Join(dir, name), tr)
		if err != nil {
			rep.warn("mask", "unreadable", err.Error(), 0)
			continue
		}
		masks[zone] = m
	}
	for _, z := range AllZones {
		if _, ok := masks[z]; !ok {
			rep.warn("mask", "missing", fmt.Sprintf("no mask for %s in %s", z, dir), 0)
		}
	}
	return masks, nil
}

// ellipse is a zone blob in canvas UV.
type ellipse struct {
	cu, cv float64
	ru, rv float64
}

func (e ellipse) contains(u, v float64) bool {
	du := (u - e.cu) / e.ru
	dv := (v - e.cv) / e.rv
	return du*du+dv*dv <= 1
}

// defaultZoneShapes roughly place each zone on a front-facing face with V
// growing downward.
var defaultZoneShapes = map[Zone][]ellipse{
	ZoneForehead: {{cu: 0.5, cv: 0.22, ru: 0.30, rv: 0.11}},
	ZoneCheeks: {
		{cu: 0.27, cv: 0.58, ru: 0.13, rv: 0.12},
		{cu: 0.73, cv: 0.58, ru: 0.13, rv: 0.12},
	},
	ZoneChin: {{cu: 0.5, cv: 0.88, ru: 0.16, rv: 0.08}},
}

// DefaultMaskCatalog builds alpha masks of size×size pixels from built-in
// face shapes. It is used when no mask directory is configured.
func DefaultMaskCatalog(size int) MaskCatalog {
	size = max(size, 2)
	masks := MaskCatalog{}
	for _, z := range AllZones {
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			v := float64(y) / float64(size-1)
			for x := 0; x < size; x++ {
				u := float64(x) / float64(size-1)
				for _, e := range defaultZoneShapes[z] {
					if e.contains(u, v) {
						i := img.PixOffset(x, y)
						img.Pix[i+0], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 255, 255, 255, 255
						break
					}
				}
			}
		}
		m, err := NewZoneMask(img, IdentityTransform())
		if err != nil {
			continue
		}
		masks[z] = m
	}
	return masks
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
