package clinic

import (
	"image"
	"image/color"
)

const minCanvasSize = 16

// Brush shapes a paint dab: a filled disc of Radius pixels whose coverage
// per dab is Strength in (0,1].
type Brush struct {
	Radius   int
	Strength float64
}

// DefaultBrush matches the shipped feel: radius 10, quarter coverage.
func DefaultBrush() Brush {
	return Brush{Radius: 10, Strength: 0.25}
}

// Canvas is the square paint surface the player works on. Pixels are
// premultiplied RGBA (image.RGBA). The canvas is mutated by input handling
// only; evaluation reads a Snapshot.
type Canvas struct {
	img     *image.RGBA
	brush   Brush
	painted bool

	allow          *ZoneMask
	allowThreshold float64
}

// NewCanvas returns a transparent size×size canvas. Sizes below 16 are
// raised to 16.
func NewCanvas(size int) *Canvas {
	size = max(size, minCanvasSize)
	return &Canvas{
		img:   image.NewRGBA(image.Rect(0, 0, size, size)),
		brush: DefaultBrush(),
	}
}

func (c *Canvas) Size() int { return c.img.Bounds().Dx() }

// HasPainted reports whether any dab landed since the last Clear.
func (c *Canvas) HasPainted() bool { return c.painted }

// SetBrush replaces the brush. Radius is at least 1 and strength is kept in
// (0,1].
func (c *Canvas) SetBrush(b Brush) {
	b.Radius = max(b.Radius, 1)
	if b.Strength <= 0 {
		b.Strength = 0.01
	}
	b.Strength = min(b.Strength, 1)
	c.brush = b
}

func (c *Canvas) Brush() Brush { return c.brush }

// SetAllowMask restricts painting to UVs where m samples above threshold.
// A nil mask allows painting everywhere.
func (c *Canvas) SetAllowMask(m *ZoneMask, threshold float64) {
	c.allow = m
	c.allowThreshold = threshold
}

// Clear resets every pixel to transparent.
func (c *Canvas) Clear() {
	clear(c.img.Pix)
	c.painted = false
}

// Pix exposes the live premultiplied buffer for upload to a GPU texture.
// Callers must not modify it.
func (c *Canvas) Pix() []byte { return c.img.Pix }

// Snapshot returns a copy of the canvas that later painting cannot alter.
func (c *Canvas) Snapshot() *image.RGBA {
	snap := image.NewRGBA(c.img.Bounds())
	copy(snap.Pix, c.img.Pix)
	return snap
}

// Stamp writes col to the pixel at (x, y) as-is, replacing whatever was
// there. Out-of-range coordinates are ignored.
func (c *Canvas) Stamp(x, y int, col color.NRGBA) {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return
	}
	c.img.Set(x, y, col)
	c.painted = c.painted || col.A > 0
}

// PaintAtUV lays one brush dab of col centred on (u, v). Each covered pixel
// is composited source-over with coverage Strength, in premultiplied space.
func (c *Canvas) PaintAtUV(u, v float64, col color.NRGBA) {
	size := c.Size()
	cx := roundHalfUp(clamp01(u) * float64(size-1))
	cy := roundHalfUp(clamp01(v) * float64(size-1))

	r := c.brush.Radius
	r2 := r * r
	addA := uint32(roundHalfUp(255 * c.brush.Strength))
	keep := 255 - addA

	for dy := -r; dy <= r; dy++ {
		py := cy + dy
		if py < 0 || py >= size {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			px := cx + dx
			if px < 0 || px >= size {
				continue
			}
			if dx*dx+dy*dy > r2 {
				continue
			}
			if !c.allowedAt(float64(px)/float64(size-1), float64(py)/float64(size-1)) {
				continue
			}

			i := c.img.PixOffset(px, py)
			p := c.img.Pix[i : i+4 : i+4]
			p[0] = blendPremul(col.R, addA, p[0], keep)
			p[1] = blendPremul(col.G, addA, p[1], keep)
			p[2] = blendPremul(col.B, addA, p[2], keep)
			p[3] = uint8((addA*255 + uint32(p[3])*keep + 127) / 255)
			c.painted = true
		}
	}
}

func (c *Canvas) allowedAt(u, v float64) bool {
	if c.allow == nil {
		return true
	}
	return c.allow.Sample(u, v) > c.allowThreshold
}

// blendPremul returns round(src*srcA/255 + dst*keep/255) for one
// premultiplied channel.
func blendPremul(src uint8, srcA uint32, dst uint8, keep uint32) uint8 {
	return uint8((uint32(src)*srcA + uint32(dst)*keep + 127) / 255)
}
