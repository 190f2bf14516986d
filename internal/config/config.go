package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Garsondee/Skin-Clinic/internal/clinic"
)

// Config is everything the binaries need to set up a clinic.
type Config struct {
	Env           string
	MaskDir       string // empty uses the built-in masks
	CanvasSize    int
	StartingMoney int
	InvertMaskV   bool

	Treatment clinic.TreatmentConfig
	Scoring   clinic.ScoringConfig
}

// Load reads .env and .env.local when present, then the environment.
// Unset variables keep their defaults; malformed values are an error.
func Load() (Config, error) {
	// Missing env files are fine.
	_ = godotenv.Load(".env", ".env.local")
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	p := parser{lookup: lookup}
	c := Config{
		Env:           p.str("CLINIC_ENV", "development"),
		MaskDir:       p.str("CLINIC_MASK_DIR", ""),
		CanvasSize:    p.integer("CLINIC_CANVAS_SIZE", 256),
		StartingMoney: p.integer("CLINIC_STARTING_MONEY", 100),
		InvertMaskV:   p.boolean("CLINIC_INVERT_MASK_V", false),
		Treatment:     clinic.DefaultTreatmentConfig(),
		Scoring:       clinic.DefaultScoringConfig(),
	}

	c.Treatment.BasePayment = p.integer("CLINIC_BASE_PAYMENT", c.Treatment.BasePayment)
	c.Treatment.BaseTimeLimit = p.integer("CLINIC_BASE_TIME_LIMIT", c.Treatment.BaseTimeLimit)

	c.Scoring.MaskThreshold = p.float("CLINIC_MASK_THRESHOLD", c.Scoring.MaskThreshold)
	c.Scoring.PaintedAlphaThreshold = uint8(p.intRange("CLINIC_PAINTED_ALPHA", int(c.Scoring.PaintedAlphaThreshold), 0, 255))
	c.Scoring.ColorTolerance = p.intRange("CLINIC_COLOR_TOLERANCE", c.Scoring.ColorTolerance, 0, 255)
	c.Scoring.DirtyPenaltyWeight = p.float("CLINIC_DIRTY_WEIGHT", c.Scoring.DirtyPenaltyWeight)
	c.Scoring.WrongColorPenaltyWeight = p.float("CLINIC_WRONG_COLOR_WEIGHT", c.Scoring.WrongColorPenaltyWeight)
	c.Scoring.TimeBonusWeight = p.float("CLINIC_TIME_WEIGHT", c.Scoring.TimeBonusWeight)
	c.Scoring.PenalizeOutside = p.boolean("CLINIC_PENALIZE_OUTSIDE", c.Scoring.PenalizeOutside)

	if p.err != nil {
		return Config{}, p.err
	}
	return c, nil
}

// MaskTransforms returns the per-zone transforms implied by the config.
func (c Config) MaskTransforms() map[clinic.Zone]clinic.MaskTransform {
	out := make(map[clinic.Zone]clinic.MaskTransform, len(clinic.AllZones))
	for _, z := range clinic.AllZones {
		tr := clinic.IdentityTransform()
		tr.InvertV = c.InvertMaskV
		out[z] = tr
	}
	return out
}

// Masks loads the configured mask directory, or builds the default masks
// at canvas size when none is set.
func (c Config) Masks(opts ...clinic.Option) (clinic.MaskCatalog, error) {
	if c.MaskDir == "" {
		return clinic.DefaultMaskCatalog(c.CanvasSize), nil
	}
	return clinic.LoadMaskCatalog(c.MaskDir, c.MaskTransforms(), opts...)
}

// parser keeps the first error so Load can report it once.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, v string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config %s=%q: %w", key, v, err)
	}
}

func (p *parser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return n
}

func (p *parser) intRange(key string, def, lo, hi int) int {
	n := p.integer(key, def)
	if n < lo || n > hi {
		p.fail(key, strconv.Itoa(n), fmt.Errorf("out of range [%d,%d]", lo, hi))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}
