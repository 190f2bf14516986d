package clinic

import (
	"fmt"
	"image/color"
	"strings"
)

// ConditionType is a category of skin affliction. Each type is treated with
// exactly one cream.
type ConditionType int

const (
	ConditionAcne ConditionType = iota
	ConditionWrinkles
	ConditionScars
	conditionTypeCount // sentinel
)

// AllConditionTypes lists the types in catalog column order.
var AllConditionTypes = [conditionTypeCount]ConditionType{ConditionAcne, ConditionWrinkles, ConditionScars}

func (c ConditionType) String() string {
	switch c {
	case ConditionAcne:
		return "acne"
	case ConditionWrinkles:
		return "wrinkles"
	case ConditionScars:
		return "scars"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the known condition types.
func (c ConditionType) Valid() bool {
	return c >= 0 && c < conditionTypeCount
}

// creamColors holds the straight (non-premultiplied) cream colour per type.
var creamColors = [conditionTypeCount]color.NRGBA{
	ConditionAcne:     {R: 255, G: 89, B: 191, A: 255}, // pink
	ConditionWrinkles: {R: 89, G: 56, B: 31, A: 255},   // brown
	ConditionScars:    {R: 51, G: 255, B: 102, A: 255}, // green
}

// CreamColor returns the reference cream colour that treats c.
func (c ConditionType) CreamColor() color.NRGBA {
	if !c.Valid() {
		return creamColors[ConditionAcne]
	}
	return creamColors[c]
}

// conditionFromKey matches one normalized token or label against the
// known spellings of each condition type.
func conditionFromKey(key string) (ConditionType, bool) {
	switch {
	case key == "":
		return 0, false
	case key == "acne" || strings.HasPrefix(key, "acn") ||
		strings.Contains(key, "espinilla") || strings.Contains(key, "pimple"):
		return ConditionAcne, true
	case key == "arrugas" || key == "arruga" || strings.Contains(key, "wrinkle"):
		return ConditionWrinkles, true
	case key == "cicatrices" || key == "cicatriz" || strings.Contains(key, "scar"):
		return ConditionScars, true
	}
	return 0, false
}

// ParseConditionType resolves a localized condition label such as "Acné"
// or "cicatrices".
func ParseConditionType(label string) (ConditionType, error) {
	if c, ok := conditionFromKey(normalizeKey(label)); ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownConditionType, label)
}

// Appearance identifies the reference art shown for a condition. The empty
// value means "no art available".
type Appearance string

// SkinCondition is one requested treatment on one zone. It is immutable
// once constructed.
type SkinCondition struct {
	typ        ConditionType
	zone       Zone
	appearance Appearance
}

// NewSkinCondition builds a condition from explicit type and zone tags.
func NewSkinCondition(typ ConditionType, zone Zone, appearance Appearance) (SkinCondition, error) {
	if !typ.Valid() {
		return SkinCondition{}, fmt.Errorf("%w: condition type %d", ErrMalformedContent, typ)
	}
	if !zone.Valid() {
		return SkinCondition{}, fmt.Errorf("%w: zone %d", ErrMalformedContent, zone)
	}
	if strings.TrimSpace(string(appearance)) == "" {
		return SkinCondition{}, fmt.Errorf("%w: empty appearance for %s/%s", ErrMalformedContent, typ, zone)
	}
	return SkinCondition{typ: typ, zone: zone, appearance: appearance}, nil
}

// ParseSkinCondition infers type and zone from a content name such as
// "acne_frente_01". It is meant for content ingestion only; generation
// uses NewSkinCondition.
func ParseSkinCondition(name string) (SkinCondition, error) {
	tokens := nameTokens(name)

	typ, typeOK := ConditionType(0), false
	for _, tok := range tokens {
		if c, ok := conditionFromKey(tok); ok {
			typ, typeOK = c, true
			break
		}
	}
	if !typeOK {
		return SkinCondition{}, fmt.Errorf("%w: %q: %w", ErrMalformedContent, name, ErrUnknownConditionType)
	}

	zone, zoneOK := zoneFromTokens(tokens)
	if !zoneOK {
		return SkinCondition{}, fmt.Errorf("%w: %q: %w", ErrMalformedContent, name, ErrUnknownZone)
	}
	return NewSkinCondition(typ, zone, Appearance(name))
}

func (sc SkinCondition) Type() ConditionType { return sc.typ }
func (sc SkinCondition) Zone() Zone { return sc.zone }
func (sc SkinCondition) Appearance() Appearance { return sc.appearance }

// CreamColor is shorthand for sc.Type().CreamColor().
func (sc SkinCondition) CreamColor() color.NRGBA { return sc.typ.CreamColor() }

func (sc SkinCondition) String() string {
	return fmt.Sprintf("%s@%s", sc.typ, sc.zone)
}
