package clinic

import (
	"fmt"
	"strings"
)

// Zone is an anatomical face region eligible for treatment. The numeric
// order is the zone priority order used by the catalog and by the wrinkles
// restriction.
type Zone int

const (
	ZoneForehead Zone = iota
	ZoneCheeks
	ZoneChin
	zoneCount // sentinel
)

// AllZones lists the zones in priority order.
var AllZones = [zoneCount]Zone{ZoneForehead, ZoneCheeks, ZoneChin}

func (z Zone) String() string {
	switch z {
	case ZoneForehead:
		return "forehead"
	case ZoneCheeks:
		return "cheeks"
	case ZoneChin:
		return "chin"
	default:
		return "unknown"
	}
}

// Valid reports whether z is one of the known zones.
func (z Zone) Valid() bool {
	return z >= 0 && z < zoneCount
}

// zoneAliases maps normalized labels to zones. Keys must already be in
// normalizeKey form.
var zoneAliases = map[string]Zone{
	"forehead": ZoneForehead,
	"frente":   ZoneForehead,
	"tzone":    ZoneForehead,
	"t-zone":   ZoneForehead,
	"t zone":   ZoneForehead,
	"zonat":    ZoneForehead,
	"zona t":   ZoneForehead,

	"cheeks":   ZoneCheeks,
	"cheek":    ZoneCheeks,
	"mejillas": ZoneCheeks,
	"mejilla":  ZoneCheeks,
	"cara":     ZoneCheeks,
	"cachetes": ZoneCheeks,

	"chin":     ZoneChin,
	"barbilla": ZoneChin,
	"menton":   ZoneChin,
}

// ParseZone resolves a free-form, possibly localized or accented label to a
// Zone.
func ParseZone(label string) (Zone, error) {
	key := normalizeKey(label)
	if z, ok := zoneAliases[key]; ok {
		return z, nil
	}
	if z, ok := zoneAliases[strings.ReplaceAll(key, " ", "")]; ok {
		return z, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownZone, label)
}

// zoneFromTokens looks for a zone alias among name tokens, including the
// two-token "zona t" form.
func zoneFromTokens(tokens []string) (Zone, bool) {
	for i, tok := range tokens {
		if z, ok := zoneAliases[tok]; ok {
			return z, true
		}
		if i+1 < len(tokens) {
			if z, ok := zoneAliases[tok+" "+tokens[i+1]]; ok {
				return z, true
			}
		}
	}
	return 0, false
}
