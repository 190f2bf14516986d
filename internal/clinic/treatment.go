package clinic

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 3

	// wrinkleZoneLimit caps wrinkles to the first zones in priority order
	// (forehead and cheeks).
	wrinkleZoneLimit = 2
)

// TreatmentConfig holds the affine payment and time formulas. Both grow
// with effective difficulty.
type TreatmentConfig struct {
	BasePayment          int
	BaseTimeLimit        int
	PaymentPerDifficulty int
	TimePerDifficulty    float64
}

// DefaultTreatmentConfig returns the shipped tuning.
func DefaultTreatmentConfig() TreatmentConfig {
	return TreatmentConfig{
		BasePayment:          50,
		BaseTimeLimit:        60,
		PaymentPerDifficulty: 5,
		TimePerDifficulty:    3,
	}
}

// Payment returns basePayment + PaymentPerDifficulty*difficulty.
func (cfg TreatmentConfig) Payment(difficulty int) int {
	return cfg.BasePayment + cfg.PaymentPerDifficulty*difficulty
}

// TimeLimit returns ceil(baseTimeLimit + TimePerDifficulty*difficulty) in
// seconds.
func (cfg TreatmentConfig) TimeLimit(difficulty int) int {
	return int(math.Ceil(float64(cfg.BaseTimeLimit) + cfg.TimePerDifficulty*float64(difficulty)))
}

// Treatment is what one customer asks for. It is immutable after
// GenerateTreatment returns it.
type Treatment struct {
	id                  uuid.UUID
	requestedDifficulty int
	effectiveDifficulty int
	conditions          []SkinCondition
	payment             int
	timeLimit           int
}

func (t *Treatment) ID() uuid.UUID { return t.id }
func (t *Treatment) RequestedDifficulty() int { return t.requestedDifficulty }
func (t *Treatment) EffectiveDifficulty() int { return t.effectiveDifficulty }
func (t *Treatment) Payment() int { return t.payment }
func (t *Treatment) TimeLimit() int { return t.timeLimit }
func (t *Treatment) ConditionCount() int { return len(t.conditions) }

// Conditions returns a copy of the conditions in placement order.
func (t *Treatment) Conditions() []SkinCondition {
	out := make([]SkinCondition, len(t.conditions))
	copy(out, t.conditions)
	return out
}

func (t *Treatment) String() string {
	return fmt.Sprintf("treatment %s difficulty=%d/%d conditions=%v pay=%d time=%ds",
		t.id, t.effectiveDifficulty, t.requestedDifficulty, t.conditions, t.payment, t.timeLimit)
}

type candidate struct {
	typ  ConditionType
	zone Zone
	cond SkinCondition
}

// GenerateTreatment picks up to requestedDifficulty conditions from catalog
// so that every zone and every type is used at most once and wrinkles stay
// on the first two zones. It never fails: a missing or broken catalog gives
// a treatment with no conditions and effective difficulty 1.
func GenerateTreatment(rng *rand.Rand, requestedDifficulty int, catalog Catalog, cfg TreatmentConfig, opts ...Option) *Treatment {
	rep := newReporter(opts)
	requested := clampInt(requestedDifficulty, MinDifficulty, MaxDifficulty)
	if requested != requestedDifficulty {
		rep.warn("treatment", "difficulty_clamped",
			fmt.Sprintf("requested %d clamped to %d", requestedDifficulty, requested), float64(requestedDifficulty))
	}

	cands := enumerateCandidates(catalog, rep)
	rng.Shuffle(len(cands), func(i, j int) {
		cands[i], cands[j] = cands[j], cands[i]
	})

	var usedZones [zoneCount]bool
	var usedTypes [conditionTypeCount]bool
	conditions := make([]SkinCondition, 0, requested)
	for _, c := range cands {
		if len(conditions) >= requested {
			break
		}
		if usedZones[c.zone] || usedTypes[c.typ] {
			continue
		}
		usedZones[c.zone] = true
		usedTypes[c.typ] = true
		conditions = append(conditions, c.cond)
	}

	if len(conditions) == 0 {
		rep.warn("treatment", "empty", "no valid catalog entries; treatment has zero conditions", 0)
	} else if len(conditions) < requested {
		rep.warn("treatment", "reduced_difficulty",
			fmt.Sprintf("placed %d of %d requested conditions", len(conditions), requested), float64(len(conditions)))
	}

	effective := max(1, len(conditions))
	return &Treatment{
		id:                  uuidFromRand(rng),
		requestedDifficulty: requested,
		effectiveDifficulty: effective,
		conditions:          conditions,
		payment:             cfg.Payment(effective),
		timeLimit:           cfg.TimeLimit(effective),
	}
}

// enumerateCandidates lists every (type, zone) pair the catalog has valid
// art for, in catalog order.
func enumerateCandidates(catalog Catalog, rep reporter) []candidate {
	totalZones := len(catalog)
	if totalZones > int(zoneCount) {
		rep.warn("catalog", "extra_rows",
			fmt.Sprintf("catalog has %d zone rows, only %d zones exist", totalZones, zoneCount), float64(totalZones))
		totalZones = int(zoneCount)
	}
	wrinkleZones := min(wrinkleZoneLimit, totalZones)

	var out []candidate
	for zi := 0; zi < totalZones; zi++ {
		zone := Zone(zi)
		for _, typ := range AllConditionTypes {
			if typ == ConditionWrinkles && zi >= wrinkleZones {
				continue
			}
			a, ok := catalog.Lookup(zone, typ)
			if !ok {
				continue
			}
			sc, err := NewSkinCondition(typ, zone, a)
			if err != nil {
				rep.warn("catalog", "skip_candidate", err.Error(), 0)
				continue
			}
			out = append(out, candidate{typ: typ, zone: zone, cond: sc})
		}
	}
	return out
}

// uuidFromRand draws a v4 UUID from rng so seeded runs stay reproducible.
func uuidFromRand(rng *rand.Rand) uuid.UUID {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return uuid.New()
	}
	return id
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
