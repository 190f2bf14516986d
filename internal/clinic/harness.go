package clinic

import (
	"math/rand"
)

// Painter is a scripted player for headless runs. It paints pixels
// directly instead of brush dabs so results depend only on the seed.
type Painter struct {
	Coverage float64 // fraction of each requested zone painted, [0,1]
	Accuracy float64 // chance each zone is painted with the right cream
	Spill    float64 // stray pixels outside requested zones, as a fraction of pixels painted inside
	Speed    float64 // fraction of the time limit used before finishing, [0,1]
}

// PerfectPainter covers every requested pixel with the right cream, paints
// nothing else and uses the whole time limit.
func PerfectPainter() Painter {
	return Painter{Coverage: 1, Accuracy: 1, Spill: 0, Speed: 1}
}

// TestClinic is a headless clinic used by tests and the batch report. It
// serves customers one after another through real Rounds with a scripted
// Painter and deterministic seeding.
type TestClinic struct {
	Catalog   Catalog
	Treatment TreatmentConfig
	Settings  RoundSettings
	Session   *Session
	DiagLog   *DiagLog

	rng        *rand.Rand
	painter    Painter
	difficulty int // 0 draws a random difficulty per customer
}

// ClinicOption is a builder function applied to a TestClinic during
// construction.
type ClinicOption func(*TestClinic)

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) ClinicOption {
	return func(tc *TestClinic) {
		tc.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}
}

// WithCanvasSize sets the canvas size and rebuilds the default masks to
// match.
func WithCanvasSize(size int) ClinicOption {
	return func(tc *TestClinic) {
		tc.Settings.CanvasSize = size
		tc.Settings.Masks = DefaultMaskCatalog(size)
	}
}

// WithMasks replaces the zone masks.
func WithMasks(masks MaskCatalog) ClinicOption {
	return func(tc *TestClinic) { tc.Settings.Masks = masks }
}

// WithCatalog replaces the reference art catalog.
func WithCatalog(c Catalog) ClinicOption {
	return func(tc *TestClinic) { tc.Catalog = c }
}

// WithPainter sets the scripted player.
func WithPainter(p Painter) ClinicOption {
	return func(tc *TestClinic) { tc.painter = p }
}

// WithDifficulty fixes the requested difficulty instead of drawing it.
func WithDifficulty(d int) ClinicOption {
	return func(tc *TestClinic) { tc.difficulty = d }
}

// WithScoring replaces the scoring configuration.
func WithScoring(cfg ScoringConfig) ClinicOption {
	return func(tc *TestClinic) { tc.Settings.Scoring = cfg }
}

// WithTreatmentConfig replaces the payment and time formulas.
func WithTreatmentConfig(cfg TreatmentConfig) ClinicOption {
	return func(tc *TestClinic) { tc.Treatment = cfg }
}

// WithStartingMoney sets the session's opening balance.
func WithStartingMoney(m int) ClinicOption {
	return func(tc *TestClinic) { tc.Session = NewSession(m) }
}

// NewTestClinic builds a clinic with a full catalog, 64px canvas, default
// tuning and a perfect painter unless options say otherwise.
func NewTestClinic(opts ...ClinicOption) *TestClinic {
	tc := &TestClinic{
		Catalog:   FullCatalog(),
		Treatment: DefaultTreatmentConfig(),
		Settings: RoundSettings{
			Masks:      DefaultMaskCatalog(64),
			Scoring:    DefaultScoringConfig(),
			CanvasSize: 64,
			Brush:      DefaultBrush(),
		},
		Session: NewSession(100),
		DiagLog: NewDiagLog(),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- test harness
		painter: PerfectPainter(),
	}
	for _, o := range opts {
		o(tc)
	}
	return tc
}

// NextCustomer generates the next arrival.
func (tc *TestClinic) NextCustomer() *Customer {
	if tc.difficulty <= 0 {
		return NewCustomer(tc.rng, tc.Catalog, tc.Treatment, WithDiagLog(tc.DiagLog))
	}
	return &Customer{
		ID:        uuidFromRand(tc.rng),
		Treatment: GenerateTreatment(tc.rng, tc.difficulty, tc.Catalog, tc.Treatment, WithDiagLog(tc.DiagLog)),
	}
}

// ServeCustomer runs one full round for a new customer and returns the
// finished round.
func (tc *TestClinic) ServeCustomer() *Round {
	c := tc.NextCustomer()
	r := NewRound(tc.Session, c, tc.Settings, WithDiagLog(tc.DiagLog))
	tc.painter.paint(r, tc.Settings, tc.rng)

	used := clamp01(tc.painter.Speed) * r.Duration()
	if !r.Tick(used) {
		r.End()
	}
	tc.Session.ClearCustomer()
	return r
}

// ServeCustomers serves n customers in sequence.
func (tc *TestClinic) ServeCustomers(n int) []*Round {
	rounds := make([]*Round, 0, n)
	for i := 0; i < n; i++ {
		rounds = append(rounds, tc.ServeCustomer())
	}
	return rounds
}

// paint fills the round's canvas according to the painter's skill. It
// targets exactly the pixels the evaluator will score.
func (p Painter) paint(r *Round, settings RoundSettings, rng *rand.Rand) {
	if r.Customer() == nil || r.Customer().Treatment == nil {
		return
	}
	canvas := r.Canvas()
	size := canvas.Size()
	conditions := r.Customer().Treatment.Conditions()
	required := settings.Masks.Requirements(conditions, size, size, settings.Scoring.MaskThreshold)

	paintedInside := 0
	var last ConditionType
	for _, sc := range conditions {
		pixels := required.Pixels(sc.Type())

		cream := sc.Type()
		if rng.Float64() >= p.Accuracy {
			cream = AllConditionTypes[(int(cream)+1+rng.Intn(int(conditionTypeCount)-1))%int(conditionTypeCount)]
		}
		last = cream
		r.SelectCream(cream)

		rng.Shuffle(len(pixels), func(i, j int) { pixels[i], pixels[j] = pixels[j], pixels[i] })
		n := roundHalfUp(clamp01(p.Coverage) * float64(len(pixels)))
		for _, idx := range pixels[:n] {
			canvas.Stamp(idx%size, idx/size, cream.CreamColor())
		}
		paintedInside += n
	}

	spill := roundHalfUp(max(p.Spill, 0) * float64(paintedInside))
	if spill == 0 {
		return
	}
	var outside []int
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if _, ok := required.At(x, y); !ok {
				outside = append(outside, y*size+x)
			}
		}
	}
	rng.Shuffle(len(outside), func(i, j int) { outside[i], outside[j] = outside[j], outside[i] })
	for _, idx := range outside[:min(spill, len(outside))] {
		canvas.Stamp(idx%size, idx/size, last.CreamColor())
	}
}
