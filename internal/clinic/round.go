package clinic

// RoundState is the phase of one treatment round.
type RoundState int

const (
	RoundRunning RoundState = iota
	RoundResults
)

func (s RoundState) String() string {
	switch s {
	case RoundRunning:
		return "running"
	case RoundResults:
		return "results"
	default:
		return "unknown"
	}
}

// fallbackRoundDuration is used when a round has no customer to take the
// time limit from.
const fallbackRoundDuration = 60.0

// RoundSettings is the per-round configuration shared by every customer.
type RoundSettings struct {
	Masks      MaskCatalog
	Scoring    ScoringConfig
	CanvasSize int
	Brush      Brush
}

// DefaultRoundSettings uses a 256px canvas with the built-in masks.
func DefaultRoundSettings() RoundSettings {
	return RoundSettings{
		Masks:      DefaultMaskCatalog(256),
		Scoring:    DefaultScoringConfig(),
		CanvasSize: 256,
		Brush:      DefaultBrush(),
	}
}

// Round runs one customer's treatment: a countdown while the player paints,
// then a single evaluation. Painting is refused once the round has ended,
// and the evaluator reads a snapshot, so the canvas it scores never changes
// underneath it.
type Round struct {
	session  *Session
	customer *Customer
	settings RoundSettings
	opts     []Option

	canvas    *Canvas
	cream     ConditionType
	state     RoundState
	duration  float64
	remaining float64
	result    EvalResult
}

// NewRound starts a running round for customer within session. The round
// lasts the treatment's time limit.
func NewRound(session *Session, customer *Customer, settings RoundSettings, opts ...Option) *Round {
	duration := fallbackRoundDuration
	if customer != nil && customer.Treatment != nil {
		duration = float64(customer.Treatment.TimeLimit())
	}
	canvas := NewCanvas(settings.CanvasSize)
	canvas.SetBrush(settings.Brush)

	if session != nil {
		session.SetCustomer(customer)
	}
	return &Round{
		session:   session,
		customer:  customer,
		settings:  settings,
		opts:      opts,
		canvas:    canvas,
		cream:     ConditionAcne,
		state:     RoundRunning,
		duration:  duration,
		remaining: duration,
	}
}

func (r *Round) State() RoundState { return r.state }
func (r *Round) Customer() *Customer { return r.customer }
func (r *Round) Canvas() *Canvas { return r.canvas }
func (r *Round) Cream() ConditionType { return r.cream }
func (r *Round) Duration() float64 { return r.duration }
func (r *Round) Remaining() float64 { return r.remaining }
func (r *Round) Result() EvalResult { return r.result }
func (r *Round) CanPaint() bool { return r.state == RoundRunning }

// SelectCream switches the cream used by Paint.
func (r *Round) SelectCream(t ConditionType) {
	if t.Valid() {
		r.cream = t
	}
}

// Paint lays a dab of the selected cream at (u, v). It reports false when
// the round is no longer accepting paint.
func (r *Round) Paint(u, v float64) bool {
	if !r.CanPaint() {
		return false
	}
	r.canvas.PaintAtUV(u, v, r.cream.CreamColor())
	return true
}

// Tick advances the countdown by dt seconds and ends the round when time
// runs out. It reports whether the round ended during this tick.
func (r *Round) Tick(dt float64) bool {
	if r.state != RoundRunning {
		return false
	}
	r.remaining -= dt
	if r.remaining <= 0 {
		r.remaining = 0
		r.End()
		return true
	}
	return false
}

// End stops painting, scores a snapshot of the canvas against the
// customer's treatment and pays the session. Later calls return the same
// result without paying again.
func (r *Round) End() EvalResult {
	if r.state == RoundResults {
		return r.result
	}
	r.state = RoundResults

	if r.customer == nil || r.customer.Treatment == nil {
		return r.result
	}
	t := r.customer.Treatment
	snap := r.canvas.Snapshot()
	r.result = Evaluate(t.Conditions(), t.Payment(), r.remaining, r.duration,
		snap, r.settings.Masks, r.settings.Scoring, r.opts...)

	if r.session != nil {
		r.session.Settle(r.customer, r.result)
	}
	return r.result
}

// ResultsText is the results panel text, or "" while running.
func (r *Round) ResultsText() string {
	if r.state != RoundResults {
		return ""
	}
	money := 0
	if r.session != nil {
		money = r.session.Money()
	}
	return FormatResults(r.result, money)
}
