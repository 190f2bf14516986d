package clinic

import (
	"fmt"
	"image"
	"image/color"

	"github.com/shopspring/decimal"
)

// ScoringConfig holds the evaluator thresholds and weights.
type ScoringConfig struct {
	MaskThreshold         float64 // mask sample must exceed this to request a pixel
	PaintedAlphaThreshold uint8   // alpha at or above this counts as painted
	ColorTolerance        int     // per-channel tolerance, 0-255

	DirtyPenaltyWeight      float64
	WrongColorPenaltyWeight float64
	TimeBonusWeight         float64

	// PenalizeOutside counts paint outside every requested zone as dirty.
	// When false, out-of-zone paint is free.
	PenalizeOutside bool

	MinPayoutMultiplier   float64 // multiplier at score 0
	MaxPayoutMultiplier   float64 // multiplier at score 1
	ConsolationMultiplier float64 // payout when no zone produced a target
}

// DefaultScoringConfig returns the shipped tuning.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		MaskThreshold:           0.1,
		PaintedAlphaThreshold:   20,
		ColorTolerance:          40,
		DirtyPenaltyWeight:      0.8,
		WrongColorPenaltyWeight: 0.9,
		TimeBonusWeight:         0.2,
		PenalizeOutside:         true,
		MinPayoutMultiplier:     0.2,
		MaxPayoutMultiplier:     1.2,
		ConsolationMultiplier:   0.2,
	}
}

// EvalResult is the outcome of one evaluation. Rates and score are in
// [0,1]. The pixel counts are kept for reporting.
type EvalResult struct {
	CorrectCoverage float64
	WrongColorRate  float64
	DirtyRate       float64
	FinalScore      float64
	FinalPayment    int

	RequestedPixels int
	PaintedInside   int
	PaintedOutside  int
	CorrectPixels   int
	WrongPixels     int
}

func (r EvalResult) String() string {
	return fmt.Sprintf("coverage=%.3f wrong=%.3f dirty=%.3f score=%.3f pay=%d",
		r.CorrectCoverage, r.WrongColorRate, r.DirtyRate, r.FinalScore, r.FinalPayment)
}

// Evaluate scores a painted canvas against the requested conditions.
// canvas holds premultiplied RGBA and must not change during the call.
// Evaluate has no side effects beyond diagnostics, so identical inputs give
// identical results.
func Evaluate(
	conditions []SkinCondition,
	basePayment int,
	remainingTime, totalRoundDuration float64,
	canvas *image.RGBA,
	masks MaskCatalog,
	cfg ScoringConfig,
	opts ...Option,
) EvalResult {
	rep := newReporter(opts)

	if len(conditions) == 0 {
		rep.warn("eval", "no_conditions", "nothing was requested", 0)
		return EvalResult{}
	}
	if canvas == nil || canvas.Bounds().Empty() {
		rep.warn("eval", "no_canvas", "no painted canvas available", 0)
		return EvalResult{}
	}

	b := canvas.Bounds()
	required := masks.requirements(conditions, b.Dx(), b.Dy(), cfg.MaskThreshold, rep)
	res := classify(canvas, required, cfg)

	if res.RequestedPixels == 0 {
		if res.PaintedOutside == 0 {
			return res
		}
		rep.warn("eval", "no_target",
			"requested pixel count is zero; check mask content, threshold and transforms", float64(res.PaintedOutside))
		if cfg.PenalizeOutside {
			res.DirtyRate = 1
		}
		res.FinalPayment = payout(basePayment, cfg.ConsolationMultiplier)
		return res
	}

	res.CorrectCoverage = ratio(res.CorrectPixels, res.RequestedPixels)
	res.WrongColorRate = ratio(res.WrongPixels, res.PaintedInside)
	if cfg.PenalizeOutside {
		res.DirtyRate = ratio(res.PaintedOutside, res.PaintedInside+res.PaintedOutside)
	}

	// Nothing to reward when no paint reached a requested zone.
	if res.PaintedInside == 0 {
		return res
	}

	res.FinalScore = Score(res.CorrectCoverage, res.DirtyRate, res.WrongColorRate, remainingTime, totalRoundDuration, cfg)
	res.FinalPayment = Payout(basePayment, res.FinalScore, cfg)
	return res
}

// classify walks the canvas once and counts requested, painted, correct
// and wrong pixels.
func classify(canvas *image.RGBA, required RequirementMap, cfg ScoringConfig) EvalResult {
	var res EvalResult
	b := canvas.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			req, requested := required.At(x, y)
			if requested {
				res.RequestedPixels++
			}

			i := canvas.PixOffset(b.Min.X+x, b.Min.Y+y)
			p := canvas.Pix[i : i+4 : i+4]
			if p[3] < cfg.PaintedAlphaThreshold {
				continue
			}
			if !requested {
				res.PaintedOutside++
				continue
			}

			res.PaintedInside++
			if colorMatches(p[0], p[1], p[2], p[3], req.CreamColor(), cfg.ColorTolerance) {
				res.CorrectPixels++
			} else {
				res.WrongPixels++
			}
		}
	}
	return res
}

// colorMatches un-premultiplies (r,g,b,a) and compares each channel with
// want independently.
func colorMatches(r, g, b, a uint8, want color.NRGBA, tolerance int) bool {
	if a == 0 {
		return false
	}
	return absInt(unpremultiply(r, a)-int(want.R)) <= tolerance &&
		absInt(unpremultiply(g, a)-int(want.G)) <= tolerance &&
		absInt(unpremultiply(b, a)-int(want.B)) <= tolerance
}

func unpremultiply(c, a uint8) int {
	v := (int(c)*255 + int(a)/2) / int(a)
	return min(v, 255)
}

// Score combines the rates into a final score in [0,1]. The time bonus is
// the remaining fraction of the round times TimeBonusWeight.
func Score(coverage, dirtyRate, wrongColorRate, remainingTime, totalRoundDuration float64, cfg ScoringConfig) float64 {
	timeBonus := 0.0
	if totalRoundDuration > 0 {
		timeBonus = clamp01(remainingTime/totalRoundDuration) * cfg.TimeBonusWeight
	}
	return clamp01(coverage -
		dirtyRate*cfg.DirtyPenaltyWeight -
		wrongColorRate*cfg.WrongColorPenaltyWeight +
		timeBonus)
}

// Payout converts a score into money: basePayment times a multiplier
// interpolated between MinPayoutMultiplier and MaxPayoutMultiplier.
func Payout(basePayment int, score float64, cfg ScoringConfig) int {
	m := lerp(cfg.MinPayoutMultiplier, cfg.MaxPayoutMultiplier, clamp01(score))
	return payout(basePayment, m)
}

// payout rounds basePayment*multiplier half away from zero. Decimal
// arithmetic keeps products like 50*0.7 from landing on 34.999.
func payout(basePayment int, multiplier float64) int {
	if basePayment <= 0 || multiplier <= 0 {
		return 0
	}
	amount := decimal.NewFromInt(int64(basePayment)).Mul(decimal.NewFromFloat(multiplier))
	return int(amount.Round(0).IntPart())
}

func unitCoord(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
