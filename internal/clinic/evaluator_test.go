package clinic

import (
	"image"
	"image/color"
	"math"
	"testing"
)

const evalSize = 10

// rowMask is an alpha mask over an evalSize square that is opaque on rows
// [from, to) and transparent elsewhere.
func rowMask(t *testing.T, from, to int) *ZoneMask {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, evalSize, evalSize))
	for y := from; y < to; y++ {
		for x := 0; x < evalSize; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	m, err := NewZoneMask(img, IdentityTransform())
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	return m
}

// fullMask requests every pixel.
func fullMask(t *testing.T) *ZoneMask {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, evalSize, evalSize))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	m, err := NewZoneMask(img, IdentityTransform())
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	return m
}

// splitMasks puts the forehead on the top half and cheeks on the bottom
// half of the canvas.
func splitMasks(t *testing.T) MaskCatalog {
	return MaskCatalog{
		ZoneForehead: rowMask(t, 0, 5),
		ZoneCheeks:   rowMask(t, 5, 10),
	}
}

func mustCondition(t *testing.T, typ ConditionType, zone Zone) SkinCondition {
	t.Helper()
	sc, err := NewSkinCondition(typ, zone, Appearance(typ.String()+"_"+zone.String()))
	if err != nil {
		t.Fatalf("condition: %v", err)
	}
	return sc
}

func blankCanvas() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, evalSize, evalSize))
}

func paintRows(img *image.RGBA, from, to int, c color.Color) {
	for y := from; y < to; y++ {
		for x := 0; x < evalSize; x++ {
			img.Set(x, y, c)
		}
	}
}

func twoZoneConditions(t *testing.T) []SkinCondition {
	return []SkinCondition{
		mustCondition(t, ConditionAcne, ZoneForehead),
		mustCondition(t, ConditionScars, ZoneCheeks),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Scenario ---

func TestEvaluate_HalfCoverageScenario(t *testing.T) {
	c := NewCatalog()
	c.Set(ZoneForehead, ConditionAcne, "acne_forehead")
	c.Set(ZoneCheeks, ConditionScars, "scars_cheeks")
	masks := splitMasks(t)

	canvas := blankCanvas()
	paintRows(canvas, 0, 5, ConditionAcne.CreamColor())

	for seed := int64(0); seed < 20; seed++ {
		tr := GenerateTreatment(newRNG(seed), 2, c, DefaultTreatmentConfig())
		if tr.ConditionCount() != 2 {
			t.Fatalf("seed %d: expected 2 conditions, got %s", seed, tr)
		}

		res := Evaluate(tr.Conditions(), 50, 0, 60, canvas, masks, DefaultScoringConfig())
		if res.RequestedPixels != 100 || res.PaintedInside != 50 || res.CorrectPixels != 50 {
			t.Fatalf("seed %d: unexpected counts: %+v", seed, res)
		}
		if !approx(res.CorrectCoverage, 0.5) || res.WrongColorRate != 0 || res.DirtyRate != 0 {
			t.Fatalf("seed %d: expected coverage 0.5 and no penalties, got %s", seed, res)
		}
		if !approx(res.FinalScore, 0.5) {
			t.Fatalf("seed %d: expected score 0.5, got %v", seed, res.FinalScore)
		}
		if res.FinalPayment != 35 {
			t.Fatalf("seed %d: expected payment 35, got %d", seed, res.FinalPayment)
		}
	}
}

func TestEvaluate_PerfectRound(t *testing.T) {
	canvas := blankCanvas()
	paintRows(canvas, 0, 5, ConditionAcne.CreamColor())
	paintRows(canvas, 5, 10, ConditionScars.CreamColor())

	res := Evaluate(twoZoneConditions(t), 50, 30, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.CorrectCoverage != 1 || res.FinalScore != 1 {
		t.Fatalf("expected a perfect score, got %s", res)
	}
	if res.FinalPayment != 60 {
		t.Fatalf("expected payment 60, got %d", res.FinalPayment)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	canvas := blankCanvas()
	paintRows(canvas, 0, 3, ConditionAcne.CreamColor())
	paintRows(canvas, 6, 8, ConditionWrinkles.CreamColor())
	masks := splitMasks(t)
	conds := twoZoneConditions(t)

	a := Evaluate(conds, 50, 12, 60, canvas, masks, DefaultScoringConfig())
	b := Evaluate(conds, 50, 12, 60, canvas, masks, DefaultScoringConfig())
	if a != b {
		t.Fatalf("repeated evaluation differs:\n%+v\n%+v", a, b)
	}
}

// --- Edge cases ---

func TestEvaluate_BlankCanvas(t *testing.T) {
	res := Evaluate(twoZoneConditions(t), 50, 60, 60, blankCanvas(), splitMasks(t), DefaultScoringConfig())
	if res.RequestedPixels != 100 {
		t.Fatalf("expected 100 requested pixels, got %d", res.RequestedPixels)
	}
	if res.CorrectCoverage != 0 || res.FinalScore != 0 || res.FinalPayment != 0 {
		t.Fatalf("blank canvas should earn nothing, got %s", res)
	}
}

func TestEvaluate_NoConditionsOrCanvas(t *testing.T) {
	diag := NewDiagLog()
	canvas := blankCanvas()
	paintRows(canvas, 0, 10, ConditionAcne.CreamColor())

	if res := Evaluate(nil, 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig(), WithDiagLog(diag)); res != (EvalResult{}) {
		t.Fatalf("no conditions should give a zero result, got %+v", res)
	}
	if res := Evaluate(twoZoneConditions(t), 50, 0, 60, nil, splitMasks(t), DefaultScoringConfig(), WithDiagLog(diag)); res != (EvalResult{}) {
		t.Fatalf("nil canvas should give a zero result, got %+v", res)
	}
	empty := image.NewRGBA(image.Rectangle{})
	if res := Evaluate(twoZoneConditions(t), 50, 0, 60, empty, splitMasks(t), DefaultScoringConfig(), WithDiagLog(diag)); res != (EvalResult{}) {
		t.Fatalf("empty canvas should give a zero result, got %+v", res)
	}
	if diag.Count("eval", "no_conditions") != 1 || diag.Count("eval", "no_canvas") != 2 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.Format())
	}
}

func TestEvaluate_WrongColor(t *testing.T) {
	canvas := blankCanvas()
	paintRows(canvas, 0, 5, ConditionScars.CreamColor())

	res := Evaluate(twoZoneConditions(t), 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.CorrectCoverage != 0 || res.WrongColorRate != 1 {
		t.Fatalf("expected all paint wrong, got %s", res)
	}
	if res.FinalScore != 0 {
		t.Fatalf("expected score 0, got %v", res.FinalScore)
	}
	if res.FinalPayment != 10 {
		t.Fatalf("score 0 should still pay the minimum multiplier, got %d", res.FinalPayment)
	}
}

func TestEvaluate_DirtyPaint(t *testing.T) {
	conds := []SkinCondition{mustCondition(t, ConditionAcne, ZoneForehead)}
	canvas := blankCanvas()
	paintRows(canvas, 0, 5, ConditionAcne.CreamColor())
	paintRows(canvas, 9, 10, ConditionAcne.CreamColor())

	res := Evaluate(conds, 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.PaintedOutside != 10 || res.PaintedInside != 50 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if !approx(res.DirtyRate, 10.0/60.0) {
		t.Fatalf("expected dirty rate 1/6, got %v", res.DirtyRate)
	}
	if !approx(res.FinalScore, 1-0.8/6) {
		t.Fatalf("expected score %v, got %v", 1-0.8/6, res.FinalScore)
	}
	if res.FinalPayment != 53 {
		t.Fatalf("expected payment 53, got %d", res.FinalPayment)
	}

	lenient := DefaultScoringConfig()
	lenient.PenalizeOutside = false
	res = Evaluate(conds, 50, 0, 60, canvas, splitMasks(t), lenient)
	if res.DirtyRate != 0 || res.FinalScore != 1 || res.FinalPayment != 60 {
		t.Fatalf("outside paint should be free when not penalized, got %s", res)
	}
}

func TestEvaluate_ConsolationWhenNoTarget(t *testing.T) {
	diag := NewDiagLog()
	conds := []SkinCondition{mustCondition(t, ConditionAcne, ZoneChin)}

	res := Evaluate(conds, 50, 0, 60, blankCanvas(), splitMasks(t), DefaultScoringConfig(), WithDiagLog(diag))
	if res != (EvalResult{}) {
		t.Fatalf("no target and no paint should be a zero result, got %+v", res)
	}

	canvas := blankCanvas()
	paintRows(canvas, 0, 2, ConditionAcne.CreamColor())
	res = Evaluate(conds, 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig(), WithDiagLog(diag))
	if res.DirtyRate != 1 || res.FinalScore != 0 || res.CorrectCoverage != 0 {
		t.Fatalf("expected dirty 1 and score 0, got %s", res)
	}
	if res.FinalPayment != 10 {
		t.Fatalf("expected consolation payment 10, got %d", res.FinalPayment)
	}
	if diag.Count("eval", "missing_mask") != 2 || diag.Count("eval", "no_target") != 1 {
		t.Fatalf("unexpected diagnostics:\n%s", diag.Format())
	}

	lenient := DefaultScoringConfig()
	lenient.PenalizeOutside = false
	res = Evaluate(conds, 50, 0, 60, canvas, splitMasks(t), lenient)
	if res.DirtyRate != 0 || res.FinalScore != 0 || res.PaintedOutside != 20 {
		t.Fatalf("out-of-zone paint should not count as dirty when unpenalized, got %s", res)
	}
	if res.FinalPayment != 10 {
		t.Fatalf("expected consolation payment 10, got %d", res.FinalPayment)
	}
}

func TestEvaluate_OverlapLastConditionWins(t *testing.T) {
	masks := MaskCatalog{ZoneForehead: fullMask(t), ZoneCheeks: fullMask(t)}
	conds := twoZoneConditions(t)

	scars := blankCanvas()
	paintRows(scars, 0, evalSize, ConditionScars.CreamColor())
	res := Evaluate(conds, 50, 0, 60, scars, masks, DefaultScoringConfig())
	if res.CorrectCoverage != 1 || res.WrongColorRate != 0 {
		t.Fatalf("later scars condition should own the overlap, got %s", res)
	}

	acne := blankCanvas()
	paintRows(acne, 0, evalSize, ConditionAcne.CreamColor())
	res = Evaluate(conds, 50, 0, 60, acne, masks, DefaultScoringConfig())
	if res.WrongColorRate != 1 {
		t.Fatalf("earlier acne condition should lose the overlap, got %s", res)
	}
}

func TestEvaluate_TranslucentPaint(t *testing.T) {
	cream := ConditionAcne.CreamColor()
	cream.A = 128

	canvas := blankCanvas()
	paintRows(canvas, 0, 5, cream)
	res := Evaluate(twoZoneConditions(t), 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.CorrectPixels != 50 {
		t.Fatalf("half-alpha cream should still match after unpremultiply, got %+v", res)
	}

	faint := ConditionAcne.CreamColor()
	faint.A = 19
	canvas = blankCanvas()
	paintRows(canvas, 0, 5, faint)
	res = Evaluate(twoZoneConditions(t), 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.PaintedInside != 0 {
		t.Fatalf("alpha below the painted threshold should not count, got %+v", res)
	}
}

func TestEvaluate_ColorTolerance(t *testing.T) {
	near := ConditionAcne.CreamColor()
	near.G += 40
	off := ConditionAcne.CreamColor()
	off.G += 41

	canvas := blankCanvas()
	paintRows(canvas, 0, 1, near)
	paintRows(canvas, 1, 2, off)
	res := Evaluate(twoZoneConditions(t), 50, 0, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if res.CorrectPixels != 10 || res.WrongPixels != 10 {
		t.Fatalf("expected 10 within tolerance and 10 outside, got %+v", res)
	}
}

func TestEvaluate_TimeBonus(t *testing.T) {
	canvas := blankCanvas()
	paintRows(canvas, 0, 5, ConditionAcne.CreamColor())

	res := Evaluate(twoZoneConditions(t), 50, 30, 60, canvas, splitMasks(t), DefaultScoringConfig())
	if !approx(res.FinalScore, 0.6) {
		t.Fatalf("half the time left should add 0.1, got %v", res.FinalScore)
	}
	res = Evaluate(twoZoneConditions(t), 50, 30, 0, canvas, splitMasks(t), DefaultScoringConfig())
	if !approx(res.FinalScore, 0.5) {
		t.Fatalf("zero round duration should give no bonus, got %v", res.FinalScore)
	}
}

// --- Score and payout ---

func TestScore_Monotonic(t *testing.T) {
	cfg := DefaultScoringConfig()
	prev := -1.0
	for c := 0.0; c <= 1.0; c += 0.05 {
		s := Score(c, 0.1, 0.1, 10, 60, cfg)
		if s < prev {
			t.Fatalf("score should not fall as coverage rises: %v after %v", s, prev)
		}
		prev = s
	}
	if Score(0.8, 0.3, 0, 0, 60, cfg) >= Score(0.8, 0.1, 0, 0, 60, cfg) {
		t.Fatal("more dirt should lower the score")
	}
	if Score(0.8, 0, 0.3, 0, 60, cfg) >= Score(0.8, 0, 0.1, 0, 60, cfg) {
		t.Fatal("more wrong colour should lower the score")
	}
	if s := Score(1, 0, 0, 60, 60, cfg); s != 1 {
		t.Fatalf("score should clamp to 1, got %v", s)
	}
	if s := Score(0, 1, 1, 0, 60, cfg); s != 0 {
		t.Fatalf("score should clamp to 0, got %v", s)
	}
}

func TestPayout_MonotonicAndRounded(t *testing.T) {
	cfg := DefaultScoringConfig()
	prev := -1
	for s := 0.0; s <= 1.0; s += 0.01 {
		p := Payout(55, s, cfg)
		if p < prev {
			t.Fatalf("payout should not fall as score rises: %d after %d", p, prev)
		}
		prev = p
	}
	if got := Payout(25, 0.5, cfg); got != 18 {
		t.Fatalf("17.5 should round away from zero to 18, got %d", got)
	}
	if got := Payout(50, 1, cfg); got != 60 {
		t.Fatalf("expected 60 at full score, got %d", got)
	}
	if Payout(0, 1, cfg) != 0 || Payout(-10, 1, cfg) != 0 {
		t.Fatal("non-positive base should pay nothing")
	}
}

func TestUnpremultiply(t *testing.T) {
	if got := unpremultiply(128, 128); got != 255 {
		t.Fatalf("expected 255, got %d", got)
	}
	if got := unpremultiply(22, 64); got != 88 {
		t.Fatalf("expected 88, got %d", got)
	}
	if got := unpremultiply(255, 200); got != 255 {
		t.Fatalf("out-of-range premultiplied value should clamp to 255, got %d", got)
	}
}
