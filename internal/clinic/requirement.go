package clinic

import "fmt"

// notRequested marks a pixel outside every requested zone.
const notRequested = -1

// RequirementMap records, per canvas pixel, which cream a treatment asks
// for there. The evaluator scores against it, and anything that needs to
// know where the requested zones are (hints, scripted painters) should read
// the same map so it cannot disagree with the score.
type RequirementMap struct {
	width, height int
	cells         []int8 // row-major condition type, or notRequested
}

func (rm RequirementMap) Width() int { return rm.width }
func (rm RequirementMap) Height() int { return rm.height }

// At returns the condition type required at (x, y) and whether the pixel is
// requested at all.
func (rm RequirementMap) At(x, y int) (ConditionType, bool) {
	if x < 0 || y < 0 || x >= rm.width || y >= rm.height {
		return 0, false
	}
	c := rm.cells[y*rm.width+x]
	if c == notRequested {
		return 0, false
	}
	return ConditionType(c), true
}

// Count returns the number of requested pixels.
func (rm RequirementMap) Count() int {
	n := 0
	for _, c := range rm.cells {
		if c != notRequested {
			n++
		}
	}
	return n
}

// Pixels returns the row-major indices of pixels that require typ.
func (rm RequirementMap) Pixels(typ ConditionType) []int {
	var out []int
	for i, c := range rm.cells {
		if c == int8(typ) {
			out = append(out, i)
		}
	}
	return out
}

// Requirements builds the requirement map for conditions on a width×height
// canvas. A pixel is requested when the zone mask samples above threshold
// at its canvas UV. Conditions are applied in order, so a later condition
// wins where masks overlap. Zones without a mask are skipped and reported.
func (mc MaskCatalog) Requirements(conditions []SkinCondition, width, height int, threshold float64, opts ...Option) RequirementMap {
	return mc.requirements(conditions, width, height, threshold, newReporter(opts))
}

func (mc MaskCatalog) requirements(conditions []SkinCondition, width, height int, threshold float64, rep reporter) RequirementMap {
	w, h := max(width, 0), max(height, 0)
	rm := RequirementMap{width: w, height: h, cells: make([]int8, w*h)}
	for i := range rm.cells {
		rm.cells[i] = notRequested
	}

	us := make([]float64, w)
	for x := range us {
		us[x] = unitCoord(x, w)
	}

	for _, sc := range conditions {
		mask := mc[sc.Zone()]
		if mask == nil {
			rep.warn("eval", "missing_mask", fmt.Sprintf("%s: no mask for zone %s", sc, sc.Zone()), 0)
			continue
		}
		typ := int8(sc.Type())
		for y := 0; y < h; y++ {
			v := unitCoord(y, h)
			row := rm.cells[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				if mask.Sample(us[x], v) > threshold {
					row[x] = typ
				}
			}
		}
	}
	return rm
}
