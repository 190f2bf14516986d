package game

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Skin-Clinic/internal/clinic"
)

const (
	lineH = 16 // debug font line height
	padX  = 8
	padY  = 6
)

// panelLines builds the right-hand panel text for the current round.
func (g *Game) panelLines() []string {
	r := g.round
	lines := []string{fmt.Sprintf("Money: %d", g.session.Money())}

	if c := r.Customer(); c != nil && c.Treatment != nil {
		t := c.Treatment
		lines = append(lines,
			"",
			fmt.Sprintf("Customer %s", c.ID.String()[:8]),
			fmt.Sprintf("Difficulty %d  Pay %d", t.EffectiveDifficulty(), t.Payment()),
		)
		for _, sc := range t.Conditions() {
			lines = append(lines, fmt.Sprintf("  %-8s on %s", sc.Type(), sc.Zone()))
		}
		if t.ConditionCount() == 0 {
			lines = append(lines, "  (nothing to treat)")
		}
	}

	lines = append(lines, "")
	if r.State() == clinic.RoundRunning {
		lines = append(lines,
			fmt.Sprintf("Time: %d", int(math.Ceil(r.Remaining()))),
			fmt.Sprintf("Cream: %s", r.Cream()),
			"",
		)
		for _, ck := range creamKeys {
			mark := " "
			if ck.typ == r.Cream() {
				mark = "*"
			}
			lines = append(lines, mark+creamLabel(ck.typ))
		}
		lines = append(lines, "", "drag=paint  Enter=finish", "Z=zone hints")
	} else {
		lines = append(lines, strings.Split(r.ResultsText(), "\n")...)
		lines = append(lines, "", "N=next customer  C=copy")
	}
	if g.status != "" {
		lines = append(lines, "", g.status)
	}
	if n := g.loadWarnings + len(g.diag.Entries()); n > 0 {
		lines = append(lines, "", fmt.Sprintf("Warnings: %d (see log)", n))
	}
	return lines
}

func (g *Game) drawPanel(screen *ebiten.Image, x int) {
	lines := g.panelLines()

	bx := float32(x)
	by := float32(g.offY)
	boxW := float32(panelWidth - borderWidth)
	boxH := float32(len(lines)*lineH + padY*2)

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 16, G: 12, B: 18, A: 220}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 120, G: 90, B: 130, A: 180}, false)

	if r := g.round; r.State() == clinic.RoundRunning && r.Duration() > 0 {
		frac := float32(r.Remaining() / r.Duration())
		vector.FillRect(screen, bx, by+boxH+4, boxW*frac, 4, color.RGBA{R: 255, G: 89, B: 191, A: 200}, false)
	}

	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, x+padX, g.offY+padY+i*lineH)
	}
}
