package game

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Skin-Clinic/internal/clinic"
	"github.com/Garsondee/Skin-Clinic/internal/config"
)

// borderWidth is the pixel gap between the window edge and the face.
const borderWidth = 24

// canvasScale is the integer upscale applied to the paint canvas on screen.
const canvasScale = 2

// panelWidth is the width of the treatment/results panel on the right.
const panelWidth = 320

// creamKeys select a cream by condition type.
var creamKeys = [...]struct {
	key  ebiten.Key
	typ  clinic.ConditionType
	name string
}{
	{ebiten.Key1, clinic.ConditionAcne, "1"},
	{ebiten.Key2, clinic.ConditionWrinkles, "2"},
	{ebiten.Key3, clinic.ConditionScars, "3"},
}

// Game is the windowed front-end. It owns a clinic.Session and runs one
// clinic.Round per customer; all scoring happens in the clinic package.
type Game struct {
	width      int
	height     int
	offX       int
	offY       int
	canvasSize int

	log          zerolog.Logger
	diag         *clinic.DiagLog // current customer's warnings, reset per customer
	loadWarnings int             // mask loading warnings from startup
	rng          *rand.Rand
	catalog      clinic.Catalog
	tcfg         clinic.TreatmentConfig
	settings     clinic.RoundSettings
	session      *clinic.Session
	round        *clinic.Round

	canvasImg *ebiten.Image // live paint canvas, uploaded each frame
	zonesImg  *ebiten.Image // tinted requested zones for the current customer

	prevKeys  map[ebiten.Key]bool
	showZones bool
	status    string
}

// New builds a game from configuration and serves the first customer.
func New(cfg config.Config, log zerolog.Logger) (*Game, error) {
	diag := clinic.NewDiagLog()
	masks, err := cfg.Masks(clinic.WithLogger(log), clinic.WithDiagLog(diag))
	if err != nil {
		return nil, err
	}

	size := max(cfg.CanvasSize, 16)
	g := &Game{
		width:        borderWidth + size*canvasScale + borderWidth + panelWidth,
		height:       borderWidth + size*canvasScale + borderWidth,
		offX:         borderWidth,
		offY:         borderWidth,
		canvasSize:   size,
		log:          log,
		loadWarnings: len(diag.Entries()),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- gameplay randomness
		catalog:      clinic.FullCatalog(),
		tcfg:         cfg.Treatment,
		settings: clinic.RoundSettings{
			Masks:      masks,
			Scoring:    cfg.Scoring,
			CanvasSize: size,
			Brush:      clinic.DefaultBrush(),
		},
		session:   clinic.NewSession(cfg.StartingMoney),
		canvasImg: ebiten.NewImage(size, size),
		zonesImg:  ebiten.NewImage(size, size),
		prevKeys:  make(map[ebiten.Key]bool),
		showZones: true,
	}
	g.nextCustomer()
	return g, nil
}

func (g *Game) opts() []clinic.Option {
	return []clinic.Option{clinic.WithLogger(g.log), clinic.WithDiagLog(g.diag)}
}

// nextCustomer clears the previous customer and starts a fresh round.
func (g *Game) nextCustomer() {
	g.session.ClearCustomer()
	g.diag = clinic.NewDiagLog()
	c := clinic.NewCustomer(g.rng, g.catalog, g.tcfg, g.opts()...)
	g.round = clinic.NewRound(g.session, c, g.settings, g.opts()...)
	g.status = ""
	g.log.Info().
		Str("customer", c.ID.String()).
		Stringer("treatment", c.Treatment).
		Msg("customer arrived")
	g.zonesImg.WritePixels(zoneOverlay(c.Treatment, g.settings, g.canvasSize).Pix)
}

func (g *Game) Update() error {
	g.handleInput()
	if g.round.Tick(1 / float64(ebiten.TPS())) {
		g.logResult()
	}
	return nil
}

func (g *Game) pressed(k ebiten.Key, current map[ebiten.Key]bool) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	defer func() { g.prevKeys = currentKeys }()

	for _, ck := range creamKeys {
		if g.pressed(ck.key, currentKeys) {
			g.round.SelectCream(ck.typ)
		}
	}

	// Z: toggle requested zone hints.
	if g.pressed(ebiten.KeyZ, currentKeys) {
		g.showZones = !g.showZones
	}

	// Enter: finish early (keeps the remaining time for the bonus).
	if g.pressed(ebiten.KeyEnter, currentKeys) && g.round.CanPaint() {
		g.round.End()
		g.logResult()
	}

	// N: next customer once results are up.
	if g.pressed(ebiten.KeyN, currentKeys) && g.round.State() == clinic.RoundResults {
		g.nextCustomer()
	}

	// C: copy results to the clipboard.
	if g.pressed(ebiten.KeyC, currentKeys) && g.round.State() == clinic.RoundResults {
		if err := clipboard.WriteAll(g.round.ResultsText()); err != nil {
			g.status = "clipboard unavailable"
			g.log.Warn().Err(err).Msg("copy results")
		} else {
			g.status = "results copied"
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && g.round.CanPaint() {
		mx, my := ebiten.CursorPosition()
		if u, v, ok := g.screenToUV(mx, my); ok {
			g.round.Paint(u, v)
		}
	}
}

// screenToUV maps a window position onto canvas UV, reporting false when
// the cursor is outside the face.
func (g *Game) screenToUV(mx, my int) (float64, float64, bool) {
	span := float64(g.canvasSize*canvasScale - 1)
	u := float64(mx-g.offX) / span
	v := float64(my-g.offY) / span
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return 0, 0, false
	}
	return u, v, true
}

func (g *Game) logResult() {
	res := g.round.Result()
	g.log.Info().
		Float64("coverage", res.CorrectCoverage).
		Float64("wrong_color", res.WrongColorRate).
		Float64("dirty", res.DirtyRate).
		Float64("score", res.FinalScore).
		Int("payment", res.FinalPayment).
		Int("money", g.session.Money()).
		Msg("round finished")
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 28, G: 22, B: 30, A: 255})

	fw := float32(g.canvasSize * canvasScale)
	ox, oy := float32(g.offX), float32(g.offY)

	// Face backdrop.
	skin := color.RGBA{R: 241, G: 200, B: 170, A: 255}
	vector.FillCircle(screen, ox+fw/2, oy+fw/2, fw/2, skin, true)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(canvasScale, canvasScale)
	op.GeoM.Translate(float64(g.offX), float64(g.offY))
	if g.showZones {
		screen.DrawImage(g.zonesImg, &op)
	}

	g.canvasImg.WritePixels(g.round.Canvas().Pix())
	screen.DrawImage(g.canvasImg, &op)

	vector.StrokeRect(screen, ox-1, oy-1, fw+2, fw+2, 2.0, color.RGBA{R: 90, G: 70, B: 95, A: 255}, false)

	g.drawPanel(screen, g.offX+g.canvasSize*canvasScale+borderWidth)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// zoneOverlay tints every requested pixel with its cream at low opacity.
func zoneOverlay(t *clinic.Treatment, settings clinic.RoundSettings, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if t == nil {
		return img
	}
	required := settings.Masks.Requirements(t.Conditions(), size, size, settings.Scoring.MaskThreshold)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			typ, ok := required.At(x, y)
			if !ok {
				continue
			}
			tint := typ.CreamColor()
			tint.A = 70
			img.Set(x, y, tint)
		}
	}
	return img
}

// creamLabel is the HUD name for a cream.
func creamLabel(t clinic.ConditionType) string {
	for _, ck := range creamKeys {
		if ck.typ == t {
			return fmt.Sprintf("[%s] %s", ck.name, t)
		}
	}
	return t.String()
}
