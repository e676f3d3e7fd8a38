package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// Styles per object kind
var (
	groundStyle   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	customStyle   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	ballStyle     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	carStyle      = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	tireStyle     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	goalStyle     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	obstacleStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	hudStyle      = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

type cell struct {
	r     rune
	style tcell.Style
}

// TerminalRenderer rasterizes world lines into terminal cells. A cell is
// scale world units wide and twice that tall.
type TerminalRenderer struct {
	screen tcell.Screen
	width  int
	height int
	buffer [][]cell
	scale  float64
	camera physics.Vector2D
	status string
}

// NewTerminalRenderer creates a renderer drawing to an initialised screen.
func NewTerminalRenderer(screen tcell.Screen, scale float64) *TerminalRenderer {
	if scale <= 0 {
		scale = 1
	}
	r := &TerminalRenderer{screen: screen, scale: scale}
	r.resize()
	return r
}

// SetCamera sets the world point drawn at the top-left cell.
func (r *TerminalRenderer) SetCamera(topLeft physics.Vector2D) {
	r.camera = topLeft
}

// SetStatus sets the text shown on the top row.
func (r *TerminalRenderer) SetStatus(text string) {
	r.status = text
}

// Size returns the drawing area in cells.
func (r *TerminalRenderer) Size() (int, int) {
	return r.width, r.height
}

// Cell returns the rune at x, y, or a space outside the screen.
func (r *TerminalRenderer) Cell(x, y int) rune {
	if !r.inside(x, y) {
		return ' '
	}
	return r.buffer[y][x].r
}

func (r *TerminalRenderer) resize() {
	w, h := r.screen.Size()
	if w == r.width && h == r.height && r.buffer != nil {
		return
	}
	r.width, r.height = w, h
	r.buffer = make([][]cell, h)
	for y := range r.buffer {
		r.buffer[y] = make([]cell, w)
	}
}

func (r *TerminalRenderer) inside(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// worldToScreen converts world coordinates to cell coordinates.
func (r *TerminalRenderer) worldToScreen(p physics.Vector2D) (int, int) {
	x := (p.X - r.camera.X) / r.scale
	y := (p.Y - r.camera.Y) / (2 * r.scale)
	return int(math.Floor(x)), int(math.Floor(y))
}

func (r *TerminalRenderer) plot(x, y int, ch rune, style tcell.Style) {
	if r.inside(x, y) {
		r.buffer[y][x] = cell{r: ch, style: style}
	}
}

// drawLine samples l at half-cell steps.
func (r *TerminalRenderer) drawLine(l physics.Line, style tcell.Style) {
	ch := slopeRune(l.Direction())
	steps := int(math.Ceil(l.Length()/(r.scale/2))) + 1
	for i := 0; i <= steps; i++ {
		p := l.Start.Add(l.Direction().Scale(float64(i) / float64(steps)))
		x, y := r.worldToScreen(p)
		r.plot(x, y, ch, style)
	}
}

func (r *TerminalRenderer) drawLines(lines []physics.Line, style tcell.Style) {
	for _, l := range lines {
		r.drawLine(l, style)
	}
}

// slopeRune picks the glyph closest to a direction, with y pointing down
// and cells twice as tall as wide.
func slopeRune(d physics.Vector2D) rune {
	dx, dy := math.Abs(d.X), math.Abs(d.Y)/2
	switch {
	case dy < dx*0.4:
		return '-'
	case dx < dy*0.4:
		return '|'
	case (d.X > 0) == (d.Y > 0):
		return '\\'
	default:
		return '/'
	}
}

// Clear implements entity.Renderer.
func (r *TerminalRenderer) Clear() {
	r.resize()
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = cell{r: ' ', style: tcell.StyleDefault}
		}
	}
}

// Present implements entity.Renderer.
func (r *TerminalRenderer) Present() {
	for i, ch := range []rune(r.status) {
		r.plot(i, 0, ch, hudStyle)
	}
	for y := range r.buffer {
		for x, c := range r.buffer[y] {
			r.screen.SetContent(x, y, c.r, nil, c.style)
		}
	}
	r.screen.Show()
}

// RenderBall implements entity.Renderer.
func (r *TerminalRenderer) RenderBall(ball entity.Ball) {
	r.drawLines(ball.WorldLines(), ballStyle)
}

// RenderCar implements entity.Renderer.
func (r *TerminalRenderer) RenderCar(car entity.Car) {
	r.drawLines(car.WorldLines(), carStyle)
	for _, t := range car.WorldTires() {
		r.drawTire(t)
	}
}

// RenderGround implements entity.Renderer.
func (r *TerminalRenderer) RenderGround(ground entity.Ground) {
	style := groundStyle
	if ground.Kind() == entity.KindCustom {
		style = customStyle
	}
	r.drawLines(ground.WorldLines(), style)
}

// RenderTarget implements entity.Renderer.
func (r *TerminalRenderer) RenderTarget(target entity.Target) {
	r.drawLines(target.WorldLines(), targetStyle(target.Kind().String(), target.Hit))
}

func (r *TerminalRenderer) drawTire(p physics.Vector2D) {
	x, y := r.worldToScreen(p)
	r.plot(x, y, 'O', tireStyle)
}

func targetStyle(kind string, hit bool) tcell.Style {
	style := obstacleStyle
	if kind == entity.KindGoal.String() {
		style = goalStyle
	}
	return style.Reverse(hit)
}

// DrawSnapshot draws a whole frame from a snapshot, following its camera.
func (r *TerminalRenderer) DrawSnapshot(s engine.Snapshot) {
	r.SetCamera(s.Camera)
	r.Clear()
	for _, o := range s.Objects {
		switch o.Kind {
		case entity.KindBall.String():
			r.drawLines(o.Lines, ballStyle)
		case entity.KindCar.String():
			r.drawLines(o.Lines, carStyle)
			for _, t := range o.Tires {
				r.drawTire(t)
			}
		case entity.KindGround.String():
			r.drawLines(o.Lines, groundStyle)
		case entity.KindCustom.String():
			r.drawLines(o.Lines, customStyle)
		default:
			r.drawLines(o.Lines, targetStyle(o.Kind, o.Hit))
		}
	}
	r.SetStatus(StatusLine(s))
	r.Present()
}
