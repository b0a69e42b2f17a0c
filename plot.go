package plot

import (
	"fmt"
	"math"

	"github.com/gonutz/prototype/draw"
)

// Show opens a window displaying the figure and blocks until it is closed.
//
// Drag with the left mouse button to move the view and use the mouse wheel to
// zoom. R resets the view to the figure limits, F11 toggles fullscreen and
// Escape closes the window.
func (f *Figure) Show() error {
	if err := f.Validate(); err != nil {
		return err
	}
	v := newViewer(f)
	title := f.title
	if title == "" {
		title = "Plot"
	}
	return draw.RunWindow(title, 800, 600, func(window draw.Window) {
		if window.WasKeyPressed(draw.KeyEscape) {
			window.Close()
			return
		}

		if window.WasKeyPressed(draw.KeyF11) {
			v.fullscreen = !v.fullscreen
		}
		window.SetFullscreen(v.fullscreen)

		if window.WasKeyPressed(draw.KeyR) {
			v.resetRanges()
		}

		v.Window = window
		v.drawFigure()
	})
}

// Space around the plot area for tick labels and axis titles.
const (
	marginLeft   = 70
	marginRight  = 20
	marginTop    = 30
	marginBottom = 50
	markerRadius = 4
)

var (
	axisColor = draw.White
	gridColor = draw.RGB(0.3, 0.3, 0.3)
)

type viewer struct {
	draw.Window
	fig        *Figure
	fullscreen bool
	dragging   bool
	dragX      int
	dragY      int
	x          Limits
	y          Limits
}

func newViewer(f *Figure) *viewer {
	v := &viewer{fig: f}
	v.resetRanges()
	return v
}

func (v *viewer) resetRanges() {
	v.x = v.fig.XLimits()
	v.y = v.fig.YLimits()
	v.dragging = false
}

func (v *viewer) plotArea() area {
	width, height := v.Size()
	return area{
		left:   marginLeft,
		top:    marginTop,
		width:  max(width-marginLeft-marginRight, 2),
		height: max(height-marginTop-marginBottom, 2),
	}
}

func (v *viewer) drawFigure() {
	mouseX, mouseY := v.MousePosition()

	if v.IsMouseDown(draw.LeftButton) {
		if !v.dragging {
			v.dragX, v.dragY = mouseX, mouseY
			v.dragging = true
		}
	} else {
		v.dragging = false
	}

	a := v.plotArea()
	t := newTransformer(a, v.x, v.y)

	// Drag the view with the mouse.
	if v.dragging {
		screenDx := v.dragX - mouseX
		screenDy := mouseY - v.dragY
		if screenDx != 0 || screenDy != 0 {
			dx := float64(screenDx) * t.xFromScreen
			dy := float64(screenDy) * t.yFromScreen
			v.x = Limits{Lo: v.x.Lo + dx, Hi: v.x.Hi + dx}
			v.y = Limits{Lo: v.y.Lo + dy, Hi: v.y.Hi + dy}
			v.dragX, v.dragY = mouseX, mouseY
			t = newTransformer(a, v.x, v.y)
		}
	}

	// Zoom with the mouse wheel, keeping the point under the mouse fixed.
	if wheelY := v.MouseWheelY(); wheelY != 0 {
		mx, my := t.fromScreen(mouseX, mouseY)
		v.x, v.y = zoom(v.x, mx, wheelY), zoom(v.y, my, wheelY)
		t = newTransformer(a, v.x, v.y)
	}

	xTicks, xPrecision := ticks(v.x)
	yTicks, yPrecision := ticks(v.y)

	// Grid lines and tick labels.
	bottom := a.top + a.height - 1
	right := a.left + a.width - 1
	for _, x := range xTicks {
		sx, _ := t.toScreen(x, 0)
		if v.fig.grid {
			v.DrawLine(sx, a.top, sx, bottom, gridColor)
		}
		v.DrawLine(sx, bottom, sx, bottom+5, axisColor)
		text := fmt.Sprintf("%.*f", xPrecision, x)
		textW, _ := v.GetTextSize(text)
		v.DrawText(text, sx-textW/2, bottom+6, axisColor)
	}
	for _, y := range yTicks {
		_, sy := t.toScreen(0, y)
		if v.fig.grid {
			v.DrawLine(a.left, sy, right, sy, gridColor)
		}
		v.DrawLine(a.left-5, sy, a.left, sy, axisColor)
		text := fmt.Sprintf("%.*f", yPrecision, y)
		textW, textH := v.GetTextSize(text)
		v.DrawText(text, a.left-7-textW, sy-textH/2, axisColor)
	}
	v.DrawRect(a.left, a.top, a.width, a.height, axisColor)

	// Axis titles.
	width, height := v.Size()
	if v.fig.xLabel != "" {
		textW, textH := v.GetTextSize(v.fig.xLabel)
		v.DrawText(v.fig.xLabel, a.left+(a.width-textW)/2, height-textH-4, axisColor)
	}
	if v.fig.yLabel != "" {
		v.DrawText(v.fig.yLabel, 4, 4, axisColor)
	}

	// Markers outside the plot area are not drawn.
	for _, s := range v.fig.series {
		c := toDrawColor(s)
		for i := range s.x {
			if !finite(s.x[i]) || !finite(s.y[i]) {
				continue
			}
			sx, sy := t.toScreen(s.x[i], s.y[i])
			if !a.contains(sx, sy) {
				continue
			}
			v.drawMarker(s.marker, sx, sy, c)
		}
	}

	if v.fig.legend {
		v.drawLegend(a)
	}

	// Write the current mouse position in the lower right hand corner.
	mx, my := t.fromScreen(mouseX, mouseY)
	mouseText := fmt.Sprintf("%.*f %.*f", xPrecision+1, mx, yPrecision+1, my)
	textW, textH := v.GetTextSize(mouseText)
	v.DrawText(mouseText, width-textW, height-textH, axisColor)
}

func (v *viewer) drawMarker(m Marker, x, y int, c draw.Color) {
	const r = markerRadius
	switch m {
	case Square:
		v.FillRect(x-r, y-r, 2*r+1, 2*r+1, c)
	case Triangle:
		for _, sp := range triangleSpans(r) {
			// DrawLine does not draw the last point.
			v.DrawLine(x+sp.from, y+sp.dy, x+sp.to+1, y+sp.dy, c)
		}
	default:
		v.FillEllipse(x-r, y-r, 2*r+1, 2*r+1, c)
	}
}

func (v *viewer) drawLegend(a area) {
	var entries []*Series
	textW, textH := 0, 0
	for _, s := range v.fig.series {
		if s.label == "" {
			continue
		}
		entries = append(entries, s)
		w, h := v.GetTextSize(s.label)
		textW = max(textW, w)
		textH = max(textH, h)
	}
	if len(entries) == 0 {
		return
	}

	rowH := max(textH, 2*markerRadius+1) + 4
	boxW := textW + 4*markerRadius + 16
	boxH := rowH*len(entries) + 6
	boxX := a.left + a.width - boxW - 8
	boxY := a.top + 8
	v.FillRect(boxX, boxY, boxW, boxH, draw.Black)
	v.DrawRect(boxX, boxY, boxW, boxH, draw.Gray)

	for i, s := range entries {
		cy := boxY + 3 + i*rowH + rowH/2
		v.drawMarker(s.marker, boxX+6+markerRadius, cy, toDrawColor(s))
		v.DrawText(s.label, boxX+12+2*markerRadius, cy-textH/2, axisColor)
	}
}

func toDrawColor(s *Series) draw.Color {
	return draw.RGB(float32(s.color.R)/255, float32(s.color.G)/255, float32(s.color.B)/255)
}

// span is one horizontal line of a filled glyph, relative to its center.
type span struct {
	dy, from, to int
}

// triangleSpans fills an upward pointing triangle with its apex r pixels
// above the center and a base 2r+1 pixels wide, r pixels below it.
func triangleSpans(r int) []span {
	spans := make([]span, 0, 2*r+1)
	for i := 0; i <= 2*r; i++ {
		half := round(float64(i) / 2)
		spans = append(spans, span{dy: i - r, from: -half, to: half})
	}
	return spans
}

type area struct {
	left, top, width, height int
}

func (a area) contains(x, y int) bool {
	return x >= a.left && x < a.left+a.width && y >= a.top && y < a.top+a.height
}

// zoom scales l around the value at by a factor of 1.1 per wheel step.
func zoom(l Limits, at, wheel float64) Limits {
	scale := math.Pow(1.1, -wheel)
	return Limits{
		Lo: at + (l.Lo-at)*scale,
		Hi: at + (l.Hi-at)*scale,
	}
}

// ticks returns the tick values inside l and the number of decimals to print
// them with.
func ticks(l Limits) ([]float64, int) {
	step, prec := calcStepsAndPrecision(math.Abs(l.span()))
	lo, hi := l.Min(), l.Max()
	var out []float64
	for i := math.Ceil(lo / step); i*step <= hi+step*1e-9; i++ {
		v := i * step
		if v == 0 {
			// avoid printing -0
			v = 0
		}
		out = append(out, v)
	}
	return out, prec
}

func newTransformer(a area, x, y Limits) transformer {
	w, h := float64(a.width-1), float64(a.height-1)
	xToScreen := w / x.span()
	yToScreen := h / y.span()
	return transformer{
		area:        a,
		x:           x,
		y:           y,
		xToScreen:   xToScreen,
		yToScreen:   yToScreen,
		xFromScreen: 1.0 / xToScreen,
		yFromScreen: 1.0 / yToScreen,
	}
}

// transformer maps between data and screen coordinates. Spans may be
// negative, which mirrors the axis.
type transformer struct {
	area        area
	x           Limits
	y           Limits
	xToScreen   float64
	yToScreen   float64
	xFromScreen float64
	yFromScreen float64
}

func (t transformer) toScreen(x, y float64) (screenX, screenY int) {
	screenX = t.area.left + round((x-t.x.Lo)*t.xToScreen)
	screenY = t.area.top + t.area.height - 1 - round((y-t.y.Lo)*t.yToScreen)
	return
}

func (t transformer) fromScreen(screenX, screenY int) (x, y float64) {
	x = t.x.Lo + float64(screenX-t.area.left)*t.xFromScreen
	y = t.y.Lo + float64(t.area.top+t.area.height-1-screenY)*t.yFromScreen
	return
}

func calcStepsAndPrecision(theRange float64) (float64, int) {
	steps := theRange / 10
	scale := float64(1)
	prec := 0
	if steps < 1 {
		for steps < 1 {
			steps *= 10
			scale /= 10
			prec++
		}
	} else {
		for steps > 1 {
			steps /= 10
			scale *= 10
		}
	}

	if theRange/scale < 5 {
		scale *= 0.5
	}
	if theRange/scale > 15 {
		scale *= 2
	}

	return scale, prec
}

func round(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
