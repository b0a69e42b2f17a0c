package plot

import (
	"fmt"
	"image/color"
	"math"
)

// Marker is the glyph drawn at each point of a scatter series.
type Marker int

const (
	Circle Marker = iota
	Triangle
	Square
)

func (m Marker) String() string {
	switch m {
	case Circle:
		return "circle"
	case Triangle:
		return "triangle"
	case Square:
		return "square"
	}
	return fmt.Sprintf("Marker(%d)", int(m))
}

// Limits is the visible range of an axis. Lo is drawn at the left (or
// bottom) end; Lo > Hi gives an inverted axis.
type Limits struct {
	Lo, Hi float64
}

func (l Limits) Inverted() bool { return l.Lo > l.Hi }

func (l Limits) Min() float64 { return math.Min(l.Lo, l.Hi) }
func (l Limits) Max() float64 { return math.Max(l.Lo, l.Hi) }

func (l Limits) span() float64 { return l.Hi - l.Lo }

// palette is the default color cycle for new series.
var palette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
}

// Figure is a 2-D scatter plot. It can be saved to an image file with Save
// or viewed interactively with Show.
type Figure struct {
	title  string
	xLabel string
	yLabel string
	xLim   *Limits
	yLim   *Limits
	legend bool
	grid   bool
	series []*Series
}

func NewFigure() *Figure {
	return &Figure{}
}

func (f *Figure) Title(t string) *Figure {
	f.title = t
	return f
}

func (f *Figure) XLabel(l string) *Figure {
	f.xLabel = l
	return f
}

func (f *Figure) YLabel(l string) *Figure {
	f.yLabel = l
	return f
}

// SetXLim fixes the x axis to [left, right]. Passing left > right inverts the
// axis.
func (f *Figure) SetXLim(left, right float64) *Figure {
	f.xLim = &Limits{Lo: left, Hi: right}
	return f
}

// SetYLim fixes the y axis to [bottom, top].
func (f *Figure) SetYLim(bottom, top float64) *Figure {
	f.yLim = &Limits{Lo: bottom, Hi: top}
	return f
}

func (f *Figure) Legend() *Figure {
	f.legend = true
	return f
}

func (f *Figure) Grid() *Figure {
	f.grid = true
	return f
}

func (f *Figure) HasLegend() bool { return f.legend }
func (f *Figure) HasGrid() bool   { return f.grid }

func (f *Figure) Labels() (title, x, y string) { return f.title, f.xLabel, f.yLabel }

// Series returns the series in drawing order.
func (f *Figure) Series() []*Series { return f.series }

// Scatter adds a series of points. x and y may be slices of any integer or
// float type.
func (f *Figure) Scatter(x, y any) *Series {
	s := &Series{
		x:     cast(x),
		y:     cast(y),
		color: palette[len(f.series)%len(palette)],
	}
	f.series = append(f.series, s)
	return s
}

// XLimits returns the fixed x limits or, if none were set, the data range
// with a 5% margin on each side.
func (f *Figure) XLimits() Limits {
	if f.xLim != nil {
		return *f.xLim
	}
	return f.autoLimits(func(s *Series) []float64 { return s.x })
}

// YLimits is XLimits for the y axis.
func (f *Figure) YLimits() Limits {
	if f.yLim != nil {
		return *f.yLim
	}
	return f.autoLimits(func(s *Series) []float64 { return s.y })
}

func (f *Figure) autoLimits(values func(*Series) []float64) Limits {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range f.series {
		for _, v := range values(s) {
			if !finite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if isInf(lo) {
		return Limits{Lo: 0, Hi: 1}
	}

	var margin float64 = 1
	if lo < hi {
		margin = (hi - lo) / 20
	}
	return Limits{Lo: lo - margin, Hi: hi + margin}
}

// Validate checks that every series has as many x as y values and that the
// limits have a non-empty span.
func (f *Figure) Validate() error {
	for i, s := range f.series {
		if len(s.x) != len(s.y) {
			return fmt.Errorf("plot: series %d (%q) has %d x and %d y values", i, s.label, len(s.x), len(s.y))
		}
	}
	for _, l := range []Limits{f.XLimits(), f.YLimits()} {
		if l.Lo == l.Hi || !finite(l.Lo) || !finite(l.Hi) {
			return fmt.Errorf("plot: degenerate axis limits [%g, %g]", l.Lo, l.Hi)
		}
	}
	return nil
}

// Series is one set of points sharing a marker, color and legend label.
type Series struct {
	label  string
	marker Marker
	color  color.RGBA
	x      []float64
	y      []float64
}

func (s *Series) Label(l string) *Series {
	s.label = l
	return s
}

func (s *Series) Marker(m Marker) *Series {
	s.marker = m
	return s
}

func (s *Series) RGB(red, green, blue uint8) *Series {
	s.color = color.RGBA{R: red, G: green, B: blue, A: 255}
	return s
}

func (s *Series) Name() string            { return s.label }
func (s *Series) Shape() Marker           { return s.marker }
func (s *Series) Color() color.RGBA       { return s.color }
func (s *Series) Len() int                { return len(s.x) }
func (s *Series) XY(i int) (x, y float64) { return s.x[i], s.y[i] }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isInf(x float64) bool {
	return math.IsInf(x, 1) || math.IsInf(x, -1)
}

func cast(x any) []float64 {
	switch x := x.(type) {
	case []float64:
		return x
	case []float32:
		return convert(x)
	case []int:
		return convert(x)
	case []int64:
		return convert(x)
	case []int32:
		return convert(x)
	case []int16:
		return convert(x)
	case []int8:
		return convert(x)
	case []uint:
		return convert(x)
	case []uint64:
		return convert(x)
	case []uint32:
		return convert(x)
	case []uint16:
		return convert(x)
	case []uint8:
		return convert(x)
	}
	panic(fmt.Sprintf("invalid type, slice of numbers expected but have %T", x))
}

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func convert[T number](x []T) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = float64(x[i])
	}
	return out
}
