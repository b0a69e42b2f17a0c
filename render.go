package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Saved figures are 6.4 x 4.8 inches at 100 dpi, i.e. 640 x 480 pixels.
const (
	FigureWidth  = 6.4 * vg.Inch
	FigureHeight = 4.8 * vg.Inch
	FigureDPI    = 100
)

// Save renders the figure to path. The image format follows the file
// extension (png, jpg, jpeg, tif, tiff) and defaults to png. The file only
// appears once rendering has succeeded.
func (f *Figure) Save(path string) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "png"
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := f.Render(tmp, format); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Render draws the figure and encodes it to w in the given format.
func (f *Figure) Render(w io.Writer, format string) error {
	p, err := f.build()
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(FigureWidth, FigureHeight), vgimg.UseDPI(FigureDPI))
	p.Draw(vgdraw.New(c))

	var wt io.WriterTo
	switch format {
	case "png":
		wt = vgimg.PngCanvas{Canvas: c}
	case "jpg", "jpeg":
		wt = vgimg.JpegCanvas{Canvas: c}
	case "tif", "tiff":
		wt = vgimg.TiffCanvas{Canvas: c}
	default:
		return fmt.Errorf("plot: unsupported image format %q", format)
	}
	_, err = wt.WriteTo(w)
	return err
}

// build translates the figure into a gonum plot.
func (f *Figure) build() (*gplot.Plot, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p := gplot.New()
	p.Title.Text = f.title
	p.X.Label.Text = f.xLabel
	p.Y.Label.Text = f.yLabel
	if f.grid {
		p.Add(plotter.NewGrid())
	}

	for _, s := range f.series {
		sc, err := plotter.NewScatter(s.points())
		if err != nil {
			return nil, fmt.Errorf("plot: series %q: %w", s.label, err)
		}
		sc.GlyphStyle = vgdraw.GlyphStyle{
			Color:  s.color,
			Radius: vg.Points(3),
			Shape:  glyph(s.marker),
		}
		p.Add(sc)
		if f.legend && s.label != "" {
			p.Legend.Add(s.label, sc)
		}
	}
	p.Legend.Top = true

	// Limits are applied after Add, which widens the axes to the data range.
	applyLimits(&p.X, f.XLimits())
	applyLimits(&p.Y, f.YLimits())
	return p, nil
}

func applyLimits(a *gplot.Axis, l Limits) {
	a.Min, a.Max = l.Min(), l.Max()
	if l.Inverted() {
		a.Scale = gplot.InvertedScale{Normalizer: gplot.LinearScale{}}
	}
}

// points returns the finite points of the series; NaN and infinite values
// are skipped as they cannot be placed.
func (s *Series) points() plotter.XYs {
	xys := make(plotter.XYs, 0, len(s.x))
	for i := range s.x {
		if finite(s.x[i]) && finite(s.y[i]) {
			xys = append(xys, plotter.XY{X: s.x[i], Y: s.y[i]})
		}
	}
	return xys
}

func glyph(m Marker) vgdraw.GlyphDrawer {
	switch m {
	case Triangle:
		return vgdraw.TriangleGlyph{}
	case Square:
		return vgdraw.BoxGlyph{}
	}
	return vgdraw.CircleGlyph{}
}
