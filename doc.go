// Package plot draws 2-D scatter figures. A Figure is built with chained
// calls, saved to an image with Save and viewed in a window with Show:
//
//	f := plot.NewFigure().SetXLim(1, 10).Legend().Grid()
//	f.Scatter(xs, ys).Label("measured").Marker(plot.Triangle)
//	if err := f.Save("out.png"); err != nil {
//		return err
//	}
//	return f.Show()
package plot
