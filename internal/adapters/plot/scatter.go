// Package plot renders embedding projections as scatter plots.
package plot

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
)

var ErrUnknownMarker = errors.New("plot: unknown marker")

// Tokens whose root degree has no colour are drawn in this one.
var fallbackColour = colornames.Gray

// modeOrder fixes the layering and legend order.
var modeOrder = []domain.KeyMode{domain.ModeMajor, domain.ModeMinor, domain.ModeUnspecified}

type Scatter struct {
	Width  vg.Length
	Height vg.Length
	Radius vg.Length
}

// compile-time interface assertion
var _ ports.Plotter = (*Scatter)(nil)

func NewScatter() *Scatter {
	return &Scatter{Width: 10 * vg.Inch, Height: 8 * vg.Inch, Radius: vg.Points(4)}
}

// Plot draws one scatter series per key mode, colouring every point by
// the root degree of its chord. The output format follows the file
// extension of style.Path.
func (s *Scatter) Plot(ctx context.Context, proj domain.Projection, style ports.PlotStyle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if style.Path == "" {
		return fmt.Errorf("plot: empty output path")
	}
	markers := style.Markers
	if markers == nil {
		markers = domain.DefaultModeMarkers
	}

	p := gplot.New()
	p.Title.Text = style.Title
	method := strings.ToUpper(style.Method)
	if method == "" {
		method = strings.ToUpper(proj.Method)
	}
	p.X.Label.Text = "First " + method + " component"
	p.Y.Label.Text = "Second " + method + " component"
	p.Add(plotter.NewGrid())

	byMode := make(map[domain.KeyMode][]domain.Point)
	for _, pt := range proj.Points {
		byMode[pt.Mode] = append(byMode[pt.Mode], pt)
	}

	for _, mode := range modeOrder {
		pts := byMode[mode]
		if len(pts) == 0 {
			continue
		}
		shape, err := glyph(markers[mode])
		if err != nil {
			return err
		}
		sc, err := s.series(pts, shape, style.Colours)
		if err != nil {
			return err
		}
		p.Add(sc)
		p.Legend.Add(strings.ToLower(string(mode)), sc)
	}

	if style.ShowLabels {
		labels, err := pointLabels(proj.Points, style.RemoveKeyMode)
		if err != nil {
			return err
		}
		p.Add(labels)
	}

	if dir := filepath.Dir(style.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("plot: create output dir: %w", err)
		}
	}
	if err := p.Save(s.Width, s.Height, style.Path); err != nil {
		return fmt.Errorf("plot: save %s: %w", style.Path, err)
	}
	return nil
}

func (s *Scatter) series(pts []domain.Point, shape draw.GlyphDrawer, colours map[string]string) (*plotter.Scatter, error) {
	xys := make(plotter.XYs, len(pts))
	fills := make([]color.Color, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
		fills[i] = pointColour(pt.Token, colours)
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("plot: scatter: %w", err)
	}
	// The legend thumbnail uses GlyphStyle, the points use GlyphStyleFunc.
	sc.GlyphStyle = draw.GlyphStyle{Color: colornames.Black, Radius: s.Radius, Shape: shape}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: fills[i], Radius: s.Radius, Shape: shape}
	}
	return sc, nil
}

func pointColour(tok domain.Token, colours map[string]string) color.Color {
	name, err := domain.DegreeColour(tok, colours)
	if err != nil {
		log.Printf("WARN plot: %v", err)
		return fallbackColour
	}
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		log.Printf("WARN plot: unknown colour %q for %q", name, tok)
		return fallbackColour
	}
	return c
}

func pointLabels(pts []domain.Point, removeMode bool) (*plotter.Labels, error) {
	xys := make(plotter.XYs, len(pts))
	text := make([]string, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
		text[i] = pt.Token
		if removeMode {
			text[i] = domain.StripMode(pt.Token)
		}
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, fmt.Errorf("plot: labels: %w", err)
	}
	return labels, nil
}

func glyph(name string) (draw.GlyphDrawer, error) {
	switch strings.ToLower(name) {
	case "circle", "o":
		return draw.CircleGlyph{}, nil
	case "ring":
		return draw.RingGlyph{}, nil
	case "box", "s":
		return draw.BoxGlyph{}, nil
	case "square":
		return draw.SquareGlyph{}, nil
	case "triangle", "^":
		return draw.TriangleGlyph{}, nil
	case "pyramid":
		return draw.PyramidGlyph{}, nil
	case "plus", "+":
		return draw.PlusGlyph{}, nil
	case "cross", "x":
		return draw.CrossGlyph{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMarker, name)
}
