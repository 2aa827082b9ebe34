// Package export renders stored runs as standalone SVG line charts.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/malthus/internal/storage"
)

type Point struct{ X, Y float64 }

// Series is one polyline on the chart.
type Series struct {
	Name   string
	Color  string
	Points []Point
}

var defaultColors = []string{"#e0a500", "#00a8cc", "#7bd88f", "#ff6b6b"}

// Fields lists the row columns FromRows accepts.
var Fields = []string{"income", "population", "technology"}

// FromRows extracts field against period t.
func FromRows(rows []storage.Row, field string) (Series, error) {
	get, err := rowField(field)
	if err != nil {
		return Series{}, err
	}
	pts := make([]Point, len(rows))
	for i, r := range rows {
		pts[i] = Point{X: float64(r.T), Y: get(r)}
	}
	return Series{Name: field, Points: pts}, nil
}

func rowField(field string) (func(storage.Row) float64, error) {
	switch field {
	case "income":
		return func(r storage.Row) float64 { return r.Income }, nil
	case "population":
		return func(r storage.Row) float64 { return r.Population }, nil
	case "technology":
		return func(r storage.Row) float64 { return r.Technology }, nil
	}
	return nil, fmt.Errorf("unknown field %q (want one of %v)", field, Fields)
}

// SVG draws every series on shared axes scaled to their joint bounds with
// 10% padding. Series with fewer than two points are skipped.
func SVG(series []Series, width, height int) string {
	minX, maxX, minY, maxY, ok := bounds(series)
	if !ok {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	drawn := 0
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		color := s.Color
		if color == "" {
			color = defaultColors[drawn%len(defaultColors)]
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color)
		for i, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if i == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
		fmt.Fprintf(&sb, `<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 16+14*drawn, color, s.Name)
		drawn++
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteSVG writes SVG(series, width, height) to w.
func WriteSVG(w io.Writer, series []Series, width, height int) error {
	out := SVG(series, width, height)
	if out == "" {
		return fmt.Errorf("nothing to draw")
	}
	_, err := io.WriteString(w, out)
	return err
}

func bounds(series []Series) (minX, maxX, minY, maxY float64, ok bool) {
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		for _, p := range s.Points {
			if !ok {
				minX, maxX, minY, maxY, ok = p.X, p.X, p.Y, p.Y, true
				continue
			}
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	return
}
