package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/store"
)

const defaultStroke = "#ffffff"

// OrbitsSVG draws each body's recorded path projected onto the xy plane. All
// bodies share one scale so relative distances are preserved. colors[i] is any
// SVG color for body i; missing entries fall back to white.
func OrbitsSVG(w io.Writer, samples []store.Sample, colors []string, width, height int) error {
	if len(samples) < 2 {
		return errors.New("need at least two samples to draw orbits")
	}
	bodies := len(samples[0].Rows)

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		for _, row := range s.Rows {
			minX, maxX = math.Min(minX, row[0]), math.Max(maxX, row[0])
			minY, maxY = math.Min(minY, row[1]), math.Max(maxY, row[1])
		}
	}

	// one scale for both axes, padded by 10%
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := math.Min(float64(width), float64(height)) / (span * 1.2)
	project := func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i := 0; i < bodies; i++ {
		stroke := defaultStroke
		if i < len(colors) && colors[i] != "" {
			stroke = colors[i]
		}

		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
		for n, s := range samples {
			x, y := project(s.Rows[i][0], s.Rows[i][1])
			if n == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		last := samples[len(samples)-1].Rows[i]
		x, y := project(last[0], last[1])
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, stroke)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
