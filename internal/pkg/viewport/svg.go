package viewport

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/samirrijal/madar/internal/core/domain"
)

var markerColors = map[domain.InterventionType]string{
	domain.InterventionBench:   "#4f46e5",
	domain.InterventionMural:   "#f43f5e",
	domain.InterventionPath:    "#10b981",
	domain.InterventionDoor:    "#f59e0b",
	domain.InterventionGallery: "#d946ef",
}

const (
	routeColor     = "#10b981"
	pathPointColor = "#818cf8"
	fallbackColor  = "#0ea5e9"
)

// RenderSVG draws view through the controller's transform onto a
// width×height canvas. Routes are drawn first so markers sit on top.
func RenderSVG(w io.Writer, view domain.MapView, c *Controller, width, height int) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	bw.WriteString(`<rect width="100%" height="100%" fill="#0f172a"/>`)

	for _, r := range view.Routes {
		if len(r.Polyline) < 2 {
			continue
		}
		fmt.Fprintf(bw, `<polyline id="%s" fill="none" stroke="%s" stroke-width="2" points="`, escape(r.ID), routeColor)
		for i, p := range r.Polyline {
			x, y := c.Project(p)
			if i > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%.2f,%.2f", x, y)
		}
		bw.WriteString(`"/>`)
	}

	radius := 4 * c.State().Zoom / DefaultOptions().Zoom
	for _, m := range view.Markers {
		x, y := c.Project(domain.NormalizedPoint{NX: m.NX, NY: m.NY})
		color, ok := markerColors[m.Type]
		switch {
		case m.PathPoint:
			color = pathPointColor
		case !ok:
			color = fallbackColor
		}
		fmt.Fprintf(bw, `<circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s">`, escape(m.ID), x, y, radius, color)
		if m.Label != "" {
			fmt.Fprintf(bw, `<title>%s</title>`, escape(m.Label))
		}
		bw.WriteString(`</circle>`)
	}

	bw.WriteString(`</svg>`)
	return bw.Flush()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
