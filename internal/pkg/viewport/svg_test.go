package viewport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/madar/internal/core/domain"
)

func TestRenderSVG(t *testing.T) {
	view := domain.MapView{
		Markers: []domain.NormalizedMarker{
			{ID: "cairo-1", NX: 0, NY: 1000, Type: domain.InterventionBench, Label: "Bench <Azhar>"},
			{ID: "d-p1", NX: 500, NY: 500, Type: domain.InterventionPath, RouteID: "diriyah-1", PathPoint: true},
		},
		Routes: []domain.NormalizedRoute{
			{ID: "diriyah-1", Polyline: []domain.NormalizedPoint{{NX: 500, NY: 500}, {NX: 1000, NY: 0}}},
		},
	}
	c := New(Options{Zoom: 1, OffsetX: 10, OffsetY: 20})

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, view, c, 800, 600))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, `width="800" height="600"`)
	assert.Contains(t, out, `points="510.00,520.00 1010.00,20.00"`)
	assert.Contains(t, out, `cx="10.00" cy="1020.00"`)
	assert.Contains(t, out, "Bench &lt;Azhar&gt;")
	assert.Contains(t, out, pathPointColor)
	assert.Equal(t, 1, strings.Count(out, "<polyline"))
	assert.Equal(t, 2, strings.Count(out, "<circle"))
}

func TestRenderSVG_SkipsDegenerateRoutes(t *testing.T) {
	view := domain.MapView{
		Routes: []domain.NormalizedRoute{{ID: "single", Polyline: []domain.NormalizedPoint{{NX: 1, NY: 1}}}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSVG(&buf, view, New(Options{}), 100, 100))
	assert.NotContains(t, buf.String(), "<polyline")
}
