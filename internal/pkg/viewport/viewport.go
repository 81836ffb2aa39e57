// Package viewport holds the pan/zoom state applied on top of the
// normalized map plane before final screen placement.
package viewport

import (
	"math"

	"github.com/samirrijal/madar/internal/core/domain"
)

// Options configures a Controller. Zero fields take the defaults below.
type Options struct {
	Zoom    float64 // initial zoom, default 1.5
	MinZoom float64 // default 0.5
	MaxZoom float64 // default 8.0
	Step    float64 // zoom in/out increment, default 0.5
	OffsetX float64
	OffsetY float64
}

// DefaultOptions returns the options the map client starts with.
func DefaultOptions() Options {
	return Options{
		Zoom:    1.5,
		MinZoom: 0.5,
		MaxZoom: 8.0,
		Step:    0.5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Zoom == 0 || !finite(o.Zoom) {
		o.Zoom = d.Zoom
	}
	if o.MinZoom == 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = d.MaxZoom
	}
	if o.Step == 0 {
		o.Step = d.Step
	}
	if !finite(o.OffsetX) {
		o.OffsetX = 0
	}
	if !finite(o.OffsetY) {
		o.OffsetY = 0
	}
	if o.MinZoom > o.MaxZoom {
		o.MinZoom, o.MaxZoom = o.MaxZoom, o.MinZoom
	}
	return o
}

// State is a snapshot of the viewport transform.
type State struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Controller tracks zoom and pan. It is not safe for concurrent use.
type Controller struct {
	opts  Options
	state State

	dragging     bool
	dragPointerX float64
	dragPointerY float64
	dragOffsetX  float64
	dragOffsetY  float64
}

// New creates a Controller from opts.
func New(opts Options) *Controller {
	opts = opts.withDefaults()
	c := &Controller{opts: opts}
	c.state = State{OffsetX: opts.OffsetX, OffsetY: opts.OffsetY}
	c.SetZoom(opts.Zoom)
	return c
}

// State returns the current transform.
func (c *Controller) State() State { return c.state }

// SetZoom sets the zoom, clamped to the configured range, and returns it.
// Non-finite input leaves the zoom unchanged.
func (c *Controller) SetZoom(z float64) float64 {
	if !finite(z) {
		return c.state.Zoom
	}
	if z < c.opts.MinZoom {
		z = c.opts.MinZoom
	}
	if z > c.opts.MaxZoom {
		z = c.opts.MaxZoom
	}
	c.state.Zoom = z
	return z
}

// ZoomIn increases the zoom by one step.
func (c *Controller) ZoomIn() float64 { return c.SetZoom(c.state.Zoom + c.opts.Step) }

// ZoomOut decreases the zoom by one step.
func (c *Controller) ZoomOut() float64 { return c.SetZoom(c.state.Zoom - c.opts.Step) }

// Pan moves the offset by (dx, dy) pixels. Non-finite deltas are ignored.
func (c *Controller) Pan(dx, dy float64) {
	if !finite(dx) || !finite(dy) {
		return
	}
	c.state.OffsetX += dx
	c.state.OffsetY += dy
}

// DragStart records the pointer position and the offset it grabbed.
// A non-finite pointer position starts no drag.
func (c *Controller) DragStart(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	c.dragging = true
	c.dragPointerX, c.dragPointerY = x, y
	c.dragOffsetX, c.dragOffsetY = c.state.OffsetX, c.state.OffsetY
}

// DragMove follows the pointer. It reports false when no drag is active.
func (c *Controller) DragMove(x, y float64) bool {
	if !c.dragging || !finite(x) || !finite(y) {
		return false
	}
	c.state.OffsetX = x - c.dragPointerX + c.dragOffsetX
	c.state.OffsetY = y - c.dragPointerY + c.dragOffsetY
	return true
}

// DragEnd freezes the offset where the last move left it.
func (c *Controller) DragEnd() { c.dragging = false }

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Project maps a normalized point to screen pixels (scale, then translate).
func (c *Controller) Project(p domain.NormalizedPoint) (x, y float64) {
	return c.state.OffsetX + p.NX*c.state.Zoom, c.state.OffsetY + p.NY*c.state.Zoom
}

// Unproject is the inverse of Project.
func (c *Controller) Unproject(x, y float64) domain.NormalizedPoint {
	return domain.NormalizedPoint{
		NX: (x - c.state.OffsetX) / c.state.Zoom,
		NY: (y - c.state.OffsetY) / c.state.Zoom,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
