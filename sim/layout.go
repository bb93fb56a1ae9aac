package sim

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Point is a position in abstract distance units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Lerp returns the point a fraction progress of the way from p to q.
func (p Point) Lerp(q Point, progress float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*progress,
		Y: p.Y + (q.Y-p.Y)*progress,
	}
}

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the box.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Facility is the static geometry of one parking lot: three portals and an
// ordered row of spaces. Only the per-space accessible flag changes after
// construction.
type Facility struct {
	Width            float64
	Height           float64
	Entrance         Rect
	Exit             Rect
	BuildingEntrance Rect
	Spaces           []*Space
}

// NewFacility lays out cfg.NumSpaces spaces in one contiguous row centered
// horizontally, cfg.TopMargin below the top edge. The entrance sits on the
// left edge, the exit on the right edge (both vertically centered) and the
// building entrance is centered on the top edge. The space nearest the
// building entrance is marked accessible; ties go to the first in row order.
func NewFacility(cfg LayoutConfig) (*Facility, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	half := cfg.PortalSize / 2
	f := &Facility{
		Width:            cfg.Width,
		Height:           cfg.Height,
		Entrance:         Rect{X: 0, Y: cfg.Height/2 - half, Width: cfg.PortalSize, Height: cfg.PortalSize},
		Exit:             Rect{X: cfg.Width - cfg.PortalSize, Y: cfg.Height/2 - half, Width: cfg.PortalSize, Height: cfg.PortalSize},
		BuildingEntrance: Rect{X: cfg.Width/2 - half, Y: 0, Width: cfg.PortalSize, Height: cfg.PortalSize},
		Spaces:           make([]*Space, 0, cfg.NumSpaces),
	}

	startX := (cfg.Width - float64(cfg.NumSpaces)*cfg.SpaceWidth) / 2
	building := f.BuildingEntrance.Center()
	for i := 0; i < cfg.NumSpaces; i++ {
		bounds := Rect{X: startX + float64(i)*cfg.SpaceWidth, Y: cfg.TopMargin, Width: cfg.SpaceWidth, Height: cfg.SpaceHeight}
		f.Spaces = append(f.Spaces, newSpace(i, bounds, bounds.Center().Distance(building)))
	}

	if nearest := f.NearestSpace(); nearest != nil {
		nearest.accessible = true
	}
	return f, nil
}

// NearestSpace returns the space with minimum walk distance, first in row
// order on ties. Returns nil for a facility with no spaces.
func (f *Facility) NearestSpace() *Space {
	return lo.MinBy(f.Spaces, func(a, b *Space) bool {
		return a.walkDistance < b.walkDistance
	})
}

// BuildingPoint is the walking target for every visitor.
func (f *Facility) BuildingPoint() Point {
	return f.BuildingEntrance.Center()
}

// EntrancePoint is where arriving vehicles are placed.
func (f *Facility) EntrancePoint() Point {
	return f.Entrance.Center()
}

// ExitPoint is the driving target for departing vehicles.
func (f *Facility) ExitPoint() Point {
	return f.Exit.Center()
}

// SetAccessible relabels space idx. Used to build the configuration without
// an accessible space. Panics on an out-of-range index or an occupied space.
func (f *Facility) SetAccessible(idx int, accessible bool) {
	if idx < 0 || idx >= len(f.Spaces) {
		panic(fmt.Sprintf("SetAccessible: space index %d out of range [0,%d)", idx, len(f.Spaces)))
	}
	s := f.Spaces[idx]
	if s.occupied {
		panic(fmt.Sprintf("SetAccessible: space %d is occupied by %s", idx, s.occupant))
	}
	s.accessible = accessible
}

// ClearAccessible relabels every accessible space as ordinary.
func (f *Facility) ClearAccessible() {
	for _, s := range f.Spaces {
		if s.accessible {
			f.SetAccessible(s.index, false)
		}
	}
}

// AccessibleCount returns how many spaces are currently accessible.
func (f *Facility) AccessibleCount() int {
	return lo.CountBy(f.Spaces, func(s *Space) bool { return s.accessible })
}
