package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFacility_DefaultLayout_Geometry(t *testing.T) {
	// GIVEN the reference configuration
	f, err := NewFacility(DefaultConfig().Layout)
	require.NoError(t, err)

	// THEN portals sit on the left, right and top edges
	assert.Equal(t, Rect{X: 0, Y: 230, Width: 40, Height: 40}, f.Entrance)
	assert.Equal(t, Rect{X: 960, Y: 230, Width: 40, Height: 40}, f.Exit)
	assert.Equal(t, Rect{X: 480, Y: 0, Width: 40, Height: 40}, f.BuildingEntrance)
	assert.Equal(t, Point{X: 20, Y: 250}, f.EntrancePoint())
	assert.Equal(t, Point{X: 980, Y: 250}, f.ExitPoint())
	assert.Equal(t, Point{X: 500, Y: 20}, f.BuildingPoint())

	// AND the row of 25 spaces is contiguous and centered
	require.Len(t, f.Spaces, 25)
	assert.Equal(t, Rect{X: 100, Y: 10, Width: 32, Height: 48}, f.Spaces[0].Bounds())
	for i := 1; i < len(f.Spaces); i++ {
		prev, cur := f.Spaces[i-1].Bounds(), f.Spaces[i].Bounds()
		assert.Equal(t, prev.X+prev.Width, cur.X, "space %d must abut space %d", i, i-1)
		assert.Equal(t, i, f.Spaces[i].Index())
	}
	last := f.Spaces[24].Bounds()
	assert.Equal(t, 1000-(last.X+last.Width), f.Spaces[0].Bounds().X, "row must be centered")
}

func TestNewFacility_NearestSpaceIsAccessible(t *testing.T) {
	// GIVEN the reference layout, where space 12 is centered under the building
	f, err := NewFacility(DefaultConfig().Layout)
	require.NoError(t, err)

	// THEN exactly that space is accessible
	assert.Equal(t, 1, f.AccessibleCount())
	assert.True(t, f.Spaces[12].Accessible())
	assert.Same(t, f.Spaces[12], f.NearestSpace())
	assert.InDelta(t, 14.0, f.Spaces[12].WalkDistance(), 1e-9)

	// AND no other space is closer to the building entrance
	for _, s := range f.Spaces {
		assert.GreaterOrEqual(t, s.WalkDistance(), f.Spaces[12].WalkDistance())
	}
}

func TestNewFacility_TieGoesToFirstInRowOrder(t *testing.T) {
	// GIVEN an even number of spaces so two are equidistant
	f, err := NewFacility(testLayout(2))
	require.NoError(t, err)

	// THEN the first of them is accessible
	assert.Equal(t, f.Spaces[0].WalkDistance(), f.Spaces[1].WalkDistance())
	assert.True(t, f.Spaces[0].Accessible())
	assert.False(t, f.Spaces[1].Accessible())
}

func TestNewFacility_RejectsInvalidLayouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LayoutConfig)
	}{
		{"zero spaces", func(c *LayoutConfig) { c.NumSpaces = 0 }},
		{"zero width", func(c *LayoutConfig) { c.Width = 0 }},
		{"negative height", func(c *LayoutConfig) { c.Height = -1 }},
		{"zero portal", func(c *LayoutConfig) { c.PortalSize = 0 }},
		{"row wider than lot", func(c *LayoutConfig) { c.NumSpaces = 40 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().Layout
			tt.mutate(&cfg)
			_, err := NewFacility(cfg)
			assert.Error(t, err)
		})
	}
}

func TestFacility_ClearAccessible_RelabelsEverySpace(t *testing.T) {
	f, err := NewFacility(DefaultConfig().Layout)
	require.NoError(t, err)

	f.ClearAccessible()

	assert.Equal(t, 0, f.AccessibleCount())
	assert.Len(t, EligibleSpaces(f.Spaces, false), 25)
}

func TestFacility_SetAccessible_Panics(t *testing.T) {
	f, err := NewFacility(testLayout(2))
	require.NoError(t, err)

	assert.Panics(t, func() { f.SetAccessible(2, true) }, "out of range")
	assert.Panics(t, func() { f.SetAccessible(-1, true) }, "negative index")

	require.True(t, f.Spaces[1].Occupy("v0", 0))
	assert.Panics(t, func() { f.SetAccessible(1, true) }, "occupied space")
}

func TestPoint_DistanceAndLerp(t *testing.T) {
	p, q := Point{X: 0, Y: 0}, Point{X: 3, Y: 4}
	assert.Equal(t, 5.0, p.Distance(q))
	assert.Equal(t, Point{X: 1.5, Y: 2}, p.Lerp(q, 0.5))
	assert.Equal(t, q, p.Lerp(q, 1))
}
