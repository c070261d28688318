package corridor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/boxnav/internal/core/geometry"
)

func mustAligned(t *testing.T, left, right, lower, upper float64, target geometry.Pt) geometry.Box {
	t.Helper()
	box, err := geometry.AlignedBox(left, right, lower, upper, target)
	require.NoError(t, err)
	return box
}

func TestNew(t *testing.T) {
	t.Run("valid two box corridor", func(t *testing.T) {
		c, err := New(
			mustAligned(t, 0, 1, 0, 1, geometry.Pt{X: 0.75, Y: 0.5}),
			mustAligned(t, 0.5, 1.5, 0, 1, geometry.Pt{X: 1.5, Y: 0}),
		)
		require.NoError(t, err)
		require.Equal(t, 2, c.Len())

		// Doorway midpoint of the [0.5,1]x[0,1] overlap.
		mid := c.Doorway(0)
		require.InDelta(t, 0.75, mid.X, 1e-9)
		require.InDelta(t, 0.5, mid.Y, 1e-9)

		require.Equal(t, geometry.Pt{X: 1.5, Y: 0}, c.FinalTarget())
	})

	t.Run("single box is allowed", func(t *testing.T) {
		c, err := New(mustAligned(t, 0, 1, 0, 1, geometry.Pt{X: 0.5, Y: 0.5}))
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
	})

	t.Run("empty corridor", func(t *testing.T) {
		_, err := New()
		require.ErrorIs(t, err, ErrCorridorInvalid)
	})

	t.Run("adjacent boxes without overlap", func(t *testing.T) {
		_, err := New(
			mustAligned(t, 0, 1, 0, 1, geometry.Pt{X: 0.5, Y: 0.5}),
			mustAligned(t, 2, 3, 0, 1, geometry.Pt{X: 2.5, Y: 0.5}),
		)
		require.ErrorIs(t, err, ErrCorridorInvalid)
	})

	t.Run("overlap required per adjacent pair only", func(t *testing.T) {
		// Box 0 and box 2 are disjoint; that is fine as long as each
		// adjacent pair overlaps.
		_, err := New(
			mustAligned(t, 0, 1, 0, 1, geometry.Pt{X: 0.5, Y: 0.5}),
			mustAligned(t, 0.5, 2.5, 0, 1, geometry.Pt{X: 1.5, Y: 0.5}),
			mustAligned(t, 2, 3, 0, 1, geometry.Pt{X: 2.5, Y: 0.5}),
		)
		require.NoError(t, err)
	})
}

func TestQueries(t *testing.T) {
	c, err := New(
		mustAligned(t, 0, 1, 0, 1, geometry.Pt{X: 0.75, Y: 0.5}),
		mustAligned(t, 0.5, 1.5, 0, 1, geometry.Pt{X: 1.25, Y: 0.5}),
		mustAligned(t, 1, 2, 0, 1, geometry.Pt{X: 1.75, Y: 0.5}),
	)
	require.NoError(t, err)

	t.Run("containing index honors lower bound", func(t *testing.T) {
		// (0.75, 0.5) lies in both box 0 and box 1.
		i, ok := c.ContainingIndex(geometry.Pt{X: 0.75, Y: 0.5}, 0)
		require.True(t, ok)
		require.Equal(t, 0, i)

		i, ok = c.ContainingIndex(geometry.Pt{X: 0.75, Y: 0.5}, 1)
		require.True(t, ok)
		require.Equal(t, 1, i)
	})

	t.Run("point outside all boxes", func(t *testing.T) {
		_, ok := c.ContainingIndex(geometry.Pt{X: 5, Y: 5}, 0)
		require.False(t, ok)
		require.False(t, c.Contains(geometry.Pt{X: 5, Y: 5}))
	})

	t.Run("contains", func(t *testing.T) {
		require.True(t, c.Contains(geometry.Pt{X: 1.9, Y: 0.9}))
	})
}
