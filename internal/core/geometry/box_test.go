package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxContains(t *testing.T) {
	t.Run("oriented box", func(t *testing.T) {
		// Tilted rectangle described by three corners.
		box, err := NewBox(Pt{5, 0}, Pt{0, 2}, Pt{1, 5}, Pt{4, 2})
		require.NoError(t, err)

		require.True(t, box.Contains(Pt{4, 2}))
		require.False(t, box.Contains(Pt{6, 1}))
	})

	t.Run("axis aligned", func(t *testing.T) {
		box, err := AlignedBox(0, 1, 0, 1, Pt{0.5, 0.5})
		require.NoError(t, err)

		require.True(t, box.Contains(Pt{0.5, 0.5}))
		require.True(t, box.Contains(Pt{0, 0}), "boundary is inclusive")
		require.True(t, box.Contains(Pt{1, 1}), "boundary is inclusive")
		require.False(t, box.Contains(Pt{1.01, 0.5}))
		require.False(t, box.Contains(Pt{-0.01, 0.5}))
	})

	t.Run("rotated", func(t *testing.T) {
		box, err := RotatedBox(Pt{0, 0}, Pt{0, 1}, Pt{2, 1}, Pt{1, 0.5}, math.Pi/2)
		require.NoError(t, err)

		// A quarter turn maps (1, 0.5) to (-0.5, 1).
		require.True(t, box.Contains(Pt{-0.5, 1}))
		require.False(t, box.Contains(Pt{1, 0.5}))
	})
}

func TestNewBoxValidation(t *testing.T) {
	t.Run("degenerate corners", func(t *testing.T) {
		_, err := NewBox(Pt{0, 0}, Pt{1, 1}, Pt{2, 2}, Pt{1, 1})
		require.ErrorIs(t, err, ErrDegenerateBox)
	})

	t.Run("target outside", func(t *testing.T) {
		_, err := AlignedBox(0, 1, 0, 1, Pt{5, 5})
		require.ErrorIs(t, err, ErrTargetOutsideBox)
	})
}

func TestBoxOverlap(t *testing.T) {
	t.Run("half overlapping unit squares", func(t *testing.T) {
		a, err := AlignedBox(0, 1, 0, 1, Pt{0.5, 0.5})
		require.NoError(t, err)
		b, err := AlignedBox(0.5, 1.5, 0, 1, Pt{1, 0.5})
		require.NoError(t, err)

		region, ok := a.Overlap(b)
		require.True(t, ok)
		require.InDelta(t, 0.5, region.Area(), 1e-9)

		mid := region.Centroid()
		require.InDelta(t, 0.75, mid.X, 1e-9)
		require.InDelta(t, 0.5, mid.Y, 1e-9)
	})

	t.Run("disjoint", func(t *testing.T) {
		a, err := AlignedBox(0, 1, 0, 1, Pt{0.5, 0.5})
		require.NoError(t, err)
		b, err := AlignedBox(2, 3, 0, 1, Pt{2.5, 0.5})
		require.NoError(t, err)

		_, ok := a.Overlap(b)
		require.False(t, ok)
	})

	t.Run("shared edge is not a doorway", func(t *testing.T) {
		a, err := AlignedBox(0, 1, 0, 1, Pt{0.5, 0.5})
		require.NoError(t, err)
		b, err := AlignedBox(1, 2, 0, 1, Pt{1.5, 0.5})
		require.NoError(t, err)

		_, ok := a.Overlap(b)
		require.False(t, ok, "zero-area overlap must report empty")
	})

	t.Run("tilted against aligned", func(t *testing.T) {
		a, err := AlignedBox(0, 2, 0, 2, Pt{1, 1})
		require.NoError(t, err)
		b, err := RotatedBox(Pt{1, -3}, Pt{1, 3}, Pt{4, 3}, Pt{2, 0}, math.Pi/6)
		require.NoError(t, err)

		region, ok := a.Overlap(b)
		require.True(t, ok)
		require.Greater(t, region.Area(), 0.0)
		require.True(t, a.Contains(region.Centroid()))
		require.True(t, b.Contains(region.Centroid()))
	})
}

func TestPointOps(t *testing.T) {
	t.Run("angle sign", func(t *testing.T) {
		east := Pt{1, 0}
		north := Pt{0, 1}
		require.InDelta(t, math.Pi/2, east.AngleTo(north), 1e-9)
		require.InDelta(t, -math.Pi/2, north.AngleTo(east), 1e-9)
	})

	t.Run("heading vector", func(t *testing.T) {
		h := Heading(math.Pi / 2)
		require.InDelta(t, 0, h.X, 1e-9)
		require.InDelta(t, 1, h.Y, 1e-9)
	})

	t.Run("rotate", func(t *testing.T) {
		p := Rotate(Pt{1, 0}, math.Pi)
		require.InDelta(t, -1, p.X, 1e-9)
		require.InDelta(t, 0, p.Y, 1e-9)
	})

	t.Run("normalize", func(t *testing.T) {
		n := Pt{3, 4}.Normalized()
		require.InDelta(t, 0.6, n.X, 1e-9)
		require.InDelta(t, 0.8, n.Y, 1e-9)
		require.Equal(t, Pt{}, Pt{}.Normalized(), "the zero vector keeps no direction")
	})

	t.Run("distance", func(t *testing.T) {
		require.InDelta(t, 5, Distance(Pt{0, 0}, Pt{3, 4}), 1e-9)
		require.True(t, CloseEnough(Pt{0, 0}, Pt{0.05, 0}, 0.1))
		require.False(t, CloseEnough(Pt{0, 0}, Pt{0.2, 0}, 0.1))
	})
}
