package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := NewGrid(0, 10)
		assert.Error(t, err)
		_, err = NewGrid(10, -1)
		assert.Error(t, err)
	})

	t.Run("starts as unowned ocean", func(t *testing.T) {
		g, err := NewGrid(4, 4)
		require.NoError(t, err)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				assert.Equal(t, Ocean, g.TerrainAt(x, y))
				assert.Equal(t, NoOwner, g.OwnerAt(x, y))
			}
		}
	})
}

func TestWrap(t *testing.T) {
	g, err := NewGrid(10, 8)
	require.NoError(t, err)

	x, y := g.Wrap(-1, -1)
	assert.Equal(t, 9, x)
	assert.Equal(t, 7, y)

	x, y = g.Wrap(10, 8)
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	x, y = g.Wrap(23, 17)
	assert.Equal(t, 3, x)
	assert.Equal(t, 1, y)
}

func TestNeighbors(t *testing.T) {
	g, err := NewGrid(10, 10)
	require.NoError(t, err)

	t.Run("six distinct in-bounds neighbors", func(t *testing.T) {
		for _, c := range []Coord{{0, 0}, {5, 5}, {9, 9}, {4, 0}, {3, 9}} {
			nbs := g.Neighbors(c.X, c.Y)
			seen := make(map[Coord]struct{})
			for _, nb := range nbs {
				assert.GreaterOrEqual(t, nb.X, 0)
				assert.Less(t, nb.X, g.Width)
				assert.GreaterOrEqual(t, nb.Y, 0)
				assert.Less(t, nb.Y, g.Height)
				assert.NotEqual(t, c, nb)
				seen[nb] = struct{}{}
			}
			assert.Len(t, seen, 6, "neighbors of %v must be distinct", c)
		}
	})

	t.Run("wraps across edges", func(t *testing.T) {
		nbs := g.Neighbors(0, 0)
		assert.Contains(t, nbs[:], Coord{X: 0, Y: 9}, "north wraps")
		assert.Contains(t, nbs[:], Coord{X: 9, Y: 0}, "west wraps")
	})

	t.Run("adjacency is symmetric", func(t *testing.T) {
		for _, c := range []Coord{{0, 0}, {5, 5}, {2, 7}} {
			for _, nb := range g.Neighbors(c.X, c.Y) {
				back := g.Neighbors(nb.X, nb.Y)
				assert.Contains(t, back[:], c,
					"%v lists %v but not vice versa", c, nb)
			}
		}
	})
}

func TestDistance(t *testing.T) {
	g, err := NewGrid(20, 20)
	require.NoError(t, err)

	t.Run("identity", func(t *testing.T) {
		assert.Equal(t, 0, g.Distance(5, 5, 5, 5))
	})

	t.Run("symmetry", func(t *testing.T) {
		assert.Equal(t, g.Distance(1, 2, 7, 9), g.Distance(7, 9, 1, 2))
	})

	t.Run("wraps around the torus", func(t *testing.T) {
		// 19 steps the long way, 1 step across the seam.
		assert.Equal(t, 1, g.Distance(0, 5, 19, 5))
		assert.Equal(t, 2, g.Distance(0, 0, 0, 18))
	})

	t.Run("straight column runs", func(t *testing.T) {
		assert.Equal(t, 5, g.Distance(3, 2, 3, 7))
	})
}

func TestFindPath(t *testing.T) {
	makeLand := func(g *Grid) {
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				g.Cell(x, y).Terrain = Plains
			}
		}
	}

	t.Run("path over open land", func(t *testing.T) {
		g, err := NewGrid(8, 8)
		require.NoError(t, err)
		makeLand(g)

		path, ok := g.FindPath(Coord{0, 0}, Coord{4, 4}, false)
		require.True(t, ok)
		assert.Equal(t, Coord{0, 0}, path[0])
		assert.Equal(t, Coord{4, 4}, path[len(path)-1])

		// Every hop must be a real adjacency.
		for i := 1; i < len(path); i++ {
			nbs := g.Neighbors(path[i-1].X, path[i-1].Y)
			assert.Contains(t, nbs[:], path[i])
		}
	})

	t.Run("ocean blocks land armies", func(t *testing.T) {
		g, err := NewGrid(8, 8)
		require.NoError(t, err)
		// Two separate islands in an ocean world.
		g.Cell(1, 1).Terrain = Plains
		g.Cell(5, 5).Terrain = Plains

		_, ok := g.FindPath(Coord{1, 1}, Coord{5, 5}, false)
		assert.False(t, ok)
	})

	t.Run("naval forces cross the ocean", func(t *testing.T) {
		g, err := NewGrid(8, 8)
		require.NoError(t, err)
		g.Cell(1, 1).Terrain = Plains
		g.Cell(5, 5).Terrain = Plains

		path, ok := g.FindPath(Coord{1, 1}, Coord{5, 5}, true)
		require.True(t, ok)
		assert.Equal(t, Coord{5, 5}, path[len(path)-1])
	})

	t.Run("avoids expensive terrain when a cheap detour exists", func(t *testing.T) {
		g, err := NewGrid(12, 12)
		require.NoError(t, err)
		makeLand(g)
		// Wall of mountains down column 5, one plains gap at y=0.
		for y := 1; y < g.Height; y++ {
			g.Cell(5, y).Terrain = Mountain
		}

		path, ok := g.FindPath(Coord{3, 6}, Coord{7, 6}, false)
		require.True(t, ok)
		cost := 0.0
		for _, c := range path[1:] {
			cost += g.MoveCost(g.TerrainAt(c.X, c.Y))
		}
		// Crossing one mountain costs 3; any route found should not pay
		// more than a single crossing's worth over the direct line.
		assert.LessOrEqual(t, cost, 14.0)
	})
}

func TestGenerateTerrain(t *testing.T) {
	t.Run("deterministic for a seed", func(t *testing.T) {
		a, err := NewGrid(40, 40)
		require.NoError(t, err)
		b, err := NewGrid(40, 40)
		require.NoError(t, err)

		a.GenerateTerrain(7)
		b.GenerateTerrain(7)

		for y := 0; y < 40; y++ {
			for x := 0; x < 40; x++ {
				require.Equal(t, a.TerrainAt(x, y), b.TerrainAt(x, y),
					"terrain mismatch at (%d,%d)", x, y)
			}
		}
	})

	t.Run("different seeds differ", func(t *testing.T) {
		a, err := NewGrid(40, 40)
		require.NoError(t, err)
		b, err := NewGrid(40, 40)
		require.NoError(t, err)

		a.GenerateTerrain(1)
		b.GenerateTerrain(2)

		diff := 0
		for y := 0; y < 40; y++ {
			for x := 0; x < 40; x++ {
				if a.TerrainAt(x, y) != b.TerrainAt(x, y) {
					diff++
				}
			}
		}
		assert.Greater(t, diff, 0)
	})

	t.Run("produces land", func(t *testing.T) {
		g, err := NewGrid(40, 40)
		require.NoError(t, err)
		g.GenerateTerrain(42)
		assert.NotEmpty(t, g.LandCells())
	})
}
