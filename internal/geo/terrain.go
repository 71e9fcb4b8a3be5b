package geo

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Terrain generation parameters. Continents are grown as random-walk
// blobs of plains over the ocean base, then mountain/forest/desert
// features are overlaid inside them with noise-modulated probability.
const (
	numContinents   = 5
	blobSizeMin     = 50
	blobSizeMax     = 200
	featureNoiseFrq = 0.1
)

// GenerateTerrain produces a reproducible terrain layout: the same seed
// always yields the same map. Ownership is untouched.
func (g *Grid) GenerateTerrain(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	elevNoise := opensimplex.NewNormalized(seed)

	// Continent blobs: random walks laying down plains.
	for c := 0; c < numContinents; c++ {
		x := rng.Intn(g.Width)
		y := rng.Intn(g.Height)
		size := blobSizeMin + rng.Intn(blobSizeMax-blobSizeMin)

		for i := 0; i < size; i++ {
			g.Cell(x, y).Terrain = Plains
			next := g.Neighbors(x, y)[rng.Intn(6)]
			x, y = next.X, next.Y
		}
	}

	// Feature overlay within continents. Simplex elevation biases
	// mountains toward high-noise regions and forests toward low.
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cell := g.Cell(x, y)
			if cell.Terrain != Plains {
				continue
			}
			elev := elevNoise.Eval2(float64(x)*featureNoiseFrq, float64(y)*featureNoiseFrq)
			r := rng.Float64()
			switch {
			case r < 0.10*(0.5+elev):
				cell.Terrain = Mountain
			case r < 0.20:
				cell.Terrain = Forest
			case r < 0.25:
				cell.Terrain = Desert
			}
		}
	}
}

// LandCells returns the coordinates of all non-ocean cells.
func (g *Grid) LandCells() []Coord {
	var out []Coord
	for i := range g.cells {
		if g.cells[i].Terrain != Ocean {
			out = append(out, g.cells[i].Coord)
		}
	}
	return out
}
