// Package geo provides the toroidal hex-grid world model: adjacency,
// distance, pathfinding, and terrain generation. The grid uses odd-q
// offset coordinates, so neighbor offsets depend on column parity.
package geo

import "fmt"

// Terrain enumerates the tile terrain kinds.
type Terrain uint8

const (
	Ocean Terrain = iota
	Plains
	Mountain
	Desert
	Forest
)

// terrainNames maps terrain kinds to display names.
var terrainNames = [...]string{"ocean", "plains", "mountain", "desert", "forest"}

func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// NoOwner marks an unowned cell.
const NoOwner = -1

// Coord is a grid position in offset coordinates.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell is a single tile: terrain is immutable after generation,
// ownership changes as nations claim and lose territory.
type Cell struct {
	Coord   Coord   `json:"coord"`
	Terrain Terrain `json:"terrain"`
	OwnerID int     `json:"owner_id"`
}

// Grid is a fixed-size hex grid whose edges wrap on both axes.
type Grid struct {
	Width  int
	Height int
	cells  []Cell

	// Movement cost per terrain kind, indexed by Terrain.
	costs [5]float64
}

// NewGrid creates an all-ocean grid of the given dimensions.
// Non-positive dimensions are a programming error.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	g := &Grid{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
		costs:  [5]float64{Ocean: 1.0, Plains: 1.0, Mountain: 3.0, Desert: 2.0, Forest: 1.5},
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{Coord: Coord{X: x, Y: y}, Terrain: Ocean, OwnerID: NoOwner}
		}
	}
	return g, nil
}

// Wrap maps an arbitrary coordinate onto the torus.
func (g *Grid) Wrap(x, y int) (int, int) {
	x %= g.Width
	if x < 0 {
		x += g.Width
	}
	y %= g.Height
	if y < 0 {
		y += g.Height
	}
	return x, y
}

// Cell returns a pointer to the cell at (x, y), wrapping as needed.
func (g *Grid) Cell(x, y int) *Cell {
	x, y = g.Wrap(x, y)
	return &g.cells[y*g.Width+x]
}

// TerrainAt returns the terrain at (x, y), wrapping as needed.
func (g *Grid) TerrainAt(x, y int) Terrain {
	return g.Cell(x, y).Terrain
}

// OwnerAt returns the owning nation id at (x, y), or NoOwner.
func (g *Grid) OwnerAt(x, y int) int {
	return g.Cell(x, y).OwnerID
}

// SetOwner records cell ownership. At most one nation owns a cell.
func (g *Grid) SetOwner(x, y, nationID int) {
	g.Cell(x, y).OwnerID = nationID
}

// MoveCost returns the movement cost of entering the given terrain.
func (g *Grid) MoveCost(t Terrain) float64 {
	if int(t) < len(g.costs) {
		return g.costs[t]
	}
	return 1.0
}

// Neighbor offsets for odd-q layout: the six directions differ between
// even and odd columns.
var (
	evenColDirs = [6][2]int{{0, -1}, {1, -1}, {1, 0}, {0, 1}, {-1, 0}, {-1, -1}}
	oddColDirs  = [6][2]int{{0, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}}
)

// Neighbors returns the six adjacent coordinates of (x, y), each
// wrapped into grid bounds.
func (g *Grid) Neighbors(x, y int) [6]Coord {
	dirs := &evenColDirs
	if x%2 != 0 {
		dirs = &oddColDirs
	}
	var out [6]Coord
	for i, d := range dirs {
		nx, ny := g.Wrap(x+d[0], y+d[1])
		out[i] = Coord{X: nx, Y: ny}
	}
	return out
}

// Distance returns the hex distance between two cells as
// max(dx, dy, dx+dy) over the per-axis wrapped minima. This is a
// deliberate approximation of true hex distance on the torus: it is
// admissible for pathfinding here but not exact in every wrap
// configuration. Do not rely on it for precision-sensitive work.
func (g *Grid) Distance(x1, y1, x2, y2 int) int {
	dx := wrapDelta(x2-x1, g.Width)
	dy := wrapDelta(y2-y1, g.Height)

	d := absInt(dx)
	if a := absInt(dy); a > d {
		d = a
	}
	if a := absInt(dx + dy); a > d {
		d = a
	}
	return d
}

// wrapDelta returns the signed difference of smallest magnitude on a
// cycle of the given size.
func wrapDelta(d, size int) int {
	d = ((d % size) + size) % size
	if d > size/2 {
		d -= size
	}
	return d
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
