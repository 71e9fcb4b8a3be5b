package geo

import "container/heap"

// FindPath runs A* from start to end using per-terrain movement costs
// and Distance as the heuristic. Ocean tiles are impassable when
// navalCapable is false. The returned path includes both endpoints.
// An unreachable end yields (nil, false) — never an error.
func (g *Grid) FindPath(start, end Coord, navalCapable bool) ([]Coord, bool) {
	start = g.wrapCoord(start)
	end = g.wrapCoord(end)

	frontier := &pathQueue{}
	heap.Init(frontier)
	heap.Push(frontier, pathNode{coord: start, priority: 0})

	cameFrom := map[Coord]Coord{start: start}
	costSoFar := map[Coord]float64{start: 0}

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(pathNode).coord
		if current == end {
			break
		}

		for _, next := range g.Neighbors(current.X, current.Y) {
			terrain := g.TerrainAt(next.X, next.Y)
			if !navalCapable && terrain == Ocean {
				continue
			}

			newCost := costSoFar[current] + g.MoveCost(terrain)
			if prev, seen := costSoFar[next]; !seen || newCost < prev {
				costSoFar[next] = newCost
				h := float64(g.Distance(next.X, next.Y, end.X, end.Y))
				heap.Push(frontier, pathNode{coord: next, priority: newCost + h})
				cameFrom[next] = current
			}
		}
	}

	if _, reached := cameFrom[end]; !reached {
		return nil, false
	}

	// Walk back from end to start.
	var path []Coord
	for curr := end; curr != start; curr = cameFrom[curr] {
		path = append(path, curr)
	}
	path = append(path, start)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

func (g *Grid) wrapCoord(c Coord) Coord {
	x, y := g.Wrap(c.X, c.Y)
	return Coord{X: x, Y: y}
}

// pathNode is an A* frontier entry.
type pathNode struct {
	coord    Coord
	priority float64
}

// pathQueue is a min-heap of frontier nodes ordered by priority.
type pathQueue []pathNode

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)         { *q = append(*q, x.(pathNode)) }
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
