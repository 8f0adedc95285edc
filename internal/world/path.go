package world

import "container/heap"

// FindPath runs A* between two macro coordinates with unit step cost
// and a Manhattan heuristic. passable gates which cells may be
// entered; the start cell is never tested. Returns the path including
// both endpoints, or nil when no route exists.
func FindPath(start, goal Coord, passable func(Coord) bool) []Coord {
	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, pathNode{coord: start, f: start.Manhattan(goal)})

	cameFrom := make(map[Coord]Coord)
	gScore := map[Coord]int{start: 0}
	inOpen := map[Coord]bool{start: true}

	for open.Len() > 0 {
		current := heap.Pop(open).(pathNode).coord
		inOpen[current] = false

		if current == goal {
			return reconstruct(cameFrom, current)
		}

		for _, n := range current.Neighbors(Size) {
			if !passable(n) {
				continue
			}
			tentative := gScore[current] + 1
			if g, seen := gScore[n]; !seen || tentative < g {
				cameFrom[n] = current
				gScore[n] = tentative
				if !inOpen[n] {
					heap.Push(open, pathNode{coord: n, f: tentative + n.Manhattan(goal)})
					inOpen[n] = true
				}
			}
		}
	}

	return nil
}

func reconstruct(cameFrom map[Coord]Coord, end Coord) []Coord {
	path := []Coord{end}
	for {
		prev, ok := cameFrom[end]
		if !ok {
			break
		}
		path = append(path, prev)
		end = prev
	}
	// Reverse into start→goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pathNode struct {
	coord Coord
	f     int
}

type nodeQueue []pathNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(pathNode)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
