package survey

import (
	"reflect"
	"testing"
)

// gridNeighbors is a small fixed graph used across the traversal tests:
//
//	A - B - C
//	    |   |
//	    D - E
var gridNeighbors = map[string][]string{
	"A": {"B"},
	"B": {"A", "C", "D"},
	"C": {"B", "E"},
	"D": {"B", "E"},
	"E": {"C", "D"},
}

func neighborsOf(station string) []string { return gridNeighbors[station] }

func TestBreadthFirstVisitsEveryReachableStation(t *testing.T) {
	visited := make(map[string]bool)
	breadthFirst([]string{"A"}, nil, neighborsOf, func(_, to string) bool {
		visited[to] = true
		return true
	})
	for _, name := range []string{"B", "C", "D", "E"} {
		if !visited[name] {
			t.Errorf("station %s never visited", name)
		}
	}
	if visited["A"] {
		t.Error("start station reported as discovered")
	}
}

func TestBreadthFirstMultiStart(t *testing.T) {
	visited := make(map[string]bool)
	breadthFirst([]string{"A", "E"}, nil, neighborsOf, func(_, to string) bool {
		visited[to] = true
		return true
	})
	if len(visited) != 3 {
		t.Errorf("visited %d stations, want 3 (B, C, D)", len(visited))
	}
}

func TestBreadthFirstBlocked(t *testing.T) {
	visited := make(map[string]bool)
	breadthFirst([]string{"A"}, map[string]bool{"B": true}, neighborsOf, func(_, to string) bool {
		visited[to] = true
		return true
	})
	if len(visited) != 0 {
		t.Errorf("blocking the only bridge still visited %v", visited)
	}
}

func TestBreadthFirstEarlyStop(t *testing.T) {
	count := 0
	breadthFirst([]string{"A"}, nil, neighborsOf, func(_, to string) bool {
		count++
		return to != "B"
	})
	if count != 1 {
		t.Errorf("visit called %d times after stop, want 1", count)
	}
}

func TestPathFromParents(t *testing.T) {
	starts := map[string]bool{"A": true}
	parent := breadthFirst([]string{"A"}, nil, neighborsOf, nil)

	path := pathFromParents(parent, starts, "E")
	if len(path) != 4 || path[0] != "A" || path[3] != "E" {
		t.Fatalf("path = %v", path)
	}
	// Middle of the path must follow parent links, so either branch of the
	// grid is acceptable.
	want1 := []string{"A", "B", "C", "E"}
	want2 := []string{"A", "B", "D", "E"}
	if !reflect.DeepEqual(path, want1) && !reflect.DeepEqual(path, want2) {
		t.Errorf("path = %v, want %v or %v", path, want1, want2)
	}

	if got := pathFromParents(parent, starts, "NOWHERE"); got != nil {
		t.Errorf("unreachable goal produced path %v", got)
	}
	if got := pathFromParents(parent, starts, "A"); len(got) != 1 || got[0] != "A" {
		t.Errorf("trivial path = %v, want [A]", got)
	}
}
