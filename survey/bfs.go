package survey

// breadthFirst runs a first-in-first-out traversal over an arbitrary
// adjacency relation, seeded with every station in starts simultaneously.
//
// neighbors returns the candidate far stations for the current station.
// Stations in blocked are never entered (start stations are exempt). visit is
// called once per newly discovered station with its predecessor; returning
// false stops the whole walk early.
//
// The returned parent map records the discovery predecessor for every station
// reached from the start set; start stations have no entry.
//
// The same primitive backs coordinate propagation (multi-anchor flood),
// traverse path search between anchor pairs, and solvability analysis.
func breadthFirst(
	starts []string,
	blocked map[string]bool,
	neighbors func(station string) []string,
	visit func(from, to string) bool,
) map[string]string {
	visited := make(map[string]bool, len(starts))
	parent := make(map[string]string)
	queue := make([]string, 0, len(starts))

	for _, s := range starts {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, far := range neighbors(current) {
			if visited[far] || blocked[far] {
				continue
			}
			visited[far] = true
			parent[far] = current
			if visit != nil && !visit(current, far) {
				return parent
			}
			queue = append(queue, far)
		}
	}
	return parent
}

// pathFromParents reconstructs the station path from a start station to goal
// using a parent map produced by breadthFirst. Returns nil when goal was
// never reached.
func pathFromParents(parent map[string]string, starts map[string]bool, goal string) []string {
	if !starts[goal] {
		if _, ok := parent[goal]; !ok {
			return nil
		}
	}
	var rev []string
	for at := goal; ; {
		rev = append(rev, at)
		if starts[at] {
			break
		}
		prev, ok := parent[at]
		if !ok {
			return nil
		}
		at = prev
	}
	path := make([]string, len(rev))
	for i, s := range rev {
		path[len(rev)-1-i] = s
	}
	return path
}
