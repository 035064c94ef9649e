package router

import "routeScope/internal/model"

// GetPossiblePaths enumerates every simple pool path from inputToken to
// outputToken with at most maxHops hops. Pools are walked in caller order,
// so emission order is deterministic. A path never visits the same pool
// twice; arbitrage cycles are paths with inputToken == outputToken.
func GetPossiblePaths(inputToken, outputToken string, maxHops int, pools []model.Pool) [][]string {
	var paths [][]string
	path := make([]string, 0, maxHops)
	visited := make(map[string]struct{}, len(pools))

	var walk func(current string, depth int)
	walk = func(current string, depth int) {
		if current == outputToken && depth > 0 {
			paths = append(paths, append([]string(nil), path...))
		}
		if depth >= maxHops {
			return
		}
		for _, pool := range pools {
			if _, seen := visited[pool.Address]; seen {
				continue
			}
			if !pool.Contains(current) {
				continue
			}
			other, ok := pool.OtherToken(current)
			if !ok {
				continue
			}
			visited[pool.Address] = struct{}{}
			path = append(path, pool.Address)
			walk(other.Address, depth+1)
			path = path[:len(path)-1]
			delete(visited, pool.Address)
		}
	}

	walk(inputToken, 0)
	return paths
}
