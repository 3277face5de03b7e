package optimizer

import "math"

// minCostAssign solves the rectangular assignment problem with the
// potential-based Hungarian algorithm (successive shortest augmenting paths).
// cost must be n x m with n <= m; the result maps each row to its column.
// Ties resolve to the lowest column index, which keeps the matching
// deterministic for id-sorted inputs.
func minCostAssign(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])

	u := make([]float64, n+1)
	v := make([]float64, m+1)
	match := make([]int, m+1) // match[j] = row assigned to column j, 1-based
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}

		// Walk the augmenting path back and flip the matches along it.
		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	rowMatch := make([]int, n)
	for j := 1; j <= m; j++ {
		if match[j] > 0 {
			rowMatch[match[j]-1] = j - 1
		}
	}
	return rowMatch
}
