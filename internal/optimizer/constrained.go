package optimizer

import (
	"sort"

	"github.com/jonathan/staffing-engine/internal/types"
)

// solveConstrained extends the optimal formulation with the hard constraints
// as search conditions: a depth-first branch-and-bound over request/candidate
// choices that maximizes total fit while respecting budget, per-request
// mandatory-skill coverage, seniority mix, certification, and timezone
// limits. Requests and candidates are visited in id order, so the result is
// deterministic. If no complete assignment satisfies the hard constraints,
// the run fails exactly like the feasibility pre-check.
func (o *Optimizer) solveConstrained(b *batch, constraints []types.Constraint) ([]int, error) {
	n := len(b.requests)
	hard := hardConstraints(constraints)

	// Candidate orderings per request: fit descending, id ascending, so the
	// search reaches strong assignments early and prunes aggressively.
	order := make([][]int, n)
	for i := 0; i < n; i++ {
		idx := make([]int, len(b.candidates))
		for j := range idx {
			idx[j] = j
		}
		sort.SliceStable(idx, func(a, c int) bool {
			return b.fits[i][idx[a]] > b.fits[i][idx[c]]
		})
		order[i] = idx
	}

	// Optimistic per-request bounds for pruning.
	maxFit := make([]float64, n)
	minCost := make([]float64, n)
	for i := 0; i < n; i++ {
		minCost[i] = -1
		for j := range b.candidates {
			if b.fits[i][j] > maxFit[i] {
				maxFit[i] = b.fits[i][j]
			}
			if minCost[i] < 0 || b.cost[i][j] < minCost[i] {
				minCost[i] = b.cost[i][j]
			}
		}
		if minCost[i] < 0 {
			minCost[i] = 0
		}
	}
	fitTail := make([]float64, n+1)
	costTail := make([]float64, n+1)
	for i := n - 1; i >= 0; i-- {
		fitTail[i] = fitTail[i+1] + maxFit[i]
		costTail[i] = costTail[i+1] + minCost[i]
	}

	s := &searchState{
		b:        b,
		hard:     hard,
		order:    order,
		fitTail:  fitTail,
		costTail: costTail,
		current:  make([]int, n),
		used:     make([]bool, len(b.candidates)),
		bestFit:  -1,
	}
	s.search(0, 0, 0)

	if s.best == nil {
		violations := hardReports(hard)
		if len(violations) == 0 {
			violations = []types.ConstraintReport{{
				Kind: types.ConstraintCoverage, Hard: true, Satisfied: false,
				Detail: "not enough candidates to assign every request",
			}}
		}
		return nil, &types.InfeasibleConstraints{Violations: violations}
	}
	return s.best, nil
}

type searchState struct {
	b        *batch
	hard     []types.Constraint
	order    [][]int
	fitTail  []float64
	costTail []float64
	current  []int
	used     []bool
	best     []int
	bestFit  float64
}

func (s *searchState) search(i int, fit, cost float64) {
	if fit+s.fitTail[i] <= s.bestFit {
		return
	}
	if i == len(s.b.requests) {
		if !s.finalConstraintsHold(s.current) {
			return
		}
		s.best = append([]int(nil), s.current...)
		s.bestFit = fit
		return
	}

	for _, j := range s.order[i] {
		if s.used[j] {
			continue
		}
		if !s.pairFeasible(i, j) {
			continue
		}
		nextCost := cost + s.b.cost[i][j]
		if s.budgetLimit() >= 0 && nextCost+s.costTail[i+1] > s.budgetLimit() {
			continue
		}
		s.used[j] = true
		s.current[i] = j
		s.search(i+1, fit+s.b.fits[i][j], nextCost)
		s.used[j] = false
	}
}

// pairFeasible applies the per-pair hard conditions: mandatory-skill coverage
// and the timezone window.
func (s *searchState) pairFeasible(i, j int) bool {
	for _, c := range s.hard {
		switch c.Kind {
		case types.ConstraintCoverage:
			if !coversMustHaves(s.b, i, j) {
				return false
			}
		case types.ConstraintTimezone:
			if len(c.TimezoneWindow) > 0 && !inWindow(s.b.candidates[j].Timezone, c.TimezoneWindow) {
				return false
			}
		}
	}
	return true
}

// finalConstraintsHold applies the whole-team hard conditions at a leaf.
func (s *searchState) finalConstraintsHold(match []int) bool {
	for _, c := range s.hard {
		switch c.Kind {
		case types.ConstraintSeniorityMix:
			if seniorRatio(s.b, match, c.SeniorityMix.MinLevel) < c.SeniorityMix.MinRatio {
				return false
			}
		case types.ConstraintCertification:
			if len(missingCertifications(s.b, match, c.RequiredSkills)) > 0 {
				return false
			}
		}
	}
	return true
}

func (s *searchState) budgetLimit() float64 {
	for _, c := range s.hard {
		if c.Kind == types.ConstraintBudget {
			return c.BudgetLimit
		}
	}
	return -1
}

func hardConstraints(constraints []types.Constraint) []types.Constraint {
	var out []types.Constraint
	for _, c := range constraints {
		if c.Hard {
			out = append(out, c)
		}
	}
	return out
}

// hardReports describes the hard constraint set when the search exhausts
// without a complete feasible assignment.
func hardReports(hard []types.Constraint) []types.ConstraintReport {
	out := make([]types.ConstraintReport, 0, len(hard))
	for _, c := range hard {
		out = append(out, types.ConstraintReport{
			Kind: c.Kind, Hard: true, Satisfied: false,
			Detail: "no complete assignment satisfies the hard constraint set",
		})
	}
	return out
}
