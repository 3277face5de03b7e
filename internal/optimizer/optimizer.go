// Package optimizer assigns candidates to batches of staffing requests under
// hard and soft constraints.
package optimizer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/staffing-engine/internal/fitscore"
	"github.com/jonathan/staffing-engine/internal/gateway"
	"github.com/jonathan/staffing-engine/internal/rates"
	"github.com/jonathan/staffing-engine/internal/types"
)

// unassigned marks a request with no selected candidate.
const unassigned = -1

// Optimizer orchestrates fit scoring and rate resolution across a batch of
// requests. Stateless; safe for concurrent use.
type Optimizer struct {
	gw       gateway.Gateway
	calc     *fitscore.Calculator
	resolver *rates.Resolver
}

// New builds an Optimizer over the given gateway and core components.
func New(gw gateway.Gateway, calc *fitscore.Calculator, resolver *rates.Resolver) *Optimizer {
	return &Optimizer{gw: gw, calc: calc, resolver: resolver}
}

// batch is the fully loaded input of one optimization run: requests and
// candidates in deterministic id order, with per-pair fit and cost matrices.
type batch struct {
	requests   []types.StaffingRequest
	templates  []types.RoleTemplate
	candidates []types.Person
	skills     []map[uuid.UUID]types.PersonSkill // per candidate
	fits       [][]float64                       // [request][candidate]
	rateAmount [][]float64                       // [request][candidate], final rate per hour
	cost       [][]float64                       // rateAmount x request effort hours
}

// Optimize plans assignments for the requests under the given constraints.
// Hard constraints are verified for theoretical satisfiability before any
// assignment is attempted; if any is provably unsatisfiable the run fails
// with InfeasibleConstraints carrying every violation found.
func (o *Optimizer) Optimize(ctx context.Context, requestIDs []uuid.UUID, constraints []types.Constraint, mode types.PlanMode) (*types.TeamPlan, error) {
	if len(requestIDs) == 0 {
		return nil, &types.ValidationError{Field: "requests", Message: "at least one staffing request is required"}
	}
	for i := range constraints {
		if err := constraints[i].Validate(); err != nil {
			return nil, err
		}
	}
	switch mode {
	case types.ModeGreedy, types.ModeOptimal, types.ModeConstrained:
	default:
		return nil, &types.ComputationError{Message: fmt.Sprintf("unsupported optimization mode %q", mode)}
	}

	b, err := o.loadBatch(ctx, requestIDs)
	if err != nil {
		return nil, err
	}

	if err := o.checkFeasibility(ctx, b, constraints); err != nil {
		return nil, err
	}

	if err := o.computeMatrices(ctx, b); err != nil {
		return nil, err
	}

	var match []int
	switch mode {
	case types.ModeGreedy:
		match = o.solveGreedy(b)
	case types.ModeOptimal:
		match = o.solveOptimal(b)
	case types.ModeConstrained:
		match, err = o.solveConstrained(b, constraints)
		if err != nil {
			return nil, err
		}
	}

	return o.buildPlan(b, match, constraints, mode), nil
}

// loadBatch resolves request ids into a deterministic, fully loaded batch.
func (o *Optimizer) loadBatch(ctx context.Context, requestIDs []uuid.UUID) (*batch, error) {
	b := &batch{}
	for _, id := range requestIDs {
		req, err := o.gw.GetStaffingRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		b.requests = append(b.requests, *req)
	}
	sort.Slice(b.requests, func(i, j int) bool {
		return b.requests[i].ID.String() < b.requests[j].ID.String()
	})

	for i := range b.requests {
		tmpl, err := o.gw.GetRoleTemplate(ctx, b.requests[i].RoleTemplateID)
		if err != nil {
			return nil, err
		}
		b.templates = append(b.templates, *tmpl)
	}

	orgID := b.requests[0].OrgID
	candidates, err := o.gw.ListCandidatePeople(ctx, orgID, gateway.CandidateFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate pool: %w", err)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	b.candidates = candidates

	b.skills = make([]map[uuid.UUID]types.PersonSkill, len(candidates))
	for i := range candidates {
		personSkills, err := o.gw.ListPersonSkills(ctx, candidates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load skills for person %s: %w", candidates[i].ID, err)
		}
		byID := make(map[uuid.UUID]types.PersonSkill, len(personSkills))
		for _, ps := range personSkills {
			byID[ps.SkillID] = ps
		}
		b.skills[i] = byID
	}
	return b, nil
}

// computeMatrices fills the fit and cost matrices. Requests are independent,
// so each row is computed concurrently.
func (o *Optimizer) computeMatrices(ctx context.Context, b *batch) error {
	n := len(b.requests)
	b.fits = make([][]float64, n)
	b.rateAmount = make([][]float64, n)
	b.cost = make([][]float64, n)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range b.requests {
		i := i
		g.Go(func() error {
			req := b.requests[i]
			results, err := o.calc.Rank(gCtx, req.ID, b.candidates, 0)
			if err != nil {
				return err
			}
			fitByPerson := make(map[uuid.UUID]float64, len(results))
			for _, r := range results {
				fitByPerson[r.PersonID] = r.FitScore
			}

			fitRow := make([]float64, len(b.candidates))
			rateRow := make([]float64, len(b.candidates))
			costRow := make([]float64, len(b.candidates))
			for j := range b.candidates {
				fitRow[j] = fitByPerson[b.candidates[j].ID]
				res, err := o.resolver.Resolve(gCtx, o.pairContext(&req, &b.candidates[j], &b.templates[i]))
				if err != nil {
					return fmt.Errorf("failed to model rate for request %s person %s: %w", req.ID, b.candidates[j].ID, err)
				}
				rateRow[j] = res.FinalAmount
				costRow[j] = res.FinalAmount * req.EffortHours
			}
			b.fits[i] = fitRow
			b.rateAmount[i] = rateRow
			b.cost[i] = costRow
			return nil
		})
	}
	return g.Wait()
}

// pairContext builds the rate context for pricing one candidate on one request.
func (o *Optimizer) pairContext(req *types.StaffingRequest, p *types.Person, tmpl *types.RoleTemplate) types.RateContext {
	rc := types.RateContext{
		OrgID:          req.OrgID,
		PersonID:       &p.ID,
		RoleTemplateID: &req.RoleTemplateID,
		ClientID:       req.ClientID,
		SkillIDs:       req.MustHaveSkills,
		AsOf:           req.StartDate,
	}
	if req.ParentKind == types.ParentEngagement {
		rc.EngagementID = &req.ParentID
	}
	level := tmpl.SeniorityLevel
	rc.Level = &level
	return rc
}

// solveGreedy walks requests in id order and picks the best-scoring candidate
// whose already-planned windows do not overlap the request. Driven entirely
// by real fit scores; ties fall to the lower candidate id.
func (o *Optimizer) solveGreedy(b *batch) []int {
	match := make([]int, len(b.requests))
	taken := make(map[int][]int) // candidate index -> request indices already planned

	for i := range b.requests {
		best := unassigned
		bestFit := -1.0
		for j := range b.candidates {
			if overlapsAny(b, taken[j], i) {
				continue
			}
			if b.fits[i][j] > bestFit {
				best, bestFit = j, b.fits[i][j]
			}
		}
		match[i] = best
		if best != unassigned {
			taken[best] = append(taken[best], i)
		}
	}
	return match
}

// overlapsAny reports whether request i overlaps any of the candidate's
// already-planned request windows.
func overlapsAny(b *batch, planned []int, i int) bool {
	for _, k := range planned {
		if types.Overlaps(b.requests[k].StartDate, b.requests[k].EndDate, b.requests[i].StartDate, b.requests[i].EndDate) {
			return true
		}
	}
	return false
}

// solveOptimal models the batch as a weighted bipartite assignment problem
// with cost 1 - fit and solves it with a min-cost matching. When there are
// fewer candidates than requests, the matrix is padded with dummy columns and
// the padded requests come back unassigned.
func (o *Optimizer) solveOptimal(b *batch) []int {
	n := len(b.requests)
	m := len(b.candidates)
	if m == 0 {
		match := make([]int, n)
		for i := range match {
			match[i] = unassigned
		}
		return match
	}

	width := m
	if n > m {
		width = n
	}
	cost := make([][]float64, n)
	for i := range cost {
		cost[i] = make([]float64, width)
		for j := 0; j < width; j++ {
			if j < m {
				cost[i][j] = 1 - b.fits[i][j]
			} else {
				cost[i][j] = 1 // dummy column: no candidate
			}
		}
	}

	match := minCostAssign(cost)
	for i := range match {
		if match[i] >= m {
			match[i] = unassigned
		}
	}
	return match
}

// buildPlan assembles the output plan, the per-constraint satisfaction report,
// and the skill-coverage report from a solved matching.
func (o *Optimizer) buildPlan(b *batch, match []int, constraints []types.Constraint, mode types.PlanMode) *types.TeamPlan {
	plan := &types.TeamPlan{
		Mode:        mode,
		Assignments: []types.PlannedAssignment{},
	}

	totalScore := 0.0
	totalCost := 0.0
	for i, j := range match {
		if j == unassigned {
			continue
		}
		plan.Assignments = append(plan.Assignments, types.PlannedAssignment{
			RequestID: b.requests[i].ID,
			PersonID:  b.candidates[j].ID,
			FitScore:  b.fits[i][j],
			Rate:      b.rateAmount[i][j],
		})
		totalScore += b.fits[i][j]
		totalCost += b.cost[i][j]
	}
	plan.TotalScore = math.Round(totalScore*1e4) / 1e4
	plan.TotalCost = math.Round(totalCost*100) / 100

	plan.ConstraintsSatisfied = o.evaluateConstraints(b, match, constraints, totalCost)
	plan.SkillCoverage = o.coverageReport(b, match)
	return plan
}

// evaluateConstraints reports satisfaction of every constraint against the
// final plan, including soft constraints the solvers did not enforce.
func (o *Optimizer) evaluateConstraints(b *batch, match []int, constraints []types.Constraint, totalCost float64) []types.ConstraintReport {
	reports := make([]types.ConstraintReport, 0, len(constraints))
	for _, c := range constraints {
		report := types.ConstraintReport{Kind: c.Kind, Hard: c.Hard, Satisfied: true}
		switch c.Kind {
		case types.ConstraintBudget:
			report.Satisfied = totalCost <= c.BudgetLimit
			report.Detail = fmt.Sprintf("total cost %.2f against budget %.2f", totalCost, c.BudgetLimit)
		case types.ConstraintCoverage:
			missing := uncoveredRequests(b, match)
			report.Satisfied = len(missing) == 0
			report.Detail = coverageDetail(missing)
		case types.ConstraintTimezone:
			outside := timezoneViolations(b, match, c.TimezoneWindow)
			report.Satisfied = len(outside) == 0
			if report.Satisfied {
				report.Detail = "all assigned candidates inside the timezone window"
			} else {
				report.Detail = fmt.Sprintf("%d assignment(s) outside the timezone window", len(outside))
			}
		case types.ConstraintSeniorityMix:
			ratio := seniorRatio(b, match, c.SeniorityMix.MinLevel)
			report.Satisfied = ratio >= c.SeniorityMix.MinRatio
			report.Detail = fmt.Sprintf("%.0f%% of assignments at level >= %d (minimum %.0f%%)",
				ratio*100, c.SeniorityMix.MinLevel, c.SeniorityMix.MinRatio*100)
		case types.ConstraintCertification:
			missing := missingCertifications(b, match, c.RequiredSkills)
			report.Satisfied = len(missing) == 0
			if report.Satisfied {
				report.Detail = "all required certifications present on the assigned team"
			} else {
				report.Detail = fmt.Sprintf("%d required certification(s) missing from the assigned team", len(missing))
			}
		}
		reports = append(reports, report)
	}
	return reports
}

// coverageReport lists required vs covered levels for every hard requirement
// of every request.
func (o *Optimizer) coverageReport(b *batch, match []int) []types.SkillCoverage {
	out := []types.SkillCoverage{}
	for i := range b.requests {
		j := match[i]
		for _, req := range b.templates[i].HardRequirements {
			covered := 0
			if j != unassigned {
				if ps, ok := b.skills[j][req.SkillID]; ok {
					covered = ps.Level
				}
			}
			out = append(out, types.SkillCoverage{
				RequestID:     b.requests[i].ID,
				SkillID:       req.SkillID,
				RequiredLevel: req.MinLevel,
				CoveredLevel:  covered,
				Covered:       covered >= req.MinLevel,
			})
		}
	}
	return out
}

func uncoveredRequests(b *batch, match []int) []uuid.UUID {
	var missing []uuid.UUID
	for i := range b.requests {
		j := match[i]
		if j == unassigned {
			missing = append(missing, b.requests[i].ID)
			continue
		}
		if !coversMustHaves(b, i, j) {
			missing = append(missing, b.requests[i].ID)
		}
	}
	return missing
}

// coversMustHaves reports whether candidate j holds every must-have skill of
// request i at the template's minimum level.
func coversMustHaves(b *batch, i, j int) bool {
	for _, skillID := range b.requests[i].MustHaveSkills {
		ps, ok := b.skills[j][skillID]
		if !ok {
			return false
		}
		if min := mustHaveMinLevel(&b.templates[i], skillID); ps.Level < min {
			return false
		}
	}
	return true
}

// mustHaveMinLevel looks up the template's minimum level for a skill,
// defaulting to 1 when the request names a skill the template does not.
func mustHaveMinLevel(tmpl *types.RoleTemplate, skillID uuid.UUID) int {
	for _, r := range tmpl.HardRequirements {
		if r.SkillID == skillID {
			return r.MinLevel
		}
	}
	return 1
}

func coverageDetail(missing []uuid.UUID) string {
	if len(missing) == 0 {
		return "every request assigned with its mandatory skills covered"
	}
	ids := make([]string, len(missing))
	for i, id := range missing {
		ids[i] = id.String()
	}
	return fmt.Sprintf("requests without full mandatory-skill coverage: %s", joinIDs(ids))
}

func timezoneViolations(b *batch, match []int, window []string) []uuid.UUID {
	if len(window) == 0 {
		return nil
	}
	var out []uuid.UUID
	for i, j := range match {
		if j == unassigned {
			continue
		}
		if !inWindow(b.candidates[j].Timezone, window) {
			out = append(out, b.requests[i].ID)
		}
	}
	return out
}

func inWindow(tz string, window []string) bool {
	for _, w := range window {
		if w == tz {
			return true
		}
	}
	return false
}

func seniorRatio(b *batch, match []int, minLevel int) float64 {
	assigned := 0
	senior := 0
	for _, j := range match {
		if j == unassigned {
			continue
		}
		assigned++
		if b.candidates[j].SeniorityLevel >= minLevel {
			senior++
		}
	}
	if assigned == 0 {
		return 0
	}
	return float64(senior) / float64(assigned)
}

func missingCertifications(b *batch, match []int, required []uuid.UUID) []uuid.UUID {
	var missing []uuid.UUID
	for _, skillID := range required {
		held := false
		for _, j := range match {
			if j == unassigned {
				continue
			}
			if _, ok := b.skills[j][skillID]; ok {
				held = true
				break
			}
		}
		if !held {
			missing = append(missing, skillID)
		}
	}
	return missing
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}
