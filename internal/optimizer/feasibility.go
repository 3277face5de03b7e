package optimizer

import (
	"context"
	"fmt"
	"math"

	"github.com/jonathan/staffing-engine/internal/types"
)

// checkFeasibility verifies every hard constraint is theoretically
// satisfiable before any assignment is attempted. All violations are
// collected so the caller sees the complete picture in one failure.
func (o *Optimizer) checkFeasibility(ctx context.Context, b *batch, constraints []types.Constraint) error {
	var violations []types.ConstraintReport

	for _, c := range constraints {
		if !c.Hard {
			continue
		}
		var report *types.ConstraintReport
		var err error
		switch c.Kind {
		case types.ConstraintBudget:
			report, err = o.budgetFeasible(ctx, b, c)
		case types.ConstraintCoverage:
			report = o.coverageFeasible(b, c)
		case types.ConstraintCertification:
			report = o.certificationFeasible(b, c)
		case types.ConstraintSeniorityMix:
			report = o.seniorityFeasible(b, c)
		case types.ConstraintTimezone:
			report = o.timezoneFeasible(b, c)
		}
		if err != nil {
			return err
		}
		if report != nil {
			violations = append(violations, *report)
		}
	}

	if len(violations) > 0 {
		return &types.InfeasibleConstraints{Violations: violations}
	}
	return nil
}

// budgetFeasible estimates the cheapest possible total cost from the
// role-scope rate of each request. If even that estimate exceeds the cap, no
// assignment can satisfy the budget.
func (o *Optimizer) budgetFeasible(ctx context.Context, b *batch, c types.Constraint) (*types.ConstraintReport, error) {
	total := 0.0
	for i := range b.requests {
		req := b.requests[i]
		rc := types.RateContext{
			OrgID:          req.OrgID,
			ClientID:       req.ClientID,
			RoleTemplateID: &req.RoleTemplateID,
			SkillIDs:       req.MustHaveSkills,
			AsOf:           req.StartDate,
		}
		if req.ParentKind == types.ParentEngagement {
			rc.EngagementID = &req.ParentID
		}
		level := b.templates[i].SeniorityLevel
		rc.Level = &level

		res, err := o.resolver.Resolve(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("failed to estimate rate for request %s: %w", req.ID, err)
		}
		total += res.FinalAmount * req.EffortHours
	}

	if total > c.BudgetLimit {
		return &types.ConstraintReport{
			Kind: c.Kind, Hard: true, Satisfied: false,
			Detail: fmt.Sprintf("estimated total cost %.2f exceeds budget %.2f", total, c.BudgetLimit),
		}, nil
	}
	return nil, nil
}

// coverageFeasible checks that every must-have skill of every request is held
// at the required level by at least one candidate in the pool.
func (o *Optimizer) coverageFeasible(b *batch, c types.Constraint) *types.ConstraintReport {
	var missing []string
	for i := range b.requests {
		for _, skillID := range b.requests[i].MustHaveSkills {
			min := mustHaveMinLevel(&b.templates[i], skillID)
			achievable := false
			for j := range b.candidates {
				if ps, ok := b.skills[j][skillID]; ok && ps.Level >= min {
					achievable = true
					break
				}
			}
			if !achievable {
				missing = append(missing, fmt.Sprintf("request %s skill %s (level %d)", b.requests[i].ID, skillID, min))
			}
		}
	}
	if len(missing) > 0 {
		return &types.ConstraintReport{
			Kind: c.Kind, Hard: true, Satisfied: false,
			Detail: fmt.Sprintf("no candidate covers: %s", joinIDs(missing)),
		}
	}
	return nil
}

// certificationFeasible checks that every required certification is held by
// someone in the pool.
func (o *Optimizer) certificationFeasible(b *batch, c types.Constraint) *types.ConstraintReport {
	var missing []string
	for _, skillID := range c.RequiredSkills {
		held := false
		for j := range b.candidates {
			if _, ok := b.skills[j][skillID]; ok {
				held = true
				break
			}
		}
		if !held {
			missing = append(missing, skillID.String())
		}
	}
	if len(missing) > 0 {
		return &types.ConstraintReport{
			Kind: c.Kind, Hard: true, Satisfied: false,
			Detail: fmt.Sprintf("no candidate holds certification(s): %s", joinIDs(missing)),
		}
	}
	return nil
}

// seniorityFeasible checks the pool has enough people at or above the
// required level to reach the mix ratio across all requests.
func (o *Optimizer) seniorityFeasible(b *batch, c types.Constraint) *types.ConstraintReport {
	needed := int(math.Ceil(c.SeniorityMix.MinRatio * float64(len(b.requests))))
	eligible := 0
	for j := range b.candidates {
		if b.candidates[j].SeniorityLevel >= c.SeniorityMix.MinLevel {
			eligible++
		}
	}
	if eligible < needed {
		return &types.ConstraintReport{
			Kind: c.Kind, Hard: true, Satisfied: false,
			Detail: fmt.Sprintf("need %d candidate(s) at level >= %d, pool has %d", needed, c.SeniorityMix.MinLevel, eligible),
		}
	}
	return nil
}

// timezoneFeasible checks at least one candidate sits inside the window.
func (o *Optimizer) timezoneFeasible(b *batch, c types.Constraint) *types.ConstraintReport {
	if len(c.TimezoneWindow) == 0 {
		return nil
	}
	for j := range b.candidates {
		if inWindow(b.candidates[j].Timezone, c.TimezoneWindow) {
			return nil
		}
	}
	return &types.ConstraintReport{
		Kind: c.Kind, Hard: true, Satisfied: false,
		Detail: "no candidate inside the required timezone window",
	}
}
