// Package fitscore computes explainable fit scores of candidates for staffing requests.
package fitscore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/config"
	"github.com/jonathan/staffing-engine/internal/types"
)

// scoreDecimals rounds final fit scores to four decimal places.
const scoreDecimals = 1e4

// Gateway is the read surface the calculator needs.
type Gateway interface {
	GetStaffingRequest(ctx context.Context, id uuid.UUID) (*types.StaffingRequest, error)
	GetRoleTemplate(ctx context.Context, id uuid.UUID) (*types.RoleTemplate, error)
	ListPersonSkills(ctx context.Context, personID uuid.UUID) ([]types.PersonSkill, error)
	GetAvailabilityCalendar(ctx context.Context, personID uuid.UUID, start, end time.Time) (*types.AvailabilityCalendar, error)
	ListActiveAssignments(ctx context.Context, personID uuid.UUID) ([]types.Assignment, error)
}

// Calculator ranks candidates for a staffing request with a weighted sum of
// seven explainable sub-scores. Stateless; safe for concurrent use.
type Calculator struct {
	gw      Gateway
	weights config.ScoringWeights
	fit     config.FitParams
}

// New builds a Calculator with the given configuration.
func New(gw Gateway, cfg config.Config) *Calculator {
	return &Calculator{gw: gw, weights: cfg.Weights, fit: cfg.Fit}
}

// Rank scores every candidate against the request and returns results sorted
// by score descending, ties broken by ascending person id. A limit <= 0
// returns the full ranking. An empty candidate pool yields an empty result.
func (c *Calculator) Rank(ctx context.Context, requestID uuid.UUID, candidates []types.Person, limit int) ([]types.FitResult, error) {
	req, err := c.gw.GetStaffingRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	tmpl, err := c.gw.GetRoleTemplate(ctx, req.RoleTemplateID)
	if err != nil {
		return nil, err
	}

	results := make([]types.FitResult, 0, len(candidates))
	now := time.Now().UTC()
	for i := range candidates {
		result, err := c.score(ctx, req, tmpl, &candidates[i], now)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].FitScore != results[j].FitScore {
			return results[i].FitScore > results[j].FitScore
		}
		return results[i].PersonID.String() < results[j].PersonID.String()
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// score computes the seven weighted sub-scores for one candidate. Missing
// per-candidate data degrades the score with a reason instead of failing, so
// the ranking stays complete; invalid skill levels fail validation up front.
func (c *Calculator) score(ctx context.Context, req *types.StaffingRequest, tmpl *types.RoleTemplate, p *types.Person, asOf time.Time) (*types.FitResult, error) {
	personSkills, err := c.gw.ListPersonSkills(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skills for person %s: %w", p.ID, err)
	}

	skillsByID := make(map[uuid.UUID]types.PersonSkill, len(personSkills))
	for _, ps := range personSkills {
		if ps.Level < 1 || ps.Level > 5 {
			return nil, &types.ValidationError{
				Field:   "level",
				Message: fmt.Sprintf("person %s skill %s has invalid level %d", ps.PersonID, ps.SkillID, ps.Level),
			}
		}
		skillsByID[ps.SkillID] = ps
	}

	var reasons []types.FitReason

	hard, hardReasons := computeHardSkillScore(tmpl.HardRequirements, skillsByID, asOf)
	reasons = append(reasons, hardReasons...)

	soft, softReasons := computeSoftSkillScore(tmpl.SoftTargets, skillsByID, c.fit.NeutralSoftSkills)
	reasons = append(reasons, softReasons...)

	cal, err := c.gw.GetAvailabilityCalendar(ctx, p.ID, req.StartDate, req.EndDate)
	if err != nil {
		var nf *types.NotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to load availability for person %s: %w", p.ID, err)
		}
		cal = nil
	}
	avail, availReasons := computeAvailabilityScore(cal, c.fit.StandardDayHours, c.fit.NeutralAvailability)
	reasons = append(reasons, availReasons...)

	tz, tzReasons := computeTimezoneScore(p.Timezone, req.TimezoneWindow, c.fit.TimezonePartial, c.fit.TimezoneMismatch)
	reasons = append(reasons, tzReasons...)

	domain, domainReasons := computeDomainScore(p, req, c.fit.DomainMatch, c.fit.DomainNoHistory)
	reasons = append(reasons, domainReasons...)

	reliability, relReasons := computeReliabilityScore(p, c.fit.DefaultReliability)
	reasons = append(reasons, relReasons...)

	assignments, err := c.gw.ListActiveAssignments(ctx, p.ID)
	if err != nil {
		assignments = nil
		reasons = append(reasons, types.FitReason{
			Code:   types.ReasonContinuityUnknown,
			Detail: "could not load existing assignments",
		})
	}
	continuity, contReasons := computeContinuityScore(assignments, req, c.fit.ContinuityMatch, c.fit.ContinuityNone)
	reasons = append(reasons, contReasons...)

	total := c.weights.HardSkills*hard +
		c.weights.SoftSkills*soft +
		c.weights.Availability*avail +
		c.weights.Timezone*tz +
		c.weights.Domain*domain +
		c.weights.Reliability*reliability +
		c.weights.Continuity*continuity

	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	total = math.Round(total*scoreDecimals) / scoreDecimals

	return &types.FitResult{
		PersonID: p.ID,
		FitScore: total,
		Reasons:  reasons,
	}, nil
}
