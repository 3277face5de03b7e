package fitscore

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/types"
)

const (
	daysPerYear  = 365.0
	hoursPerDay  = 24.0
	recencyFloor = 0.8
	recencySpan  = 0.2
)

// recencyBoost rewards recently exercised skills. An unknown last-used date
// is neutral (1.0), neither penalized nor rewarded.
func recencyBoost(lastUsed *time.Time, asOf time.Time) float64 {
	if lastUsed == nil {
		return 1.0
	}
	days := asOf.Sub(*lastUsed).Hours() / hoursPerDay
	if days < 0 {
		days = 0
	}
	return recencyFloor + recencySpan*math.Exp(-days/daysPerYear)
}

// computeHardSkillScore scores the candidate against the role's hard-skill
// requirements: each requirement contributes weight x min(level/min_level, 1)
// x recency boost, normalized by total weight. A missing skill contributes 0
// and emits a gap reason.
func computeHardSkillScore(reqs []types.HardRequirement, skills map[uuid.UUID]types.PersonSkill, asOf time.Time) (float64, []types.FitReason) {
	if len(reqs) == 0 {
		return 0, []types.FitReason{{
			Code:   types.ReasonNoHardRequirements,
			Detail: "role template has no hard-skill requirements",
		}}
	}

	totalWeight := 0.0
	totalContribution := 0.0
	reasons := make([]types.FitReason, 0, len(reqs))
	for _, req := range reqs {
		totalWeight += req.Weight

		ps, ok := skills[req.SkillID]
		if !ok {
			reasons = append(reasons, types.FitReason{
				Code:   types.ReasonHardSkillGap,
				Detail: fmt.Sprintf("skill %s not held (min level %d required)", req.SkillID, req.MinLevel),
			})
			continue
		}

		levelRatio := math.Min(float64(ps.Level)/float64(req.MinLevel), 1.0)
		boost := recencyBoost(ps.LastUsedAt, asOf)
		contribution := req.Weight * levelRatio * boost
		totalContribution += contribution

		evidence := fmt.Sprintf("level=%d min=%d recency_boost=%.4f", ps.Level, req.MinLevel, boost)
		reasons = append(reasons, types.FitReason{
			Code:         types.ReasonHardSkillMatch,
			Detail:       fmt.Sprintf("skill %s at level %d of %d required", req.SkillID, ps.Level, req.MinLevel),
			Contribution: contribution,
			Evidence:     evidence,
		})
	}

	if totalWeight == 0 {
		return 0, reasons
	}
	return totalContribution / totalWeight, reasons
}

// computeSoftSkillScore is the cosine similarity between the candidate's
// soft-skill levels and the role's target weight vector, restricted to the
// target skills. No targets means a neutral score with no reasons, so absence
// of a target neither penalizes nor rewards.
func computeSoftSkillScore(targets []types.SoftTarget, skills map[uuid.UUID]types.PersonSkill, neutral float64) (float64, []types.FitReason) {
	if len(targets) == 0 {
		return neutral, nil
	}

	dot := 0.0
	normTarget := 0.0
	normCandidate := 0.0
	matched := 0
	for _, t := range targets {
		level := 0.0
		if ps, ok := skills[t.SkillID]; ok {
			level = float64(ps.Level)
			matched++
		}
		dot += t.Weight * level
		normTarget += t.Weight * t.Weight
		normCandidate += level * level
	}

	score := 0.0
	if normTarget > 0 && normCandidate > 0 {
		score = dot / (math.Sqrt(normTarget) * math.Sqrt(normCandidate))
	}

	return score, []types.FitReason{{
		Code:         types.ReasonSoftSkillFit,
		Detail:       fmt.Sprintf("matched %d of %d soft-skill targets", matched, len(targets)),
		Contribution: score,
		Evidence:     fmt.Sprintf("cosine=%.4f", score),
	}}
}

// computeAvailabilityScore derives a score from the candidate's daily
// availability over the request window. A missing calendar degrades to the
// configured neutral value with a reason rather than failing the candidate.
func computeAvailabilityScore(cal *types.AvailabilityCalendar, standardDay, neutral float64) (float64, []types.FitReason) {
	if cal == nil || len(cal.Days) == 0 {
		return neutral, []types.FitReason{{
			Code:         types.ReasonAvailabilityUnknown,
			Detail:       "no availability calendar for the request window",
			Contribution: neutral,
		}}
	}

	overloaded := 0
	totalHours := 0.0
	for _, day := range cal.Days {
		if day.Overloaded {
			overloaded++
		}
		totalHours += day.HoursAvailable
	}
	overloadFraction := float64(overloaded) / float64(len(cal.Days))
	avgHours := totalHours / float64(len(cal.Days))

	score := 1.0 - overloadFraction - (standardDay-avgHours)/standardDay
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score, []types.FitReason{{
		Code:         types.ReasonAvailability,
		Detail:       fmt.Sprintf("avg %.1fh/day available, %.0f%% of days overloaded", avgHours, overloadFraction*100),
		Contribution: score,
		Evidence:     fmt.Sprintf("avg_hours=%.2f overload_fraction=%.4f", avgHours, overloadFraction),
	}}
}

// computeTimezoneScore checks the candidate's timezone against the request's
// declared window. The partial and mismatch values are configuration, not
// business truth.
func computeTimezoneScore(candidateTZ string, window []string, partial, mismatch float64) (float64, []types.FitReason) {
	if len(window) == 0 || candidateTZ == "" {
		return partial, []types.FitReason{{
			Code:         types.ReasonTimezonePartial,
			Detail:       "timezone window or candidate timezone unspecified",
			Contribution: partial,
		}}
	}
	for _, tz := range window {
		if tz == candidateTZ {
			return 1.0, []types.FitReason{{
				Code:         types.ReasonTimezoneExact,
				Detail:       fmt.Sprintf("timezone %s inside request window", candidateTZ),
				Contribution: 1.0,
			}}
		}
	}
	return mismatch, []types.FitReason{{
		Code:         types.ReasonTimezoneMismatch,
		Detail:       fmt.Sprintf("timezone %s outside request window", candidateTZ),
		Contribution: mismatch,
	}}
}

// computeDomainScore is a binary client/industry history match. No history is
// not proof of unfitness, so the miss value stays above zero.
func computeDomainScore(p *types.Person, req *types.StaffingRequest, match, miss float64) (float64, []types.FitReason) {
	matched := false
	evidence := ""
	if req.ClientID != nil {
		for _, c := range p.HistoricalClients {
			if c == *req.ClientID {
				matched = true
				evidence = "client " + c.String()
				break
			}
		}
	}
	if !matched && req.Industry != "" {
		for _, ind := range p.HistoricalIndustries {
			if ind == req.Industry {
				matched = true
				evidence = "industry " + ind
				break
			}
		}
	}

	if matched {
		return match, []types.FitReason{{
			Code:         types.ReasonDomainMatch,
			Detail:       "prior history with the request's client or industry",
			Contribution: match,
			Evidence:     evidence,
		}}
	}
	return miss, []types.FitReason{{
		Code:         types.ReasonDomainNoHistory,
		Detail:       "no recorded history with the request's client or industry",
		Contribution: miss,
	}}
}

// computeReliabilityScore passes through the stored reliability score with a
// configured default when unset.
func computeReliabilityScore(p *types.Person, fallback float64) (float64, []types.FitReason) {
	score := fallback
	detail := "no stored reliability score, using default"
	if p.ReliabilityScore != nil {
		score = *p.ReliabilityScore
		detail = "stored reliability score"
	}
	return score, []types.FitReason{{
		Code:         types.ReasonReliability,
		Detail:       detail,
		Contribution: score,
	}}
}

// computeContinuityScore is a binary check for a firm assignment on the same
// parent engagement.
func computeContinuityScore(assignments []types.Assignment, req *types.StaffingRequest, match, miss float64) (float64, []types.FitReason) {
	if req.ParentKind == types.ParentEngagement {
		for _, a := range assignments {
			if a.Status == types.AssignmentFirm && a.EngagementID == req.ParentID {
				return match, []types.FitReason{{
					Code:         types.ReasonContinuityMatch,
					Detail:       "holds a firm assignment on the same engagement",
					Contribution: match,
					Evidence:     "assignment " + a.ID.String(),
				}}
			}
		}
	}
	return miss, []types.FitReason{{
		Code:         types.ReasonContinuityNone,
		Detail:       "no firm assignment on the request's engagement",
		Contribution: miss,
	}}
}
