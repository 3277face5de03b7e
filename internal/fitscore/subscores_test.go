package fitscore

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/staffing-engine/internal/types"
)

var asOf = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func TestRecencyBoost_UnknownIsNeutral(t *testing.T) {
	assert.Equal(t, 1.0, recencyBoost(nil, asOf))
}

func TestRecencyBoost_ThirtyDays(t *testing.T) {
	lastUsed := asOf.AddDate(0, 0, -30)
	// 0.8 + 0.2 * e^(-30/365)
	expected := 0.8 + 0.2*math.Exp(-30.0/365.0)
	assert.InDelta(t, expected, recencyBoost(&lastUsed, asOf), 1e-9)
	assert.InDelta(t, 0.9842, recencyBoost(&lastUsed, asOf), 1e-4)
}

func TestRecencyBoost_Bounds(t *testing.T) {
	today := asOf
	assert.InDelta(t, 1.0, recencyBoost(&today, asOf), 1e-9)

	ancient := asOf.AddDate(-50, 0, 0)
	boost := recencyBoost(&ancient, asOf)
	assert.Greater(t, boost, 0.8-1e-9)
	assert.Less(t, boost, 0.81)

	// A future last-used date never boosts above today's value.
	future := asOf.AddDate(0, 1, 0)
	assert.InDelta(t, 1.0, recencyBoost(&future, asOf), 1e-9)
}

func skillMap(skills ...types.PersonSkill) map[uuid.UUID]types.PersonSkill {
	out := make(map[uuid.UUID]types.PersonSkill, len(skills))
	for _, s := range skills {
		out[s.SkillID] = s
	}
	return out
}

func TestComputeHardSkillScore_EmptyRequirements(t *testing.T) {
	score, reasons := computeHardSkillScore(nil, skillMap(), asOf)
	assert.Equal(t, 0.0, score)
	require.Len(t, reasons, 1)
	assert.Equal(t, types.ReasonNoHardRequirements, reasons[0].Code)
}

func TestComputeHardSkillScore_FullMatch(t *testing.T) {
	skillID := uuid.New()
	reqs := []types.HardRequirement{{SkillID: skillID, MinLevel: 3, Weight: 1.0}}
	skills := skillMap(types.PersonSkill{SkillID: skillID, Level: 4})

	score, reasons := computeHardSkillScore(reqs, skills, asOf)
	// Level above minimum is capped at 1.0; unknown recency boosts 1.0.
	assert.InDelta(t, 1.0, score, 1e-9)
	require.Len(t, reasons, 1)
	assert.Equal(t, types.ReasonHardSkillMatch, reasons[0].Code)
}

func TestComputeHardSkillScore_LevelAboveMinWithRecentUse(t *testing.T) {
	skillID := uuid.New()
	lastUsed := asOf.AddDate(0, 0, -30)
	reqs := []types.HardRequirement{{SkillID: skillID, MinLevel: 3, Weight: 1.0}}
	skills := skillMap(types.PersonSkill{SkillID: skillID, Level: 4, LastUsedAt: &lastUsed})

	score, reasons := computeHardSkillScore(reqs, skills, asOf)
	// Level 4 of 3 caps the ratio at 1.0, so the score is the 30-day
	// recency boost alone: 0.8 + 0.2 * e^(-30/365).
	assert.InDelta(t, 0.8+0.2*math.Exp(-30.0/365.0), score, 1e-9)
	assert.InDelta(t, 0.9842, score, 1e-4)
	require.Len(t, reasons, 1)
	assert.Equal(t, types.ReasonHardSkillMatch, reasons[0].Code)
}

func TestComputeHardSkillScore_MissingSkillEmitsGap(t *testing.T) {
	held := uuid.New()
	missing := uuid.New()
	reqs := []types.HardRequirement{
		{SkillID: held, MinLevel: 3, Weight: 2.0},
		{SkillID: missing, MinLevel: 4, Weight: 1.0, MustHave: true},
	}
	skills := skillMap(types.PersonSkill{SkillID: held, Level: 3})

	score, reasons := computeHardSkillScore(reqs, skills, asOf)
	// Only the held skill contributes: 2.0 / 3.0 of the weight.
	assert.InDelta(t, 2.0/3.0, score, 1e-9)

	var gap *types.FitReason
	for i := range reasons {
		if reasons[i].Code == types.ReasonHardSkillGap {
			gap = &reasons[i]
		}
	}
	require.NotNil(t, gap)
	assert.Contains(t, gap.Detail, missing.String())
}

func TestComputeHardSkillScore_MonotonicInLevel(t *testing.T) {
	skillID := uuid.New()
	reqs := []types.HardRequirement{{SkillID: skillID, MinLevel: 4, Weight: 1.0}}

	prev := -1.0
	for level := 1; level <= 5; level++ {
		score, _ := computeHardSkillScore(reqs, skillMap(types.PersonSkill{SkillID: skillID, Level: level}), asOf)
		assert.GreaterOrEqual(t, score, prev, "level %d", level)
		prev = score
	}
}

func TestComputeSoftSkillScore_NoTargetsIsNeutral(t *testing.T) {
	score, reasons := computeSoftSkillScore(nil, skillMap(), 0.5)
	assert.Equal(t, 0.5, score)
	assert.Nil(t, reasons)
}

func TestComputeSoftSkillScore_PerfectAlignment(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	targets := []types.SoftTarget{{SkillID: a, Weight: 2}, {SkillID: b, Weight: 4}}
	// Candidate levels proportional to the target weights give cosine 1.
	skills := skillMap(
		types.PersonSkill{SkillID: a, Level: 1},
		types.PersonSkill{SkillID: b, Level: 2},
	)

	score, reasons := computeSoftSkillScore(targets, skills, 0.5)
	assert.InDelta(t, 1.0, score, 1e-9)
	require.Len(t, reasons, 1)
	assert.Equal(t, types.ReasonSoftSkillFit, reasons[0].Code)
}

func TestComputeSoftSkillScore_NoOverlapIsZero(t *testing.T) {
	targets := []types.SoftTarget{{SkillID: uuid.New(), Weight: 1}}
	score, _ := computeSoftSkillScore(targets, skillMap(), 0.5)
	assert.Equal(t, 0.0, score)
}

func TestComputeAvailabilityScore_MissingCalendar(t *testing.T) {
	score, reasons := computeAvailabilityScore(nil, 8, 0.5)
	assert.Equal(t, 0.5, score)
	require.Len(t, reasons, 1)
	assert.Equal(t, types.ReasonAvailabilityUnknown, reasons[0].Code)
}

func TestComputeAvailabilityScore_FullyAvailable(t *testing.T) {
	cal := &types.AvailabilityCalendar{Days: []types.AvailabilityDay{
		{Date: asOf, HoursAvailable: 8},
		{Date: asOf.AddDate(0, 0, 1), HoursAvailable: 8},
	}}
	score, _ := computeAvailabilityScore(cal, 8, 0.5)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestComputeAvailabilityScore_OverloadedFloorsAtZero(t *testing.T) {
	cal := &types.AvailabilityCalendar{Days: []types.AvailabilityDay{
		{Date: asOf, HoursAvailable: 0, Overloaded: true},
		{Date: asOf.AddDate(0, 0, 1), HoursAvailable: 0, Overloaded: true},
	}}
	score, _ := computeAvailabilityScore(cal, 8, 0.5)
	assert.Equal(t, 0.0, score)
}

func TestComputeAvailabilityScore_PartialHours(t *testing.T) {
	cal := &types.AvailabilityCalendar{Days: []types.AvailabilityDay{
		{Date: asOf, HoursAvailable: 4},
	}}
	// 1 - 0 - (8-4)/8 = 0.5
	score, _ := computeAvailabilityScore(cal, 8, 0.5)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestComputeTimezoneScore(t *testing.T) {
	window := []string{"UTC+0", "UTC+1", "UTC+2"}

	score, reasons := computeTimezoneScore("UTC+1", window, 0.6, 0.2)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, types.ReasonTimezoneExact, reasons[0].Code)

	score, reasons = computeTimezoneScore("UTC+9", window, 0.6, 0.2)
	assert.Equal(t, 0.2, score)
	assert.Equal(t, types.ReasonTimezoneMismatch, reasons[0].Code)

	score, reasons = computeTimezoneScore("", window, 0.6, 0.2)
	assert.Equal(t, 0.6, score)
	assert.Equal(t, types.ReasonTimezonePartial, reasons[0].Code)

	score, _ = computeTimezoneScore("UTC+1", nil, 0.6, 0.2)
	assert.Equal(t, 0.6, score)
}

func TestComputeDomainScore(t *testing.T) {
	clientID := uuid.New()
	person := &types.Person{
		HistoricalClients:    []uuid.UUID{clientID},
		HistoricalIndustries: []string{"fintech"},
	}

	req := &types.StaffingRequest{ClientID: &clientID}
	score, reasons := computeDomainScore(person, req, 0.8, 0.2)
	assert.Equal(t, 0.8, score)
	assert.Equal(t, types.ReasonDomainMatch, reasons[0].Code)

	req = &types.StaffingRequest{Industry: "fintech"}
	score, _ = computeDomainScore(person, req, 0.8, 0.2)
	assert.Equal(t, 0.8, score)

	req = &types.StaffingRequest{Industry: "mining"}
	score, reasons = computeDomainScore(person, req, 0.8, 0.2)
	assert.Equal(t, 0.2, score)
	assert.Equal(t, types.ReasonDomainNoHistory, reasons[0].Code)
}

func TestComputeReliabilityScore(t *testing.T) {
	stored := 0.95
	score, reasons := computeReliabilityScore(&types.Person{ReliabilityScore: &stored}, 0.8)
	assert.Equal(t, 0.95, score)
	assert.Equal(t, types.ReasonReliability, reasons[0].Code)

	score, reasons = computeReliabilityScore(&types.Person{}, 0.8)
	assert.Equal(t, 0.8, score)
	assert.Contains(t, reasons[0].Detail, "default")
}

func TestComputeContinuityScore(t *testing.T) {
	engagementID := uuid.New()
	req := &types.StaffingRequest{ParentKind: types.ParentEngagement, ParentID: engagementID}

	firm := []types.Assignment{{ID: uuid.New(), EngagementID: engagementID, Status: types.AssignmentFirm}}
	score, reasons := computeContinuityScore(firm, req, 0.8, 0.2)
	assert.Equal(t, 0.8, score)
	assert.Equal(t, types.ReasonContinuityMatch, reasons[0].Code)

	// A tentative assignment on the engagement does not count.
	tentative := []types.Assignment{{ID: uuid.New(), EngagementID: engagementID, Status: types.AssignmentTentative}}
	score, reasons = computeContinuityScore(tentative, req, 0.8, 0.2)
	assert.Equal(t, 0.2, score)
	assert.Equal(t, types.ReasonContinuityNone, reasons[0].Code)

	// Pursuit-parented requests have no engagement to be continuous with.
	pursuit := &types.StaffingRequest{ParentKind: types.ParentPursuit, ParentID: engagementID}
	score, _ = computeContinuityScore(firm, pursuit, 0.8, 0.2)
	assert.Equal(t, 0.2, score)
}
