package fitscore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/staffing-engine/internal/config"
	"github.com/jonathan/staffing-engine/internal/gateway"
	"github.com/jonathan/staffing-engine/internal/types"
)

type rankFixture struct {
	gw       *gateway.Memory
	orgID    uuid.UUID
	request  types.StaffingRequest
	template types.RoleTemplate
	skillID  uuid.UUID
}

func newRankFixture(t *testing.T) *rankFixture {
	t.Helper()

	f := &rankFixture{
		gw:      gateway.NewMemory(),
		orgID:   uuid.New(),
		skillID: uuid.New(),
	}
	f.template = types.RoleTemplate{
		ID:             uuid.New(),
		OrgID:          f.orgID,
		Name:           "Backend Engineer",
		SeniorityLevel: 3,
		HardRequirements: []types.HardRequirement{
			{SkillID: f.skillID, MinLevel: 3, Weight: 1.0, MustHave: true},
		},
	}
	f.request = types.StaffingRequest{
		ID:             uuid.New(),
		OrgID:          f.orgID,
		ParentKind:     types.ParentEngagement,
		ParentID:       uuid.New(),
		RoleTemplateID: f.template.ID,
		StartDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		EffortHours:    480,
		Status:         types.RequestOpen,
	}
	f.gw.AddRoleTemplate(f.template)
	f.gw.AddRequest(f.request)
	return f
}

func (f *rankFixture) addCandidate(level int) types.Person {
	p := types.Person{ID: uuid.New(), OrgID: f.orgID, Name: "Candidate", SeniorityLevel: 3}
	f.gw.AddPerson(p)
	if level > 0 {
		f.gw.AddPersonSkill(types.PersonSkill{PersonID: p.ID, SkillID: f.skillID, Level: level})
	}
	return p
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	f := newRankFixture(t)
	weak := f.addCandidate(1)
	strong := f.addCandidate(5)
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{weak, strong}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, strong.ID, results[0].PersonID)
	assert.Equal(t, weak.ID, results[1].PersonID)
	assert.Greater(t, results[0].FitScore, results[1].FitScore)
}

func TestRank_ScoresBounded(t *testing.T) {
	f := newRankFixture(t)
	candidates := []types.Person{f.addCandidate(0), f.addCandidate(3), f.addCandidate(5)}
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, candidates, 0)
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.FitScore, 0.0)
		assert.LessOrEqual(t, r.FitScore, 1.0)
	}
}

func TestRank_TieBreaksByPersonID(t *testing.T) {
	f := newRankFixture(t)
	// Identical candidates produce identical scores.
	a := f.addCandidate(4)
	b := f.addCandidate(4)
	c := f.addCandidate(4)
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{c, a, b}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, results[0].FitScore, results[1].FitScore)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i-1].PersonID.String(), results[i].PersonID.String())
	}
}

func TestRank_Deterministic(t *testing.T) {
	f := newRankFixture(t)
	candidates := []types.Person{f.addCandidate(2), f.addCandidate(4), f.addCandidate(5)}
	calc := New(f.gw, config.Default())

	first, err := calc.Rank(context.Background(), f.request.ID, candidates, 0)
	require.NoError(t, err)
	second, err := calc.Rank(context.Background(), f.request.ID, candidates, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRank_LimitTruncates(t *testing.T) {
	f := newRankFixture(t)
	candidates := []types.Person{f.addCandidate(1), f.addCandidate(3), f.addCandidate(5)}
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, candidates, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRank_EmptyPool(t *testing.T) {
	f := newRankFixture(t)
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRank_UnknownRequest(t *testing.T) {
	f := newRankFixture(t)
	calc := New(f.gw, config.Default())

	_, err := calc.Rank(context.Background(), uuid.New(), nil, 0)
	var nf *types.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "staffing request", nf.Resource)
}

func TestRank_InvalidSkillLevelFailsValidation(t *testing.T) {
	f := newRankFixture(t)
	p := f.addCandidate(0)
	f.gw.AddPersonSkill(types.PersonSkill{PersonID: p.ID, SkillID: f.skillID, Level: 9})
	calc := New(f.gw, config.Default())

	_, err := calc.Rank(context.Background(), f.request.ID, []types.Person{p}, 0)
	var validation *types.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRank_MissingAvailabilityDegrades(t *testing.T) {
	f := newRankFixture(t)
	p := f.addCandidate(4)
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{p}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)

	found := false
	for _, r := range results[0].Reasons {
		if r.Code == types.ReasonAvailabilityUnknown {
			found = true
		}
	}
	assert.True(t, found, "expected an availability_unknown reason")
}

func TestRank_AvailabilityImprovesScore(t *testing.T) {
	f := newRankFixture(t)
	free := f.addCandidate(4)
	busy := f.addCandidate(4)

	var freeDays, busyDays []types.AvailabilityDay
	for d := 0; d < 10; d++ {
		date := f.request.StartDate.AddDate(0, 0, d)
		freeDays = append(freeDays, types.AvailabilityDay{Date: date, HoursAvailable: 8})
		busyDays = append(busyDays, types.AvailabilityDay{Date: date, HoursAvailable: 1, Overloaded: true})
	}
	f.gw.AddAvailability(types.AvailabilityCalendar{PersonID: free.ID, Days: freeDays})
	f.gw.AddAvailability(types.AvailabilityCalendar{PersonID: busy.ID, Days: busyDays})

	calc := New(f.gw, config.Default())
	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{free, busy}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, free.ID, results[0].PersonID)
}

func TestRank_ContinuityRewardsFirmAssignment(t *testing.T) {
	f := newRankFixture(t)
	continuing := f.addCandidate(4)
	fresh := f.addCandidate(4)
	f.gw.AddAssignment(types.Assignment{
		ID:           uuid.New(),
		PersonID:     continuing.ID,
		EngagementID: f.request.ParentID,
		Status:       types.AssignmentFirm,
	})

	calc := New(f.gw, config.Default())
	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{fresh, continuing}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, continuing.ID, results[0].PersonID)
}

func TestRank_EveryResultHasReasons(t *testing.T) {
	f := newRankFixture(t)
	p := f.addCandidate(3)
	calc := New(f.gw, config.Default())

	results, err := calc.Rank(context.Background(), f.request.ID, []types.Person{p}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Reasons)
}
