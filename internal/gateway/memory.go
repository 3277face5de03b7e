package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/types"
)

// Fixture is a JSON-loadable bundle of staffing data used to seed the
// in-memory gateway for tests and CLI runs.
type Fixture struct {
	People        []types.Person               `json:"people,omitempty"`
	Skills        []types.Skill                `json:"skills,omitempty"`
	PersonSkills  []types.PersonSkill          `json:"person_skills,omitempty"`
	RoleTemplates []types.RoleTemplate         `json:"role_templates,omitempty"`
	Requests      []types.StaffingRequest      `json:"requests,omitempty"`
	RateCards     []types.RateCard             `json:"rate_cards,omitempty"`
	RatePremiums  []types.RatePremium          `json:"rate_premiums,omitempty"`
	Availability  []types.AvailabilityCalendar `json:"availability,omitempty"`
	Assignments   []types.Assignment           `json:"assignments,omitempty"`
	OpenCounts    map[string]int               `json:"open_request_counts,omitempty"` // role template id -> open requests
	FxRates       map[string]float64           `json:"fx_rates,omitempty"`            // "FROM/TO" -> rate
}

// LoadFixture reads a fixture bundle from a JSON file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture JSON: %w", err)
	}
	return &f, nil
}

// Memory is an in-memory Gateway with the same conflict and immutability
// semantics as the Postgres implementation.
type Memory struct {
	mu sync.RWMutex

	people        map[uuid.UUID]types.Person
	skills        map[uuid.UUID]types.Skill
	personSkills  map[uuid.UUID][]types.PersonSkill
	roleTemplates map[uuid.UUID]types.RoleTemplate
	requests      map[uuid.UUID]types.StaffingRequest
	rateCards     []types.RateCard
	ratePremiums  []types.RatePremium
	availability  map[uuid.UUID]types.AvailabilityCalendar
	assignments   map[uuid.UUID]types.Assignment
	openCounts    map[uuid.UUID]int
	fxRates       map[string]float64

	auditLog []string
}

var _ Gateway = (*Memory)(nil)

// NewMemory builds an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		people:        make(map[uuid.UUID]types.Person),
		skills:        make(map[uuid.UUID]types.Skill),
		personSkills:  make(map[uuid.UUID][]types.PersonSkill),
		roleTemplates: make(map[uuid.UUID]types.RoleTemplate),
		requests:      make(map[uuid.UUID]types.StaffingRequest),
		availability:  make(map[uuid.UUID]types.AvailabilityCalendar),
		assignments:   make(map[uuid.UUID]types.Assignment),
		openCounts:    make(map[uuid.UUID]int),
		fxRates:       make(map[string]float64),
	}
}

// NewMemoryFromFixture builds an in-memory gateway seeded with fixture data.
func NewMemoryFromFixture(f *Fixture) (*Memory, error) {
	m := NewMemory()
	for _, p := range f.People {
		m.people[p.ID] = p
	}
	for _, s := range f.Skills {
		m.skills[s.ID] = s
	}
	for _, ps := range f.PersonSkills {
		m.personSkills[ps.PersonID] = append(m.personSkills[ps.PersonID], ps)
	}
	for _, rt := range f.RoleTemplates {
		m.roleTemplates[rt.ID] = rt
	}
	for _, r := range f.Requests {
		m.requests[r.ID] = r
	}
	m.rateCards = append(m.rateCards, f.RateCards...)
	m.ratePremiums = append(m.ratePremiums, f.RatePremiums...)
	for _, cal := range f.Availability {
		m.availability[cal.PersonID] = cal
	}
	for _, a := range f.Assignments {
		m.assignments[a.ID] = a
	}
	for raw, n := range f.OpenCounts {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid role template id %q in open_request_counts: %w", raw, err)
		}
		m.openCounts[id] = n
	}
	for pair, rate := range f.FxRates {
		m.fxRates[pair] = rate
	}
	return m, nil
}

// AddPerson seeds a person (test helper).
func (m *Memory) AddPerson(p types.Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = p
}

// AddPersonSkill seeds a person skill (test helper).
func (m *Memory) AddPersonSkill(ps types.PersonSkill) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.personSkills[ps.PersonID] = append(m.personSkills[ps.PersonID], ps)
}

// AddRoleTemplate seeds a role template (test helper).
func (m *Memory) AddRoleTemplate(rt types.RoleTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleTemplates[rt.ID] = rt
}

// AddRequest seeds a staffing request (test helper).
func (m *Memory) AddRequest(r types.StaffingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
}

// AddRateCard seeds a rate card (test helper).
func (m *Memory) AddRateCard(c types.RateCard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateCards = append(m.rateCards, c)
}

// AddRatePremium seeds a rate premium (test helper).
func (m *Memory) AddRatePremium(p types.RatePremium) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratePremiums = append(m.ratePremiums, p)
}

// AddAvailability seeds an availability calendar (test helper).
func (m *Memory) AddAvailability(cal types.AvailabilityCalendar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availability[cal.PersonID] = cal
}

// AddAssignment seeds an existing assignment (test helper).
func (m *Memory) AddAssignment(a types.Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
}

// SetOpenRequestCount seeds the open-request volume for a role template.
func (m *Memory) SetOpenRequestCount(roleTemplateID uuid.UUID, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openCounts[roleTemplateID] = n
}

// SetFxRate seeds an FX rate for a currency pair.
func (m *Memory) SetFxRate(from, to string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fxRates[from+"/"+to] = rate
}

func (m *Memory) GetStaffingRequest(_ context.Context, id uuid.UUID) (*types.StaffingRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, &types.NotFoundError{Resource: "staffing request", ID: id.String()}
	}
	return &r, nil
}

func (m *Memory) GetRoleTemplate(_ context.Context, id uuid.UUID) (*types.RoleTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.roleTemplates[id]
	if !ok {
		return nil, &types.NotFoundError{Resource: "role template", ID: id.String()}
	}
	return &rt, nil
}

func (m *Memory) ListCandidatePeople(_ context.Context, orgID uuid.UUID, filters CandidateFilters) ([]types.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Person
	for _, p := range m.people {
		if p.OrgID != orgID {
			continue
		}
		if filters.MinSeniority > 0 && p.SeniorityLevel < filters.MinSeniority {
			continue
		}
		if len(filters.Timezones) > 0 && !containsString(filters.Timezones, p.Timezone) {
			continue
		}
		if len(filters.SkillIDs) > 0 && !m.hasAnySkill(p.ID, filters.SkillIDs) {
			continue
		}
		out = append(out, p)
	}
	sortPeopleByID(out)
	return out, nil
}

func (m *Memory) hasAnySkill(personID uuid.UUID, skillIDs []uuid.UUID) bool {
	for _, ps := range m.personSkills[personID] {
		for _, id := range skillIDs {
			if ps.SkillID == id {
				return true
			}
		}
	}
	return false
}

func (m *Memory) ListPersonSkills(_ context.Context, personID uuid.UUID) ([]types.PersonSkill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	skills := m.personSkills[personID]
	out := make([]types.PersonSkill, len(skills))
	copy(out, skills)
	return out, nil
}

func (m *Memory) GetAvailabilityCalendar(_ context.Context, personID uuid.UUID, start, end time.Time) (*types.AvailabilityCalendar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cal, ok := m.availability[personID]
	if !ok {
		return nil, &types.NotFoundError{Resource: "availability calendar", ID: personID.String()}
	}
	trimmed := types.AvailabilityCalendar{PersonID: personID}
	for _, day := range cal.Days {
		if !day.Date.Before(start) && !day.Date.After(end) {
			trimmed.Days = append(trimmed.Days, day)
		}
	}
	return &trimmed, nil
}

func (m *Memory) ListActiveAssignments(_ context.Context, personID uuid.UUID) ([]types.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Assignment
	for _, a := range m.assignments {
		if a.PersonID == personID {
			out = append(out, a)
		}
	}
	sortAssignmentsByID(out)
	return out, nil
}

func (m *Memory) QueryRateCards(_ context.Context, orgID uuid.UUID, scope types.RateScope, roleTemplateID *uuid.UUID, level *int, asOf time.Time) ([]types.RateCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.RateCard
	for i := range m.rateCards {
		c := m.rateCards[i]
		if c.OrgID != orgID || c.Scope != scope || !c.EffectiveAt(asOf) {
			continue
		}
		// Nullable-tolerant filters: a card without a filter matches any
		// role/level; a card with a filter requires the context value.
		if c.RoleFilter != nil && (roleTemplateID == nil || *c.RoleFilter != *roleTemplateID) {
			continue
		}
		if c.LevelFilter != nil && (level == nil || *c.LevelFilter != *level) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *Memory) QueryRatePremiums(_ context.Context, orgID uuid.UUID, skillIDs []uuid.UUID, appliesTo []types.ScopeKind, asOf time.Time) ([]types.RatePremium, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.RatePremium
	for i := range m.ratePremiums {
		p := m.ratePremiums[i]
		if p.OrgID != orgID || !p.EffectiveAt(asOf) {
			continue
		}
		if !containsUUID(skillIDs, p.SkillID) {
			continue
		}
		if !containsKind(appliesTo, p.AppliesTo) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) GetOpenRequestCount(_ context.Context, _ uuid.UUID, roleTemplateID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.openCounts[roleTemplateID], nil
}

func (m *Memory) GetFxRate(_ context.Context, from, to string, _ time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rate, ok := m.fxRates[from+"/"+to]
	if !ok {
		return 0, &types.NotFoundError{Resource: "fx rate", ID: from + "/" + to}
	}
	return rate, nil
}

// maxAllocationPct is the total concurrent allocation a person can carry.
const maxAllocationPct = 100.0

func (m *Memory) CreateAssignment(_ context.Context, payload types.AssignmentPayload) (*types.Assignment, error) {
	if err := payload.Validate(); err != nil {
		return nil, &types.ValidationError{Message: "invalid assignment payload", Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Optimistic check-then-commit: re-validate availability under the write
	// lock so a racing optimization run cannot over-allocate the person.
	allocated := 0.0
	for _, a := range m.assignments {
		if a.PersonID != payload.PersonID {
			continue
		}
		if types.Overlaps(a.StartDate, a.EndDate, payload.StartDate, payload.EndDate) {
			allocated += a.AllocationPct
		}
	}
	if allocated+payload.AllocationPct > maxAllocationPct {
		return nil, &types.ConflictError{
			PersonID: payload.PersonID.String(),
			Message: fmt.Sprintf("allocation %.0f%% + existing %.0f%% exceeds %.0f%% for %s to %s",
				payload.AllocationPct, allocated, maxAllocationPct,
				payload.StartDate.Format("2006-01-02"), payload.EndDate.Format("2006-01-02")),
		}
	}

	a := types.Assignment{
		ID:               uuid.New(),
		OrgID:            payload.OrgID,
		PersonID:         payload.PersonID,
		EngagementID:     payload.EngagementID,
		RoleTemplateID:   payload.RoleTemplateID,
		StartDate:        payload.StartDate,
		EndDate:          payload.EndDate,
		AllocationPct:    payload.AllocationPct,
		Status:           payload.Status,
		BillRateSnapshot: payload.BillRateSnapshot,
		CostRateSnapshot: payload.CostRateSnapshot,
		RateCurrency:     payload.RateCurrency,
		CreatedAt:        time.Now().UTC(),
	}
	m.assignments[a.ID] = a
	// The audit entry is written under the same lock, so creation and audit
	// are atomic from any reader's point of view.
	m.auditLog = append(m.auditLog, fmt.Sprintf("assignment %s created for person %s at rate %.2f %s",
		a.ID, a.PersonID, a.BillRateSnapshot, a.RateCurrency))
	return &a, nil
}

func (m *Memory) UpdateAssignment(_ context.Context, id uuid.UUID, update types.AssignmentUpdate) (*types.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.assignments[id]
	if !ok {
		return nil, &types.NotFoundError{Resource: "assignment", ID: id.String()}
	}
	if update.BillRateSnapshot != nil {
		return nil, &types.ImmutableFieldError{Field: "bill_rate_snapshot"}
	}
	if update.CostRateSnapshot != nil {
		return nil, &types.ImmutableFieldError{Field: "cost_rate_snapshot"}
	}

	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.AllocationPct != nil {
		a.AllocationPct = *update.AllocationPct
	}
	m.assignments[id] = a
	m.auditLog = append(m.auditLog, fmt.Sprintf("assignment %s updated", a.ID))
	return &a, nil
}

// GetAssignment returns a stored assignment (test helper).
func (m *Memory) GetAssignment(id uuid.UUID) (types.Assignment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	return a, ok
}

// AuditLog returns a copy of the audit entries (test helper).
func (m *Memory) AuditLog() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.auditLog))
	copy(out, m.auditLog)
	return out
}

func sortPeopleByID(people []types.Person) {
	sort.Slice(people, func(i, j int) bool {
		return people[i].ID.String() < people[j].ID.String()
	})
}

func sortAssignmentsByID(assignments []types.Assignment) {
	sort.Slice(assignments, func(i, j int) bool {
		return assignments[i].ID.String() < assignments[j].ID.String()
	})
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsUUID(list []uuid.UUID, v uuid.UUID) bool {
	for _, id := range list {
		if id == v {
			return true
		}
	}
	return false
}

func containsKind(list []types.ScopeKind, v types.ScopeKind) bool {
	for _, k := range list {
		if k == v {
			return true
		}
	}
	return false
}
