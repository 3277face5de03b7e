// Package gateway defines the persistence abstraction the staffing engine
// consumes, with PostgreSQL and in-memory implementations.
package gateway

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/types"
)

// CandidateFilters narrows the candidate pool returned by ListCandidatePeople.
// Zero values mean "no filter".
type CandidateFilters struct {
	SkillIDs     []uuid.UUID
	MinSeniority int
	Timezones    []string
}

// Gateway provides read access to staffing data and write access limited to
// creating immutable assignment records. All reads are org-scoped.
type Gateway interface {
	GetStaffingRequest(ctx context.Context, id uuid.UUID) (*types.StaffingRequest, error)
	GetRoleTemplate(ctx context.Context, id uuid.UUID) (*types.RoleTemplate, error)
	ListCandidatePeople(ctx context.Context, orgID uuid.UUID, filters CandidateFilters) ([]types.Person, error)
	ListPersonSkills(ctx context.Context, personID uuid.UUID) ([]types.PersonSkill, error)
	GetAvailabilityCalendar(ctx context.Context, personID uuid.UUID, start, end time.Time) (*types.AvailabilityCalendar, error)
	ListActiveAssignments(ctx context.Context, personID uuid.UUID) ([]types.Assignment, error)

	// QueryRateCards returns the date-valid cards for one scope, honoring
	// nullable role/level filters. Order is unspecified; callers sort.
	QueryRateCards(ctx context.Context, orgID uuid.UUID, scope types.RateScope, roleTemplateID *uuid.UUID, level *int, asOf time.Time) ([]types.RateCard, error)
	// QueryRatePremiums returns the date-valid premiums linked to any of the
	// given skills whose applies-to kind is in appliesTo.
	QueryRatePremiums(ctx context.Context, orgID uuid.UUID, skillIDs []uuid.UUID, appliesTo []types.ScopeKind, asOf time.Time) ([]types.RatePremium, error)
	GetOpenRequestCount(ctx context.Context, orgID, roleTemplateID uuid.UUID) (int, error)
	GetFxRate(ctx context.Context, from, to string, asOf time.Time) (float64, error)

	// CreateAssignment re-validates the person's availability for the date
	// range inside the write transaction and returns ConflictError if a
	// concurrent assignment claimed it. The write is atomic with its audit
	// record.
	CreateAssignment(ctx context.Context, payload types.AssignmentPayload) (*types.Assignment, error)
	// UpdateAssignment applies lifecycle updates. Any attempt to change a
	// pricing snapshot fails with ImmutableFieldError and leaves the record
	// untouched.
	UpdateAssignment(ctx context.Context, id uuid.UUID, update types.AssignmentUpdate) (*types.Assignment, error)
}
