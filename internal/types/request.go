package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RequestStatus is the lifecycle status of a staffing request.
type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestOnHold    RequestStatus = "on_hold"
	RequestFilled    RequestStatus = "filled"
	RequestCancelled RequestStatus = "cancelled"
)

// ParentKind distinguishes the parent a staffing request hangs off.
type ParentKind string

const (
	ParentPursuit    ParentKind = "pursuit"
	ParentEngagement ParentKind = "engagement"
)

// HardRequirement is one ordered hard-skill requirement of a role template.
type HardRequirement struct {
	SkillID  uuid.UUID `json:"skill_id" validate:"required"`
	MinLevel int       `json:"min_level" validate:"gte=1,lte=5"`
	Weight   float64   `json:"weight" validate:"gt=0"`
	MustHave bool      `json:"must_have"`
}

// SoftTarget is one entry of a role template's soft-skill target vector.
type SoftTarget struct {
	SkillID uuid.UUID `json:"skill_id" validate:"required"`
	Weight  float64   `json:"weight" validate:"gt=0"`
}

// RoleTemplate describes the skill profile a staffing request hires against.
type RoleTemplate struct {
	ID               uuid.UUID         `json:"id" validate:"required"`
	OrgID            uuid.UUID         `json:"org_id" validate:"required"`
	Name             string            `json:"name" validate:"required,min=1"`
	SeniorityLevel   int               `json:"seniority_level" validate:"gte=1,lte=5"`
	HardRequirements []HardRequirement `json:"hard_requirements,omitempty" validate:"dive"`
	SoftTargets      []SoftTarget      `json:"soft_targets,omitempty" validate:"dive"`
}

// StaffingRequest is an open demand for one person in one role over a date range.
type StaffingRequest struct {
	ID                  uuid.UUID     `json:"id" validate:"required"`
	OrgID               uuid.UUID     `json:"org_id" validate:"required"`
	ParentKind          ParentKind    `json:"parent_kind" validate:"required,oneof=pursuit engagement"`
	ParentID            uuid.UUID     `json:"parent_id" validate:"required"`
	ClientID            *uuid.UUID    `json:"client_id,omitempty"`
	Industry            string        `json:"industry,omitempty"`
	RoleTemplateID      uuid.UUID     `json:"role_template_id" validate:"required"`
	StartDate           time.Time     `json:"start_date" validate:"required"`
	EndDate             time.Time     `json:"end_date" validate:"required,gtefield=StartDate"`
	EffortHours         float64       `json:"effort_hours" validate:"gt=0"`
	MustHaveSkills      []uuid.UUID   `json:"must_have_skills,omitempty"`
	NiceToHaveSkills    []uuid.UUID   `json:"nice_to_have_skills,omitempty"`
	TimezoneWindow      []string      `json:"timezone_window,omitempty"`
	ContinuityPreferred bool          `json:"continuity_preferred"`
	BudgetCap           *float64      `json:"budget_cap,omitempty" validate:"omitempty,gt=0"`
	Status              RequestStatus `json:"status" validate:"required,oneof=open on_hold filled cancelled"`
}

// Validate validates the StaffingRequest using the validator.
func (r *StaffingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the RoleTemplate using the validator.
func (t *RoleTemplate) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}
