package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PlanMode selects the assignment algorithm for batch optimization.
type PlanMode string

const (
	ModeGreedy      PlanMode = "greedy"
	ModeOptimal     PlanMode = "optimal"
	ModeConstrained PlanMode = "constrained"
)

// ConstraintKind identifies a cross-cutting staffing constraint.
type ConstraintKind string

const (
	ConstraintCoverage      ConstraintKind = "coverage"
	ConstraintBudget        ConstraintKind = "budget"
	ConstraintTimezone      ConstraintKind = "timezone"
	ConstraintSeniorityMix  ConstraintKind = "seniority_mix"
	ConstraintCertification ConstraintKind = "certification"
)

// SeniorityMix requires that at least MinRatio of assigned people hold a
// seniority level of MinLevel or above.
type SeniorityMix struct {
	MinLevel int     `json:"min_level" validate:"gte=1,lte=5"`
	MinRatio float64 `json:"min_ratio" validate:"gt=0,lte=1"`
}

// Constraint is one typed hard or soft constraint on a batch plan. Only the
// parameter fields relevant to the kind are read.
type Constraint struct {
	Kind           ConstraintKind `json:"kind" validate:"required,oneof=coverage budget timezone seniority_mix certification"`
	Hard           bool           `json:"hard"`
	BudgetLimit    float64        `json:"budget_limit,omitempty" validate:"gte=0"`
	RequiredSkills []uuid.UUID    `json:"required_skills,omitempty"`
	SeniorityMix   *SeniorityMix  `json:"seniority_mix,omitempty"`
	TimezoneWindow []string       `json:"timezone_window,omitempty"`
}

// Validate validates the Constraint using the validator.
func (c *Constraint) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kind == ConstraintBudget && c.BudgetLimit <= 0 {
		return &ValidationError{Field: "budget_limit", Message: "budget constraint requires a positive limit"}
	}
	if c.Kind == ConstraintSeniorityMix && c.SeniorityMix == nil {
		return &ValidationError{Field: "seniority_mix", Message: "seniority_mix constraint requires mix parameters"}
	}
	return nil
}

// ConstraintReport records one constraint's satisfaction state in a plan.
type ConstraintReport struct {
	Kind      ConstraintKind `json:"kind"`
	Hard      bool           `json:"hard"`
	Satisfied bool           `json:"satisfied"`
	Detail    string         `json:"detail"`
}

// SkillCoverage reports required vs covered proficiency for one skill of one
// request in the final plan.
type SkillCoverage struct {
	RequestID     uuid.UUID `json:"request_id"`
	SkillID       uuid.UUID `json:"skill_id"`
	RequiredLevel int       `json:"required_level"`
	CoveredLevel  int       `json:"covered_level"`
	Covered       bool      `json:"covered"`
}

// PlannedAssignment is one request/person pairing in a team plan, with the
// fit score that selected it and the modeled bill rate.
type PlannedAssignment struct {
	RequestID uuid.UUID `json:"request_id"`
	PersonID  uuid.UUID `json:"person_id"`
	FitScore  float64   `json:"fit_score"`
	Rate      float64   `json:"rate"`
}

// TeamPlan is the output of batch optimization.
type TeamPlan struct {
	Mode                 PlanMode            `json:"mode"`
	Assignments          []PlannedAssignment `json:"assignments"`
	TotalScore           float64             `json:"total_score"`
	TotalCost            float64             `json:"total_cost"`
	ConstraintsSatisfied []ConstraintReport  `json:"constraints_satisfied"`
	SkillCoverage        []SkillCoverage     `json:"skill_coverage"`
}
