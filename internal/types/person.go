package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SkillKind classifies a skill for scoring and constraint purposes.
type SkillKind string

const (
	SkillKindHard          SkillKind = "hard"
	SkillKindSoft          SkillKind = "soft"
	SkillKindCertification SkillKind = "certification"
)

// Skill is an org-scoped skill definition. Immutable once referenced by history.
type Skill struct {
	ID        uuid.UUID  `json:"id" validate:"required"`
	OrgID     uuid.UUID  `json:"org_id" validate:"required"`
	Name      string     `json:"name" validate:"required,min=1"`
	Kind      SkillKind  `json:"kind" validate:"required,oneof=hard soft certification"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Person is a staffable member of the org. Mutated by HR/admin operations
// outside this core; read-only here.
type Person struct {
	ID                   uuid.UUID   `json:"id" validate:"required"`
	OrgID                uuid.UUID   `json:"org_id" validate:"required"`
	Name                 string      `json:"name" validate:"required,min=1"`
	SeniorityLevel       int         `json:"seniority_level" validate:"gte=1,lte=5"`
	Timezone             string      `json:"timezone,omitempty"`
	ReliabilityScore     *float64    `json:"reliability_score,omitempty" validate:"omitempty,gte=0,lte=1"`
	CostBaseline         float64     `json:"cost_baseline" validate:"gte=0"`
	CostCurrency         string      `json:"cost_currency,omitempty"`
	HistoricalClients    []uuid.UUID `json:"historical_clients,omitempty"`
	HistoricalIndustries []string    `json:"historical_industries,omitempty"`
}

// PersonSkill links a person to a skill with a proficiency level (1-5),
// an optional last-used timestamp, and a confidence value.
type PersonSkill struct {
	PersonID   uuid.UUID  `json:"person_id" validate:"required"`
	SkillID    uuid.UUID  `json:"skill_id" validate:"required"`
	Level      int        `json:"level" validate:"gte=1,lte=5"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Confidence float64    `json:"confidence" validate:"gte=0,lte=1"`
}

// AvailabilityDay is one day of a person's availability calendar.
type AvailabilityDay struct {
	Date           time.Time `json:"date"`
	HoursAvailable float64   `json:"hours_available" validate:"gte=0"`
	Overloaded     bool      `json:"overloaded"`
}

// AvailabilityCalendar covers a person's daily availability over a date range.
type AvailabilityCalendar struct {
	PersonID uuid.UUID         `json:"person_id"`
	Days     []AvailabilityDay `json:"days"`
}

// Validate validates the Person using the validator.
func (p *Person) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// Validate validates the PersonSkill using the validator.
func (ps *PersonSkill) Validate() error {
	validate := validator.New()
	return validate.Struct(ps)
}
