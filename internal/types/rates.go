package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ScopeKind identifies which level of the rate-card precedence chain a scope
// id refers to. Precedence order: engagement > client > person > role > org.
type ScopeKind string

const (
	ScopeEngagement ScopeKind = "engagement"
	ScopeClient     ScopeKind = "client"
	ScopePerson     ScopeKind = "person"
	ScopeRole       ScopeKind = "role"
	ScopeOrg        ScopeKind = "org"
)

// RateScope is a tagged scope reference: the kind says what entity the id
// names, so a person id can never be read as an engagement id.
type RateScope struct {
	Kind ScopeKind `json:"kind" validate:"required,oneof=engagement client person role org"`
	ID   uuid.UUID `json:"id" validate:"required"`
}

// RateCard is a scoped, date-bounded base billing rate. Multiple cards may
// apply to a context; only the highest-precedence, date-valid one is used.
type RateCard struct {
	ID            uuid.UUID  `json:"id" validate:"required"`
	OrgID         uuid.UUID  `json:"org_id" validate:"required"`
	Scope         RateScope  `json:"scope"`
	RoleFilter    *uuid.UUID `json:"role_filter,omitempty"`
	LevelFilter   *int       `json:"level_filter,omitempty" validate:"omitempty,gte=1,lte=5"`
	BaseRate      float64    `json:"base_rate" validate:"gt=0"`
	Currency      string     `json:"currency" validate:"required,len=3"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// EffectiveAt reports whether the card's date range covers the as-of date.
func (c *RateCard) EffectiveAt(asOf time.Time) bool {
	if asOf.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || !asOf.After(*c.EffectiveTo)
}

// RatePremium is a skill-linked rate adjustment, either absolute or
// percentage (mutually exclusive), scoped by an applies-to kind.
type RatePremium struct {
	ID            uuid.UUID  `json:"id" validate:"required"`
	OrgID         uuid.UUID  `json:"org_id" validate:"required"`
	SkillID       uuid.UUID  `json:"skill_id" validate:"required"`
	Label         string     `json:"label" validate:"required,min=1"`
	Absolute      *float64   `json:"absolute,omitempty"`
	Percent       *float64   `json:"percent,omitempty"`
	AppliesTo     ScopeKind  `json:"applies_to" validate:"required,oneof=engagement person role"`
	EffectiveFrom time.Time  `json:"effective_from" validate:"required"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// EffectiveAt reports whether the premium's date range covers the as-of date.
func (p *RatePremium) EffectiveAt(asOf time.Time) bool {
	if asOf.Before(p.EffectiveFrom) {
		return false
	}
	return p.EffectiveTo == nil || !asOf.After(*p.EffectiveTo)
}

// Validate checks the premium, including absolute/percent mutual exclusion.
func (p *RatePremium) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return err
	}
	if (p.Absolute == nil) == (p.Percent == nil) {
		return &ValidationError{
			Field:   "absolute/percent",
			Message: "exactly one of absolute or percent must be set",
		}
	}
	return nil
}

// RateContext carries everything the rate resolver needs to price a
// person/engagement combination. A zero AsOf means "now".
type RateContext struct {
	OrgID          uuid.UUID   `json:"org_id" validate:"required"`
	EngagementID   *uuid.UUID  `json:"engagement_id,omitempty"`
	ClientID       *uuid.UUID  `json:"client_id,omitempty"`
	PersonID       *uuid.UUID  `json:"person_id,omitempty"`
	RoleTemplateID *uuid.UUID  `json:"role_template_id,omitempty"`
	Level          *int        `json:"level,omitempty" validate:"omitempty,gte=1,lte=5"`
	SkillIDs       []uuid.UUID `json:"skill_ids,omitempty"`
	TargetCurrency string      `json:"target_currency,omitempty" validate:"omitempty,len=3"`
	AsOf           time.Time   `json:"as_of,omitempty"`
}

// Validate validates the RateContext using the validator.
func (c *RateContext) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// AppliedPremium itemizes one premium applied during rate resolution.
type AppliedPremium struct {
	PremiumID uuid.UUID `json:"premium_id"`
	Label     string    `json:"label"`
	SkillID   uuid.UUID `json:"skill_id"`
	Amount    float64   `json:"amount,omitempty"`
	Percent   float64   `json:"percent,omitempty"`
}

// AppliedPremiums groups the applied premiums by kind, in application order.
type AppliedPremiums struct {
	Absolute   []AppliedPremium `json:"absolute"`
	Percentage []AppliedPremium `json:"percentage"`
}

// RateResolution is the full, audit-grade output of a rate resolution. The
// breakdown lines are sufficient to reconstruct the computation independently.
type RateResolution struct {
	BaseCurrency       string          `json:"base_currency"`
	BaseAmount         float64         `json:"base_amount"`
	Premiums           AppliedPremiums `json:"premiums"`
	ScarcityMultiplier float64         `json:"scarcity_multiplier"`
	FxRate             *float64        `json:"fx_rate,omitempty"`
	FxDate             *time.Time      `json:"fx_date,omitempty"`
	FinalAmount        float64         `json:"final_amount"`
	FinalCurrency      string          `json:"final_currency"`
	Breakdown          []string        `json:"breakdown"`
	PrecedenceApplied  ScopeKind       `json:"precedence_applied"`
}
