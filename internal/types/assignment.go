package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AssignmentStatus is the lifecycle status of an assignment.
type AssignmentStatus string

const (
	AssignmentTentative AssignmentStatus = "tentative"
	AssignmentFirm      AssignmentStatus = "firm"
)

// Assignment is the one entity this core causes to be created. The pricing
// snapshot fields are captured once at creation from the rate resolver's
// output and are write-once for the life of the record.
type Assignment struct {
	ID               uuid.UUID        `json:"id"`
	OrgID            uuid.UUID        `json:"org_id"`
	PersonID         uuid.UUID        `json:"person_id"`
	EngagementID     uuid.UUID        `json:"engagement_id"`
	RoleTemplateID   uuid.UUID        `json:"role_template_id"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	AllocationPct    float64          `json:"allocation_pct"`
	Status           AssignmentStatus `json:"status"`
	BillRateSnapshot float64          `json:"bill_rate_snapshot"`
	CostRateSnapshot float64          `json:"cost_rate_snapshot"`
	RateCurrency     string           `json:"rate_currency"`
	CreatedAt        time.Time        `json:"created_at"`
}

// AssignmentPayload is the input to assignment creation. The snapshots must
// come from a RateResolution computed for the same person/engagement context.
type AssignmentPayload struct {
	OrgID            uuid.UUID        `json:"org_id" validate:"required"`
	PersonID         uuid.UUID        `json:"person_id" validate:"required"`
	EngagementID     uuid.UUID        `json:"engagement_id" validate:"required"`
	RoleTemplateID   uuid.UUID        `json:"role_template_id" validate:"required"`
	StartDate        time.Time        `json:"start_date" validate:"required"`
	EndDate          time.Time        `json:"end_date" validate:"required,gtefield=StartDate"`
	AllocationPct    float64          `json:"allocation_pct" validate:"gt=0,lte=100"`
	Status           AssignmentStatus `json:"status" validate:"required,oneof=tentative firm"`
	BillRateSnapshot float64          `json:"bill_rate_snapshot" validate:"gte=0"`
	CostRateSnapshot float64          `json:"cost_rate_snapshot" validate:"gte=0"`
	RateCurrency     string           `json:"rate_currency" validate:"required,len=3"`
}

// Validate validates the AssignmentPayload using the validator.
func (p *AssignmentPayload) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// AssignmentUpdate carries the mutable fields of an assignment. The snapshot
// pointers exist only so a mutation attempt can be detected and rejected
// with ImmutableFieldError; they are never applied.
type AssignmentUpdate struct {
	Status           *AssignmentStatus `json:"status,omitempty"`
	AllocationPct    *float64          `json:"allocation_pct,omitempty"`
	BillRateSnapshot *float64          `json:"bill_rate_snapshot,omitempty"`
	CostRateSnapshot *float64          `json:"cost_rate_snapshot,omitempty"`
}

// Overlaps reports whether two date ranges intersect (inclusive bounds).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
