package types

import "github.com/google/uuid"

// Reason codes emitted by the fit calculator. Every sub-score emits at least
// one so the final ranking is auditable.
const (
	ReasonHardSkillMatch      = "hard_skill_match"
	ReasonHardSkillGap        = "hard_skill_gap"
	ReasonNoHardRequirements  = "no_hard_requirements"
	ReasonSoftSkillFit        = "soft_skill_fit"
	ReasonAvailability        = "availability"
	ReasonAvailabilityUnknown = "availability_unknown"
	ReasonTimezoneExact       = "timezone_exact"
	ReasonTimezonePartial     = "timezone_partial"
	ReasonTimezoneMismatch    = "timezone_mismatch"
	ReasonDomainMatch         = "domain_match"
	ReasonDomainNoHistory     = "domain_no_history"
	ReasonReliability         = "reliability"
	ReasonContinuityMatch     = "continuity_match"
	ReasonContinuityNone      = "continuity_none"
	ReasonContinuityUnknown   = "continuity_unknown"
)

// FitReason is one machine-parseable entry of a fit result's explanation.
type FitReason struct {
	Code         string  `json:"code"`
	Detail       string  `json:"detail"`
	Contribution float64 `json:"contribution"`
	Evidence     string  `json:"evidence,omitempty"`
}

// FitResult is the explainable fit score of one person for one staffing
// request. Scores are in [0,1]; reasons are ordered by sub-score.
type FitResult struct {
	PersonID uuid.UUID   `json:"person_id"`
	FitScore float64     `json:"fit_score"`
	Reasons  []FitReason `json:"reasons"`
}
