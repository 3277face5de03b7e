package observability

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/staffing-engine/internal/types"
)

func TestPrintFitResults(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	personID := uuid.New()
	p.PrintFitResults([]types.FitResult{
		{
			PersonID: personID,
			FitScore: 0.8123,
			Reasons: []types.FitReason{
				{Code: types.ReasonHardSkillGap, Detail: "skill missing"},
			},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "Fit Ranking")
	assert.Contains(t, output, "0.8123")
	assert.Contains(t, output, "gap:")
}

func TestPrintFitResults_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFitResults(nil)

	assert.Contains(t, buf.String(), "no candidates")
}

func TestPrintRateResolution(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRateResolution(&types.RateResolution{
		Breakdown:         []string{"base 100.00 USD", "= 120.00 USD"},
		PrecedenceApplied: types.ScopeOrg,
	})
	output := buf.String()

	assert.Contains(t, output, "Rate Resolution")
	assert.Contains(t, output, "base 100.00 USD")
	assert.Contains(t, output, "precedence: org")
}

func TestPrintRateResolution_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRateResolution(nil)

	assert.Empty(t, buf.String())
}

func TestPrintTeamPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTeamPlan(&types.TeamPlan{
		Mode:       types.ModeOptimal,
		TotalScore: 1.6,
		TotalCost:  12000,
		Assignments: []types.PlannedAssignment{
			{RequestID: uuid.New(), PersonID: uuid.New(), FitScore: 0.8, Rate: 100},
		},
		ConstraintsSatisfied: []types.ConstraintReport{
			{Kind: types.ConstraintBudget, Hard: true, Satisfied: false, Detail: "over budget"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "Team Plan")
	assert.Contains(t, output, "optimal")
	assert.Contains(t, output, "VIOLATED")
}

func TestPrintTeamPlan_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTeamPlan(nil)

	assert.Empty(t, buf.String())
}
