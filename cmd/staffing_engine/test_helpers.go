package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/gateway"
	"github.com/jonathan/staffing-engine/internal/types"
)

// testBundle holds the ids of a minimal seeded fixture for CLI tests.
type testBundle struct {
	fixturePath string
	orgID       uuid.UUID
	requestID   uuid.UUID
	roleID      uuid.UUID
	skillID     uuid.UUID
}

// writeTestFixture builds a small valid fixture bundle on disk: one request,
// one role template, two candidates, and an org-scope rate card.
func writeTestFixture(t *testing.T) *testBundle {
	t.Helper()

	b := &testBundle{
		orgID:   uuid.New(),
		roleID:  uuid.New(),
		skillID: uuid.New(),
	}

	strong := types.Person{ID: uuid.New(), OrgID: b.orgID, Name: "Strong", SeniorityLevel: 4}
	weak := types.Person{ID: uuid.New(), OrgID: b.orgID, Name: "Weak", SeniorityLevel: 2}

	template := types.RoleTemplate{
		ID:             b.roleID,
		OrgID:          b.orgID,
		Name:           "Backend Engineer",
		SeniorityLevel: 3,
		HardRequirements: []types.HardRequirement{
			{SkillID: b.skillID, MinLevel: 3, Weight: 1.0, MustHave: true},
		},
	}

	request := types.StaffingRequest{
		ID:             uuid.New(),
		OrgID:          b.orgID,
		ParentKind:     types.ParentEngagement,
		ParentID:       uuid.New(),
		RoleTemplateID: b.roleID,
		StartDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		EffortHours:    480,
		Status:         types.RequestOpen,
	}
	b.requestID = request.ID

	fixture := gateway.Fixture{
		People: []types.Person{strong, weak},
		PersonSkills: []types.PersonSkill{
			{PersonID: strong.ID, SkillID: b.skillID, Level: 5, Confidence: 0.9},
			{PersonID: weak.ID, SkillID: b.skillID, Level: 2, Confidence: 0.5},
		},
		RoleTemplates: []types.RoleTemplate{template},
		Requests:      []types.StaffingRequest{request},
		RateCards: []types.RateCard{{
			ID:            uuid.New(),
			OrgID:         b.orgID,
			Scope:         types.RateScope{Kind: types.ScopeOrg, ID: b.orgID},
			BaseRate:      100,
			Currency:      "USD",
			EffectiveFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}},
	}

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}

	b.fixturePath = filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(b.fixturePath, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return b
}

// runCommand executes the root command in process with the given args.
func runCommand(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
