package gateway

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/staffing-engine/internal/types"
)

// These tests run the gateway contract against a real database. They are
// skipped unless DATABASE_URL points at a PostgreSQL instance the tests may
// create tables in. Rows are keyed by fresh UUIDs so runs do not collide.

const testTables = `
CREATE TABLE IF NOT EXISTS people (
    id                    uuid PRIMARY KEY,
    org_id                uuid NOT NULL,
    name                  text NOT NULL,
    seniority_level       int NOT NULL,
    timezone              text NOT NULL DEFAULT '',
    reliability_score     double precision,
    cost_baseline         double precision NOT NULL DEFAULT 0,
    cost_currency         text NOT NULL DEFAULT '',
    historical_clients    uuid[],
    historical_industries text[]
);
CREATE TABLE IF NOT EXISTS person_skills (
    person_id    uuid NOT NULL,
    skill_id     uuid NOT NULL,
    level        int NOT NULL,
    last_used_at timestamptz,
    confidence   double precision NOT NULL DEFAULT 0,
    PRIMARY KEY (person_id, skill_id)
);
CREATE TABLE IF NOT EXISTS assignments (
    id                 uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    org_id             uuid NOT NULL,
    person_id          uuid NOT NULL,
    engagement_id      uuid NOT NULL,
    role_template_id   uuid NOT NULL,
    start_date         timestamptz NOT NULL,
    end_date           timestamptz NOT NULL,
    allocation_pct     double precision NOT NULL,
    status             text NOT NULL,
    bill_rate_snapshot double precision NOT NULL,
    cost_rate_snapshot double precision NOT NULL,
    rate_currency      text NOT NULL,
    created_at         timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS audit_log (
    id        bigserial PRIMARY KEY,
    entity    text NOT NULL,
    entity_id uuid NOT NULL,
    action    text NOT NULL,
    detail    text NOT NULL DEFAULT '',
    at        timestamptz NOT NULL DEFAULT now()
);
`

func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping postgres integration tests")
	}

	pg, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pg.Close)

	_, err = pg.pool.Exec(context.Background(), testTables)
	require.NoError(t, err)
	return pg
}

func insertTestPerson(t *testing.T, pg *Postgres, orgID uuid.UUID, name string, seniority int, timezone string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pg.pool.Exec(context.Background(),
		`INSERT INTO people (id, org_id, name, seniority_level, timezone, cost_baseline, cost_currency)
		 VALUES ($1, $2, $3, $4, $5, 100, 'USD')`,
		id, orgID, name, seniority, timezone)
	require.NoError(t, err)
	return id
}

func TestPostgresCreateAssignment_Succeeds(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	personID := uuid.New()

	a, err := pg.CreateAssignment(ctx, testPayload(personID))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, personID, a.PersonID)
	assert.Equal(t, 120.0, a.BillRateSnapshot)
	assert.False(t, a.CreatedAt.IsZero())

	stored, err := pg.ListActiveAssignments(ctx, personID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, a.ID, stored[0].ID)

	var auditCount int
	err = pg.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE entity = 'assignment' AND entity_id = $1`,
		a.ID).Scan(&auditCount)
	require.NoError(t, err)
	assert.Equal(t, 1, auditCount)
}

func TestPostgresCreateAssignment_OverAllocationConflict(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	personID := uuid.New()

	_, err := pg.CreateAssignment(ctx, testPayload(personID))
	require.NoError(t, err)

	// A second overlapping 60% assignment pushes the person past 100%.
	_, err = pg.CreateAssignment(ctx, testPayload(personID))
	require.Error(t, err)

	var conflict *types.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, personID.String(), conflict.PersonID)

	// The rejected create must leave no row behind.
	stored, err := pg.ListActiveAssignments(ctx, personID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPostgresCreateAssignment_NonOverlappingWindowsDoNotConflict(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	personID := uuid.New()

	_, err := pg.CreateAssignment(ctx, testPayload(personID))
	require.NoError(t, err)

	later := testPayload(personID)
	later.StartDate = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	later.EndDate = time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	_, err = pg.CreateAssignment(ctx, later)
	require.NoError(t, err)
}

func TestPostgresUpdateAssignment_SnapshotImmutable(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	a, err := pg.CreateAssignment(ctx, testPayload(uuid.New()))
	require.NoError(t, err)

	newRate := 150.0
	_, err = pg.UpdateAssignment(ctx, a.ID, types.AssignmentUpdate{BillRateSnapshot: &newRate})
	require.Error(t, err)

	var immutable *types.ImmutableFieldError
	require.ErrorAs(t, err, &immutable)
	assert.Equal(t, "bill_rate_snapshot", immutable.Field)

	stored, err := pg.ListActiveAssignments(ctx, a.PersonID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 120.0, stored[0].BillRateSnapshot)
}

func TestPostgresListCandidatePeople_EmptyFiltersReturnsAll(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	orgID := uuid.New()

	insertTestPerson(t, pg, orgID, "Ada", 3, "UTC")
	insertTestPerson(t, pg, orgID, "Ben", 5, "UTC+2")
	insertTestPerson(t, pg, uuid.New(), "Other Org", 4, "UTC")

	// Zero-value filters carry nil slices and must not exclude anyone.
	people, err := pg.ListCandidatePeople(ctx, orgID, CandidateFilters{})
	require.NoError(t, err)
	assert.Len(t, people, 2)
}

func TestPostgresListCandidatePeople_AppliesFilters(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()
	orgID := uuid.New()
	skillID := uuid.New()

	junior := insertTestPerson(t, pg, orgID, "Junior", 2, "UTC")
	senior := insertTestPerson(t, pg, orgID, "Senior", 4, "UTC+2")
	for _, id := range []uuid.UUID{junior, senior} {
		_, err := pg.pool.Exec(ctx,
			`INSERT INTO person_skills (person_id, skill_id, level, confidence)
			 VALUES ($1, $2, 3, 0.8)`,
			id, skillID)
		require.NoError(t, err)
	}

	people, err := pg.ListCandidatePeople(ctx, orgID, CandidateFilters{MinSeniority: 3})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, senior, people[0].ID)

	people, err = pg.ListCandidatePeople(ctx, orgID, CandidateFilters{
		Timezones: []string{"UTC"},
		SkillIDs:  []uuid.UUID{skillID},
	})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, junior, people[0].ID)
}
