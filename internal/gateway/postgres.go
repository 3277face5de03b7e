package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/staffing-engine/internal/types"
)

// Postgres implements Gateway on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Gateway = (*Postgres)(nil)

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (g *Postgres) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

func (g *Postgres) GetStaffingRequest(ctx context.Context, id uuid.UUID) (*types.StaffingRequest, error) {
	var r types.StaffingRequest
	err := g.pool.QueryRow(ctx,
		`SELECT id, org_id, parent_kind, parent_id, client_id, industry, role_template_id,
		        start_date, end_date, effort_hours, must_have_skills, nice_to_have_skills,
		        timezone_window, continuity_preferred, budget_cap, status
		 FROM staffing_requests WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.OrgID, &r.ParentKind, &r.ParentID, &r.ClientID, &r.Industry,
		&r.RoleTemplateID, &r.StartDate, &r.EndDate, &r.EffortHours, &r.MustHaveSkills,
		&r.NiceToHaveSkills, &r.TimezoneWindow, &r.ContinuityPreferred, &r.BudgetCap, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Resource: "staffing request", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load staffing request: %w", err)
	}
	return &r, nil
}

func (g *Postgres) GetRoleTemplate(ctx context.Context, id uuid.UUID) (*types.RoleTemplate, error) {
	var rt types.RoleTemplate
	err := g.pool.QueryRow(ctx,
		`SELECT id, org_id, name, seniority_level, hard_requirements, soft_targets
		 FROM role_templates WHERE id = $1`,
		id,
	).Scan(&rt.ID, &rt.OrgID, &rt.Name, &rt.SeniorityLevel, &rt.HardRequirements, &rt.SoftTargets)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Resource: "role template", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load role template: %w", err)
	}
	return &rt, nil
}

func (g *Postgres) ListCandidatePeople(ctx context.Context, orgID uuid.UUID, filters CandidateFilters) ([]types.Person, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT p.id, p.org_id, p.name, p.seniority_level, p.timezone, p.reliability_score,
		        p.cost_baseline, p.cost_currency, p.historical_clients, p.historical_industries
		 FROM people p
		 WHERE p.org_id = $1
		   AND ($2::int = 0 OR p.seniority_level >= $2)
		   AND ($3::text[] IS NULL OR cardinality($3::text[]) = 0 OR p.timezone = ANY($3))
		   AND ($4::uuid[] IS NULL OR cardinality($4::uuid[]) = 0 OR EXISTS (
		          SELECT 1 FROM person_skills ps
		          WHERE ps.person_id = p.id AND ps.skill_id = ANY($4)))
		 ORDER BY p.id`,
		orgID, filters.MinSeniority, filters.Timezones, filters.SkillIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidate people: %w", err)
	}
	defer rows.Close()

	var out []types.Person
	for rows.Next() {
		var p types.Person
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.SeniorityLevel, &p.Timezone,
			&p.ReliabilityScore, &p.CostBaseline, &p.CostCurrency,
			&p.HistoricalClients, &p.HistoricalIndustries); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *Postgres) ListPersonSkills(ctx context.Context, personID uuid.UUID) ([]types.PersonSkill, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT person_id, skill_id, level, last_used_at, confidence
		 FROM person_skills WHERE person_id = $1 ORDER BY skill_id`,
		personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list person skills: %w", err)
	}
	defer rows.Close()

	var out []types.PersonSkill
	for rows.Next() {
		var ps types.PersonSkill
		if err := rows.Scan(&ps.PersonID, &ps.SkillID, &ps.Level, &ps.LastUsedAt, &ps.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan person skill: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (g *Postgres) GetAvailabilityCalendar(ctx context.Context, personID uuid.UUID, start, end time.Time) (*types.AvailabilityCalendar, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT date, hours_available, overloaded
		 FROM availability_days
		 WHERE person_id = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date`,
		personID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability calendar: %w", err)
	}
	defer rows.Close()

	cal := types.AvailabilityCalendar{PersonID: personID}
	for rows.Next() {
		var day types.AvailabilityDay
		if err := rows.Scan(&day.Date, &day.HoursAvailable, &day.Overloaded); err != nil {
			return nil, fmt.Errorf("failed to scan availability day: %w", err)
		}
		cal.Days = append(cal.Days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cal.Days) == 0 {
		return nil, &types.NotFoundError{Resource: "availability calendar", ID: personID.String()}
	}
	return &cal, nil
}

func (g *Postgres) ListActiveAssignments(ctx context.Context, personID uuid.UUID) ([]types.Assignment, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT id, org_id, person_id, engagement_id, role_template_id, start_date, end_date,
		        allocation_pct, status, bill_rate_snapshot, cost_rate_snapshot, rate_currency, created_at
		 FROM assignments WHERE person_id = $1 ORDER BY id`,
		personID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var out []types.Assignment
	for rows.Next() {
		var a types.Assignment
		if err := rows.Scan(&a.ID, &a.OrgID, &a.PersonID, &a.EngagementID, &a.RoleTemplateID,
			&a.StartDate, &a.EndDate, &a.AllocationPct, &a.Status,
			&a.BillRateSnapshot, &a.CostRateSnapshot, &a.RateCurrency, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (g *Postgres) QueryRateCards(ctx context.Context, orgID uuid.UUID, scope types.RateScope, roleTemplateID *uuid.UUID, level *int, asOf time.Time) ([]types.RateCard, error) {
	rows, err := g.pool.Query(ctx,
		`SELECT id, org_id, scope_kind, scope_id, role_filter, level_filter, base_rate, currency,
		        effective_from, effective_to
		 FROM rate_cards
		 WHERE org_id = $1 AND scope_kind = $2 AND scope_id = $3
		   AND (role_filter IS NULL OR role_filter = $4)
		   AND (level_filter IS NULL OR level_filter = $5)
		   AND effective_from <= $6
		   AND (effective_to IS NULL OR effective_to >= $6)
		 ORDER BY id`,
		orgID, scope.Kind, scope.ID, roleTemplateID, level, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate cards: %w", err)
	}
	defer rows.Close()

	var out []types.RateCard
	for rows.Next() {
		var c types.RateCard
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Scope.Kind, &c.Scope.ID, &c.RoleFilter,
			&c.LevelFilter, &c.BaseRate, &c.Currency, &c.EffectiveFrom, &c.EffectiveTo); err != nil {
			return nil, fmt.Errorf("failed to scan rate card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g *Postgres) QueryRatePremiums(ctx context.Context, orgID uuid.UUID, skillIDs []uuid.UUID, appliesTo []types.ScopeKind, asOf time.Time) ([]types.RatePremium, error) {
	kinds := make([]string, len(appliesTo))
	for i, k := range appliesTo {
		kinds[i] = string(k)
	}
	rows, err := g.pool.Query(ctx,
		`SELECT id, org_id, skill_id, label, absolute, percent, applies_to, effective_from, effective_to
		 FROM rate_premiums
		 WHERE org_id = $1 AND skill_id = ANY($2) AND applies_to = ANY($3)
		   AND effective_from <= $4
		   AND (effective_to IS NULL OR effective_to >= $4)
		 ORDER BY id`,
		orgID, skillIDs, kinds, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate premiums: %w", err)
	}
	defer rows.Close()

	var out []types.RatePremium
	for rows.Next() {
		var p types.RatePremium
		if err := rows.Scan(&p.ID, &p.OrgID, &p.SkillID, &p.Label, &p.Absolute, &p.Percent,
			&p.AppliesTo, &p.EffectiveFrom, &p.EffectiveTo); err != nil {
			return nil, fmt.Errorf("failed to scan rate premium: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *Postgres) GetOpenRequestCount(ctx context.Context, orgID, roleTemplateID uuid.UUID) (int, error) {
	var n int
	err := g.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM staffing_requests
		 WHERE org_id = $1 AND role_template_id = $2 AND status = 'open'`,
		orgID, roleTemplateID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count open requests: %w", err)
	}
	return n, nil
}

func (g *Postgres) GetFxRate(ctx context.Context, from, to string, asOf time.Time) (float64, error) {
	var rate float64
	err := g.pool.QueryRow(ctx,
		`SELECT rate FROM fx_rates
		 WHERE from_currency = $1 AND to_currency = $2 AND as_of <= $3
		 ORDER BY as_of DESC LIMIT 1`,
		from, to, asOf).Scan(&rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, &types.NotFoundError{Resource: "fx rate", ID: from + "/" + to}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load fx rate: %w", err)
	}
	return rate, nil
}

func (g *Postgres) CreateAssignment(ctx context.Context, payload types.AssignmentPayload) (*types.Assignment, error) {
	if err := payload.Validate(); err != nil {
		return nil, &types.ValidationError{Message: "invalid assignment payload", Cause: err}
	}

	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Optimistic check-then-commit: lock the person's overlapping rows,
	// then re-validate the allocation inside the transaction. FOR UPDATE
	// cannot be combined with an aggregate, so the sum happens here.
	rows, err := tx.Query(ctx,
		`SELECT allocation_pct FROM assignments
		 WHERE person_id = $1 AND start_date <= $3 AND end_date >= $2
		 FOR UPDATE`,
		payload.PersonID, payload.StartDate, payload.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing allocation: %w", err)
	}
	var allocated float64
	for rows.Next() {
		var pct float64
		if err := rows.Scan(&pct); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan existing allocation: %w", err)
		}
		allocated += pct
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to check existing allocation: %w", err)
	}
	if allocated+payload.AllocationPct > maxAllocationPct {
		return nil, &types.ConflictError{
			PersonID: payload.PersonID.String(),
			Message: fmt.Sprintf("allocation %.0f%% + existing %.0f%% exceeds %.0f%%",
				payload.AllocationPct, allocated, maxAllocationPct),
		}
	}

	var a types.Assignment
	err = tx.QueryRow(ctx,
		`INSERT INTO assignments (person_id, org_id, engagement_id, role_template_id, start_date,
		        end_date, allocation_pct, status, bill_rate_snapshot, cost_rate_snapshot, rate_currency)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at`,
		payload.PersonID, payload.OrgID, payload.EngagementID, payload.RoleTemplateID,
		payload.StartDate, payload.EndDate, payload.AllocationPct, payload.Status,
		payload.BillRateSnapshot, payload.CostRateSnapshot, payload.RateCurrency,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	// Audit row committed in the same transaction as the assignment.
	_, err = tx.Exec(ctx,
		`INSERT INTO audit_log (entity, entity_id, action, detail)
		 VALUES ('assignment', $1, 'create', $2)`,
		a.ID, fmt.Sprintf("person %s at rate %.2f %s", payload.PersonID, payload.BillRateSnapshot, payload.RateCurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to write audit record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	a.OrgID = payload.OrgID
	a.PersonID = payload.PersonID
	a.EngagementID = payload.EngagementID
	a.RoleTemplateID = payload.RoleTemplateID
	a.StartDate = payload.StartDate
	a.EndDate = payload.EndDate
	a.AllocationPct = payload.AllocationPct
	a.Status = payload.Status
	a.BillRateSnapshot = payload.BillRateSnapshot
	a.CostRateSnapshot = payload.CostRateSnapshot
	a.RateCurrency = payload.RateCurrency
	return &a, nil
}

func (g *Postgres) UpdateAssignment(ctx context.Context, id uuid.UUID, update types.AssignmentUpdate) (*types.Assignment, error) {
	// Snapshot fields are write-once; reject before touching the row.
	if update.BillRateSnapshot != nil {
		return nil, &types.ImmutableFieldError{Field: "bill_rate_snapshot"}
	}
	if update.CostRateSnapshot != nil {
		return nil, &types.ImmutableFieldError{Field: "cost_rate_snapshot"}
	}

	var a types.Assignment
	err := g.pool.QueryRow(ctx,
		`UPDATE assignments
		 SET status = COALESCE($2, status), allocation_pct = COALESCE($3, allocation_pct)
		 WHERE id = $1
		 RETURNING id, org_id, person_id, engagement_id, role_template_id, start_date, end_date,
		           allocation_pct, status, bill_rate_snapshot, cost_rate_snapshot, rate_currency, created_at`,
		id, update.Status, update.AllocationPct,
	).Scan(&a.ID, &a.OrgID, &a.PersonID, &a.EngagementID, &a.RoleTemplateID, &a.StartDate,
		&a.EndDate, &a.AllocationPct, &a.Status, &a.BillRateSnapshot, &a.CostRateSnapshot,
		&a.RateCurrency, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &types.NotFoundError{Resource: "assignment", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}
	return &a, nil
}
