// Package rates resolves effective bill rates under the scope precedence,
// premium, scarcity, and currency model.
package rates

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/staffing-engine/internal/config"
	"github.com/jonathan/staffing-engine/internal/types"
)

// Gateway is the read surface the resolver needs.
type Gateway interface {
	QueryRateCards(ctx context.Context, orgID uuid.UUID, scope types.RateScope, roleTemplateID *uuid.UUID, level *int, asOf time.Time) ([]types.RateCard, error)
	QueryRatePremiums(ctx context.Context, orgID uuid.UUID, skillIDs []uuid.UUID, appliesTo []types.ScopeKind, asOf time.Time) ([]types.RatePremium, error)
	GetOpenRequestCount(ctx context.Context, orgID, roleTemplateID uuid.UUID) (int, error)
	GetFxRate(ctx context.Context, from, to string, asOf time.Time) (float64, error)
}

// Resolver derives effective bill rates. Stateless; identical contexts
// (including the as-of date) always produce identical resolutions.
type Resolver struct {
	gw    Gateway
	rates config.RateParams
}

// New builds a Resolver with the given configuration.
func New(gw Gateway, cfg config.Config) *Resolver {
	return &Resolver{gw: gw, rates: cfg.Rates}
}

// premiumAppliesTo are the scope kinds premiums can be linked to.
var premiumAppliesTo = []types.ScopeKind{types.ScopeEngagement, types.ScopePerson, types.ScopeRole}

// Resolve finds the highest-precedence applicable rate card and applies
// premiums, scarcity, and currency conversion in fixed order, producing a
// breakdown sufficient to reconstruct the computation independently.
func (r *Resolver) Resolve(ctx context.Context, rc types.RateContext) (*types.RateResolution, error) {
	if err := rc.Validate(); err != nil {
		return nil, &types.ValidationError{Message: "invalid rate context", Cause: err}
	}

	asOf := rc.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	card, scopeKind, err := r.findBaseCard(ctx, rc, asOf)
	if err != nil {
		return nil, err
	}

	res := &types.RateResolution{
		BaseCurrency:      card.Currency,
		BaseAmount:        card.BaseRate,
		Premiums:          types.AppliedPremiums{Absolute: []types.AppliedPremium{}, Percentage: []types.AppliedPremium{}},
		PrecedenceApplied: scopeKind,
	}
	res.Breakdown = append(res.Breakdown,
		fmt.Sprintf("base %.2f %s from %s rate card %s", card.BaseRate, card.Currency, scopeKind, card.ID))

	amount := card.BaseRate

	// 1. Absolute premiums sum onto the base; 2. percentage premiums apply
	// multiplicatively in premium-id order.
	if len(rc.SkillIDs) > 0 {
		premiums, err := r.gw.QueryRatePremiums(ctx, rc.OrgID, rc.SkillIDs, premiumAppliesTo, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to query rate premiums: %w", err)
		}
		sort.Slice(premiums, func(i, j int) bool {
			return premiums[i].ID.String() < premiums[j].ID.String()
		})

		for _, p := range premiums {
			if p.Absolute == nil {
				continue
			}
			amount += *p.Absolute
			res.Premiums.Absolute = append(res.Premiums.Absolute, types.AppliedPremium{
				PremiumID: p.ID, Label: p.Label, SkillID: p.SkillID, Amount: *p.Absolute,
			})
			res.Breakdown = append(res.Breakdown,
				fmt.Sprintf("+ %.2f absolute premium %q (%s)", *p.Absolute, p.Label, p.ID))
		}
		for _, p := range premiums {
			if p.Percent == nil {
				continue
			}
			amount *= 1 + *p.Percent/100
			res.Premiums.Percentage = append(res.Premiums.Percentage, types.AppliedPremium{
				PremiumID: p.ID, Label: p.Label, SkillID: p.SkillID, Percent: *p.Percent,
			})
			res.Breakdown = append(res.Breakdown,
				fmt.Sprintf("x %.4f percentage premium %q (%s)", 1+*p.Percent/100, p.Label, p.ID))
		}
	}

	// 3. Scarcity multiplier from open-request volume for the role.
	scarcity := 1.0
	if rc.RoleTemplateID != nil {
		open, err := r.gw.GetOpenRequestCount(ctx, rc.OrgID, *rc.RoleTemplateID)
		if err != nil {
			return nil, fmt.Errorf("failed to count open requests: %w", err)
		}
		scarcity = r.scarcityMultiplier(open)
		res.Breakdown = append(res.Breakdown,
			fmt.Sprintf("x %.4f scarcity multiplier (%d open requests)", scarcity, open))
	}
	res.ScarcityMultiplier = scarcity
	amount *= scarcity

	// 4. Currency conversion via the external FX lookup.
	finalCurrency := card.Currency
	if rc.TargetCurrency != "" && rc.TargetCurrency != card.Currency {
		fx, err := r.gw.GetFxRate(ctx, card.Currency, rc.TargetCurrency, asOf)
		if err != nil {
			return nil, err
		}
		amount *= fx
		finalCurrency = rc.TargetCurrency
		res.FxRate = &fx
		fxDate := asOf
		res.FxDate = &fxDate
		res.Breakdown = append(res.Breakdown,
			fmt.Sprintf("x %.6f fx %s to %s as of %s", fx, card.Currency, rc.TargetCurrency, asOf.Format("2006-01-02")))
	}

	res.FinalAmount = math.Round(amount*100) / 100
	res.FinalCurrency = finalCurrency
	res.Breakdown = append(res.Breakdown,
		fmt.Sprintf("= %.2f %s", res.FinalAmount, finalCurrency))
	return res, nil
}

// findBaseCard walks the precedence chain engagement > client > person >
// role > org; the first scope yielding a date-valid card wins and lower
// scopes are never consulted.
func (r *Resolver) findBaseCard(ctx context.Context, rc types.RateContext, asOf time.Time) (*types.RateCard, types.ScopeKind, error) {
	scopes := make([]types.RateScope, 0, 5)
	if rc.EngagementID != nil {
		scopes = append(scopes, types.RateScope{Kind: types.ScopeEngagement, ID: *rc.EngagementID})
	}
	if rc.ClientID != nil {
		scopes = append(scopes, types.RateScope{Kind: types.ScopeClient, ID: *rc.ClientID})
	}
	if rc.PersonID != nil {
		scopes = append(scopes, types.RateScope{Kind: types.ScopePerson, ID: *rc.PersonID})
	}
	if rc.RoleTemplateID != nil {
		scopes = append(scopes, types.RateScope{Kind: types.ScopeRole, ID: *rc.RoleTemplateID})
	}
	scopes = append(scopes, types.RateScope{Kind: types.ScopeOrg, ID: rc.OrgID})

	for _, scope := range scopes {
		cards, err := r.gw.QueryRateCards(ctx, rc.OrgID, scope, rc.RoleTemplateID, rc.Level, asOf)
		if err != nil {
			return nil, "", fmt.Errorf("failed to query %s rate cards: %w", scope.Kind, err)
		}
		if len(cards) == 0 {
			continue
		}
		// Deterministic pick when several cards of one scope apply.
		sort.Slice(cards, func(i, j int) bool {
			return cards[i].ID.String() < cards[j].ID.String()
		})
		return &cards[0], scope.Kind, nil
	}
	return nil, "", &types.NotFoundError{Resource: "applicable rate", ID: rc.OrgID.String()}
}

// scarcityMultiplier inflates the rate with demand: every ScarcityStep open
// requests add ScarcityIncrement, capped at ScarcityCap.
func (r *Resolver) scarcityMultiplier(openRequests int) float64 {
	m := 1.0 + float64(openRequests)/r.rates.ScarcityStep*r.rates.ScarcityIncrement
	return math.Min(m, r.rates.ScarcityCap)
}
