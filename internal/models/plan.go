package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlanTier is a subscription tier. Tiers are totally ordered by rank.
type PlanTier string

const (
	PlanFree         PlanTier = "FREE"
	PlanStarter      PlanTier = "STARTER"
	PlanProfessional PlanTier = "PROFESSIONAL"
	PlanEnterprise   PlanTier = "ENTERPRISE"
)

// PlanDefinition holds the price and resource ceilings of a tier
type PlanDefinition struct {
	Tier        PlanTier        `json:"tier"`
	Rank        int             `json:"rank"`
	Price       decimal.Decimal `json:"price"`
	MaxProducts int             `json:"maxProducts"`
	MaxStorage  int64           `json:"maxStorage"` // bytes
}

const (
	megabyte = int64(1024 * 1024)
	gigabyte = 1024 * megabyte
)

// planCatalog is the only place tier prices and limits are defined.
// Template gating and trial conversion both read from it.
var planCatalog = map[PlanTier]PlanDefinition{
	PlanFree: {
		Tier:        PlanFree,
		Rank:        0,
		Price:       decimal.Zero,
		MaxProducts: 10,
		MaxStorage:  100 * megabyte,
	},
	PlanStarter: {
		Tier:        PlanStarter,
		Rank:        1,
		Price:       decimal.NewFromInt(50000),
		MaxProducts: 100,
		MaxStorage:  1 * gigabyte,
	},
	PlanProfessional: {
		Tier:        PlanProfessional,
		Rank:        2,
		Price:       decimal.NewFromInt(150000),
		MaxProducts: 1000,
		MaxStorage:  5 * gigabyte,
	},
	PlanEnterprise: {
		Tier:        PlanEnterprise,
		Rank:        3,
		Price:       decimal.NewFromInt(500000),
		MaxProducts: 10000,
		MaxStorage:  20 * gigabyte,
	},
}

// LookupPlan returns the definition for a tier name. Matching is exact after
// upper-casing, so "starter" resolves but "START" does not.
func LookupPlan(name string) (PlanDefinition, bool) {
	def, ok := planCatalog[PlanTier(strings.ToUpper(strings.TrimSpace(name)))]
	return def, ok
}

// LookupPaidPlan returns the definition only for tiers that can be purchased
func LookupPaidPlan(name string) (PlanDefinition, bool) {
	def, ok := LookupPlan(name)
	if !ok || !def.Price.IsPositive() {
		return PlanDefinition{}, false
	}
	return def, true
}

// Rank returns the position of the tier in the hierarchy, or -1 if unknown
func (p PlanTier) Rank() int {
	if def, ok := planCatalog[p]; ok {
		return def.Rank
	}
	return -1
}

// IsValid reports whether the tier exists in the catalog
func (p PlanTier) IsValid() bool {
	_, ok := planCatalog[p]
	return ok
}

// CanAccessTier reports whether a holder of plan may use a feature gated at required
func CanAccessTier(plan, required PlanTier) bool {
	if !required.IsValid() {
		return false
	}
	return plan.Rank() >= required.Rank()
}

// PlanHierarchy returns the tier ranks as exposed to clients
func PlanHierarchy() map[PlanTier]int {
	out := make(map[PlanTier]int, len(planCatalog))
	for tier, def := range planCatalog {
		out[tier] = def.Rank
	}
	return out
}
