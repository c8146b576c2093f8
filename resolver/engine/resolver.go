package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skarin/equipwatch/dao"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	resolver_model "github.com/skarin/equipwatch/resolver/model"
)

// HierarchyStore opens snapshot-consistent views over the location DAG.
// *dao.HierarchyDAO is the production implementation.
type HierarchyStore interface {
	View(ctx context.Context, fn func(v dao.HierarchyView) error) error
}

// GrantStore serves a principal's effective grants.
type GrantStore interface {
	EffectiveGrants(ctx context.Context, principalID string) ([]model.AccessGrant, error)
}

// Resolver answers, for every request, whether a principal can see or
// modify a piece of equipment and with which access level. Each call is
// an independent bounded computation; resolutions may run concurrently
// with no coordination beyond the store's transaction isolation.
type Resolver struct {
	hierarchy HierarchyStore
	grants    GrantStore
	cache     *DecisionCache
}

func NewResolver(hierarchy HierarchyStore, grants GrantStore, cacheSize int, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		hierarchy: hierarchy,
		grants:    grants,
		cache:     NewDecisionCache(cacheSize, cacheTTL),
	}
}

// ResolveAccessibleEquipment computes the set of equipment IDs the
// principal may see. Privileged roles get the full universe; engineers
// get the union of their five grant-scope expansions. Access is
// strictly additive: no grant ever subtracts from another, and no
// access means an empty set, not an error.
func (r *Resolver) ResolveAccessibleEquipment(ctx context.Context, principal model.User) (map[string]struct{}, error) {
	accessible := make(map[string]struct{})

	if principal.Privileged() {
		err := r.hierarchy.View(ctx, func(v dao.HierarchyView) error {
			ids, err := v.EquipmentUniverse()
			if err != nil {
				return err
			}
			for _, id := range ids {
				accessible[id] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return accessible, nil
	}

	grants, err := r.grants.EffectiveGrants(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = r.hierarchy.View(ctx, func(v dao.HierarchyView) error {
		for _, grant := range grants {
			// The store already filters, but effectiveness is the
			// engine's invariant, so it is enforced here too.
			if !grant.Effective(now) {
				continue
			}
			ids, err := ExpandScope(v, grant.ScopeLevel, grant.ScopeID)
			if err != nil {
				return err
			}
			for _, id := range ids {
				accessible[id] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accessible, nil
}

// Authorize decides one access check. Privileged roles pass before any
// existence check. For engineers the grant levels are consulted in
// fixed precedence order (enterprise, branch, workshop, equipment type,
// direct equipment) and the first level holding a grant decides.
// Authorize never errors: any lookup failure or malformed reference
// resolves to false.
func (r *Resolver) Authorize(ctx context.Context, principal model.User, equipmentID string, permission model.Permission) bool {
	if principal.Privileged() {
		return true
	}

	cacheKey := r.cacheKey(principal.ID, equipmentID, permission)
	if cached := r.cache.Get(cacheKey); cached != nil {
		return cached.Allowed
	}

	decision := r.decide(ctx, principal, equipmentID, permission)
	r.cache.Set(cacheKey, decision)

	if !decision.Allowed {
		logger.Debug("Access denied",
			zap.String("principalID", principal.ID),
			zap.String("equipmentID", equipmentID),
			zap.String("permission", string(permission)),
			zap.String("reason", decision.Reason))
	}

	return decision.Allowed
}

// Decide exposes the full decision for callers that audit denials.
func (r *Resolver) Decide(ctx context.Context, principal model.User, equipmentID string, permission model.Permission) resolver_model.AccessDecision {
	if principal.Privileged() {
		return resolver_model.AccessDecision{Allowed: true, Reason: "privileged role"}
	}
	return r.decide(ctx, principal, equipmentID, permission)
}

func (r *Resolver) decide(ctx context.Context, principal model.User, equipmentID string, permission model.Permission) resolver_model.AccessDecision {
	grants, err := r.grants.EffectiveGrants(ctx, principal.ID)
	if err != nil {
		logger.Error("Grant retrieval failed during authorization, failing closed",
			zap.Error(err),
			zap.String("principalID", principal.ID))
		return resolver_model.AccessDecision{Allowed: false, Reason: "grant retrieval failed"}
	}

	now := time.Now()
	byScope := make(map[model.ScopeLevel]map[string]model.AccessGrant)
	for _, grant := range grants {
		if !grant.Effective(now) {
			continue
		}
		if byScope[grant.ScopeLevel] == nil {
			byScope[grant.ScopeLevel] = make(map[string]model.AccessGrant)
		}
		byScope[grant.ScopeLevel][grant.ScopeID] = grant
	}

	if len(byScope) == 0 {
		return resolver_model.AccessDecision{Allowed: false, Reason: "no effective grants"}
	}

	var location *model.EquipmentLocation
	err = r.hierarchy.View(ctx, func(v dao.HierarchyView) error {
		loc, err := v.EquipmentLocation(equipmentID)
		if err != nil {
			return err
		}
		location = loc
		return nil
	})
	if err != nil {
		// Malformed or missing equipment reference: fail closed.
		return resolver_model.AccessDecision{Allowed: false, Reason: "equipment lookup failed"}
	}

	// Enterprise and branch grants pass every permission through;
	// workshop, type and direct grants consult their access_type.
	if location.EnterpriseID != "" {
		if _, ok := byScope[model.ScopeEnterprise][location.EnterpriseID]; ok {
			return resolver_model.AccessDecision{Allowed: true, MatchedLevel: model.ScopeEnterprise}
		}
	}
	if location.BranchID != "" {
		if _, ok := byScope[model.ScopeBranch][location.BranchID]; ok {
			return resolver_model.AccessDecision{Allowed: true, MatchedLevel: model.ScopeBranch}
		}
	}
	if location.WorkshopID != "" {
		if grant, ok := byScope[model.ScopeWorkshop][location.WorkshopID]; ok {
			return decideAtWorkshop(grant, permission)
		}
	}
	if location.TypeID != "" {
		if grant, ok := byScope[model.ScopeEquipmentType][location.TypeID]; ok {
			return decideAtType(grant, permission)
		}
	}
	if grant, ok := byScope[model.ScopeEquipment][equipmentID]; ok {
		return decideAtEquipment(grant, permission)
	}

	return resolver_model.AccessDecision{Allowed: false, Reason: "no grant matched any level"}
}

func decideAtWorkshop(grant model.AccessGrant, permission model.Permission) resolver_model.AccessDecision {
	decision := resolver_model.AccessDecision{MatchedLevel: model.ScopeWorkshop}
	switch permission {
	case model.PermissionRead:
		decision.Allowed = true
	case model.PermissionWrite:
		decision.Allowed = grant.AccessType == model.AccessReadWrite || grant.AccessType == model.AccessCreateEquipment
	case model.PermissionCreate:
		decision.Allowed = grant.AccessType == model.AccessCreateEquipment
	}
	if !decision.Allowed {
		decision.Reason = fmt.Sprintf("workshop grant %s does not satisfy %s", grant.AccessType, permission)
	}
	return decision
}

func decideAtType(grant model.AccessGrant, permission model.Permission) resolver_model.AccessDecision {
	decision := resolver_model.AccessDecision{MatchedLevel: model.ScopeEquipmentType}
	switch permission {
	case model.PermissionRead:
		decision.Allowed = true
	case model.PermissionWrite:
		// A type-level create_equipment grant does not imply write.
		decision.Allowed = grant.AccessType == model.AccessReadWrite
	case model.PermissionCreate:
		decision.Allowed = false
	}
	if !decision.Allowed {
		decision.Reason = fmt.Sprintf("type grant %s does not satisfy %s", grant.AccessType, permission)
	}
	return decision
}

func decideAtEquipment(grant model.AccessGrant, permission model.Permission) resolver_model.AccessDecision {
	decision := resolver_model.AccessDecision{MatchedLevel: model.ScopeEquipment}
	switch permission {
	case model.PermissionRead:
		decision.Allowed = true
	case model.PermissionWrite:
		decision.Allowed = grant.AccessType != model.AccessReadOnly
	case model.PermissionCreate:
		decision.Allowed = grant.AccessType == model.AccessCreateEquipment
	}
	if !decision.Allowed {
		decision.Reason = fmt.Sprintf("equipment grant %s does not satisfy %s", grant.AccessType, permission)
	}
	return decision
}

// AuthorizeCreateIn decides whether the principal may create equipment
// inside the given workshop. Placement has no equipment to anchor the
// usual chain on, so the check walks the workshop's own ancestors:
// enterprise and branch grants pass through, a workshop grant must
// carry create_equipment. Never errors; failures resolve to false.
func (r *Resolver) AuthorizeCreateIn(ctx context.Context, principal model.User, workshopID string) bool {
	if principal.Privileged() {
		return true
	}

	grants, err := r.grants.EffectiveGrants(ctx, principal.ID)
	if err != nil {
		logger.Error("Grant retrieval failed during create authorization, failing closed",
			zap.Error(err),
			zap.String("principalID", principal.ID))
		return false
	}

	now := time.Now()
	byScope := make(map[model.ScopeLevel]map[string]model.AccessGrant)
	for _, grant := range grants {
		if !grant.Effective(now) {
			continue
		}
		if byScope[grant.ScopeLevel] == nil {
			byScope[grant.ScopeLevel] = make(map[string]model.AccessGrant)
		}
		byScope[grant.ScopeLevel][grant.ScopeID] = grant
	}
	if len(byScope) == 0 {
		return false
	}

	var branchID, enterpriseID string
	err = r.hierarchy.View(ctx, func(v dao.HierarchyView) error {
		b, ent, err := v.WorkshopAncestors(workshopID)
		if err != nil {
			return err
		}
		branchID, enterpriseID = b, ent
		return nil
	})
	if err != nil {
		return false
	}

	if enterpriseID != "" {
		if _, ok := byScope[model.ScopeEnterprise][enterpriseID]; ok {
			return true
		}
	}
	if branchID != "" {
		if _, ok := byScope[model.ScopeBranch][branchID]; ok {
			return true
		}
	}
	if grant, ok := byScope[model.ScopeWorkshop][workshopID]; ok {
		return grant.AccessType == model.AccessCreateEquipment
	}
	return false
}

// InvalidatePrincipal drops cached decisions for one principal after a
// grant mutation.
func (r *Resolver) InvalidatePrincipal(principalID string) {
	r.cache.InvalidatePrefix(principalID + "|")
}

// Flush drops every cached decision.
func (r *Resolver) Flush() {
	r.cache.Flush()
}

func (r *Resolver) cacheKey(principalID, equipmentID string, permission model.Permission) string {
	return principalID + "|" + equipmentID + "|" + string(permission)
}
