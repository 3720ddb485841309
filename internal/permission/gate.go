// Package permission decides whether a signed-in staff member may see or use
// a guarded affordance. Decisions are pure and cheap enough to recompute on
// every render.
package permission

import (
	"sort"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
)

// Actor is the signed-in staff identity as far as gating is concerned.
type Actor struct {
	IsProtected bool
	permissions map[string]struct{}
}

func NewActor(isProtected bool, permissions ...string) *Actor {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}
	return &Actor{IsProtected: isProtected, permissions: set}
}

// ActorFromRoles flattens role grants into an Actor.
func ActorFromRoles(isProtected bool, roles []domain.Role) *Actor {
	return NewActor(isProtected, PermissionsFromRoles(roles)...)
}

func PermissionsFromRoles(roles []domain.Role) []string {
	set := map[string]struct{}{}
	for _, r := range roles {
		for _, p := range r.Permissions {
			set[p.Token()] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Permissions returns the granted permission strings in sorted order.
func (a *Actor) Permissions() []string {
	if a == nil {
		return nil
	}
	out := make([]string, 0, len(a.permissions))
	for k := range a.permissions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Authorize reports whether actor may use an affordance guarded by required.
//
// An empty required permission means the affordance is unrestricted and is
// always visible, even without an actor. Callers that need default-deny must
// pass an explicit permission string.
func Authorize(actor *Actor, required string) bool {
	if required == "" {
		return true
	}
	if actor == nil {
		return false
	}
	if actor.IsProtected {
		return true
	}
	_, ok := actor.permissions[required]
	return ok
}

// Token builds a resource:action permission string.
func Token(resource, action string) string {
	return strings.ToLower(strings.TrimSpace(resource)) + ":" + strings.ToLower(strings.TrimSpace(action))
}

// Gate adapts Authorize to a permission-list interface so HTTP middleware can
// use the same decision function as the console.
type Gate struct{}

func NewGate() *Gate { return &Gate{} }

func (g *Gate) Allow(isProtected bool, permissions []string, required string) bool {
	return Authorize(NewActor(isProtected, permissions...), required)
}
