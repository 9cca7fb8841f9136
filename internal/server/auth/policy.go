package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/common"
)

const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Request describes one access decision. OwnerID is set when the target
// resource belongs to a specific user.
type Request struct {
	Resource string
	Action   string
	OwnerID  string
}

func (r Request) permission() string {
	return r.Resource + ":" + r.Action
}

// Policy decides whether id may perform req. A nil id is an anonymous caller.
type Policy interface {
	Authorize(ctx context.Context, id *Identity, req Request) error
}

// Role grants permissions of the form "resource:action"; either side may be
// "*". Own permissions only apply when the caller owns the resource.
type Role struct {
	Permissions []string
	Own         []string
	Inherits    []string
}

type RBACConfig struct {
	Public      []string
	Roles       map[string]Role
	DefaultRole string
}

// RBACPolicy is a role based Policy. It holds no per-request state, so each
// call is evaluated from scratch.
type RBACPolicy struct {
	public      []string
	roles       map[string]Role
	defaultRole string
}

func NewRBACPolicy(cfg RBACConfig) *RBACPolicy {
	roles := make(map[string]Role, len(cfg.Roles))
	for name, r := range cfg.Roles {
		roles[name] = r
	}
	return &RBACPolicy{
		public:      append([]string(nil), cfg.Public...),
		roles:       roles,
		defaultRole: cfg.DefaultRole,
	}
}

// DefaultRBACConfig describes the task manager access rules.
func DefaultRBACConfig() RBACConfig {
	return RBACConfig{
		Public: []string{"auth:login", "auth:refresh", "users:create", "health:read"},
		Roles: map[string]Role{
			RoleUser: {
				Permissions: []string{
					"*:read",
					"tasks:*",
					"task_statuses:*",
					"labels:*",
					"auth:logout",
				},
				Own: []string{"users:update", "users:delete"},
			},
			RoleAdmin: {
				Permissions: []string{"*:*"},
				Inherits:    []string{RoleUser},
			},
		},
		DefaultRole: RoleUser,
	}
}

func (p *RBACPolicy) Authorize(_ context.Context, id *Identity, req Request) error {
	perm := req.permission()

	if matchAny(p.public, perm) {
		return nil
	}
	if id == nil {
		return common.ErrorUnauthorized
	}

	owner := req.OwnerID != "" && req.OwnerID == id.Subject
	for _, name := range p.effectiveRoles(id) {
		r := p.roles[name]
		if matchAny(r.Permissions, perm) {
			return nil
		}
		if owner && matchAny(r.Own, perm) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", common.ErrForbidden, perm)
}

func (p *RBACPolicy) effectiveRoles(id *Identity) []string {
	start := id.Roles
	if len(start) == 0 && p.defaultRole != "" {
		start = []string{p.defaultRole}
	}

	seen := make(map[string]bool)
	var out []string
	var walk func(string)
	walk = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		r, ok := p.roles[name]
		if !ok {
			return
		}
		out = append(out, name)
		for _, parent := range r.Inherits {
			walk(parent)
		}
	}
	for _, name := range start {
		walk(name)
	}
	return out
}

func matchAny(patterns []string, perm string) bool {
	for _, pat := range patterns {
		if matchPermission(pat, perm) {
			return true
		}
	}
	return false
}

func matchPermission(pattern, perm string) bool {
	if pattern == "*" || pattern == "*:*" || pattern == perm {
		return true
	}
	pr, pa, ok := strings.Cut(pattern, ":")
	if !ok {
		return false
	}
	r, a, ok := strings.Cut(perm, ":")
	if !ok {
		return false
	}
	return (pr == "*" || pr == r) && (pa == "*" || pa == a)
}
