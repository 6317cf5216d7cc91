package rbac

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

// MaxInheritanceDepth is the maximum allowed depth of role inheritance.
const MaxInheritanceDepth = 10

// Definition describes the permissions of one role before inheritance is resolved.
type Definition struct {
	// Permissions directly granted to this role.
	Permissions []string `yaml:"permissions" json:"permissions" validate:"dive,permission"`

	// Inherits lists roles whose permissions are included in this role.
	Inherits []Role `yaml:"inherits" json:"inherits,omitempty" validate:"dive,role"`
}

// Catalog is the immutable role → permission mapping.
// Every known role has an entry, possibly empty. A Catalog is safe for
// concurrent use without synchronization.
type Catalog struct {
	permissions map[Role][]string
	digest      string
}

// NewCatalog loads definitions from source and resolves inheritance.
func NewCatalog(ctx context.Context, source RoleSource) (*Catalog, error) {
	defs, err := source.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return newCatalog(defs)
}

func newCatalog(defs map[Role]Definition) (*Catalog, error) {
	for role, def := range defs {
		if !role.Valid() {
			return nil, errors.Join(ErrInvalidCatalog, ErrInvalidRole, fmt.Errorf("unknown role %q", role))
		}
		for _, p := range def.Permissions {
			if !permission.Valid(p) {
				return nil, errors.Join(ErrInvalidCatalog, permission.ErrInvalidPermission,
					fmt.Errorf("role %s: %q", role, p))
			}
		}
		for _, parent := range def.Inherits {
			if _, ok := defs[parent]; !ok {
				return nil, errors.Join(ErrInvalidCatalog, ErrInvalidRole,
					fmt.Errorf("role %s inherits undefined role %q", role, parent))
			}
		}
	}

	if err := validateInheritance(defs); err != nil {
		return nil, err
	}

	resolved := make(map[Role][]string, len(Roles()))
	for _, role := range Roles() {
		resolved[role] = permission.Normalize(collectPermissions(role, defs, make(map[Role]bool), 0))
	}

	return &Catalog{
		permissions: resolved,
		digest:      digestOf(resolved),
	}, nil
}

// PermissionsFor returns the resolved permission set of role.
// Unknown roles yield an empty set. The returned slice is a copy.
func (c *Catalog) PermissionsFor(role Role) []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.permissions[role])
}

// permissionsFor returns the shared slice without copying; callers must not modify it.
func (c *Catalog) permissionsFor(role Role) []string {
	if c == nil {
		return nil
	}
	return c.permissions[role]
}

// Roles returns the roles present in the catalog, most privileged first.
func (c *Catalog) Roles() []Role {
	return Roles()
}

// Snapshot returns a copy of the whole resolved catalog.
func (c *Catalog) Snapshot() map[Role][]string {
	if c == nil {
		return map[Role][]string{}
	}
	out := make(map[Role][]string, len(c.permissions))
	for role, perms := range c.permissions {
		out[role] = slices.Clone(perms)
	}
	return out
}

// Digest returns a stable hex digest of the resolved catalog.
// Two catalogs with equal content have equal digests.
func (c *Catalog) Digest() string {
	if c == nil {
		return ""
	}
	return c.digest
}

func digestOf(resolved map[Role][]string) string {
	roles := make([]string, 0, len(resolved))
	for role := range resolved {
		roles = append(roles, string(role))
	}
	slices.Sort(roles)

	h := blake3.New()
	for _, role := range roles {
		_, _ = h.Write([]byte(role + "=" + strings.Join(resolved[Role(role)], ",") + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// collectPermissions gathers direct and inherited permissions of role.
func collectPermissions(role Role, defs map[Role]Definition, visited map[Role]bool, depth int) []string {
	if depth > MaxInheritanceDepth || visited[role] {
		return nil
	}
	visited[role] = true

	def, ok := defs[role]
	if !ok {
		return nil
	}

	result := slices.Clone(def.Permissions)
	for _, parent := range def.Inherits {
		result = append(result, collectPermissions(parent, defs, visited, depth+1)...)
	}
	return result
}

// validateInheritance rejects cycles and chains deeper than MaxInheritanceDepth.
func validateInheritance(defs map[Role]Definition) error {
	for role := range defs {
		if err := checkCycle(role, defs, []Role{role}); err != nil {
			return err
		}
	}

	depths := make(map[Role]int, len(defs))
	for role := range defs {
		if d := inheritanceDepth(role, defs, depths); d > MaxInheritanceDepth {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("inheritance depth exceeds maximum allowed depth of %d", MaxInheritanceDepth))
		}
	}
	return nil
}

func checkCycle(role Role, defs map[Role]Definition, path []Role) error {
	for _, parent := range defs[role].Inherits {
		if slices.Contains(path, parent) {
			return errors.Join(ErrCircularInheritance,
				fmt.Errorf("circular inheritance detected: %s -> %s", role, parent))
		}
		if err := checkCycle(parent, defs, append(slices.Clone(path), parent)); err != nil {
			return err
		}
	}
	return nil
}

// inheritanceDepth must only be called after checkCycle succeeded for every role.
func inheritanceDepth(role Role, defs map[Role]Definition, memo map[Role]int) int {
	if d, ok := memo[role]; ok {
		return d
	}
	depth := 0
	for _, parent := range defs[role].Inherits {
		depth = max(depth, inheritanceDepth(parent, defs, memo)+1)
	}
	memo[role] = depth
	return depth
}
