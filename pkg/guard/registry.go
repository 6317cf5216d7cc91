package guard

import (
	"slices"
	"sync"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Requirement is the permission list attached to one operation.
type Requirement struct {
	Permissions []string
	Mode        rbac.Mode
}

// Empty reports whether the requirement lets every request through.
func (r Requirement) Empty() bool {
	return len(r.Permissions) == 0
}

// Any builds an any-of requirement.
func Any(perms ...string) Requirement {
	return Requirement{Permissions: slices.Clone(perms), Mode: rbac.ModeAny}
}

// All builds an all-of requirement.
func All(perms ...string) Requirement {
	return Requirement{Permissions: slices.Clone(perms), Mode: rbac.ModeAll}
}

type operationKey struct {
	class  string
	method string
}

// Registry holds the declared requirements of every operation.
// It is safe for concurrent use; declarations normally happen at startup.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]Requirement
	methods map[operationKey]Requirement
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]Requirement),
		methods: make(map[operationKey]Requirement),
	}
}

// Class declares the any-of requirement shared by every method of class.
func (r *Registry) Class(class string, perms ...string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[class] = Any(perms...)
	return r
}

// Operation declares an any-of requirement for one method of class.
func (r *Registry) Operation(class, method string, perms ...string) *Registry {
	return r.declare(class, method, Any(perms...))
}

// OperationAll declares an all-of requirement for one method of class.
func (r *Registry) OperationAll(class, method string, perms ...string) *Registry {
	return r.declare(class, method, All(perms...))
}

func (r *Registry) declare(class, method string, req Requirement) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[operationKey{class: class, method: method}] = req
	return r
}

// Requirement resolves the requirement of class.method.
// A non-empty method-level declaration wins over the class-level one.
func (r *Registry) Requirement(class, method string) Requirement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.requirementLocked(operationKey{class: class, method: method})
}

// Operations lists every declared class.method pair with its resolved requirement.
func (r *Registry) Operations() map[string]Requirement {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Requirement, len(r.methods))
	for key := range r.methods {
		out[OperationName(key.class, key.method)] = r.requirementLocked(key)
	}
	return out
}

func (r *Registry) requirementLocked(key operationKey) Requirement {
	if req := r.methods[key]; !req.Empty() {
		return req
	}
	return r.classes[key.class]
}

// OperationName formats an operation identifier for logs and audit events.
func OperationName(class, method string) string {
	if method == "" {
		return class
	}
	return class + "." + method
}
