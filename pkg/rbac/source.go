package rbac

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

// RoleSource provides role definitions for a Catalog.
type RoleSource interface {
	// Load returns the definition of every role the source knows about.
	Load(ctx context.Context) (map[Role]Definition, error)
}

// inMemRoleSource serves definitions held in memory.
type inMemRoleSource struct {
	defs map[Role]Definition
}

// NewInMemRoleSource creates a RoleSource from a map of definitions.
// The input is deep-copied so later modifications do not leak into catalogs.
func NewInMemRoleSource(defs map[Role]Definition) RoleSource {
	return &inMemRoleSource{defs: cloneDefinitions(defs)}
}

// Load returns a copy of the stored definitions.
func (s *inMemRoleSource) Load(context.Context) (map[Role]Definition, error) {
	return cloneDefinitions(s.defs), nil
}

func cloneDefinitions(defs map[Role]Definition) map[Role]Definition {
	out := make(map[Role]Definition, len(defs))
	for role, def := range defs {
		out[role] = Definition{
			Permissions: slices.Clone(def.Permissions),
			Inherits:    slices.Clone(def.Inherits),
		}
	}
	return out
}

// catalogFile is the YAML document accepted by FileSource.
//
//	roles:
//	  sales_agent:
//	    permissions: [leads.read, leads.create]
//	  sales_manager:
//	    inherits: [sales_agent]
//	    permissions: [leads.*]
type catalogFile struct {
	Roles map[Role]Definition `yaml:"roles" validate:"required,dive,keys,role,endkeys"`
}

// FileSource loads role definitions from a YAML file.
type FileSource struct {
	path     string
	validate *validator.Validate
}

// NewFileSource creates a FileSource reading path on every Load.
func NewFileSource(path string) *FileSource {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return permission.Valid(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return Role(fl.Field().String()).Valid()
	})
	return &FileSource{path: path, validate: v}
}

// Load reads, decodes and validates the catalog file.
func (s *FileSource) Load(ctx context.Context) (map[Role]Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return s.decode(data)
}

func (s *FileSource) decode(data []byte) (map[Role]Definition, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	if err := s.validate.Struct(file); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	return file.Roles, nil
}

// DefaultSource serves DefaultDefinitions.
func DefaultSource() RoleSource {
	return NewInMemRoleSource(DefaultDefinitions())
}
