package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/audit"
	"github.com/dmitrymomot/estatecrm/pkg/grants"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
	"github.com/dmitrymomot/estatecrm/pkg/mirror"
	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Audit listing bounds.
const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

type handlers struct {
	authz  *rbac.Authorizer
	grants grants.Store
	audit  audit.Reader
	log    *slog.Logger
}

// session serves the identity and effective permissions of the caller.
// Anonymous callers get 200 with authenticated set to false.
func (h *handlers) session(r *http.Request) handler.Response {
	p, _ := rbac.GetPrincipalFromContext(r.Context())
	return handler.JSON(mirror.NewSession(h.authz, p))
}

type catalogResponse struct {
	Roles  map[rbac.Role][]string `json:"roles"`
	Digest string                 `json:"digest"`
}

func (h *handlers) catalog(*http.Request) handler.Response {
	c := h.authz.Catalog()
	return handler.JSON(catalogResponse{
		Roles:  c.Snapshot(),
		Digest: c.Digest(),
	})
}

type checkRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=any all"`
}

type checkResponse struct {
	rbac.Decision
	Mode string `json:"mode"`
}

// check evaluates an ad-hoc requirement for the caller.
func (h *handlers) check(r *http.Request) handler.Response {
	p, ok := rbac.GetPrincipalFromContext(r.Context())
	if !ok || !p.Authenticated() {
		return handler.JSONError(rbac.ErrAuthenticationMissing)
	}

	var req checkRequest
	if err := handler.BindJSON(r, &req); err != nil {
		return handler.JSONError(err)
	}

	mode := rbac.ModeAny
	if req.Mode == rbac.ModeAll.String() {
		mode = rbac.ModeAll
	}
	d := h.authz.Decide(p, mode, req.Permissions)
	return handler.JSON(checkResponse{Decision: d, Mode: mode.String()})
}

type grantRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
}

type grantResponse struct {
	UserID      string   `json:"user_id"`
	CompanyID   string   `json:"company_id,omitempty"`
	Permissions []string `json:"permissions"`
}

func (h *handlers) grant(r *http.Request) handler.Response {
	return h.writeGrants(r, grants.Writer.Grant)
}

func (h *handlers) revoke(r *http.Request) handler.Response {
	return h.writeGrants(r, grants.Writer.Revoke)
}

// writeGrants applies a grant change within the caller's company. Only a
// super admin may address another company through ?company_id=. Callers can
// only grant or revoke permissions they hold themselves.
func (h *handlers) writeGrants(r *http.Request, apply func(grants.Writer, context.Context, string, string, ...string) error) handler.Response {
	w, ok := h.grants.(grants.Writer)
	if !ok {
		return handler.JSONError(handler.ErrNotImplemented)
	}

	var req grantRequest
	if err := handler.BindJSON(r, &req); err != nil {
		return handler.JSONError(err)
	}

	ctx := r.Context()
	userID := chi.URLParam(r, "userID")
	companyID := companyScope(r)

	for _, perm := range req.Permissions {
		if !permission.Valid(perm) {
			return validationError("permissions", permission.ErrInvalidPermission.Error())
		}
	}
	caller, _ := rbac.GetPrincipalFromContext(ctx)
	if err := h.authz.CheckDelegation(caller, req.Permissions); err != nil {
		h.log.WarnContext(ctx, "grant exceeds caller permissions",
			logger.UserID(userID),
			logger.CompanyID(companyID),
			logger.Permissions(req.Permissions),
			logger.Error(err),
		)
		return handler.JSONError(err)
	}

	if err := apply(w, ctx, companyID, userID, req.Permissions...); err != nil {
		switch {
		case errors.Is(err, permission.ErrInvalidPermission), errors.Is(err, grants.ErrMissingUser):
			return validationError("permissions", err.Error())
		case errors.Is(err, grants.ErrReadOnly):
			return handler.JSONError(handler.ErrNotImplemented)
		}
		h.log.ErrorContext(ctx, "update grants",
			logger.UserID(userID),
			logger.CompanyID(companyID),
			logger.Permissions(req.Permissions),
			logger.Error(err),
		)
		return handler.JSONError(err)
	}

	perms, err := h.grants.Permissions(ctx, companyID, userID)
	if err != nil {
		h.log.ErrorContext(ctx, "read grants", logger.UserID(userID), logger.Error(err))
		return handler.JSONError(err)
	}
	return handler.JSON(grantResponse{UserID: userID, CompanyID: companyID, Permissions: perms})
}

// auditEvents lists recorded authorization failures, newest first.
func (h *handlers) auditEvents(r *http.Request) handler.Response {
	if h.audit == nil {
		return handler.JSONError(handler.ErrNotImplemented)
	}

	q := r.URL.Query()
	c := audit.Criteria{
		CompanyID:   companyScope(r),
		PrincipalID: q.Get("principal_id"),
		Kind:        audit.Kind(q.Get("kind")),
		Limit:       DefaultAuditLimit,
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return validationError("since", "rfc3339")
		}
		c.Since = since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > MaxAuditLimit {
			return validationError("limit", "range")
		}
		c.Limit = limit
	}

	events, err := h.audit.Find(r.Context(), c)
	if err != nil {
		h.log.ErrorContext(r.Context(), "find audit events", logger.Error(err))
		return handler.JSONError(err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return handler.JSON(events, handler.WithJSONMeta(map[string]any{"count": len(events)}))
}

// companyScope returns the company a request operates on: the caller's own,
// or ?company_id= when the caller is a super admin.
func companyScope(r *http.Request) string {
	p, _ := rbac.GetPrincipalFromContext(r.Context())
	if p.IsSuperAdmin() {
		if id := r.URL.Query().Get("company_id"); id != "" {
			return id
		}
	}
	return p.CompanyID
}

func validationError(field, tag string) handler.Response {
	return handler.JSONError(&handler.ErrorDetail{
		Code:    handler.CodeValidation,
		Message: "validation failed",
		Details: map[string][]string{field: {tag}},
	}, handler.WithJSONStatus(http.StatusUnprocessableEntity))
}
