package app

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Operation classes and methods declared by the service.
const (
	ClassPermissions = "permissions"

	MethodCatalog = "catalog"
	MethodGrant   = "grant"
	MethodRevoke  = "revoke"
	MethodEvents  = "events"

	MethodList    = "list"
	MethodShow    = "show"
	MethodCreate  = "create"
	MethodUpdate  = "update"
	MethodDelete  = "delete"
	MethodAssign  = "assign"
	MethodApprove = "approve"
)

type route struct {
	method  string
	pattern string
	name    string
}

type resource struct {
	name   string
	extra  []route
	action map[string]string
}

var crudRoutes = []route{
	{http.MethodGet, "/", MethodList},
	{http.MethodPost, "/", MethodCreate},
	{http.MethodGet, "/{id}", MethodShow},
	{http.MethodPut, "/{id}", MethodUpdate},
	{http.MethodDelete, "/{id}", MethodDelete},
}

// resources are the guarded CRM resources mounted under /api.
var resources = []resource{
	{
		name:   rbac.ResourceLeads,
		extra:  []route{{http.MethodPost, "/{id}/assign", MethodAssign}},
		action: map[string]string{MethodAssign: permission.ActionAssign},
	},
	{name: rbac.ResourceProperties},
	{
		name:   rbac.ResourceDeals,
		extra:  []route{{http.MethodPost, "/{id}/approve", MethodApprove}},
		action: map[string]string{MethodApprove: permission.ActionApprove},
	},
	{name: rbac.ResourceNotifications},
	{name: rbac.ResourceActivities},
	{name: rbac.ResourceDevelopers},
	{name: rbac.ResourceProjects},
	{name: rbac.ResourceCampaigns},
	{name: rbac.ResourceTasks},
}

// Registry returns the operation declarations of the service.
//
// Every resource requires "<resource>.read" at class level, which covers
// list and show. Writes and business actions are declared per method.
func Registry() *guard.Registry {
	reg := guard.NewRegistry().
		Operation(ClassPermissions, MethodCatalog, permission.New(rbac.ResourceUsers, permission.ActionRead)).
		Operation(rbac.ResourceUsers, MethodGrant, permission.New(rbac.ResourceUsers, permission.ActionUpdate)).
		Operation(rbac.ResourceUsers, MethodRevoke, permission.New(rbac.ResourceUsers, permission.ActionUpdate)).
		Operation(rbac.ResourceAudit, MethodEvents, rbac.PermAuditRead)

	for _, res := range resources {
		crud := permission.CRUD(res.name)
		reg.Class(res.name, crud[1]).
			Operation(res.name, MethodCreate, crud[0]).
			Operation(res.name, MethodUpdate, crud[2]).
			Operation(res.name, MethodDelete, crud[3])
		for method, action := range res.action {
			reg.Operation(res.name, method, permission.New(res.name, action))
		}
	}
	return reg
}

// router mounts the resource routes behind their declared requirements.
func (res resource) router(g *guard.Guard, handlers map[string]http.Handler, wrap func(handler.HandlerFunc) http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	for _, rt := range slices.Concat(crudRoutes, res.extra) {
		h, ok := handlers[guard.OperationName(res.name, rt.name)]
		if !ok {
			h = wrap(notImplemented)
		}
		r.With(g.Require(res.name, rt.name)).Method(rt.method, rt.pattern, h)
	}
	return r
}

func notImplemented(*http.Request) handler.Response {
	return handler.JSONError(handler.ErrNotImplemented)
}
