// Package app assembles the HTTP surface of the service: principal
// resolution, the guarded CRM resource routes, the session and permission
// endpoints used by the browser mirror, grant management, the audit trail
// and the gated UI fragments.
package app
