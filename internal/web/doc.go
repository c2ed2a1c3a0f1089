// Package web serves the browser shell: a login form, a guarded
// dashboard and a forbidden page, all driven by one session controller.
//
// Routes:
//
//	GET  /login      login form, showing the last login error
//	POST /login      log in, then follow the controller's navigation
//	GET  /dashboard  guarded view of the current user
//	GET  /forbidden  shown when the user lacks a required role
//	POST /logout     log out, then follow the controller's navigation
//	GET  /health     liveness
//	GET  /metrics    Prometheus metrics
//
// Every other path redirects to the login form. The login and dashboard
// paths are configurable.
package web
