// Package httpserver is the HTTP plumbing shared by the web shell and the
// development auth server: a shutdown-aware Server, a middleware chain and
// JSON response helpers.
package httpserver
