// Package domain defines the core domain models for authshell.
//
// Domain models are plain values without IO dependencies:
//
//   - Credential: the authenticated user's identity and role set
//   - LoginRequest: the submitted login form
//   - Errors: coded domain errors shared by the client, controller and store
package domain
