// Package session holds the authentication state of one user agent.
//
// The Controller is the single source of truth for "who is logged in". It
// restores a persisted session at startup (verifying it remotely once),
// performs login and logout, and answers synchronous queries for the
// presentation layer. The Guard turns that state into a routing decision
// for protected views.
//
// Lifecycle:
//
//	Uninitialized -> Loading -> Authenticated | Unauthenticated
//	Login:  * -> Loading -> Authenticated | Error
//	Logout: * -> Loading -> Unauthenticated
//
// Remote failures never escape Initialize or Logout. Login records the
// failure as the Error state and returns it to the caller.
package session
