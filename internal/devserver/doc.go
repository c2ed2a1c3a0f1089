// Package devserver is a small authentication backend for local
// development and integration tests.
//
// It serves the three endpoints the session controller talks to:
//
//	POST /api/login         email + password -> {success, data: {user, token}}
//	GET  /api/verify-token  Authorization: Bearer <token> -> 200 or 401
//	POST /api/logout        revokes the bearer token
//
// Users come from configuration with argon2id password hashes. Tokens are
// HS256 JWTs; logout revokes a token by its jti until it would have expired.
package devserver
