// Package token provides random secret generation and constant-time
// comparison. Secrets come from crypto/rand.
package token
