// Package tlsroots builds TLS configurations for the auth API client and
// the development server.
//
// Client configs trust the system roots plus an optional extra CA bundle,
// which is how a self-signed development server is reached over HTTPS.
package tlsroots
