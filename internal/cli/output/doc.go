// Package output renders command results as a table, JSON or YAML, and
// draws the spinner shown while a login is in flight.
package output
