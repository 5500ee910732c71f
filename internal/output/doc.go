// Package output persists a run's three text artifacts next to each other
// in the configured output directory.
package output
