// Package history persists a record of completed and failed runs in a local
// SQLite database so past transcriptions and their costs can be reviewed.
// History is optional; the pipeline runs identically with it disabled.
package history
