// Package preflight verifies the environment before a run touches the
// network: external binaries, directory permissions, and the API credential.
package preflight
