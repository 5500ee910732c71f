// Package services defines the shared error taxonomy and context plumbing
// used by scribe's pipeline components and the external service clients.
package services
