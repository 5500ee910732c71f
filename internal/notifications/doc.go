// Package notifications pushes run lifecycle events to an ntfy topic. With
// no topic configured the service is a noop, so callers never branch on
// whether notifications are enabled.
package notifications
