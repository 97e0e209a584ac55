// Package identity verifies contributor handles against the configured hub.
//
// Verification fails closed: a network failure or a non-2xx response counts
// as "handle does not exist", so registration is rejected rather than
// silently accepted while the hub is unreachable.
package identity
