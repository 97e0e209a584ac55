// Package assignment decides which verse a contributor records next.
//
// The policy is deliberately simple so behavior is reproducible and
// auditable: outstanding re-record entries come first in insertion order,
// then the catalog is scanned in (book, unit) order, skipping verses the
// contributor already holds a non-rejected recording for and verses whose
// approved-recording count has reached the configured cap. No randomization,
// no load balancing.
package assignment
