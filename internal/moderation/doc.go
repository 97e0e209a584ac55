// Package moderation owns recording status transitions.
//
// A recording starts pending or approved depending on the approval policy,
// may be approved from pending, and may be rejected from pending or approved
// (the latter is the administrator override for the auto-approve policy).
// Rejected is terminal; a rejected verse comes back as a brand-new recording
// through the re-record queue, never by reopening the old one.
package moderation
