// Package publish exports the approved corpus to the hosted dataset.
//
// The corpus is every non-rejected recording joined with its verse text plus
// contributor attribution. Publication is best-effort by design: the gateway
// reports success or failure to its caller, and a failure never unwinds the
// local state change (approval, rejection, submission) that triggered it.
// Every attempt, successful or not, lands in the SQLite sync ledger.
package publish
