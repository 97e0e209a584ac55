// Package catalog loads and serves the verse catalog.
//
// The catalog is read once from a CSV source with columns (sequence, book,
// unit, translation, footnote); the header row is skipped, identifiers are
// normalized to integer strings, and rows are ordered by (book, unit). That
// order defines assignment priority. The catalog is immutable after load and
// safe for unsynchronized concurrent reads.
//
// A malformed or missing source fails the load; callers must refuse to
// operate without a catalog rather than fall back to an empty one.
package catalog
