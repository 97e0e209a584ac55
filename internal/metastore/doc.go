// Package metastore persists the shared metadata document: contributors,
// recordings with their moderation statuses, and the per-contributor
// re-record queues.
//
// The document is the single source of truth for everything except verse
// text. Every mutation follows the same discipline: read the full current
// document, apply one change, write a timestamped backup of the previous
// content, then atomically replace the document. Mutations are serialized by
// an in-process mutex plus a flock file lock, so concurrent writers (other
// goroutines or other processes) cannot interleave the read-modify-write
// cycle and silently drop each other's changes.
//
// Backups accumulate under the backup directory; retention keeps a window of
// recent raw copies, xz-compresses older ones, and prunes the rest.
package metastore
