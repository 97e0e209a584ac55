package assignment

import (
	"recite/internal/catalog"
	"recite/internal/metastore"
)

// NextVerseFor picks the next verse for handle. It is a pure read over the
// document and catalog; the boolean is false when nothing is assignable,
// which is a normal outcome rather than an error.
//
// Re-record entries bypass the cap and ownership filters: a rejected verse is
// always offered back to its original contributor first.
func NextVerseFor(handle string, doc *metastore.Document, cat *catalog.Catalog, maxPerVerse int) (catalog.Verse, bool) {
	for _, entry := range doc.RerecordQueue(handle) {
		if verse, ok := cat.Lookup(entry.VerseID); ok {
			return verse, true
		}
	}

	counts := doc.ApprovedCounts()
	for _, verse := range cat.Verses() {
		if doc.HasNonRejected(handle, verse.ID) {
			continue
		}
		if maxPerVerse > 0 && counts[verse.ID] >= maxPerVerse {
			continue
		}
		return verse, true
	}
	return catalog.Verse{}, false
}
