package publish

import (
	"os"
	"time"

	"recite/internal/catalog"
	"recite/internal/metastore"
)

const textUnavailable = "translation unavailable"

// Row is one publishable corpus entry.
type Row struct {
	AudioRef    string           `json:"audio"`
	VerseID     string           `json:"verse_id"`
	Book        int              `json:"book"`
	Unit        int              `json:"unit"`
	Text        string           `json:"translation"`
	Contributor string           `json:"contributor"`
	Gender      metastore.Gender `json:"gender"`
	DisplayName string           `json:"display_name"`
	CreatedAt   time.Time        `json:"recording_date"`
	Status      metastore.Status `json:"status"`
}

// BuildCorpus collects every non-rejected recording whose audio file still
// exists, joined with catalog text. Rows keep the store's recording order.
func BuildCorpus(doc *metastore.Document, cat *catalog.Catalog) []Row {
	var rows []Row
	for _, rec := range doc.Recordings {
		if rec.Status == metastore.StatusRejected {
			continue
		}
		if _, err := os.Stat(rec.AudioPath); err != nil {
			continue
		}

		text := textUnavailable
		if verse, ok := cat.Lookup(rec.VerseID); ok {
			text = verse.Text
		}
		displayName := rec.Contributor
		if contributor, ok := doc.Contributor(rec.Contributor); ok && contributor.DisplayName != "" {
			displayName = contributor.DisplayName
		}

		rows = append(rows, Row{
			AudioRef:    rec.AudioPath,
			VerseID:     rec.VerseID,
			Book:        rec.Book,
			Unit:        rec.Unit,
			Text:        text,
			Contributor: rec.Contributor,
			Gender:      rec.Gender,
			DisplayName: displayName,
			CreatedAt:   rec.CreatedAt,
			Status:      rec.Status,
		})
	}
	return rows
}
