package metastore

import (
	"sort"
	"strings"
	"time"
)

// Status represents the moderation state of a recording.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether the status is one of the known moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Gender is the contributor gender tag carried into the published corpus.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender normalizes a user-supplied gender tag.
func ParseGender(value string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return GenderMale, true
	case "female", "f":
		return GenderFemale, true
	}
	return "", false
}

// Contributor is a registered participant. Contributors are created on first
// registration and never deleted.
type Contributor struct {
	Handle       string    `json:"handle"`
	DisplayName  string    `json:"display_name"`
	Gender       Gender    `json:"gender"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Recording is one contributor's audio submission for one verse. Status
// transitions are the only mutation after creation; recordings are never
// physically deleted (rejected ones are retained for audit).
type Recording struct {
	ID          string     `json:"id"`
	Contributor string     `json:"contributor"`
	VerseID     string     `json:"verse_id"`
	Book        int        `json:"book"`
	Unit        int        `json:"unit"`
	AudioPath   string     `json:"audio_path"`
	Checksum    string     `json:"checksum,omitempty"`
	Gender      Gender     `json:"gender"`
	CreatedAt   time.Time  `json:"created_at"`
	Status      Status     `json:"status"`
	ModeratedBy string     `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
}

// RerecordEntry marks a verse whose prior recording was rejected and must be
// redone by the same contributor. Entries are consumed on re-submission.
type RerecordEntry struct {
	VerseID string `json:"verse_id"`
	Book    int    `json:"book"`
	Unit    int    `json:"unit"`
}

// Document is the full metadata store content.
type Document struct {
	Contributors map[string]Contributor     `json:"contributors"`
	Recordings   []Recording                `json:"recordings"`
	Rerecord     map[string][]RerecordEntry `json:"rerecord,omitempty"`
}

// NewDocument returns an empty, initialized document.
func NewDocument() *Document {
	return &Document{
		Contributors: make(map[string]Contributor),
		Recordings:   nil,
		Rerecord:     make(map[string][]RerecordEntry),
	}
}

func (d *Document) init() {
	if d.Contributors == nil {
		d.Contributors = make(map[string]Contributor)
	}
	if d.Rerecord == nil {
		d.Rerecord = make(map[string][]RerecordEntry)
	}
}

// Contributor returns the contributor registered under handle.
func (d *Document) Contributor(handle string) (Contributor, bool) {
	c, ok := d.Contributors[handle]
	return c, ok
}

// RecordingByID returns a pointer into the document's recording slice so
// moderation can mutate status in place.
func (d *Document) RecordingByID(id string) *Recording {
	for i := range d.Recordings {
		if d.Recordings[i].ID == id {
			return &d.Recordings[i]
		}
	}
	return nil
}

// RecordingsFor returns all recordings submitted by handle, in insertion order.
func (d *Document) RecordingsFor(handle string) []Recording {
	var out []Recording
	for _, r := range d.Recordings {
		if r.Contributor == handle {
			out = append(out, r)
		}
	}
	return out
}

// HasNonRejected reports whether handle holds any non-rejected recording for
// verseID. Once true, the verse is excluded from future assignment to them.
func (d *Document) HasNonRejected(handle, verseID string) bool {
	for _, r := range d.Recordings {
		if r.Contributor == handle && r.VerseID == verseID && r.Status != StatusRejected {
			return true
		}
	}
	return false
}

// ApprovedCount returns the number of approved recordings for verseID.
func (d *Document) ApprovedCount(verseID string) int {
	count := 0
	for _, r := range d.Recordings {
		if r.VerseID == verseID && r.Status == StatusApproved {
			count++
		}
	}
	return count
}

// ApprovedCounts returns approved-recording counts for every verse that has any.
func (d *Document) ApprovedCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Recordings {
		if r.Status == StatusApproved {
			counts[r.VerseID]++
		}
	}
	return counts
}

// RerecordQueue returns handle's outstanding re-record entries in insertion order.
func (d *Document) RerecordQueue(handle string) []RerecordEntry {
	return d.Rerecord[handle]
}

// EnqueueRerecord appends a re-record entry for handle.
func (d *Document) EnqueueRerecord(handle string, entry RerecordEntry) {
	d.init()
	d.Rerecord[handle] = append(d.Rerecord[handle], entry)
}

// ConsumeRerecord removes exactly the first (handle, verseID) entry and
// reports whether one existed.
func (d *Document) ConsumeRerecord(handle, verseID string) bool {
	queue := d.Rerecord[handle]
	for i, entry := range queue {
		if entry.VerseID == verseID {
			d.Rerecord[handle] = append(queue[:i:i], queue[i+1:]...)
			if len(d.Rerecord[handle]) == 0 {
				delete(d.Rerecord, handle)
			}
			return true
		}
	}
	return false
}

// Handles returns all contributor handles in stable lexical order.
func (d *Document) Handles() []string {
	handles := make([]string, 0, len(d.Contributors))
	for handle := range d.Contributors {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}
