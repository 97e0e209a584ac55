package moderation

import (
	"errors"
	"fmt"
	"time"

	"recite/internal/metastore"
)

var (
	// ErrRecordingNotFound marks moderation of an unknown recording id.
	ErrRecordingNotFound = errors.New("recording not found")
	// ErrInvalidTransition marks a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InitialStatus returns the status a new submission starts in under the
// configured approval policy.
func InitialStatus(requireAdminApproval bool) metastore.Status {
	if requireAdminApproval {
		return metastore.StatusPending
	}
	return metastore.StatusApproved
}

// CanTransition reports whether a recording may move between the two states.
func CanTransition(from, to metastore.Status) bool {
	switch {
	case from == metastore.StatusPending && to == metastore.StatusApproved:
		return true
	case from == metastore.StatusPending && to == metastore.StatusRejected:
		return true
	case from == metastore.StatusApproved && to == metastore.StatusRejected:
		return true
	}
	return false
}

// Func is the shape shared by Approve and Reject so callers can treat the
// two moderation verbs uniformly.
type Func func(doc *metastore.Document, recordingID, moderator string, now time.Time) (*metastore.Recording, error)

// Approve marks the recording approved and stamps the moderator.
func Approve(doc *metastore.Document, recordingID, moderator string, now time.Time) (*metastore.Recording, error) {
	return transition(doc, recordingID, moderator, metastore.StatusApproved, now)
}

// Reject marks the recording rejected, stamps the moderator, and queues the
// verse for re-recording by the original contributor.
func Reject(doc *metastore.Document, recordingID, moderator string, now time.Time) (*metastore.Recording, error) {
	rec, err := transition(doc, recordingID, moderator, metastore.StatusRejected, now)
	if err != nil {
		return nil, err
	}
	doc.EnqueueRerecord(rec.Contributor, metastore.RerecordEntry{
		VerseID: rec.VerseID,
		Book:    rec.Book,
		Unit:    rec.Unit,
	})
	return rec, nil
}

func transition(doc *metastore.Document, recordingID, moderator string, to metastore.Status, now time.Time) (*metastore.Recording, error) {
	rec := doc.RecordingByID(recordingID)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordingNotFound, recordingID)
	}
	if !CanTransition(rec.Status, to) {
		return nil, fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, recordingID, rec.Status)
	}
	moderatedAt := now.UTC()
	rec.Status = to
	rec.ModeratedBy = moderator
	rec.ModeratedAt = &moderatedAt
	return rec, nil
}
