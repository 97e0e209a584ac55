package stats

import (
	"sort"
	"time"

	"recite/internal/metastore"
)

// Tier is a contributor rank derived solely from approved-recording counts.
type Tier string

const (
	TierExpert       Tier = "expert"
	TierAdvanced     Tier = "advanced"
	TierIntermediate Tier = "intermediate"
	TierBeginner     Tier = "beginner"
)

const (
	tierExpertMin       = 50
	tierAdvancedMin     = 20
	tierIntermediateMin = 5
)

// TierFor maps an approved-recording count to its tier.
func TierFor(approved int) Tier {
	switch {
	case approved >= tierExpertMin:
		return TierExpert
	case approved >= tierAdvancedMin:
		return TierAdvanced
	case approved >= tierIntermediateMin:
		return TierIntermediate
	default:
		return TierBeginner
	}
}

// ContributorStats aggregates one contributor's activity.
type ContributorStats struct {
	Handle           string                    `json:"handle"`
	Gender           metastore.Gender          `json:"gender"`
	Tier             Tier                      `json:"tier"`
	Total            int                       `json:"total"`
	Pending          int                       `json:"pending"`
	Approved         int                       `json:"approved"`
	Rejected         int                       `json:"rejected"`
	Rerecord         []metastore.RerecordEntry `json:"rerecord,omitempty"`
	LastContribution time.Time                 `json:"last_contribution,omitzero"`
}

// GlobalStats aggregates the whole store for the administrator view.
type GlobalStats struct {
	TotalRecordings   int                      `json:"total_recordings"`
	TotalContributors int                      `json:"total_contributors"`
	Pending           int                      `json:"pending"`
	Approved          int                      `json:"approved"`
	Rejected          int                      `json:"rejected"`
	PerVerse          map[string]int           `json:"per_verse"`
	PerContributor    map[string]int           `json:"per_contributor"`
	PerGender         map[metastore.Gender]int `json:"per_gender"`
}

// ForContributor computes one contributor's stats. The boolean is false when
// the handle is not registered.
func ForContributor(doc *metastore.Document, handle string) (ContributorStats, bool) {
	contributor, ok := doc.Contributor(handle)
	if !ok {
		return ContributorStats{}, false
	}

	out := ContributorStats{
		Handle:   handle,
		Gender:   contributor.Gender,
		Rerecord: doc.RerecordQueue(handle),
	}
	for _, rec := range doc.RecordingsFor(handle) {
		out.Total++
		switch rec.Status {
		case metastore.StatusPending:
			out.Pending++
		case metastore.StatusApproved:
			out.Approved++
		case metastore.StatusRejected:
			out.Rejected++
		}
		if rec.CreatedAt.After(out.LastContribution) {
			out.LastContribution = rec.CreatedAt
		}
	}
	out.Tier = TierFor(out.Approved)
	return out, true
}

// Global computes the administrator aggregates.
func Global(doc *metastore.Document) GlobalStats {
	out := GlobalStats{
		TotalRecordings:   len(doc.Recordings),
		TotalContributors: len(doc.Contributors),
		PerVerse:          make(map[string]int),
		PerContributor:    make(map[string]int),
		PerGender:         make(map[metastore.Gender]int),
	}
	for _, rec := range doc.Recordings {
		out.PerVerse[rec.VerseID]++
		out.PerContributor[rec.Contributor]++
		out.PerGender[rec.Gender]++
		switch rec.Status {
		case metastore.StatusPending:
			out.Pending++
		case metastore.StatusApproved:
			out.Approved++
		case metastore.StatusRejected:
			out.Rejected++
		}
	}
	return out
}

// Leaderboard returns stats for every contributor with at least one
// recording, ordered by approved count descending. Ties keep the stable
// lexical handle order, so repeated renders agree.
func Leaderboard(doc *metastore.Document) []ContributorStats {
	var board []ContributorStats
	for _, handle := range doc.Handles() {
		cs, ok := ForContributor(doc, handle)
		if !ok || cs.Total == 0 {
			continue
		}
		board = append(board, cs)
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Approved > board[j].Approved
	})
	return board
}
