package coordinator

import (
	"context"
	"errors"
	"fmt"
	"os"

	"recite/internal/audio"
	"recite/internal/metastore"
	"recite/internal/moderation"
	"recite/internal/publish"
	"recite/internal/stats"
)

func (c *Coordinator) requireAdmin(handle, operation string) error {
	if !c.cfg.IsAdmin(handle) {
		return Wrap(ErrPermission, operation, "administrator access required", nil)
	}
	return nil
}

// Approve marks a recording approved on behalf of the administrator and
// refreshes the publication when auto-sync is enabled.
func (c *Coordinator) Approve(ctx context.Context, recordingID, actor string) (metastore.Recording, error) {
	return c.moderate(ctx, recordingID, actor, "approve", moderation.Approve)
}

// Reject marks a recording rejected and queues the verse for re-recording by
// the same contributor.
func (c *Coordinator) Reject(ctx context.Context, recordingID, actor string) (metastore.Recording, error) {
	return c.moderate(ctx, recordingID, actor, "reject", moderation.Reject)
}

func (c *Coordinator) moderate(ctx context.Context, recordingID, actor, operation string, apply moderation.Func) (metastore.Recording, error) {
	if err := c.requireAdmin(actor, operation); err != nil {
		return metastore.Recording{}, err
	}

	var moderated metastore.Recording
	doc, err := c.store.Mutate(ctx, func(doc *metastore.Document) error {
		rec, err := apply(doc, recordingID, actor, c.now().UTC())
		if err != nil {
			switch {
			case errors.Is(err, moderation.ErrRecordingNotFound):
				return Wrap(ErrNotFound, operation, fmt.Sprintf("recording %q", recordingID), err)
			case errors.Is(err, moderation.ErrInvalidTransition):
				return Wrap(ErrValidation, operation, fmt.Sprintf("recording %q", recordingID), err)
			}
			return err
		}
		moderated = *rec
		return nil
	})
	if err != nil {
		return metastore.Recording{}, err
	}

	c.logger.Info("recording moderated",
		"recording", recordingID,
		"status", string(moderated.Status),
		"moderator", actor)
	if c.cfg.Settings.AutoSyncOnApproval {
		c.refreshPublication(ctx, doc, operation)
	}
	return moderated, nil
}

// SetMaxRecordingsPerVerse changes the per-verse cap and persists it to the
// configuration file when the coordinator was built from one.
func (c *Coordinator) SetMaxRecordingsPerVerse(actor string, n int) error {
	if err := c.requireAdmin(actor, "set max recordings"); err != nil {
		return err
	}
	if n < 1 {
		return Wrap(ErrValidation, "set max recordings", "cap must be at least 1", nil)
	}
	c.cfg.Settings.MaxRecordingsPerVerse = n
	if c.configPath != "" {
		if err := c.cfg.Save(c.configPath); err != nil {
			return err
		}
	}
	c.logger.Info("per-verse cap changed", "max_recordings_per_verse", n, "admin", actor)
	return nil
}

// GlobalStats returns the project-wide aggregates. Administrator only.
func (c *Coordinator) GlobalStats(ctx context.Context, actor string) (stats.GlobalStats, error) {
	if err := c.requireAdmin(actor, "global stats"); err != nil {
		return stats.GlobalStats{}, err
	}
	doc, err := c.store.Load(ctx)
	if err != nil {
		return stats.GlobalStats{}, err
	}
	return stats.Global(doc), nil
}

// Corpus returns the publishable corpus rows. Administrator only.
func (c *Coordinator) Corpus(ctx context.Context, actor string) ([]publish.Row, error) {
	if err := c.requireAdmin(actor, "corpus"); err != nil {
		return nil, err
	}
	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return publish.BuildCorpus(doc, c.catalog), nil
}

// SyncResult reports the outcome of an explicit publication sync.
type SyncResult struct {
	Rows    int
	Success bool
	Message string
}

// SyncPublication pushes the current corpus to the publication gateway and
// records the attempt in the ledger. Unlike the automatic refresh, a failed
// push surfaces as an error so the operator sees it.
func (c *Coordinator) SyncPublication(ctx context.Context, actor string) (SyncResult, error) {
	if err := c.requireAdmin(actor, "sync"); err != nil {
		return SyncResult{}, err
	}
	if !c.publisher.Enabled() {
		return SyncResult{}, Wrap(ErrValidation, "sync", "publication endpoint is not configured", nil)
	}

	doc, err := c.store.Load(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	rows := publish.BuildCorpus(doc, c.catalog)
	started := c.now().UTC()
	pubErr := c.publisher.Publish(ctx, rows)

	record := publish.SyncRecord{
		Cause:      "manual",
		StartedAt:  started,
		FinishedAt: c.now().UTC(),
		Rows:       len(rows),
		Success:    pubErr == nil,
	}
	if pubErr != nil {
		record.Message = pubErr.Error()
	}
	if err := c.ledger.Record(ctx, record); err != nil {
		c.logger.Warn("sync ledger write failed", "error", err)
	}

	result := SyncResult{Rows: len(rows), Success: pubErr == nil, Message: record.Message}
	if pubErr != nil {
		return result, Wrap(ErrExternalService, "sync", "publication push failed", pubErr)
	}
	c.logger.Info("publication synced", "cause", "manual", "rows", len(rows))
	return result, nil
}

// SyncHistory returns the most recent publication attempts. Administrator only.
func (c *Coordinator) SyncHistory(ctx context.Context, actor string, limit int) ([]publish.SyncRecord, error) {
	if err := c.requireAdmin(actor, "sync history"); err != nil {
		return nil, err
	}
	return c.ledger.Recent(ctx, limit)
}

// Issue describes one integrity problem found by VerifyIntegrity.
type Issue struct {
	RecordingID string `json:"recording_id"`
	Problem     string `json:"problem"`
}

// VerifyIntegrity cross-checks metadata against the audio directory: missing
// files, recordings by unregistered contributors, verses absent from the
// catalog, and checksum mismatches. Administrator only.
func (c *Coordinator) VerifyIntegrity(ctx context.Context, actor string) ([]Issue, error) {
	if err := c.requireAdmin(actor, "verify"); err != nil {
		return nil, err
	}
	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var issues []Issue
	for _, rec := range doc.Recordings {
		if _, ok := doc.Contributor(rec.Contributor); !ok {
			issues = append(issues, Issue{rec.ID, fmt.Sprintf("contributor %q is not registered", rec.Contributor)})
		}
		if _, ok := c.catalog.Lookup(rec.VerseID); !ok {
			issues = append(issues, Issue{rec.ID, fmt.Sprintf("verse %q is not in the catalog", rec.VerseID)})
		}
		if _, err := os.Stat(rec.AudioPath); err != nil {
			issues = append(issues, Issue{rec.ID, fmt.Sprintf("audio file missing: %s", rec.AudioPath)})
			continue
		}
		if rec.Checksum != "" {
			sum, err := audio.Checksum(rec.AudioPath)
			if err != nil {
				issues = append(issues, Issue{rec.ID, fmt.Sprintf("audio file unreadable: %v", err)})
			} else if sum != rec.Checksum {
				issues = append(issues, Issue{rec.ID, "audio file checksum mismatch"})
			}
		}
	}
	return issues, nil
}

// Backup snapshots the metadata document, configuration, and audio tree into
// a timestamped directory and returns its path. Administrator only.
func (c *Coordinator) Backup(actor string) (string, error) {
	if err := c.requireAdmin(actor, "backup"); err != nil {
		return "", err
	}
	dir, err := c.store.BackupAll(c.configPath, c.cfg.AudioDir())
	if err != nil {
		return "", err
	}
	c.logger.Info("full backup written", "dir", dir)
	return dir, nil
}
