// Package coordinator exposes the administrative surface of the recording
// effort: registration, verse assignment, submission intake, moderation,
// statistics, and publication. Every operation loads or mutates state through
// the metadata store so concurrent invocations stay serialized.
package coordinator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"recite/internal/assignment"
	"recite/internal/audio"
	"recite/internal/catalog"
	"recite/internal/config"
	"recite/internal/identity"
	"recite/internal/metastore"
	"recite/internal/moderation"
	"recite/internal/publish"
	"recite/internal/stats"
)

// Coordinator composes the engines behind the administrative surface.
type Coordinator struct {
	cfg        *config.Config
	configPath string
	store      *metastore.Store
	catalog    *catalog.Catalog
	verifier   identity.Verifier
	publisher  publish.Publisher
	ledger     *publish.Ledger
	logger     *slog.Logger
	now        func() time.Time
}

// Options overrides collaborator construction, primarily for tests.
type Options struct {
	Verifier  identity.Verifier
	Publisher publish.Publisher
	Ledger    *publish.Ledger
	Logger    *slog.Logger
	Now       func() time.Time
}

// New builds a coordinator from configuration. configPath may be empty, in
// which case policy changes apply in-memory only and are not persisted.
func New(cfg *config.Config, configPath string, opts Options) (*Coordinator, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Paths.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load verse catalog: %w", err)
	}

	store, err := metastore.Open(cfg)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:        cfg,
		configPath: configPath,
		store:      store,
		catalog:    cat,
		verifier:   opts.Verifier,
		publisher:  opts.Publisher,
		ledger:     opts.Ledger,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if c.verifier == nil {
		c.verifier = identity.NewVerifier(cfg)
	}
	if c.publisher == nil {
		c.publisher = publish.NewPublisher(cfg)
	}
	if c.ledger == nil {
		ledger, err := publish.OpenLedger(cfg.SyncLedgerPath())
		if err != nil {
			return nil, err
		}
		c.ledger = ledger
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Close releases the sync ledger connection.
func (c *Coordinator) Close() error {
	if c.ledger == nil {
		return nil
	}
	return c.ledger.Close()
}

// Store exposes the metadata store for maintenance commands.
func (c *Coordinator) Store() *metastore.Store {
	return c.store
}

// RegistrationResult reports the outcome of Register.
type RegistrationResult struct {
	Contributor       metastore.Contributor
	AlreadyRegistered bool
	NextVerse         *catalog.Verse
}

// Register verifies the handle against the identity host and creates the
// contributor. Registration is idempotent: a known handle is returned as-is
// without re-verification. The identity check fails closed.
func (c *Coordinator) Register(ctx context.Context, handle, displayName, gender string) (RegistrationResult, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return RegistrationResult{}, Wrap(ErrValidation, "register", "handle is required", nil)
	}

	var result RegistrationResult
	doc, err := c.store.Load(ctx)
	if err != nil {
		return RegistrationResult{}, err
	}
	if existing, ok := doc.Contributor(handle); ok {
		result.Contributor = existing
		result.AlreadyRegistered = true
		result.NextVerse = c.nextVersePtr(handle, doc)
		return result, nil
	}

	parsedGender, ok := metastore.ParseGender(gender)
	if !ok {
		return RegistrationResult{}, Wrap(ErrValidation, "register", "gender must be male or female", nil)
	}
	if !c.verifier.Exists(ctx, handle) {
		return RegistrationResult{}, Wrap(ErrValidation, "register", fmt.Sprintf("handle %q could not be verified", handle), nil)
	}

	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = handle
	}
	contributor := metastore.Contributor{
		Handle:       handle,
		DisplayName:  displayName,
		Gender:       parsedGender,
		RegisteredAt: c.now().UTC(),
	}

	doc, err = c.store.Mutate(ctx, func(doc *metastore.Document) error {
		if existing, ok := doc.Contributor(handle); ok {
			contributor = existing
			result.AlreadyRegistered = true
			return nil
		}
		doc.Contributors[handle] = contributor
		return nil
	})
	if err != nil {
		return RegistrationResult{}, err
	}

	result.Contributor = contributor
	result.NextVerse = c.nextVersePtr(handle, doc)
	c.logger.Info("contributor registered", "handle", handle, "gender", string(parsedGender))
	return result, nil
}

// NextVerse returns the verse the contributor should record next.
func (c *Coordinator) NextVerse(ctx context.Context, handle string) (catalog.Verse, error) {
	doc, err := c.loadRegistered(ctx, handle, "next verse")
	if err != nil {
		return catalog.Verse{}, err
	}
	verse, ok := assignment.NextVerseFor(handle, doc, c.catalog, c.cfg.Settings.MaxRecordingsPerVerse)
	if !ok {
		return catalog.Verse{}, Wrap(ErrNoVerseAvailable, "next verse", "all verses are recorded or capped", nil)
	}
	return verse, nil
}

// SubmitResult reports the outcome of Submit.
type SubmitResult struct {
	Recording   metastore.Recording
	Rerecording bool
	NextVerse   *catalog.Verse
}

// Submit validates and stores one audio submission for a verse. The audio
// file is copied into the corpus directory before the metadata mutation, so a
// failed mutation never leaves a dangling metadata row. A matching rerecord
// entry is consumed in the same mutation.
func (c *Coordinator) Submit(ctx context.Context, handle, verseID, audioPath string) (SubmitResult, error) {
	doc, err := c.loadRegistered(ctx, handle, "submit")
	if err != nil {
		return SubmitResult{}, err
	}

	verse, ok := c.catalog.Lookup(strings.TrimSpace(verseID))
	if !ok {
		return SubmitResult{}, Wrap(ErrNotFound, "submit", fmt.Sprintf("verse %q is not in the catalog", verseID), nil)
	}
	rerecording := hasRerecordEntry(doc, handle, verse.ID)
	if !rerecording && doc.HasNonRejected(handle, verse.ID) {
		return SubmitResult{}, Wrap(ErrValidation, "submit", fmt.Sprintf("verse %s already has an active recording by %s", verse.ID, handle), nil)
	}

	now := c.now().UTC()
	storedFile, fileInfo, err := audio.Intake(audioPath, c.cfg.AudioDir(), handle, verse.Book, verse.Unit, now)
	if err != nil {
		return SubmitResult{}, Wrap(ErrValidation, "submit", "audio file rejected", err)
	}

	contributor, _ := doc.Contributor(handle)
	recording := metastore.Recording{
		ID:          recordingID(now, handle),
		Contributor: handle,
		VerseID:     verse.ID,
		Book:        verse.Book,
		Unit:        verse.Unit,
		AudioPath:   storedFile,
		Checksum:    fileInfo.Checksum,
		Gender:      contributor.Gender,
		CreatedAt:   now,
		Status:      moderation.InitialStatus(c.cfg.Settings.RequireAdminApproval),
	}

	result := SubmitResult{Recording: recording}
	doc, err = c.store.Mutate(ctx, func(doc *metastore.Document) error {
		if _, ok := doc.Contributor(handle); !ok {
			return Wrap(ErrNotFound, "submit", fmt.Sprintf("contributor %q is not registered", handle), nil)
		}
		result.Rerecording = doc.ConsumeRerecord(handle, verse.ID)
		if !result.Rerecording && doc.HasNonRejected(handle, verse.ID) {
			return Wrap(ErrValidation, "submit", fmt.Sprintf("verse %s already has an active recording by %s", verse.ID, handle), nil)
		}
		doc.Recordings = append(doc.Recordings, recording)
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	c.logger.Info("recording submitted",
		"handle", handle,
		"verse", verse.ID,
		"recording", recording.ID,
		"status", string(recording.Status),
		"duration", fileInfo.Duration)

	if c.cfg.Settings.AutoSyncOnApproval {
		c.refreshPublication(ctx, doc, "submit")
	}
	result.NextVerse = c.nextVersePtr(handle, doc)
	return result, nil
}

// recordingID derives the stable recording identifier. The UUID fragment
// keeps IDs unique across same-second submissions by the same contributor.
func recordingID(now time.Time, handle string) string {
	return fmt.Sprintf("rec_%s_%s_%s", now.UTC().Format("20060102150405"), handle, uuid.NewString()[:8])
}

func hasRerecordEntry(doc *metastore.Document, handle, verseID string) bool {
	for _, entry := range doc.RerecordQueue(handle) {
		if entry.VerseID == verseID {
			return true
		}
	}
	return false
}

// loadRegistered loads the document and verifies the handle is registered.
func (c *Coordinator) loadRegistered(ctx context.Context, handle, operation string) (*metastore.Document, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, Wrap(ErrValidation, operation, "handle is required", nil)
	}
	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := doc.Contributor(handle); !ok {
		return nil, Wrap(ErrNotFound, operation, fmt.Sprintf("contributor %q is not registered", handle), nil)
	}
	return doc, nil
}

func (c *Coordinator) nextVersePtr(handle string, doc *metastore.Document) *catalog.Verse {
	verse, ok := assignment.NextVerseFor(handle, doc, c.catalog, c.cfg.Settings.MaxRecordingsPerVerse)
	if !ok {
		return nil
	}
	return &verse
}

// refreshPublication pushes the current corpus to the publication gateway.
// Failures are logged and recorded in the ledger; they never propagate to the
// triggering operation.
func (c *Coordinator) refreshPublication(ctx context.Context, doc *metastore.Document, cause string) {
	if !c.publisher.Enabled() {
		return
	}
	rows := publish.BuildCorpus(doc, c.catalog)
	started := c.now().UTC()
	err := c.publisher.Publish(ctx, rows)
	record := publish.SyncRecord{
		Cause:      cause,
		StartedAt:  started,
		FinishedAt: c.now().UTC(),
		Rows:       len(rows),
		Success:    err == nil,
	}
	if err != nil {
		record.Message = err.Error()
		c.logger.Warn("publication sync failed", "cause", cause, "error", err)
	} else {
		c.logger.Info("publication synced", "cause", cause, "rows", len(rows))
	}
	if ledgerErr := c.ledger.Record(ctx, record); ledgerErr != nil {
		c.logger.Warn("sync ledger write failed", "error", ledgerErr)
	}
}

// ContributorStats returns one contributor's aggregates. Contributors may
// look up any handle; the data carries no secrets.
func (c *Coordinator) ContributorStats(ctx context.Context, handle string) (stats.ContributorStats, error) {
	doc, err := c.loadRegistered(ctx, handle, "contributor stats")
	if err != nil {
		return stats.ContributorStats{}, err
	}
	out, ok := stats.ForContributor(doc, handle)
	if !ok {
		return stats.ContributorStats{}, Wrap(ErrNotFound, "contributor stats", fmt.Sprintf("contributor %q is not registered", handle), nil)
	}
	return out, nil
}

// Leaderboard returns all contributors ranked by approved recordings.
func (c *Coordinator) Leaderboard(ctx context.Context) ([]stats.ContributorStats, error) {
	doc, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Leaderboard(doc), nil
}
