package coordinator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recite/internal/config"
	"recite/internal/identity"
	"recite/internal/metastore"
	"recite/internal/publish"
	"recite/internal/testsupport"
)

type capturePublisher struct {
	calls int
	rows  []publish.Row
	err   error
}

func (p *capturePublisher) Enabled() bool { return true }

func (p *capturePublisher) Publish(_ context.Context, rows []publish.Row) error {
	p.calls++
	p.rows = rows
	return p.err
}

func newCoordinator(t *testing.T, pub publish.Publisher, opts ...testsupport.ConfigOption) (*Coordinator, *config.Config) {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteCatalog(t, cfg, "")

	c, err := New(cfg, "", Options{
		Verifier:  identity.Static("alice", "bob", "admin"),
		Publisher: pub,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, cfg
}

func mustRegister(t *testing.T, c *Coordinator, handle, gender string) RegistrationResult {
	t.Helper()

	result, err := c.Register(context.Background(), handle, "", gender)
	if err != nil {
		t.Fatalf("Register(%s): %v", handle, err)
	}
	return result
}

func mustSubmit(t *testing.T, c *Coordinator, handle, verseID string) SubmitResult {
	t.Helper()

	wavPath := testsupport.WriteWAV(t, t.TempDir(), "take.wav")
	result, err := c.Submit(context.Background(), handle, verseID, wavPath)
	if err != nil {
		t.Fatalf("Submit(%s, %s): %v", handle, verseID, err)
	}
	return result
}

func TestRegisterVerifiesHandleClosed(t *testing.T) {
	c, _ := newCoordinator(t, nil)

	if _, err := c.Register(context.Background(), "mallory", "", "female"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unverifiable handle: got %v, want ErrValidation", err)
	}
	if _, err := c.Register(context.Background(), "", "", "female"); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty handle: got %v, want ErrValidation", err)
	}
	if _, err := c.Register(context.Background(), "alice", "", "unspecified"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad gender: got %v, want ErrValidation", err)
	}
}

func TestRegisterAssignsFirstVerse(t *testing.T) {
	c, _ := newCoordinator(t, nil)

	result := mustRegister(t, c, "alice", "female")
	if result.AlreadyRegistered {
		t.Fatal("fresh registration reported as already registered")
	}
	if result.Contributor.Gender != metastore.GenderFemale {
		t.Fatalf("gender = %s, want female", result.Contributor.Gender)
	}
	if result.NextVerse == nil || result.NextVerse.ID != "1" {
		t.Fatalf("next verse = %+v, want verse 1", result.NextVerse)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	c, _ := newCoordinator(t, nil)

	first := mustRegister(t, c, "alice", "female")
	again := mustRegister(t, c, "alice", "male") // gender ignored on re-register
	if !again.AlreadyRegistered {
		t.Fatal("second registration not reported as already registered")
	}
	if again.Contributor.Gender != first.Contributor.Gender {
		t.Fatalf("re-registration changed gender to %s", again.Contributor.Gender)
	}
}

func TestSubmitStoresRecordingAndAdvances(t *testing.T) {
	c, cfg := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")

	result := mustSubmit(t, c, "alice", "1")
	rec := result.Recording
	if rec.Status != metastore.StatusApproved {
		t.Fatalf("status = %s, want approved under the default policy", rec.Status)
	}
	if rec.VerseID != "1" || rec.Book != 1 || rec.Unit != 1 {
		t.Fatalf("verse fields = %s/%d/%d", rec.VerseID, rec.Book, rec.Unit)
	}
	if rec.Checksum == "" {
		t.Fatal("recording has no checksum")
	}
	if filepath.Dir(rec.AudioPath) != cfg.AudioDir() {
		t.Fatalf("audio stored at %s, want inside %s", rec.AudioPath, cfg.AudioDir())
	}
	if _, err := os.Stat(rec.AudioPath); err != nil {
		t.Fatalf("stored audio missing: %v", err)
	}
	if result.NextVerse == nil || result.NextVerse.ID != "2" {
		t.Fatalf("next verse = %+v, want verse 2", result.NextVerse)
	}

	doc, err := c.Store().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := doc.RecordingByID(rec.ID); got == nil {
		t.Fatalf("recording %s not persisted", rec.ID)
	}
}

func TestSubmitPendingWhenApprovalRequired(t *testing.T) {
	c, _ := newCoordinator(t, nil, testsupport.WithApprovalRequired())
	mustRegister(t, c, "alice", "female")

	result := mustSubmit(t, c, "alice", "1")
	if result.Recording.Status != metastore.StatusPending {
		t.Fatalf("status = %s, want pending", result.Recording.Status)
	}
}

func TestSubmitRejectsDuplicateVerse(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	mustSubmit(t, c, "alice", "1")

	wavPath := testsupport.WriteWAV(t, t.TempDir(), "again.wav")
	if _, err := c.Submit(context.Background(), "alice", "1", wavPath); !errors.Is(err, ErrValidation) {
		t.Fatalf("duplicate submit: got %v, want ErrValidation", err)
	}
}

func TestSubmitRejectsUnknownVerseAndContributor(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	wavPath := testsupport.WriteWAV(t, t.TempDir(), "take.wav")

	if _, err := c.Submit(context.Background(), "alice", "99", wavPath); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown verse: got %v, want ErrNotFound", err)
	}
	if _, err := c.Submit(context.Background(), "bob", "1", wavPath); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unregistered contributor: got %v, want ErrNotFound", err)
	}
}

func TestSubmitRejectsInvalidAudio(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")

	badPath := filepath.Join(t.TempDir(), "not-audio.wav")
	if err := os.WriteFile(badPath, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}
	if _, err := c.Submit(context.Background(), "alice", "1", badPath); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid audio: got %v, want ErrValidation", err)
	}
}

func TestNextVerseExhaustion(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	for _, id := range []string{"1", "2", "3"} {
		mustSubmit(t, c, "alice", id)
	}

	if _, err := c.NextVerse(context.Background(), "alice"); !errors.Is(err, ErrNoVerseAvailable) {
		t.Fatalf("exhausted contributor: got %v, want ErrNoVerseAvailable", err)
	}
}

func TestModerationRequiresAdmin(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	result := mustSubmit(t, c, "alice", "1")

	if _, err := c.Approve(context.Background(), result.Recording.ID, "alice"); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin approve: got %v, want ErrPermission", err)
	}
	if _, err := c.Reject(context.Background(), result.Recording.ID, "alice"); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin reject: got %v, want ErrPermission", err)
	}
}

func TestModerationLifecycle(t *testing.T) {
	c, _ := newCoordinator(t, nil, testsupport.WithApprovalRequired())
	mustRegister(t, c, "alice", "female")
	submitted := mustSubmit(t, c, "alice", "1")

	approved, err := c.Approve(context.Background(), submitted.Recording.ID, "admin")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != metastore.StatusApproved || approved.ModeratedBy != "admin" {
		t.Fatalf("approved = %+v", approved)
	}

	// Admin override: approved recordings can still be rejected.
	rejected, err := c.Reject(context.Background(), submitted.Recording.ID, "admin")
	if err != nil {
		t.Fatalf("Reject after approve: %v", err)
	}
	if rejected.Status != metastore.StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	// Rejection queues the verse for re-recording ahead of fresh assignment.
	verse, err := c.NextVerse(context.Background(), "alice")
	if err != nil {
		t.Fatalf("NextVerse: %v", err)
	}
	if verse.ID != "1" {
		t.Fatalf("next verse = %s, want rerecord of verse 1", verse.ID)
	}

	resubmit := mustSubmit(t, c, "alice", "1")
	if !resubmit.Rerecording {
		t.Fatal("resubmission did not consume the rerecord entry")
	}

	// Rejected is terminal.
	if _, err := c.Approve(context.Background(), submitted.Recording.ID, "admin"); !errors.Is(err, ErrValidation) {
		t.Fatalf("approve of rejected: got %v, want ErrValidation", err)
	}
	if _, err := c.Approve(context.Background(), "rec_missing", "admin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("approve of unknown: got %v, want ErrNotFound", err)
	}
}

func TestAutoSyncBestEffort(t *testing.T) {
	pub := &capturePublisher{err: errors.New("endpoint down")}
	c, _ := newCoordinator(t, pub)
	mustRegister(t, c, "alice", "female")

	// Publication failure must not fail the submission itself.
	result := mustSubmit(t, c, "alice", "1")
	if pub.calls == 0 {
		t.Fatal("submit did not trigger a publication refresh")
	}

	pub.err = nil
	if _, err := c.Approve(context.Background(), result.Recording.ID, "admin"); err != nil {
		// Already approved under the default policy; the transition is a
		// no-op error, not a publication error.
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("Approve: %v", err)
		}
	}

	history, err := c.SyncHistory(context.Background(), "admin", 10)
	if err != nil {
		t.Fatalf("SyncHistory: %v", err)
	}
	if len(history) == 0 {
		t.Fatal("failed publication attempt not recorded in ledger")
	}
	if history[len(history)-1].Success {
		t.Fatal("ledger reports the failed attempt as successful")
	}
}

func TestAutoSyncDisabled(t *testing.T) {
	pub := &capturePublisher{}
	c, _ := newCoordinator(t, pub, func(cfg *config.Config) {
		cfg.Settings.AutoSyncOnApproval = false
	})
	mustRegister(t, c, "alice", "female")
	mustSubmit(t, c, "alice", "1")

	if pub.calls != 0 {
		t.Fatalf("publisher called %d times with auto-sync disabled", pub.calls)
	}
}

func TestSyncPublication(t *testing.T) {
	pub := &capturePublisher{}
	c, _ := newCoordinator(t, pub)
	mustRegister(t, c, "alice", "female")
	mustSubmit(t, c, "alice", "1")

	if _, err := c.SyncPublication(context.Background(), "alice"); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin sync: got %v, want ErrPermission", err)
	}

	result, err := c.SyncPublication(context.Background(), "admin")
	if err != nil {
		t.Fatalf("SyncPublication: %v", err)
	}
	if !result.Success || result.Rows != 1 {
		t.Fatalf("result = %+v, want success with 1 row", result)
	}

	pub.err = errors.New("endpoint down")
	result, err = c.SyncPublication(context.Background(), "admin")
	if !errors.Is(err, ErrExternalService) {
		t.Fatalf("failed sync: got %v, want ErrExternalService", err)
	}
	if result.Success {
		t.Fatal("failed sync reported success")
	}

	history, err := c.SyncHistory(context.Background(), "admin", 10)
	if err != nil {
		t.Fatalf("SyncHistory: %v", err)
	}
	if len(history) < 2 {
		t.Fatalf("ledger holds %d records, want at least 2", len(history))
	}
}

func TestSetMaxRecordingsPerVerse(t *testing.T) {
	c, cfg := newCoordinator(t, nil)

	if err := c.SetMaxRecordingsPerVerse("alice", 3); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin: got %v, want ErrPermission", err)
	}
	if err := c.SetMaxRecordingsPerVerse("admin", 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero cap: got %v, want ErrValidation", err)
	}
	if err := c.SetMaxRecordingsPerVerse("admin", 3); err != nil {
		t.Fatalf("SetMaxRecordingsPerVerse: %v", err)
	}
	if cfg.Settings.MaxRecordingsPerVerse != 3 {
		t.Fatalf("cap = %d, want 3", cfg.Settings.MaxRecordingsPerVerse)
	}
}

func TestSetMaxRecordingsPerVersePersists(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteCatalog(t, cfg, "")
	configPath := filepath.Join(t.TempDir(), "config.toml")

	c, err := New(cfg, configPath, Options{
		Verifier:  identity.Static("alice"),
		Publisher: &capturePublisher{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.SetMaxRecordingsPerVerse("admin", 7); err != nil {
		t.Fatalf("SetMaxRecordingsPerVerse: %v", err)
	}
	reloaded, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.Settings.MaxRecordingsPerVerse != 7 {
		t.Fatalf("persisted cap = %d, want 7", reloaded.Settings.MaxRecordingsPerVerse)
	}
}

func TestGlobalStatsAdminOnly(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	mustSubmit(t, c, "alice", "1")

	if _, err := c.GlobalStats(context.Background(), "alice"); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin: got %v, want ErrPermission", err)
	}
	global, err := c.GlobalStats(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GlobalStats: %v", err)
	}
	if global.TotalRecordings != 1 || global.TotalContributors != 1 {
		t.Fatalf("global = %+v", global)
	}
}

func TestContributorStatsAndLeaderboard(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	mustRegister(t, c, "bob", "male")
	mustSubmit(t, c, "alice", "1")

	got, err := c.ContributorStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ContributorStats: %v", err)
	}
	if got.Approved != 1 {
		t.Fatalf("approved = %d, want 1", got.Approved)
	}
	if _, err := c.ContributorStats(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown handle: got %v, want ErrNotFound", err)
	}

	board, err := c.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].Handle != "alice" {
		t.Fatalf("leaderboard = %+v", board)
	}
}

func TestVerifyIntegrity(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	first := mustSubmit(t, c, "alice", "1")
	second := mustSubmit(t, c, "alice", "2")

	issues, err := c.VerifyIntegrity(context.Background(), "admin")
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("clean store reported issues: %+v", issues)
	}

	if err := os.Remove(first.Recording.AudioPath); err != nil {
		t.Fatalf("remove audio: %v", err)
	}
	if err := os.WriteFile(second.Recording.AudioPath, []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper audio: %v", err)
	}

	issues, err = c.VerifyIntegrity(context.Background(), "admin")
	if err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("issues = %+v, want missing-file and checksum-mismatch", issues)
	}
	if _, err := c.VerifyIntegrity(context.Background(), "alice"); !errors.Is(err, ErrPermission) {
		t.Fatalf("non-admin: got %v, want ErrPermission", err)
	}
}

func TestBackupSnapshot(t *testing.T) {
	c, _ := newCoordinator(t, nil)
	mustRegister(t, c, "alice", "female")
	mustSubmit(t, c, "alice", "1")

	dir, err := c.Backup("admin")
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "metadata.json")); err != nil {
		t.Fatalf("snapshot missing metadata: %v", err)
	}
}

func TestRecordingIDShape(t *testing.T) {
	id := recordingID(time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), "alice")
	const prefix = "rec_20260304050607_alice_"
	if len(id) != len(prefix)+8 || id[:len(prefix)] != prefix {
		t.Fatalf("recording id = %q", id)
	}
}
