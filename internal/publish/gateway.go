package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recite/internal/config"
)

const userAgent = "recite/0.1"

// Publisher hands a corpus to the hosted dataset collaborator.
type Publisher interface {
	// Publish uploads the corpus. The error describes the remote failure;
	// callers treat it as a reportable outcome, never a fatal condition.
	Publish(ctx context.Context, rows []Row) error
	// Enabled reports whether a remote destination is configured.
	Enabled() bool
}

// HTTPDoer describes the HTTP client used by the dataset publisher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewPublisher builds a publisher for the configured dataset host. When no
// endpoint is configured a no-op implementation is returned.
func NewPublisher(cfg *config.Config) Publisher {
	endpoint := strings.TrimSpace(cfg.Publication.Endpoint)
	if endpoint == "" {
		return noopPublisher{}
	}
	timeout := time.Duration(cfg.Publication.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &datasetPublisher{
		endpoint:   endpoint,
		repository: cfg.Publication.Repository,
		token:      cfg.Publication.Token,
		client:     &http.Client{Timeout: timeout},
	}
}

// NewDatasetPublisher constructs an HTTP-backed publisher with an explicit
// client, for tests.
func NewDatasetPublisher(endpoint, repository, token string, client HTTPDoer) Publisher {
	return &datasetPublisher{
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		repository: strings.TrimSpace(repository),
		token:      token,
		client:     client,
	}
}

type datasetPublisher struct {
	endpoint   string
	repository string
	token      string
	client     HTTPDoer
}

func (p *datasetPublisher) Enabled() bool { return true }

func (p *datasetPublisher) Publish(ctx context.Context, rows []Row) error {
	payload, err := json.Marshal(struct {
		Repository string `json:"repository"`
		Rows       []Row  `json:"rows"`
	}{Repository: p.repository, Rows: rows})
	if err != nil {
		return fmt.Errorf("marshal corpus: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/datasets/%s", p.endpoint, url.PathEscape(p.repository))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload corpus: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("dataset host returned %d", resp.StatusCode)
	}
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Enabled() bool                       { return false }
func (noopPublisher) Publish(context.Context, []Row) error { return nil }
