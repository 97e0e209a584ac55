package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recite/internal/config"
)

// Verifier reports whether a contributor handle exists.
type Verifier interface {
	Exists(ctx context.Context, handle string) bool
}

// HTTPDoer describes the HTTP client used by the hub verifier.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type hubVerifier struct {
	baseURL string
	client  HTTPDoer
}

// NewVerifier builds a verifier for the configured identity host.
func NewVerifier(cfg *config.Config) Verifier {
	timeout := time.Duration(cfg.Identity.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &hubVerifier{
		baseURL: cfg.Identity.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewHubVerifier constructs a verifier with an explicit client, for tests.
func NewHubVerifier(baseURL string, client HTTPDoer) Verifier {
	return &hubVerifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

// Exists probes the hub profile page for handle. Any transport error or
// non-2xx status is treated as "does not exist".
func (v *hubVerifier) Exists(ctx context.Context, handle string) bool {
	handle = strings.TrimSpace(handle)
	if handle == "" || v.baseURL == "" || v.client == nil {
		return false
	}

	profileURL := fmt.Sprintf("%s/%s", v.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// Static returns a verifier backed by a fixed set of handles, for tests and
// offline operation.
func Static(handles ...string) Verifier {
	set := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	return staticVerifier(set)
}

type staticVerifier map[string]struct{}

func (s staticVerifier) Exists(_ context.Context, handle string) bool {
	_, ok := s[strings.TrimSpace(handle)]
	return ok
}
