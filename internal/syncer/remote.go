package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPRemote talks to the persistence collaborator over JSON HTTP.
// It also doubles as the Connectivity probe.
type HTTPRemote struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewHTTPRemote creates a remote client for baseURL.
func NewHTTPRemote(baseURL string, timeout time.Duration, log zerolog.Logger) *HTTPRemote {
	return &HTTPRemote{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// SaveSnapshot implements Remote: PUT the full snapshot, expect
// {"success": true, "savedAt": ...} back.
func (r *HTTPRemote) SaveSnapshot(ctx context.Context, snap Snapshot) (SaveResult, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return SaveResult{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.baseURL+"/ledger/snapshot", bytes.NewReader(body))
	if err != nil {
		return SaveResult{}, fmt.Errorf("building snapshot request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return SaveResult{}, fmt.Errorf("sending snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return SaveResult{}, fmt.Errorf("remote returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SaveResult{}, fmt.Errorf("decoding save result: %w", err)
	}
	return result, nil
}

// Online implements Connectivity with a short health probe.
func (r *HTTPRemote) Online() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.Debug().Err(err).Msg("health probe failed")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
