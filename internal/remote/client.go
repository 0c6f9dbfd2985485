// Package remote replicates the local snapshot to a shared remote record.
//
// The remote store holds exactly one JSON record containing the four
// snapshot collections and a lastUpdated stamp. Replication is
// last-writer-wins at whole-record granularity: concurrent replicas are
// not field-merged, the most recent successful write replaces everything.
// The [Coordinator] owns the in-memory snapshot and is the single mutation
// point for all local operations, which is what lets it stamp every
// outbound write and recognize the echo when it comes back.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// Record is the shared remote document.
type Record struct {
	Events          []models.Event  `json:"events"`
	Tasks           []models.Task   `json:"tasks"`
	Sources         []models.Source `json:"sources"`
	IgnoredEventIDs []string        `json:"ignoredEventIds"`
	LastUpdated     string          `json:"lastUpdated"`
}

// Snapshot converts the record payload into a normalized snapshot.
func (r *Record) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Events:          r.Events,
		Tasks:           r.Tasks,
		Sources:         r.Sources,
		IgnoredEventIDs: r.IgnoredEventIDs,
	}
	snap.Normalize()
	return snap
}

// RecordClient reads and writes the shared record.
type RecordClient interface {
	// GetRecord fetches the record, or [shared.ErrRecordMissing] if no
	// replica has written one yet.
	GetRecord(ctx context.Context) (*Record, error)
	// PutRecord replaces the record wholesale.
	PutRecord(ctx context.Context, rec *Record) error
}

// Client is the HTTP RecordClient for the record server's /record endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client. A nil http.Client gets a 15 second timeout;
// requestsPerSecond <= 0 disables rate limiting.
func NewClient(baseURL string, client *http.Client, requestsPerSecond float64) *Client {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{baseURL: baseURL, httpClient: client, limiter: limiter}
}

// GetRecord fetches the shared record.
func (c *Client) GetRecord(ctx context.Context) (*Record, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/record", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.ErrRecordMissing
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: malformed record: %v", shared.ErrRemoteUnavailable, err)
	}
	return &rec, nil
}

// PutRecord replaces the shared record.
func (c *Client) PutRecord(ctx context.Context, rec *Record) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/record", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: HTTP %d", shared.ErrRemoteUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
	}
	return nil
}
