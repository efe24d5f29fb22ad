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

	"github.com/sony/gobreaker"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

const (
	requestTimeout = 10 * time.Second
	pingTimeout    = 5 * time.Second
)

// remoteClient owns the HTTP plumbing toward the sync peer. Push and pull
// run through a circuit breaker so a dead peer stops burning requests;
// ping bypasses the breaker because it exists to report the truth.
type remoteClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
}

func newRemoteClient(cfg types.SyncConfig) *remoteClient {
	return &remoteClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: requestTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "sync-remote",
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && ratio >= 0.6
			},
		}),
	}
}

func (c *remoteClient) push(ctx context.Context, col string, ch types.RemoteChange) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.doPush(ctx, col, ch)
	})
	return err
}

func (c *remoteClient) doPush(ctx context.Context, col string, ch types.RemoteChange) error {
	body, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/sync/"+col, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	return checkStatus(resp)
}

func (c *remoteClient) pull(ctx context.Context, col string) ([]types.RemoteChange, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.doPull(ctx, col)
	})
	if err != nil {
		return nil, err
	}
	return out.([]types.RemoteChange), nil
}

func (c *remoteClient) doPull(ctx context.Context, col string) ([]types.RemoteChange, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"/sync/"+col+"/changes", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drain(resp.Body)
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var changes []types.RemoteChange
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return changes, nil
}

func (c *remoteClient) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	return checkStatus(resp)
}

func (c *remoteClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("remote returned %s", resp.Status)
}

// drain empties and closes the body so the connection can be reused.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
