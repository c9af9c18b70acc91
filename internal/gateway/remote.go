package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirinyoku/seatplan/internal/snapshot"
)

var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrNoRemote     = errors.New("remote server not configured")
	ErrRemote       = errors.New("remote request failed")
)

const httpTimeout = 15 * time.Second

// SaveResult is the server's answer to a saved plan.
type SaveResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
}

// RemoteClient talks to the plan server.
type RemoteClient struct {
	baseURL string
	http    *http.Client
}

// NewRemoteClient returns a client for the server at baseURL. A nil hc gets
// a client with a fixed timeout.
func NewRemoteClient(baseURL string, hc *http.Client) *RemoteClient {
	if hc == nil {
		hc = &http.Client{Timeout: httpTimeout}
	}
	return &RemoteClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// SavePlan stores s on the server under a fresh id.
func (c *RemoteClient) SavePlan(ctx context.Context, s *snapshot.Snapshot) (SaveResult, error) {
	const op = "gateway.RemoteClient.SavePlan"

	body, err := snapshot.Encode(s)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/plans", bytes.NewReader(body))
	if err != nil {
		return SaveResult{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%s: %w: %v", op, ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return SaveResult{}, fmt.Errorf("%s: %w", op, statusErr(resp))
	}
	var res SaveResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return SaveResult{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	if !res.Success || res.ID == "" {
		return SaveResult{}, fmt.Errorf("%s: %w: server did not accept the plan", op, ErrRemote)
	}
	return res, nil
}

// LoadPlan fetches the plan stored under id.
func (c *RemoteClient) LoadPlan(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	const op = "gateway.RemoteClient.LoadPlan"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/plans/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrRemote, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrPlanNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: %w", op, statusErr(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read: %w", op, err)
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func statusErr(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	if body.Error != "" {
		return fmt.Errorf("%w: status %d: %s", ErrRemote, resp.StatusCode, body.Error)
	}
	return fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
}
