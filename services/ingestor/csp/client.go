// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package csp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
)

const (
	// DefaultBaseURL is the public Common Standards Project API root.
	DefaultBaseURL = "https://api.commonstandardsproject.com/api/v1"

	defaultMaxRetries        = 3
	defaultRequestTimeout    = 30 * time.Second
	defaultRequestsPerMinute = 50
)

// APIError is returned when a request fails after all retries or hits
// a non-retryable status.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("csp api %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("csp api %s: %s", e.Endpoint, e.Message)
}

// Config configures a Client.
type Config struct {
	// APIKey is sent as the Api-Key header on every request. Required.
	APIKey string

	// BaseURL overrides the API root. Default: DefaultBaseURL.
	BaseURL string

	// DataDir is the local cache root. Responses are written under
	// {DataDir}/raw mirroring the original layout:
	//   raw/jurisdictions.json
	//   raw/jurisdictions/{id}/data.json
	//   raw/standardSets/{id}/data.json
	// Empty disables caching.
	DataDir string

	// RequestsPerMinute is the client-side rate limit. Default: 50.
	RequestsPerMinute int

	// MaxRetries bounds attempts per request. Default: 3.
	MaxRetries int

	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client talks to the Common Standards Project API.
//
// Methods are safe for concurrent use; the rate limiter serializes
// request admission across goroutines.
type Client struct {
	baseURL    string
	apiKey     string
	dataDir    string
	maxRetries int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client from config.
//
// Returns an error when the API key is missing, since every endpoint
// rejects unauthenticated requests.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("csp: API key not set")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		dataDir:    cfg.DataDir,
		maxRetries: retries,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}, nil
}

// =============================================================================
// Endpoints
// =============================================================================

// Jurisdictions lists all jurisdictions, served from the local cache
// when present. searchTerm filters titles and typeFilter filters the
// jurisdiction type, both case-insensitive; filters apply after the
// cache so a filtered call never forces a fetch.
func (c *Client) Jurisdictions(ctx context.Context, searchTerm, typeFilter string, forceRefresh bool) ([]Jurisdiction, error) {
	cachePath := c.cachePath("jurisdictions.json")

	var envelope jurisdictionsEnvelope
	if !forceRefresh && c.readCache(cachePath, &envelope) {
		slog.Info("loaded jurisdictions from cache", "count", len(envelope.Data))
	} else {
		body, err := c.get(ctx, "/jurisdictions", nil)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("csp: decode jurisdictions: %w", err)
		}
		c.writeCache(cachePath, body)
	}

	jurisdictions := envelope.Data
	if typeFilter != "" {
		jurisdictions = filterSlice(jurisdictions, func(j Jurisdiction) bool {
			return strings.EqualFold(j.Type, typeFilter)
		})
	}
	if searchTerm != "" {
		needle := strings.ToLower(searchTerm)
		jurisdictions = filterSlice(jurisdictions, func(j Jurisdiction) bool {
			return strings.Contains(strings.ToLower(j.Title), needle)
		})
	}
	return jurisdictions, nil
}

// JurisdictionDetails fetches one jurisdiction's metadata including
// its standard-set references, cached per jurisdiction.
func (c *Client) JurisdictionDetails(ctx context.Context, jurisdictionID string, forceRefresh bool) (*JurisdictionDetails, error) {
	cachePath := c.cachePath("jurisdictions", jurisdictionID, "data.json")

	var envelope jurisdictionDetailsEnvelope
	if !forceRefresh && c.readCache(cachePath, &envelope) {
		slog.Info("loaded jurisdiction from cache", "jurisdiction_id", jurisdictionID)
		return &envelope.Data, nil
	}

	body, err := c.get(ctx, "/jurisdictions/"+jurisdictionID, map[string]string{
		"hideHiddenSets": "true",
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("csp: decode jurisdiction %s: %w", jurisdictionID, err)
	}
	c.writeCache(cachePath, body)
	return &envelope.Data, nil
}

// DownloadStandardSet fetches one full standard set with its node
// hierarchy, cached per set.
func (c *Client) DownloadStandardSet(ctx context.Context, setID string, forceRefresh bool) (*standards.RawStandardSet, error) {
	cachePath := c.cachePath("standardSets", setID, "data.json")

	var envelope standardSetEnvelope
	if !forceRefresh && c.readCache(cachePath, &envelope) {
		slog.Info("loaded standard set from cache", "standard_set_id", setID)
		return &envelope.Data, nil
	}

	body, err := c.get(ctx, "/standard_sets/"+setID, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("csp: decode standard set %s: %w", setID, err)
	}
	c.writeCache(cachePath, body)
	return &envelope.Data, nil
}

// DownloadSetsByJurisdiction downloads every standard set of a
// jurisdiction that passes the filter, returning the downloaded set
// ids. Individual set failures are logged and skipped so one bad set
// never aborts a jurisdiction.
func (c *Client) DownloadSetsByJurisdiction(ctx context.Context, jurisdictionID string, filter SetFilter, forceRefresh bool) ([]string, error) {
	details, err := c.JurisdictionDetails(ctx, jurisdictionID, forceRefresh)
	if err != nil {
		return nil, err
	}

	var downloaded []string
	for _, ref := range details.StandardSets {
		if !filter.Matches(ref) {
			continue
		}
		if _, err := c.DownloadStandardSet(ctx, ref.ID, forceRefresh); err != nil {
			slog.Error("failed to download standard set",
				"standard_set_id", ref.ID, "error", err)
			continue
		}
		downloaded = append(downloaded, ref.ID)
	}

	slog.Info("downloaded standard sets",
		"jurisdiction_id", jurisdictionID,
		"matched", len(downloaded),
		"available", len(details.StandardSets))
	return downloaded, nil
}

// Matches reports whether ref passes every set field of the filter.
func (f SetFilter) Matches(ref SetReference) bool {
	if len(f.EducationLevels) > 0 {
		want := make(map[string]struct{}, len(f.EducationLevels))
		for _, level := range f.EducationLevels {
			want[strings.ToUpper(level)] = struct{}{}
		}
		var overlap bool
		for _, level := range ref.EducationLevels {
			if _, ok := want[strings.ToUpper(level)]; ok {
				overlap = true
				break
			}
		}
		if !overlap {
			return false
		}
	}

	if f.PublicationStatus != "" && ref.Document.PublicationStatus != "" &&
		!strings.EqualFold(ref.Document.PublicationStatus, f.PublicationStatus) {
		return false
	}

	if f.ValidYear != "" && ref.Document.Valid != f.ValidYear {
		return false
	}

	if f.TitleSearch != "" &&
		!strings.Contains(strings.ToLower(ref.Title), strings.ToLower(f.TitleSearch)) {
		return false
	}

	if f.SubjectSearch != "" &&
		!strings.Contains(strings.ToLower(ref.Subject), strings.ToLower(f.SubjectSearch)) {
		return false
	}

	return true
}

// =============================================================================
// Transport
// =============================================================================

// get performs one rate-limited GET with retries.
//
// Retry policy follows the API's observed behavior:
//   - 429: wait Retry-After (default 60s) and retry, not counted
//     against the backoff schedule.
//   - 5xx, timeouts, connection errors: exponential backoff 1s/2s/4s.
//   - 401, 404, other 4xx: fail immediately, retrying cannot help.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	url := c.baseURL + endpoint

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		slog.Debug("csp api request", "endpoint", endpoint,
			"attempt", attempt+1, "max_attempts", c.maxRetries)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Api-Key", c.apiKey)
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			slog.Warn("csp request failed, retrying",
				"endpoint", endpoint, "error", err)
			if !sleepCtx(ctx, backoff(attempt)) {
				return nil, ctx.Err()
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("csp: read response: %w", readErr)
			}
			return body, nil

		case resp.StatusCode == http.StatusUnauthorized:
			return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode,
				Message: "authentication failed, check CSP_API_KEY"}

		case resp.StatusCode == http.StatusNotFound:
			return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode,
				Message: "resource not found"}

		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp)
			slog.Warn("server rate limit hit", "endpoint", endpoint, "wait", wait)
			if !sleepCtx(ctx, wait) {
				return nil, ctx.Err()
			}
			// Server-imposed waits don't consume a retry attempt.
			attempt--
			continue

		case resp.StatusCode >= 500:
			lastErr = &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode,
				Message: strings.TrimSpace(string(body))}
			slog.Warn("csp server error, retrying",
				"endpoint", endpoint, "status", resp.StatusCode)
			if !sleepCtx(ctx, backoff(attempt)) {
				return nil, ctx.Err()
			}
			continue

		default:
			// Remaining 4xx: the request itself is wrong.
			return nil, &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode,
				Message: strings.TrimSpace(string(body))}
		}
	}

	if apiErr, ok := lastErr.(*APIError); ok {
		return nil, apiErr
	}
	return nil, &APIError{Endpoint: endpoint,
		Message: fmt.Sprintf("request failed after %d attempts: %v", c.maxRetries, lastErr)}
}

// backoff returns the exponential wait for a retry attempt: 1s, 2s, 4s.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// retryAfter reads the Retry-After header, defaulting to 60 seconds.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 60 * time.Second
}

// sleepCtx sleeps for d unless the context ends first. Returns false
// when the context was canceled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// =============================================================================
// Cache
// =============================================================================

// cachePath joins path elements under the raw cache root; empty when
// caching is disabled.
func (c *Client) cachePath(elems ...string) string {
	if c.dataDir == "" {
		return ""
	}
	return filepath.Join(append([]string{c.dataDir, "raw"}, elems...)...)
}

// readCache loads a cached envelope, returning false on any miss or
// decode failure so the caller falls through to the API.
func (c *Client) readCache(path string, out any) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("cache file corrupt, refetching", "path", path, "error", err)
		return false
	}
	return true
}

// writeCache persists a raw response body. Cache write failures are
// logged, never fatal.
func (c *Client) writeCache(path string, body []byte) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		slog.Warn("failed to create cache directory", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, body, 0640); err != nil {
		slog.Warn("failed to write cache file", "path", path, "error", err)
	}
}

func filterSlice[T any](items []T, keep func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
