// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

// fakeStore records upserts and serves canned search/lookup results.
type fakeStore struct {
	upserted      []standards.ProcessedRecord
	upsertErr     error
	searchResults []store.SearchResult
	searchErr     error
	fetchResult   *store.StandardDetails
	fetchErr      error
}

func (f *fakeStore) UpsertRecords(ctx context.Context, records []standards.ProcessedRecord) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, records...)
	return len(records), nil
}

func (f *fakeStore) SearchStandards(ctx context.Context, query string, topK int, grade string) ([]store.SearchResult, error) {
	return f.searchResults, f.searchErr
}

func (f *fakeStore) FetchStandard(ctx context.Context, recordID string) (*store.StandardDetails, error) {
	return f.fetchResult, f.fetchErr
}

func (f *fakeStore) Stats(ctx context.Context) (*store.IndexStats, error) {
	return &store.IndexStats{TotalRecords: int64(len(f.upserted))}, nil
}

type fakeDownloader struct {
	set *standards.RawStandardSet
	err error
}

func (f *fakeDownloader) DownloadStandardSet(ctx context.Context, setID string, forceRefresh bool) (*standards.RawStandardSet, error) {
	return f.set, f.err
}

func setupRouter(fs *fakeStore, dl SetDownloader) *gin.Engine {
	router := gin.New()
	h := NewHandlers(fs, dl, nil)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, h)
	router.GET("/health", h.Health)
	return router
}

func strPtr(s string) *string { return &s }

func validSet() *standards.RawStandardSet {
	return &standards.RawStandardSet{
		ID:              "SET1",
		Title:           "Grade 1 Geometry",
		Subject:         "Mathematics",
		EducationLevels: []string{"01"},
		Document:        standards.RawDocument{ID: "D1", Valid: "2024"},
		Jurisdiction:    standards.RawJurisdiction{ID: "J1", Title: "Testland"},
		Standards: map[string]standards.RawStandardNode{
			"R": {ID: "R", Position: 100, Depth: 0, Description: "Geometry"},
			"L": {ID: "L", Position: 200, Depth: 1, Description: "Partition shapes", ParentID: strPtr("R")},
		},
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Ingest Tests
// =============================================================================

func TestIngestStandardSet_Inline(t *testing.T) {
	fs := &fakeStore{}
	router := setupRouter(fs, nil)

	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{StandardSet: validSet()})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["records_processed"] != float64(2) {
		t.Errorf("records_processed = %v, want 2", resp["records_processed"])
	}
	if resp["records_upserted"] != float64(2) {
		t.Errorf("records_upserted = %v, want 2", resp["records_upserted"])
	}
	if len(fs.upserted) != 2 {
		t.Errorf("store received %d records, want 2", len(fs.upserted))
	}
}

func TestIngestStandardSet_BySetID(t *testing.T) {
	fs := &fakeStore{}
	dl := &fakeDownloader{set: validSet()}
	router := setupRouter(fs, dl)

	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{SetID: "SET1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
}

func TestIngestStandardSet_MalformedInput(t *testing.T) {
	fs := &fakeStore{}
	router := setupRouter(fs, nil)

	bad := validSet()
	bad.Standards = map[string]standards.RawStandardNode{
		"X": {ID: "X"}, // missing description
	}
	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{StandardSet: bad})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
	if len(fs.upserted) != 0 {
		t.Error("no records must reach the store for malformed input")
	}
}

func TestIngestStandardSet_MissingBothInputs(t *testing.T) {
	router := setupRouter(&fakeStore{}, nil)

	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestIngestStandardSet_DownloadFailure(t *testing.T) {
	dl := &fakeDownloader{err: errors.New("csp unavailable")}
	router := setupRouter(&fakeStore{}, dl)

	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{SetID: "SET1"})

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestIngestStandardSet_StoreFailure(t *testing.T) {
	fs := &fakeStore{upsertErr: errors.New("index down")}
	router := setupRouter(fs, nil)

	w := postJSON(t, router, "/v1/standardsets/ingest", IngestRequest{StandardSet: validSet()})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// =============================================================================
// Search Tests
// =============================================================================

func TestSearchStandards_Success(t *testing.T) {
	fs := &fakeStore{searchResults: []store.SearchResult{
		{RecordID: "L", Content: "Depth 0: Geometry\nDepth 1: Partition shapes", Score: 0.91},
		{RecordID: "M", Content: "Depth 0: Geometry\nDepth 1: Compose shapes", Score: 0.87},
	}}
	router := setupRouter(fs, nil)

	w := postJSON(t, router, "/v1/standards/search", SearchRequest{Activity: "shape partitioning lesson"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Message != "Found 2 matching standards" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestSearchStandards_EmptyActivity(t *testing.T) {
	router := setupRouter(&fakeStore{}, nil)

	w := postJSON(t, router, "/v1/standards/search", SearchRequest{Activity: "   "})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp envelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || resp.ErrorType != ErrTypeInvalidInput {
		t.Errorf("envelope = %+v, want invalid_input failure", resp)
	}
}

func TestSearchStandards_NoResults(t *testing.T) {
	router := setupRouter(&fakeStore{}, nil)

	w := postJSON(t, router, "/v1/standards/search", SearchRequest{Activity: "underwater basket weaving"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp envelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || resp.ErrorType != ErrTypeNoResults {
		t.Errorf("envelope = %+v, want no_results failure", resp)
	}
}

func TestSearchStandards_StoreError(t *testing.T) {
	fs := &fakeStore{searchErr: fmt.Errorf("embedding service down")}
	router := setupRouter(fs, nil)

	w := postJSON(t, router, "/v1/standards/search", SearchRequest{Activity: "counting"})

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp envelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.ErrorType != ErrTypeAPIError {
		t.Errorf("error_type = %q, want api_error", resp.ErrorType)
	}
}

// =============================================================================
// Lookup Tests
// =============================================================================

func TestGetStandard_Found(t *testing.T) {
	fs := &fakeStore{fetchResult: &store.StandardDetails{
		RecordID:   "NODE1",
		Properties: map[string]interface{}{"content": "Depth 0: Math"},
	}}
	router := setupRouter(fs, nil)

	req, _ := http.NewRequest("GET", "/v1/standards/NODE1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if !resp.Success || resp.Message != "Retrieved standard details" {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestGetStandard_NotFound(t *testing.T) {
	router := setupRouter(&fakeStore{}, nil)

	req, _ := http.NewRequest("GET", "/v1/standards/MISSING", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp envelope
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Success || resp.ErrorType != ErrTypeNotFound {
		t.Errorf("envelope = %+v, want not_found failure", resp)
	}
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealth(t *testing.T) {
	router := setupRouter(&fakeStore{}, nil)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp["status"])
	}
}
