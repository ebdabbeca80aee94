// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers exposes the ingestor's HTTP API: standard-set
// ingestion, semantic search, and direct record lookup.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/observability"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
)

// Error types of the response envelope, mirrored by the CLI.
const (
	ErrTypeInvalidInput = "invalid_input"
	ErrTypeNoResults    = "no_results"
	ErrTypeNotFound     = "not_found"
	ErrTypeAPIError     = "api_error"
)

// SetDownloader fetches full standard sets by id.
type SetDownloader interface {
	DownloadStandardSet(ctx context.Context, setID string, forceRefresh bool) (*standards.RawStandardSet, error)
}

// RecordStore is the slice of the store the handlers need.
type RecordStore interface {
	UpsertRecords(ctx context.Context, records []standards.ProcessedRecord) (int, error)
	SearchStandards(ctx context.Context, query string, topK int, grade string) ([]store.SearchResult, error)
	FetchStandard(ctx context.Context, recordID string) (*store.StandardDetails, error)
	Stats(ctx context.Context) (*store.IndexStats, error)
}

// Handlers wires the engine, the store, and the CSP client behind the
// HTTP surface.
type Handlers struct {
	processor  *standards.Processor
	store      RecordStore
	downloader SetDownloader
	metrics    *observability.IngestorMetrics
}

// NewHandlers creates the handler set. downloader may be nil, in which
// case ingest requests must carry the set inline.
func NewHandlers(recordStore RecordStore, downloader SetDownloader, metrics *observability.IngestorMetrics) *Handlers {
	return &Handlers{
		processor:  standards.NewProcessor(),
		store:      recordStore,
		downloader: downloader,
		metrics:    metrics,
	}
}

// RegisterRoutes mounts the API under the given group.
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/standardsets/ingest", h.IngestStandardSet)
	rg.POST("/standards/search", h.SearchStandards)
	rg.GET("/standards/:id", h.GetStandard)
}

// envelope is the response shape shared by search and lookup.
type envelope struct {
	Success   bool   `json:"success"`
	Results   any    `json:"results"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}

func failure(message, errorType string) envelope {
	return envelope{Success: false, Results: []any{}, Message: message, ErrorType: errorType}
}

// =============================================================================
// Ingest
// =============================================================================

// IngestRequest feeds one standard set into the pipeline: either a
// set id to download (or serve from cache) or the full set inline.
type IngestRequest struct {
	SetID        string                    `json:"set_id"`
	StandardSet  *standards.RawStandardSet `json:"standard_set"`
	ForceRefresh bool                      `json:"force_refresh"`
}

// IngestStandardSet processes a raw set through hierarchy resolution
// and upserts the records into the index.
func (h *Handlers) IngestStandardSet(c *gin.Context) {
	var req IngestRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	set := req.StandardSet
	if set == nil {
		if req.SetID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provide set_id or standard_set"})
			return
		}
		if h.downloader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "CSP client not configured, send the set inline"})
			return
		}
		downloaded, err := h.downloader.DownloadStandardSet(c.Request.Context(), req.SetID, req.ForceRefresh)
		if err != nil {
			slog.Error("failed to download standard set", "standard_set_id", req.SetID, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		set = downloaded
	}

	processed, diag, err := h.processor.ProcessStandardSet(set)
	if err != nil {
		h.countIngest("malformed_input")
		slog.Error("standard set rejected", "standard_set_id", req.SetID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveDiagnostics(diag)
		h.metrics.RecordsProcessedTotal.Add(float64(len(processed.Records)))
	}

	upserted, err := h.store.UpsertRecords(c.Request.Context(), processed.Records)
	if err != nil {
		h.countIngest("store_error")
		slog.Error("failed to upsert records", "standard_set_id", set.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.RecordsUpsertedTotal.Add(float64(upserted))
	}

	h.countIngest("success")
	slog.Info("ingested standard set",
		"standard_set_id", set.ID,
		"records_processed", len(processed.Records),
		"records_upserted", upserted,
		"dangling_references", diag.DanglingReferences,
		"cycles_detected", diag.CyclesDetected)

	c.JSON(http.StatusCreated, gin.H{
		"status":            "success",
		"standard_set_id":   set.ID,
		"records_processed": len(processed.Records),
		"records_upserted":  upserted,
		"diagnostics": gin.H{
			"dangling_references": diag.DanglingReferences,
			"cycles_detected":     diag.CyclesDetected,
			"empty_set":           diag.EmptySet,
		},
	})
}

func (h *Handlers) countIngest(status string) {
	if h.metrics != nil {
		h.metrics.SetsIngestedTotal.WithLabelValues(status).Inc()
	}
}

// =============================================================================
// Search
// =============================================================================

// SearchRequest describes a learning activity to match standards for.
type SearchRequest struct {
	Activity   string `json:"activity"`
	MaxResults int    `json:"max_results"`
	Grade      string `json:"grade"`
}

// SearchStandards finds standards relevant to an activity description.
func (h *Handlers) SearchStandards(c *gin.Context) {
	var req SearchRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("Invalid request body", ErrTypeInvalidInput))
		return
	}

	if strings.TrimSpace(req.Activity) == "" {
		h.countSearch("invalid_input")
		c.JSON(http.StatusBadRequest, failure("Activity description cannot be empty", ErrTypeInvalidInput))
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 5
	}

	results, err := h.store.SearchStandards(c.Request.Context(), req.Activity, req.MaxResults, req.Grade)
	if err != nil {
		h.countSearch("api_error")
		slog.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, failure("Search error: "+err.Error(), ErrTypeAPIError))
		return
	}

	if len(results) == 0 {
		h.countSearch("no_results")
		c.JSON(http.StatusOK, failure("No matching standards found", ErrTypeNoResults))
		return
	}

	h.countSearch("success")
	c.JSON(http.StatusOK, envelope{
		Success: true,
		Results: results,
		Message: fmt.Sprintf("Found %d matching standards", len(results)),
	})
}

func (h *Handlers) countSearch(status string) {
	if h.metrics != nil {
		h.metrics.SearchesTotal.WithLabelValues(status).Inc()
	}
}

// =============================================================================
// Lookup
// =============================================================================

// GetStandard fetches one record by its source GUID.
//
// Only GUIDs are accepted; statement notations and other identifier
// formats go through search instead.
func (h *Handlers) GetStandard(c *gin.Context) {
	recordID := strings.TrimSpace(c.Param("id"))
	if recordID == "" {
		c.JSON(http.StatusBadRequest, failure("Standard ID cannot be empty", ErrTypeInvalidInput))
		return
	}

	details, err := h.store.FetchStandard(c.Request.Context(), recordID)
	if err != nil {
		slog.Error("lookup failed", "record_id", recordID, "error", err)
		c.JSON(http.StatusInternalServerError, failure("Lookup error: "+err.Error(), ErrTypeAPIError))
		return
	}
	if details == nil {
		c.JSON(http.StatusNotFound, failure(
			"Standard with GUID '"+recordID+"' not found. Use search for statement notations or other identifiers.",
			ErrTypeNotFound))
		return
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Results: []store.StandardDetails{*details},
		Message: "Retrieved standard details",
	})
}

// =============================================================================
// Health
// =============================================================================

// Health reports liveness plus the index record count when the store
// is reachable.
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{"status": "healthy"}
	if stats, err := h.store.Stats(c.Request.Context()); err == nil {
		resp["total_records"] = stats.TotalRecords
	}
	c.JSON(http.StatusOK, resp)
}
