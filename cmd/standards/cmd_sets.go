// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianStandards/cmd/standards/config"
	"github.com/AleutianAI/AleutianStandards/cmd/standards/datastore"
	"github.com/AleutianAI/AleutianStandards/pkg/standards"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/csp"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// setFilterFromFlags collects the download filter flags.
func setFilterFromFlags() csp.SetFilter {
	filter := csp.SetFilter{
		PublicationStatus: filterStatus,
		ValidYear:         filterYear,
		TitleSearch:       filterTitle,
		SubjectSearch:     filterSubject,
	}
	if filterLevels != "" {
		for _, level := range strings.Split(filterLevels, ",") {
			if level = strings.TrimSpace(level); level != "" {
				filter.EducationLevels = append(filter.EducationLevels, level)
			}
		}
	}
	return filter
}

// =============================================================================
// Download
// =============================================================================

func runDownload(cmd *cobra.Command, args []string) {
	if len(args) == 0 && downloadJurisdiction == "" {
		log.Fatal("Error: provide a set id or --jurisdiction")
	}
	if len(args) == 1 && downloadJurisdiction != "" {
		log.Fatal("Error: cannot combine a set id with --jurisdiction")
	}

	client, err := newCSPClient()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	ctx := context.Background()
	dataDir := config.Global.ResolvedDataDir()

	// Single set by id.
	if len(args) == 1 {
		setID := args[0]
		if dryRun {
			fmt.Printf("[dry run] would download standard set %s\n", setID)
			return
		}
		if _, err := client.DownloadStandardSet(ctx, setID, forceRefresh); err != nil {
			log.Fatalf("Error downloading %s: %v", setID, err)
		}
		fmt.Printf("Downloaded standard set %s\n", setID)
		if path, err := processSet(dataDir, setID); err != nil {
			log.Printf("Warning: could not process %s: %v", setID, err)
		} else {
			fmt.Printf("Processed to %s\n", path)
		}
		return
	}

	// Whole jurisdiction with filters.
	filter := setFilterFromFlags()
	if dryRun {
		details, err := client.JurisdictionDetails(ctx, downloadJurisdiction, forceRefresh)
		if err != nil {
			log.Fatalf("Error fetching jurisdiction %s: %v", downloadJurisdiction, err)
		}
		matched := 0
		for _, ref := range details.StandardSets {
			if filter.Matches(ref) {
				matched++
				fmt.Printf("[dry run] would download %s (%s)\n", ref.ID, ref.Title)
			}
		}
		fmt.Printf("[dry run] %d of %d sets match\n", matched, len(details.StandardSets))
		return
	}

	setIDs, err := client.DownloadSetsByJurisdiction(ctx, downloadJurisdiction, filter, forceRefresh)
	if err != nil {
		log.Fatalf("Error downloading sets for %s: %v", downloadJurisdiction, err)
	}
	fmt.Printf("Downloaded %d standard sets\n", len(setIDs))
	for _, setID := range setIDs {
		if _, err := processSet(dataDir, setID); err != nil {
			log.Printf("Warning: could not process %s: %v", setID, err)
		}
	}
}

// =============================================================================
// Process
// =============================================================================

// processSet flattens one downloaded set and writes processed.json.
func processSet(dataDir, setID string) (string, error) {
	raw, err := datastore.LoadRawSet(dataDir, setID)
	if err != nil {
		return "", err
	}
	processed, diag, err := standards.NewProcessor().ProcessStandardSet(raw)
	if err != nil {
		return "", err
	}
	if diag.DanglingReferences > 0 || diag.CyclesDetected > 0 {
		log.Printf("Set %s had structural defects: %d dangling parents, %d cycles",
			setID, diag.DanglingReferences, diag.CyclesDetected)
	}
	return datastore.WriteProcessedSet(dataDir, setID, processed)
}

func runProcess(cmd *cobra.Command, args []string) {
	path, err := processSet(config.Global.ResolvedDataDir(), args[0])
	if err != nil {
		log.Fatalf("Error processing %s: %v", args[0], err)
	}
	fmt.Printf("Processed to %s\n", path)
}

// =============================================================================
// Upload
// =============================================================================

// uploadSet sends one set's raw payload to the ingestor, which
// re-runs the flattening and writes the records to the index. The
// upload marker is only written after a 2xx response.
func uploadSet(client *http.Client, dataDir, setID string) error {
	raw, err := datastore.LoadRawSet(dataDir, setID)
	if err != nil {
		return err
	}

	postBody, err := json.Marshal(map[string]any{"standard_set": raw})
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", setID, err)
	}
	url := strings.TrimRight(config.Global.IngestorURL, "/") + "/v1/standardsets/ingest"
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		return fmt.Errorf("posting %s to the ingestor: %w", setID, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ingestor rejected %s, status %d: %s", setID, resp.StatusCode, string(bodyBytes))
	}

	var ingestResp map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &ingestResp); err == nil {
		fmt.Printf("Uploaded %s (records: %.0f)\n", setID, ingestResp["records_upserted"])
	} else {
		fmt.Printf("Uploaded %s\n", setID)
	}
	return store.MarkUploaded(datastore.SetDir(dataDir, setID))
}

func runUpload(cmd *cobra.Command, args []string) {
	if len(args) == 0 && !uploadAll {
		log.Fatal("Error: provide a set id or --all")
	}
	dataDir := config.Global.ResolvedDataDir()
	client := &http.Client{Timeout: 5 * time.Minute}

	if len(args) == 1 {
		if err := uploadSet(client, dataDir, args[0]); err != nil {
			log.Fatalf("Error uploading %s: %v", args[0], err)
		}
		return
	}

	statuses, err := datastore.ListDownloadedSets(dataDir)
	if err != nil {
		log.Fatalf("Error listing downloaded sets: %v", err)
	}
	uploaded, failed := 0, 0
	for _, status := range statuses {
		if status.Uploaded {
			continue
		}
		if err := uploadSet(client, dataDir, status.SetID); err != nil {
			log.Printf("Error uploading %s: %v", status.SetID, err)
			failed++
			continue
		}
		uploaded++
	}
	fmt.Printf("Uploaded %d sets (%d failed)\n", uploaded, failed)
}

// =============================================================================
// Pipeline
// =============================================================================

func runPipeline(cmd *cobra.Command, args []string) {
	if downloadJurisdiction == "" {
		log.Fatal("Error: --jurisdiction is required")
	}
	client, err := newCSPClient()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	ctx := context.Background()
	dataDir := config.Global.ResolvedDataDir()

	setIDs, err := client.DownloadSetsByJurisdiction(ctx, downloadJurisdiction, setFilterFromFlags(), forceRefresh)
	if err != nil {
		log.Fatalf("Error downloading sets for %s: %v", downloadJurisdiction, err)
	}
	fmt.Printf("Downloaded %d standard sets, processing with %d workers\n", len(setIDs), pipelineWorkers)

	httpClient := &http.Client{Timeout: 5 * time.Minute}
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(pipelineWorkers)
	for _, setID := range setIDs {
		g.Go(func() error {
			if _, err := processSet(dataDir, setID); err != nil {
				return fmt.Errorf("processing %s: %w", setID, err)
			}
			return uploadSet(httpClient, dataDir, setID)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	fmt.Printf("Pipeline complete: %d sets downloaded, processed, and uploaded\n", len(setIDs))
}
