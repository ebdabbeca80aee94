// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datastore reads and writes the local standards data
// directory. The layout mirrors the downloader's cache:
//
//	{dataDir}/raw/standardSets/{setID}/data.json       raw API payload
//	{dataDir}/raw/standardSets/{setID}/processed.json  flattened records
//	{dataDir}/raw/standardSets/{setID}/.upload_complete
package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
)

const ProcessedFileName = "processed.json"

// SetStatus describes one downloaded standard set and how far through
// the pipeline it has moved.
type SetStatus struct {
	SetID             string   `json:"set_id"`
	Title             string   `json:"title"`
	Subject           string   `json:"subject"`
	EducationLevels   []string `json:"education_levels"`
	Jurisdiction      string   `json:"jurisdiction"`
	PublicationStatus string   `json:"publication_status"`
	ValidYear         string   `json:"valid_year"`
	Processed         bool     `json:"processed"`
	Uploaded          bool     `json:"uploaded"`
	UploadedAt        string   `json:"uploaded_at,omitempty"`
}

// SetDir returns the directory holding one set's files.
func SetDir(dataDir, setID string) string {
	return filepath.Join(dataDir, "raw", "standardSets", setID)
}

// rawEnvelope matches the cached API response wrapper.
type rawEnvelope struct {
	Data standards.RawStandardSet `json:"data"`
}

// LoadRawSet reads a downloaded set's data.json.
func LoadRawSet(dataDir, setID string) (*standards.RawStandardSet, error) {
	path := filepath.Join(SetDir(dataDir, setID), "data.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &env.Data, nil
}

// WriteProcessedSet writes the flattened records next to the raw
// payload they came from.
func WriteProcessedSet(dataDir, setID string, processed *standards.ProcessedStandardSet) (string, error) {
	path := filepath.Join(SetDir(dataDir, setID), ProcessedFileName)
	data, err := json.MarshalIndent(processed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding processed set %s: %w", setID, err)
	}
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadProcessedSet reads a previously written processed.json.
func LoadProcessedSet(dataDir, setID string) (*standards.ProcessedStandardSet, error) {
	path := filepath.Join(SetDir(dataDir, setID), ProcessedFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var processed standards.ProcessedStandardSet
	if err := json.Unmarshal(data, &processed); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &processed, nil
}

// IsProcessed reports whether processed.json exists for the set.
func IsProcessed(dataDir, setID string) bool {
	_, err := os.Stat(filepath.Join(SetDir(dataDir, setID), ProcessedFileName))
	return err == nil
}

// ListDownloadedSets walks the standardSets directory and returns the
// status of every set with a readable data.json. Unreadable entries
// are skipped rather than failing the listing.
func ListDownloadedSets(dataDir string) ([]SetStatus, error) {
	setsDir := filepath.Join(dataDir, "raw", "standardSets")
	entries, err := os.ReadDir(setsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", setsDir, err)
	}

	var statuses []SetStatus
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		setID := entry.Name()
		set, err := LoadRawSet(dataDir, setID)
		if err != nil {
			continue
		}
		setDir := SetDir(dataDir, setID)
		status := SetStatus{
			SetID:             set.ID,
			Title:             set.Title,
			Subject:           set.Subject,
			EducationLevels:   set.EducationLevels,
			Jurisdiction:      set.Jurisdiction.Title,
			PublicationStatus: set.Document.PublicationStatus,
			ValidYear:         set.Document.Valid,
			Processed:         IsProcessed(dataDir, setID),
			Uploaded:          store.IsUploaded(setDir),
		}
		if status.PublicationStatus == "" {
			status.PublicationStatus = "Unknown"
		}
		if status.Uploaded {
			status.UploadedAt = store.UploadTimestamp(setDir)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
