// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package csp is a client for the Common Standards Project API
// (https://commonstandardsproject.com/api/v1).
//
// The client authenticates with an Api-Key header, rate-limits itself
// client-side, retries transient failures with exponential backoff,
// and caches every successful response as JSON under a local data
// directory so repeat runs never re-fetch unchanged payloads.
package csp

import "github.com/AleutianAI/AleutianStandards/pkg/standards"

// Jurisdiction is one entry of the /jurisdictions listing.
type Jurisdiction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// SetReference is the standard-set metadata carried inside a
// jurisdiction's detail payload. It describes a set without its node
// hierarchy; the full set comes from DownloadStandardSet.
type SetReference struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	Subject         string                `json:"subject"`
	EducationLevels []string              `json:"educationLevels"`
	Document        standards.RawDocument `json:"document"`
}

// JurisdictionDetails is the /jurisdictions/{id} payload: the
// jurisdiction itself plus references to every standard set it
// publishes.
type JurisdictionDetails struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Type         string         `json:"type"`
	StandardSets []SetReference `json:"standardSets"`
}

// SetFilter narrows jurisdiction set references before download.
// Zero-value fields match everything; set fields are combined with
// AND logic.
type SetFilter struct {
	// EducationLevels matches when the set shares at least one level
	// (case-insensitive).
	EducationLevels []string

	// PublicationStatus matches the document's publication status
	// (case-insensitive, empty statuses on the set always pass).
	PublicationStatus string

	// ValidYear matches the document's valid string exactly.
	ValidYear string

	// TitleSearch is a case-insensitive substring match on the title.
	TitleSearch string

	// SubjectSearch is a case-insensitive substring match on the subject.
	SubjectSearch string
}

// API envelope: every CSP response wraps its payload in {"data": ...}.

type jurisdictionsEnvelope struct {
	Data []Jurisdiction `json:"data"`
}

type jurisdictionDetailsEnvelope struct {
	Data JurisdictionDetails `json:"data"`
}

type standardSetEnvelope struct {
	Data standards.RawStandardSet `json:"data"`
}
