// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package standards

// RawStandardNode is a single standard as delivered by the Common
// Standards Project API. Optional text fields use the empty string for
// "absent"; ParentID uses nil so that a null parent survives the JSON
// round trip distinct from a missing one.
type RawStandardNode struct {
	ID                string  `json:"id" validate:"required"`
	ASNIdentifier     string  `json:"asnIdentifier,omitempty"`
	Position          int     `json:"position"`
	Depth             int     `json:"depth" validate:"gte=0"`
	StatementNotation string  `json:"statementNotation,omitempty"`
	StatementLabel    string  `json:"statementLabel,omitempty"`
	Description       string  `json:"description" validate:"required"`
	ParentID          *string `json:"parentId"`
	// AncestorIDs is what the source claims the ancestry is. It is
	// parsed so nothing is lost on a round trip, but resolution never
	// reads it: ancestor order is rebuilt from parent pointers.
	AncestorIDs []string `json:"ancestorIds,omitempty"`
}

// RawDocument is the document metadata block of a standard set.
type RawDocument struct {
	ID                string `json:"id"`
	Title             string `json:"title,omitempty"`
	Valid             string `json:"valid"`
	ASNIdentifier     string `json:"asnIdentifier,omitempty"`
	PublicationStatus string `json:"publicationStatus,omitempty"`
}

// RawJurisdiction is the jurisdiction reference inside a standard set.
type RawJurisdiction struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// RawStandardSet is a full standard set payload: set-level context plus
// the flat node map keyed by node identifier.
type RawStandardSet struct {
	ID                string                     `json:"id" validate:"required"`
	Title             string                     `json:"title"`
	Subject           string                     `json:"subject"`
	NormalizedSubject string                     `json:"normalizedSubject,omitempty"`
	EducationLevels   []string                   `json:"educationLevels"`
	Document          RawDocument                `json:"document"`
	Jurisdiction      RawJurisdiction            `json:"jurisdiction"`
	Standards         map[string]RawStandardNode `json:"standards"`
}

// ProcessedRecord is one flattened, self-describing standard. It is
// created once by TransformNode and never mutated afterwards.
//
// Optional source fields (ASNIdentifier, StatementNotation,
// StatementLabel, NormalizedSubject, PublicationStatus) are omitted
// from JSON when absent. ParentID is the one exception: it is always
// emitted and is explicitly null for roots, because "no parent" is a
// fact about the node rather than a gap in the source data.
type ProcessedRecord struct {
	ID      string `json:"_id"`
	Content string `json:"content"`

	// Set-level context, identical on every record of the same set.
	StandardSetID     string   `json:"standard_set_id"`
	StandardSetTitle  string   `json:"standard_set_title"`
	Subject           string   `json:"subject"`
	NormalizedSubject string   `json:"normalized_subject,omitempty"`
	EducationLevels   []string `json:"education_levels"`
	DocumentID        string   `json:"document_id"`
	DocumentValid     string   `json:"document_valid"`
	PublicationStatus string   `json:"publication_status,omitempty"`
	JurisdictionID    string   `json:"jurisdiction_id"`
	JurisdictionTitle string   `json:"jurisdiction_title"`

	// Node identity and position.
	ASNIdentifier     string `json:"asn_identifier,omitempty"`
	StatementNotation string `json:"statement_notation,omitempty"`
	StatementLabel    string `json:"statement_label,omitempty"`
	Depth             int    `json:"depth"`
	IsLeaf            bool   `json:"is_leaf"`
	IsRoot            bool   `json:"is_root"`

	// Hierarchy relationships, rebuilt from parent pointers.
	ParentID     *string  `json:"parent_id"`
	RootID       string   `json:"root_id"`
	AncestorIDs  []string `json:"ancestor_ids"`
	ChildIDs     []string `json:"child_ids"`
	SiblingCount int      `json:"sibling_count"`
}

// ProcessedStandardSet is the complete output for one input set, one
// record per input node, in document order.
type ProcessedStandardSet struct {
	Records []ProcessedRecord `json:"records"`
}

// Diagnostics reports malformed-structure events that were resolved
// silently during processing. These never abort a set; the ingestor
// surfaces them as metrics.
type Diagnostics struct {
	// DanglingReferences counts nodes whose parent chain stopped at a
	// pointer to an identifier absent from the set.
	DanglingReferences int

	// CyclesDetected counts nodes whose parent chain revisited an
	// identifier.
	CyclesDetected int

	// EmptySet is true when the input was structurally valid but
	// carried no nodes. The result is an empty record list, not an
	// error.
	EmptySet bool
}
