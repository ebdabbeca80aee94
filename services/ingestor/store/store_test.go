// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
)

func sampleRecord() standards.ProcessedRecord {
	parent := "PARENT1"
	return standards.ProcessedRecord{
		ID:                "NODE1",
		Content:           "Depth 0: Math\nDepth 1: Count to 10",
		StandardSetID:     "SET1",
		StandardSetTitle:  "Kindergarten Math",
		Subject:           "Mathematics",
		NormalizedSubject: "Math",
		EducationLevels:   []string{"K"},
		DocumentID:        "DOC1",
		DocumentValid:     "2017",
		PublicationStatus: "Published",
		JurisdictionID:    "J1",
		JurisdictionTitle: "Testland",
		ASNIdentifier:     "S114030A",
		StatementNotation: "K.CC.1",
		StatementLabel:    "Standard",
		Depth:             1,
		IsLeaf:            true,
		ParentID:          &parent,
		RootID:            "PARENT1",
		AncestorIDs:       []string{"PARENT1"},
		ChildIDs:          []string{},
		SiblingCount:      0,
	}
}

// =============================================================================
// ObjectID Tests
// =============================================================================

func TestObjectID_Deterministic(t *testing.T) {
	first := ObjectID("NODE1")
	second := ObjectID("NODE1")
	assert.Equal(t, first, second, "same record id must map to the same object id")

	other := ObjectID("NODE2")
	assert.NotEqual(t, first, other, "different record ids must not collide")
}

func TestObjectID_ValidUUID(t *testing.T) {
	id := string(ObjectID("NODE1"))
	// 8-4-4-4-12 layout.
	require.Len(t, id, 36)
	assert.Equal(t, byte('-'), id[8])
	assert.Equal(t, byte('-'), id[13])
	assert.Equal(t, byte('-'), id[18])
	assert.Equal(t, byte('-'), id[23])
}

// =============================================================================
// recordProperties Tests
// =============================================================================

func TestRecordProperties_AllFields(t *testing.T) {
	props := recordProperties(sampleRecord())

	assert.Equal(t, "NODE1", props["record_id"])
	assert.Equal(t, "SET1", props["standard_set_id"])
	assert.Equal(t, "PARENT1", props["parent_id"])
	assert.Equal(t, "K.CC.1", props["statement_notation"])
	assert.Equal(t, "Standard", props["statement_label"])
	assert.Equal(t, "S114030A", props["asn_identifier"])
	assert.Equal(t, "Math", props["normalized_subject"])
	assert.Equal(t, "DOC1", props["document_id"])
	assert.Equal(t, "2017", props["document_valid"])
	assert.Equal(t, "Published", props["publication_status"])
	assert.Equal(t, true, props["is_leaf"])
	assert.Equal(t, []string{"PARENT1"}, props["ancestor_ids"])
	assert.Equal(t, []string{}, props["child_ids"])
}

func TestRecordProperties_RootOmitsParentID(t *testing.T) {
	rec := sampleRecord()
	rec.ParentID = nil
	rec.IsRoot = true

	props := recordProperties(rec)

	// A null parent must be absent from the property map entirely,
	// never present as nil.
	_, present := props["parent_id"]
	assert.False(t, present, "parent_id must be omitted for roots")
}

func TestRecordProperties_EmptyOptionalsOmitted(t *testing.T) {
	rec := sampleRecord()
	rec.StatementNotation = ""
	rec.StatementLabel = ""
	rec.ASNIdentifier = ""
	rec.NormalizedSubject = ""
	rec.PublicationStatus = ""

	props := recordProperties(rec)

	// Empty optional source fields must be absent from the property
	// map entirely, never present as empty strings.
	for _, name := range []string{
		"statement_notation", "statement_label", "asn_identifier",
		"normalized_subject", "publication_status",
	} {
		_, present := props[name]
		assert.False(t, present, "empty %s must be omitted", name)
	}

	// Document context is not optional and stays present.
	assert.Equal(t, "DOC1", props["document_id"])
	assert.Equal(t, "2017", props["document_valid"])
}

// =============================================================================
// searchFilter Tests
// =============================================================================

func TestSearchFilter_LeafOnlyWithoutGrade(t *testing.T) {
	filter := searchFilter("")
	require.NotNil(t, filter)

	// A single-clause filter serializes without an operands block.
	s := filter.String()
	assert.Contains(t, s, "is_leaf")
	assert.NotContains(t, s, "operands")
}

func TestSearchFilter_GradeAddsConjunction(t *testing.T) {
	filter := searchFilter("01")
	require.NotNil(t, filter)

	s := filter.String()
	assert.Contains(t, s, "is_leaf")
	assert.Contains(t, s, "education_levels")
	assert.Contains(t, s, "And")
}

// =============================================================================
// Schema Tests
// =============================================================================

func TestGetStandardRecordSchema(t *testing.T) {
	class := GetStandardRecordSchema()

	require.Equal(t, StandardRecordClassName, class.Class)
	assert.Equal(t, "none", class.Vectorizer, "vectors are supplied externally")

	names := make(map[string]bool, len(class.Properties))
	for _, prop := range class.Properties {
		names[prop.Name] = true
	}
	for _, want := range []string{
		"content", "record_id", "standard_set_id", "education_levels",
		"is_leaf", "is_root", "parent_id", "root_id",
		"ancestor_ids", "child_ids", "sibling_count", "depth",
		"asn_identifier", "statement_notation", "statement_label",
		"normalized_subject", "document_id", "document_valid",
		"publication_status",
	} {
		assert.True(t, names[want], "schema missing property %q", want)
	}
}

func TestSchemaCoversUpsertPayload(t *testing.T) {
	class := GetStandardRecordSchema()
	names := make(map[string]bool, len(class.Properties))
	for _, prop := range class.Properties {
		names[prop.Name] = true
	}

	// Every property a fully-populated record upserts must be
	// declared in the class, or the index drops it silently.
	for name := range recordProperties(sampleRecord()) {
		assert.True(t, names[name], "upsert payload key %q missing from schema", name)
	}
}

// =============================================================================
// Upload Marker Tests
// =============================================================================

func TestUploadMarkers(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, IsUploaded(dir), "fresh directory must not be marked")
	assert.Empty(t, UploadTimestamp(dir))

	require.NoError(t, MarkUploaded(dir))

	assert.True(t, IsUploaded(dir))
	ts := UploadTimestamp(dir)
	require.NotEmpty(t, ts)
	assert.NotContains(t, ts, "\n", "timestamp must be trimmed")
}
