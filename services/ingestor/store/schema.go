// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store persists processed standard records in Weaviate and
// serves semantic search and direct lookups over them.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// StandardRecordClassName is the Weaviate class holding one object per
// processed standard node.
const StandardRecordClassName = "StandardRecord"

// GetStandardRecordSchema returns the class definition for processed
// standard records. Vectors are supplied externally at upsert time, so
// the class carries no vectorizer.
func GetStandardRecordSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       StandardRecordClassName,
		Description: "A flattened curriculum standard with full ancestry context.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "Depth-annotated text block, one line per level root to self.",
				Tokenization: "word",
			},
			{
				Name:            "record_id",
				DataType:        []string{"text"},
				Description:     "The source node GUID.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "standard_set_id",
				DataType:        []string{"text"},
				Description:     "GUID of the standard set this record belongs to.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "standard_set_title",
				DataType:    []string{"text"},
				Description: "Human-readable title of the standard set.",
			},
			{
				Name:            "subject",
				DataType:        []string{"text"},
				Description:     "Subject as published by the jurisdiction.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "normalized_subject",
				DataType:    []string{"text"},
				Description: "Canonical subject name, when the source provides one.",
			},
			{
				Name:            "education_levels",
				DataType:        []string{"text[]"},
				Description:     "Normalized grade levels for the whole set.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "jurisdiction_id",
				DataType:        []string{"text"},
				Description:     "GUID of the publishing jurisdiction.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "jurisdiction_title",
				DataType:    []string{"text"},
				Description: "Name of the publishing jurisdiction.",
			},
			{
				Name:            "document_id",
				DataType:        []string{"text"},
				Description:     "GUID of the set's source document.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "document_valid",
				DataType:        []string{"text"},
				Description:     "Year the document is valid for.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "publication_status",
				DataType:        []string{"text"},
				Description:     "Document publication status, when present.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "asn_identifier",
				DataType:        []string{"text"},
				Description:     "ASN identifier of the node, when present.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "statement_notation",
				DataType:        []string{"text"},
				Description:     "Human-facing code like 1.G.K.3, when present.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "statement_label",
				DataType:    []string{"text"},
				Description: "Node type label like Standard or Component, when present.",
			},
			{
				Name:            "depth",
				DataType:        []string{"int"},
				Description:     "Hierarchy depth, 0 for roots.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "is_leaf",
				DataType:        []string{"boolean"},
				Description:     "True when the node has no children.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "is_root",
				DataType:        []string{"boolean"},
				Description:     "True when the node has no parent.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "parent_id",
				DataType:        []string{"text"},
				Description:     "GUID of the immediate parent. Omitted for roots.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "root_id",
				DataType:        []string{"text"},
				Description:     "GUID of the resolved root of this node's chain.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:        "ancestor_ids",
				DataType:    []string{"text[]"},
				Description: "Ancestor GUIDs ordered root first.",
			},
			{
				Name:        "child_ids",
				DataType:    []string{"text[]"},
				Description: "Direct child GUIDs in position order.",
			},
			{
				Name:        "sibling_count",
				DataType:    []string{"int"},
				Description: "Number of other nodes sharing the parent.",
			},
		},
	}
}

// EnsureSchema creates the StandardRecord class if it does not exist.
// Existing classes are left untouched.
func EnsureSchema(ctx context.Context, client *weaviate.Client) error {
	class := GetStandardRecordSchema()
	slog.Info("checking schema", "class", class.Class)

	_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx)
	if err == nil {
		slog.Info("schema already exists", "class", class.Class)
		return nil
	}

	slog.Info("schema not found, creating it", "class", class.Class)
	if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create schema for class %s: %w", class.Class, err)
	}
	slog.Info("successfully created schema", "class", class.Class)
	return nil
}
