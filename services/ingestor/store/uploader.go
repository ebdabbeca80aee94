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
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianStandards/pkg/standards"
)

var tracer = otel.Tracer("aleutian.standards.store")

// upsertBatchSize bounds objects per batch request.
const upsertBatchSize = 100

// Store wraps a Weaviate client and an embedder into the record
// persistence layer.
type Store struct {
	client   *weaviate.Client
	embedder Embedder
}

// NewStore creates a Store.
func NewStore(client *weaviate.Client, embedder Embedder) *Store {
	return &Store{client: client, embedder: embedder}
}

// UpsertRecords embeds and writes all records of a processed set,
// returning the number of objects the index accepted.
//
// Object IDs are deterministic (sha256 of the record GUID folded into
// a UUID), so re-ingesting a set overwrites its previous objects
// instead of duplicating them. Per-item failures are logged and
// counted, not fatal.
func (s *Store) UpsertRecords(ctx context.Context, records []standards.ProcessedRecord) (int, error) {
	ctx, span := tracer.Start(ctx, "store.UpsertRecords")
	defer span.End()
	span.SetAttributes(attribute.Int("record_count", len(records)))

	if len(records) == 0 {
		return 0, nil
	}

	upserted := 0
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		n, err := s.upsertBatch(ctx, records[start:end])
		upserted += n
		if err != nil {
			return upserted, err
		}
	}

	slog.Info("upserted records", "accepted", upserted, "total", len(records))
	return upserted, nil
}

func (s *Store) upsertBatch(ctx context.Context, batch []standards.ProcessedRecord) (int, error) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d records", len(vectors), len(batch))
	}

	objects := make([]*models.Object, len(batch))
	for i, rec := range batch {
		objects[i] = &models.Object{
			Class:      StandardRecordClassName,
			ID:         ObjectID(rec.ID),
			Vector:     vectors[i],
			Properties: recordProperties(rec),
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch import: %w", err)
	}

	accepted := 0
	for _, item := range resp {
		if item.Result != nil && item.Result.Status != nil && *item.Result.Status == "SUCCESS" {
			accepted++
			continue
		}
		if item.Result != nil && item.Result.Errors != nil {
			for _, errItem := range item.Result.Errors.Error {
				slog.Warn("batch item rejected", "error", errItem.Message)
			}
		} else {
			slog.Warn("batch item rejected without detail")
		}
	}
	return accepted, nil
}

// ObjectID folds a record GUID into the deterministic Weaviate object
// UUID. Same record id, same object, every run.
func ObjectID(recordID string) strfmt.UUID {
	hash := sha256.Sum256([]byte(recordID))
	objectUUID, _ := uuid.FromBytes(hash[:16])
	return strfmt.UUID(objectUUID.String())
}

// recordProperties maps a processed record onto the class properties.
//
// parent_id is omitted entirely for roots: the index rejects explicit
// nulls, and a missing property round-trips as "no parent" just as
// well. Empty optional strings are omitted for the same reason.
func recordProperties(rec standards.ProcessedRecord) map[string]interface{} {
	props := map[string]interface{}{
		"content":            rec.Content,
		"record_id":          rec.ID,
		"standard_set_id":    rec.StandardSetID,
		"standard_set_title": rec.StandardSetTitle,
		"subject":            rec.Subject,
		"education_levels":   rec.EducationLevels,
		"jurisdiction_id":    rec.JurisdictionID,
		"jurisdiction_title": rec.JurisdictionTitle,
		"document_id":        rec.DocumentID,
		"document_valid":     rec.DocumentValid,
		"depth":              rec.Depth,
		"is_leaf":            rec.IsLeaf,
		"is_root":            rec.IsRoot,
		"root_id":            rec.RootID,
		"ancestor_ids":       rec.AncestorIDs,
		"child_ids":          rec.ChildIDs,
		"sibling_count":      rec.SiblingCount,
	}
	if rec.ParentID != nil {
		props["parent_id"] = *rec.ParentID
	}
	if rec.StatementNotation != "" {
		props["statement_notation"] = rec.StatementNotation
	}
	if rec.StatementLabel != "" {
		props["statement_label"] = rec.StatementLabel
	}
	if rec.ASNIdentifier != "" {
		props["asn_identifier"] = rec.ASNIdentifier
	}
	if rec.NormalizedSubject != "" {
		props["normalized_subject"] = rec.NormalizedSubject
	}
	if rec.PublicationStatus != "" {
		props["publication_status"] = rec.PublicationStatus
	}
	return props
}
