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
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianStandards/pkg/validation"
)

// SearchResult is one semantic-search hit.
type SearchResult struct {
	RecordID          string   `json:"_id"`
	Score             float64  `json:"score"`
	Content           string   `json:"content"`
	StandardSetID     string   `json:"standard_set_id"`
	StandardSetTitle  string   `json:"standard_set_title"`
	Subject           string   `json:"subject"`
	EducationLevels   []string `json:"education_levels"`
	JurisdictionTitle string   `json:"jurisdiction_title"`
	StatementNotation string   `json:"statement_notation,omitempty"`
	Depth             int      `json:"depth"`
}

// StandardDetails is a full record fetched by GUID.
type StandardDetails struct {
	RecordID   string                 `json:"_id"`
	Properties map[string]interface{} `json:"properties"`
}

// IndexStats summarizes the index contents.
type IndexStats struct {
	TotalRecords int64 `json:"total_records"`
}

var searchFields = []graphql.Field{
	{Name: "content"},
	{Name: "record_id"},
	{Name: "standard_set_id"},
	{Name: "standard_set_title"},
	{Name: "subject"},
	{Name: "education_levels"},
	{Name: "jurisdiction_title"},
	{Name: "statement_notation"},
	{Name: "depth"},
	{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
}

// SearchStandards runs semantic search over record content.
//
// Results are restricted to leaf nodes: parents are navigation
// categories, not teachable standards. A non-empty grade narrows to
// sets covering that grade level.
func (s *Store) SearchStandards(ctx context.Context, query string, topK int, grade string) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "store.SearchStandards")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", topK), attribute.String("grade", grade))

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		topK = 5
	}
	if grade != "" {
		sanitized, err := validation.SanitizeGradeLevel(grade)
		if err != nil {
			return nil, err
		}
		grade = sanitized
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(StandardRecordClassName).
		WithFields(searchFields...).
		WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(vectors[0])).
		WithWhere(searchFilter(grade)).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search query: %s", result.Errors[0].Message)
	}

	return parseSearchResults(result.Data)
}

// searchFilter restricts hits to leaves, plus the grade level when
// one was given.
func searchFilter(grade string) *filters.WhereBuilder {
	leafOnly := filters.Where().
		WithPath([]string{"is_leaf"}).
		WithOperator(filters.Equal).
		WithValueBoolean(true)

	if grade == "" {
		return leafOnly
	}

	return filters.Where().
		WithOperator(filters.And).
		WithOperands([]*filters.WhereBuilder{
			leafOnly,
			filters.Where().
				WithPath([]string{"education_levels"}).
				WithOperator(filters.ContainsAny).
				WithValueText(grade),
		})
}

// parseSearchResults unpacks the GraphQL response map.
func parseSearchResults(data map[string]models.JSONObject) ([]SearchResult, error) {
	getMap, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	items, ok := getMap[StandardRecordClassName].([]interface{})
	if !ok {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		result := SearchResult{
			RecordID:          stringProp(obj, "record_id"),
			Content:           stringProp(obj, "content"),
			StandardSetID:     stringProp(obj, "standard_set_id"),
			StandardSetTitle:  stringProp(obj, "standard_set_title"),
			Subject:           stringProp(obj, "subject"),
			EducationLevels:   stringSliceProp(obj, "education_levels"),
			JurisdictionTitle: stringProp(obj, "jurisdiction_title"),
			StatementNotation: stringProp(obj, "statement_notation"),
			Depth:             intProp(obj, "depth"),
		}
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				result.Score = certainty
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// FetchStandard retrieves one record by its source GUID. Returns nil
// when no such object exists.
func (s *Store) FetchStandard(ctx context.Context, recordID string) (*StandardDetails, error) {
	ctx, span := tracer.Start(ctx, "store.FetchStandard")
	defer span.End()

	if err := validation.ValidateStandardID(recordID); err != nil {
		return nil, err
	}

	objects, err := s.client.Data().ObjectsGetter().
		WithClassName(StandardRecordClassName).
		WithID(string(ObjectID(recordID))).
		Do(ctx)
	if err != nil {
		// The client reports a missing object as an error; treat 404
		// as not-found rather than failure.
		if strings.Contains(err.Error(), "404") {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch standard %s: %w", recordID, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}

	props, _ := objects[0].Properties.(map[string]interface{})
	return &StandardDetails{RecordID: recordID, Properties: props}, nil
}

// Stats returns the record count of the index.
func (s *Store) Stats(ctx context.Context) (*IndexStats, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(StandardRecordClassName).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		}).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate query: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("aggregate query: %s", result.Errors[0].Message)
	}

	stats := &IndexStats{}
	if agg, ok := result.Data["Aggregate"].(map[string]interface{}); ok {
		if classes, ok := agg[StandardRecordClassName].([]interface{}); ok && len(classes) > 0 {
			if entry, ok := classes[0].(map[string]interface{}); ok {
				if meta, ok := entry["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						stats.TotalRecords = int64(count)
					}
				}
			}
		}
	}
	return stats, nil
}

func stringProp(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func stringSliceProp(obj map[string]interface{}, key string) []string {
	raw, ok := obj[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intProp(obj map[string]interface{}, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}
