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

import "strings"

// SetContext is the set-level slice of a ProcessedRecord, computed
// once per set and copied verbatim onto every record produced from it.
// Education levels are normalized here, at the set level; individual
// nodes never carry their own grade levels.
type SetContext struct {
	StandardSetID     string
	StandardSetTitle  string
	Subject           string
	NormalizedSubject string
	EducationLevels   []string
	DocumentID        string
	DocumentValid     string
	PublicationStatus string
	JurisdictionID    string
	JurisdictionTitle string
}

// NewSetContext extracts and normalizes the set-level context from a
// raw standard set.
func NewSetContext(set *RawStandardSet) SetContext {
	return SetContext{
		StandardSetID:     set.ID,
		StandardSetTitle:  set.Title,
		Subject:           set.Subject,
		NormalizedSubject: set.NormalizedSubject,
		EducationLevels:   NormalizeEducationLevels(set.EducationLevels),
		DocumentID:        set.Document.ID,
		DocumentValid:     set.Document.Valid,
		PublicationStatus: set.Document.PublicationStatus,
		JurisdictionID:    set.Jurisdiction.ID,
		JurisdictionTitle: set.Jurisdiction.Title,
	}
}

// NormalizeEducationLevels flattens grade levels that arrive
// comma-packed inside single array elements (e.g. ["01,02", "03"]).
// Every element is split on commas, whitespace-trimmed, and the pieces
// deduplicated preserving first-seen order. The result is always a
// list of plain strings, never rejoined.
func NormalizeEducationLevels(levels []string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, len(levels))
	for _, level := range levels {
		for _, piece := range strings.Split(level, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			if _, dup := seen[piece]; dup {
				continue
			}
			seen[piece] = struct{}{}
			result = append(result, piece)
		}
	}
	return result
}

// TransformNode assembles the ProcessedRecord for one node: the set
// context plus hierarchy fields resolved from the relationship maps
// and the rendered content block.
//
// Optional source fields stay empty (and are omitted from JSON) when
// absent at the source. ParentID is copied through as-is so roots keep
// an explicit null.
func (m *RelationshipMaps) TransformNode(node RawStandardNode, ctx SetContext) ProcessedRecord {
	ancestors, rootID, _ := m.resolveAncestry(node)
	return m.transformResolved(node, ctx, ancestors, rootID)
}

// transformResolved is TransformNode with the ancestry walk already
// done, so the processor can reuse its diagnostics walk.
func (m *RelationshipMaps) transformResolved(node RawStandardNode, ctx SetContext, ancestors []string, rootID string) ProcessedRecord {
	isRoot := node.ParentID == nil

	_, isLeaf := m.LeafIDs[node.ID]

	childIDs := m.ParentToChildren[node.ID]
	if childIDs == nil {
		childIDs = []string{}
	}
	if ancestors == nil {
		ancestors = []string{}
	}

	return ProcessedRecord{
		ID:      node.ID,
		Content: BuildContent(node, ancestors, m.IDToNode),

		StandardSetID:     ctx.StandardSetID,
		StandardSetTitle:  ctx.StandardSetTitle,
		Subject:           ctx.Subject,
		NormalizedSubject: ctx.NormalizedSubject,
		EducationLevels:   ctx.EducationLevels,
		DocumentID:        ctx.DocumentID,
		DocumentValid:     ctx.DocumentValid,
		PublicationStatus: ctx.PublicationStatus,
		JurisdictionID:    ctx.JurisdictionID,
		JurisdictionTitle: ctx.JurisdictionTitle,

		ASNIdentifier:     node.ASNIdentifier,
		StatementNotation: node.StatementNotation,
		StatementLabel:    node.StatementLabel,
		Depth:             node.Depth,
		IsLeaf:            isLeaf,
		IsRoot:            isRoot,

		ParentID:     node.ParentID,
		RootID:       rootID,
		AncestorIDs:  ancestors,
		ChildIDs:     childIDs,
		SiblingCount: m.SiblingCount(node),
	}
}
