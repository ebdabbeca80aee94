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

import "sort"

// RelationshipMaps holds the adjacency structures derived from one raw
// node map. They are rebuilt for every set and discarded when the set
// finishes processing; nothing here is persisted or shared.
type RelationshipMaps struct {
	// IDToNode maps node identifier to the node itself.
	IDToNode map[string]RawStandardNode

	// ParentToChildren maps a parent identifier to its children in
	// position-ascending order. Keys exist for every non-null parent
	// pointer seen, including dangling ones.
	ParentToChildren map[string][]string

	// LeafIDs holds identifiers never referenced as anyone's parent.
	LeafIDs map[string]struct{}

	// RootIDs holds identifiers whose parent pointer is null.
	RootIDs map[string]struct{}
}

// BuildRelationshipMaps derives lookup structures from a raw node map
// in a single sweep plus one sort pass per sibling list.
//
// # Description
//
// Children are grouped under each non-null parent pointer and then
// sorted by the referenced node's Position, ascending. Position ties
// break on node identifier so the result is deterministic regardless
// of map iteration order. A parent pointer that references an
// identifier absent from the map is kept as-is; the resolver deals
// with it downstream, never this builder.
//
// # Inputs
//
//   - nodes: the raw node map, keyed by node identifier.
//
// # Outputs
//
//   - *RelationshipMaps: adjacency structures for the set.
func BuildRelationshipMaps(nodes map[string]RawStandardNode) *RelationshipMaps {
	m := &RelationshipMaps{
		IDToNode:         make(map[string]RawStandardNode, len(nodes)),
		ParentToChildren: make(map[string][]string),
		LeafIDs:          make(map[string]struct{}),
		RootIDs:          make(map[string]struct{}),
	}

	for id, node := range nodes {
		m.IDToNode[id] = node
		if node.ParentID == nil {
			m.RootIDs[id] = struct{}{}
		} else {
			m.ParentToChildren[*node.ParentID] = append(m.ParentToChildren[*node.ParentID], id)
		}
	}

	for parentID, children := range m.ParentToChildren {
		sort.Slice(children, func(i, j int) bool {
			a, b := m.IDToNode[children[i]], m.IDToNode[children[j]]
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return children[i] < children[j]
		})
		m.ParentToChildren[parentID] = children
	}

	// Leaves are the complement of the parent key set.
	for id := range nodes {
		if _, isParent := m.ParentToChildren[id]; !isParent {
			m.LeafIDs[id] = struct{}{}
		}
	}

	return m
}

// documentOrder returns node identifiers sorted by Position ascending,
// ties broken by identifier. This stands in for the source document
// order, which a JSON object does not preserve through parsing.
func documentOrder(nodes map[string]RawStandardNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := nodes[ids[i]], nodes[ids[j]]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return ids[i] < ids[j]
	})
	return ids
}
