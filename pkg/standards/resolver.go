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

// stopReason records why an upward walk over parent pointers ended.
type stopReason int

const (
	// stopAtRoot: the chain ended at a null parent pointer.
	stopAtRoot stopReason = iota
	// stopDangling: the chain pointed at an identifier absent from the set.
	stopDangling
	// stopCycle: the chain revisited an identifier already traversed.
	stopCycle
)

// walkAncestors climbs the parent chain of node, collecting each
// newly-visited ancestor identifier nearest-parent first. The walk
// carries an explicit visited set, so it terminates in at most one
// step per node in the set no matter how malformed the pointers are:
//
//   - null parent: true root reached.
//   - parent absent from IDToNode: dangling, the last node that does
//     exist is the effective root.
//   - parent already visited: cycle, traversal stops where it closed.
//
// The collected slice is in nearest-parent-first order; callers
// reverse it when they need root-first.
func (m *RelationshipMaps) walkAncestors(node RawStandardNode) ([]string, stopReason) {
	var ancestors []string
	visited := make(map[string]struct{})

	current := node.ParentID
	for current != nil {
		id := *current
		if _, seen := visited[id]; seen {
			return ancestors, stopCycle
		}
		visited[id] = struct{}{}

		parent, ok := m.IDToNode[id]
		if !ok {
			return ancestors, stopDangling
		}
		ancestors = append(ancestors, id)
		current = parent.ParentID
	}
	return ancestors, stopAtRoot
}

// resolveAncestry walks node's parent chain exactly once and derives
// every fact that depends on it: the root-first ancestor order, the
// (effective) root identifier, and why the walk stopped. TransformNode
// and the processor share this so a record costs one walk, not one per
// derived field.
func (m *RelationshipMaps) resolveAncestry(node RawStandardNode) (ancestors []string, rootID string, reason stopReason) {
	ancestors, reason = m.walkAncestors(node)
	rootID = node.ID
	if len(ancestors) > 0 {
		// Before reversal the last collected ancestor is the furthest
		// node reached, which is where the walk stopped.
		rootID = ancestors[len(ancestors)-1]
	}
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}
	return ancestors, rootID, reason
}

// FindRootID walks the parent chain of node and returns the identifier
// of the node where traversal stops: the true root for a well-formed
// chain, or the effective root when the chain dangles or cycles. It
// never fails and never fabricates a parent.
func (m *RelationshipMaps) FindRootID(node RawStandardNode) string {
	_, rootID, _ := m.resolveAncestry(node)
	return rootID
}

// BuildOrderedAncestors returns node's ancestor chain ordered root
// first, immediate parent last. A root node yields an empty (nil)
// slice. The chain is rebuilt purely from parent pointers; the
// source's own ancestor hints are never consulted.
func (m *RelationshipMaps) BuildOrderedAncestors(node RawStandardNode) []string {
	ancestors, _, _ := m.resolveAncestry(node)
	return ancestors
}

// SiblingCount returns how many other nodes share node's immediate
// parent. Root nodes count the other roots. Never negative.
func (m *RelationshipMaps) SiblingCount(node RawStandardNode) int {
	var group int
	if node.ParentID == nil {
		group = len(m.RootIDs)
	} else {
		group = len(m.ParentToChildren[*node.ParentID])
	}
	if group <= 0 {
		return 0
	}
	return group - 1
}
