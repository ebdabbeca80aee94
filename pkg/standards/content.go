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

import (
	"fmt"
	"strings"
)

// BuildContent renders the depth-annotated text block for a node: one
// line per ancestor (root first) followed by the node itself. Each
// line uses that line's own depth value:
//
//	Depth 2 (1.G.K): Reason with shapes
//	Depth 2: Reason with shapes        (no statement notation)
//
// The format assigns no meaning to any particular depth level, so it
// stays correct for hierarchies of any shape. A root node renders as a
// single line.
func BuildContent(node RawStandardNode, orderedAncestorIDs []string, idToNode map[string]RawStandardNode) string {
	lines := make([]string, 0, len(orderedAncestorIDs)+1)
	for _, ancestorID := range orderedAncestorIDs {
		// Ancestors collected by the resolver always exist in the map.
		lines = append(lines, contentLine(idToNode[ancestorID]))
	}
	lines = append(lines, contentLine(node))
	return strings.Join(lines, "\n")
}

func contentLine(node RawStandardNode) string {
	if node.StatementNotation != "" {
		return fmt.Sprintf("Depth %d (%s): %s", node.Depth, node.StatementNotation, node.Description)
	}
	return fmt.Sprintf("Depth %d: %s", node.Depth, node.Description)
}
