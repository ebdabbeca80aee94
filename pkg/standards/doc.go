// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package standards flattens curriculum standard hierarchies into
// self-describing, independently queryable records.
//
// The Common Standards Project API delivers a standard set as a flat
// map of nodes linked only by parent pointers. Input is untrusted: the
// map is unordered, parent pointers may dangle (reference an identifier
// absent from the set) or form cycles, and the API's own ancestor hints
// are not reliable. This package rebuilds the hierarchy from structure
// alone in two passes:
//
//  1. BuildRelationshipMaps derives adjacency (id lookup, ordered
//     children, leaf and root sets) in one sweep over the node map.
//  2. Each node is resolved with a bounded upward walk that carries an
//     explicit visited set, so cycles and dangling references truncate
//     the walk instead of hanging or recursing unboundedly.
//
// A node whose parent chain cannot be resolved is treated as an
// effective root; no parent is ever fabricated to repair a broken
// chain. Dangling references and cycles are never errors. They are
// counted in Diagnostics so operators can see them without aborting a
// set.
//
// The package performs no I/O and holds no clients or shared state.
// Each call to Processor.ProcessStandardSet builds its own maps, so
// independent sets can be processed concurrently without coordination.
package standards
