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
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Processor runs the full resolution pipeline over raw standard sets.
// A Processor is stateless between calls and safe for concurrent use;
// every ProcessStandardSet call works on its own freshly-built maps.
type Processor struct {
	validate *validator.Validate
}

// NewProcessor creates a Processor.
func NewProcessor() *Processor {
	return &Processor{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ProcessStandardSet flattens a raw standard set into one
// ProcessedRecord per node, in document order.
//
// # Description
//
// The call is all-or-nothing: it either returns the complete processed
// collection or a typed failure, never partial output. Relationship
// maps are built exactly once, then every node in the set is
// transformed, not only leaves.
//
// # Outputs
//
//   - *ProcessedStandardSet: the complete record collection.
//   - Diagnostics: counts of silently-resolved dangling references and
//     cycles, and whether the set was empty.
//   - error: wraps ErrMalformedInput when the input shape is invalid;
//     no output is produced for that set.
//
// # Edge cases
//
// A structurally valid set with zero nodes yields an empty collection
// and Diagnostics.EmptySet, not an error. Dangling parent references
// and cycles never fail the set; they truncate the affected chains and
// are counted.
func (p *Processor) ProcessStandardSet(set *RawStandardSet) (*ProcessedStandardSet, Diagnostics, error) {
	var diag Diagnostics

	if err := p.validateSet(set); err != nil {
		return nil, diag, err
	}

	if len(set.Standards) == 0 {
		slog.Warn("standard set has no nodes", "standard_set_id", set.ID)
		diag.EmptySet = true
		return &ProcessedStandardSet{Records: []ProcessedRecord{}}, diag, nil
	}

	maps := BuildRelationshipMaps(set.Standards)
	ctx := NewSetContext(set)

	records := make([]ProcessedRecord, 0, len(set.Standards))
	for _, id := range documentOrder(set.Standards) {
		node := maps.IDToNode[id]

		ancestors, rootID, reason := maps.resolveAncestry(node)
		if reason == stopDangling {
			diag.DanglingReferences++
		} else if reason == stopCycle {
			diag.CyclesDetected++
		}

		records = append(records, maps.transformResolved(node, ctx, ancestors, rootID))
	}

	if diag.DanglingReferences > 0 || diag.CyclesDetected > 0 {
		slog.Warn("resolved malformed parent chains",
			"standard_set_id", set.ID,
			"dangling_references", diag.DanglingReferences,
			"cycles_detected", diag.CyclesDetected)
	}

	return &ProcessedStandardSet{Records: records}, diag, nil
}

// validateSet rejects inputs that do not match the expected shape.
// Dangling parent pointers are deliberately NOT checked here; they are
// structural noise the resolver handles, not a shape violation.
func (p *Processor) validateSet(set *RawStandardSet) error {
	if set == nil {
		return malformed("set is nil")
	}
	if set.ID == "" {
		return malformed("missing set id")
	}
	if set.Standards == nil {
		return malformed("missing standards collection")
	}

	for key, node := range set.Standards {
		if err := p.validate.Struct(node); err != nil {
			if node.ID == "" {
				return malformedNode("node missing required id", key)
			}
			if node.Description == "" {
				return malformedNode("node missing required description", node.ID)
			}
			return malformedNode("invalid node: "+err.Error(), key)
		}
		// A node keyed under one identifier but carrying another means
		// two entries claim the same id somewhere in the payload.
		if key != node.ID {
			return malformedNode("node id does not match its map key "+key, node.ID)
		}
	}
	return nil
}
