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
	"errors"
	"fmt"
)

// ErrMalformedInput marks inputs that do not match the expected shape:
// a missing node collection, mismatched map keys, or nodes without the
// required id/description fields. Callers branch on it with errors.Is.
var ErrMalformedInput = errors.New("malformed standard set")

// MalformedInputError carries the reason a raw set was rejected and,
// when the problem is node-local, the offending node identifier.
type MalformedInputError struct {
	Reason string
	NodeID string
}

func (e *MalformedInputError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("malformed standard set: %s (node %q)", e.Reason, e.NodeID)
	}
	return fmt.Sprintf("malformed standard set: %s", e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return ErrMalformedInput }

func malformed(reason string) error {
	return &MalformedInputError{Reason: reason}
}

func malformedNode(reason, nodeID string) error {
	return &MalformedInputError{Reason: reason, NodeID: nodeID}
}
