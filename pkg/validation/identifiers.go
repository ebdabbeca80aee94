// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database queries, file paths, or subprocess calls. Using these validators
// prevents injection attacks (GraphQL filter injection, path traversal).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// standardIDPattern matches Common Standards Project identifiers:
// set ids like "D10003FC_7B8C_11DF_A8F6_2F669CFF12B5" and the node
// GUIDs keyed inside a set. Letters, digits, underscores, hyphens.
var standardIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,79}$`)

// gradeLevelPattern matches grade-level values: "K", "Pre-K", "01",
// "09", "AP". Short alphanumeric, optional single hyphen.
var gradeLevelPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,8}(-[A-Za-z0-9]{1,8})?$`)

// ValidateStandardID validates a standard-set, jurisdiction, or node
// identifier before it is interpolated into a filter or used as a
// path segment.
//
// Valid identifiers:
//   - 1-80 characters
//   - Letters, digits, underscores, hyphens
//   - Must start with a letter or digit
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateStandardID(setID); err != nil {
//	    return nil, fmt.Errorf("invalid standard set id: %w", err)
//	}
//	// Safe to use in a where filter
func ValidateStandardID(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !standardIDPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier format: %q (must be 1-80 alphanumeric chars, underscores, or hyphens)", id)
	}

	return nil
}

// ValidateGradeLevel validates a single grade-level value before it is
// used in a search filter.
func ValidateGradeLevel(level string) error {
	if level == "" {
		return fmt.Errorf("grade level cannot be empty")
	}

	if !gradeLevelPattern.MatchString(level) {
		return fmt.Errorf("invalid grade level: %q", level)
	}

	return nil
}

// ValidateGradeLevels validates multiple grade-level values.
// Returns an error listing all invalid values if any fail validation.
func ValidateGradeLevels(levels []string) error {
	var invalid []string
	for _, l := range levels {
		if err := ValidateGradeLevel(l); err != nil {
			invalid = append(invalid, l)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid grade levels: %v", invalid)
	}
	return nil
}

// SanitizeGradeLevel trims and validates a grade-level value.
// Returns the trimmed value if valid, or an error if invalid.
//
// Use this at API boundaries where the value arrives from a request:
//
//	level, err := validation.SanitizeGradeLevel(userInput)
//	if err != nil {
//	    return err
//	}
//	// level is trimmed and validated
func SanitizeGradeLevel(level string) (string, error) {
	trimmed := strings.TrimSpace(level)
	if err := ValidateGradeLevel(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
