// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"testing"
)

func TestValidateStandardID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid identifiers
		{"set id", "D10003FC_7B8C_11DF_A8F6_2F669CFF12B5", false},
		{"short id", "A", false},
		{"hyphenated", "CCSS-Math-1", false},
		{"lowercase", "d10003fc", false},
		{"digits only", "12345", false},

		// Invalid identifiers - injection attempts
		{"empty", "", true},
		{"graphql injection", `X"} operator:Or {`, true},
		{"sql injection", "X'; DROP TABLE--", true},
		{"newline injection", "X\nvalueString", true},
		{"path traversal", "../etc/passwd", true},
		{"starts with underscore", "_X", true},
		{"too long", "A" + string(make([]byte, 100)), true},
		{"spaces", "D10 003", true},
		{"braces", "{id}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStandardID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStandardID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGradeLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{"kindergarten", "K", false},
		{"numeric", "01", false},
		{"high school", "09", false},
		{"pre-k", "Pre-K", false},
		{"ap", "AP", false},

		{"empty", "", true},
		{"injection", `01"} `, true},
		{"double hyphen", "Pre--K", true},
		{"trailing hyphen", "K-", true},
		{"spaces", "0 1", true},
		{"too long", "Kindergarten-Level", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGradeLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGradeLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGradeLevels(t *testing.T) {
	tests := []struct {
		name    string
		levels  []string
		wantErr bool
	}{
		{"all valid", []string{"K", "01", "02"}, false},
		{"one invalid", []string{"K", `bad"}`, "02"}, true},
		{"all invalid", []string{`x"`, "--"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGradeLevels(tt.levels)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGradeLevels(%v) error = %v, wantErr %v", tt.levels, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeGradeLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    string
		wantErr bool
	}{
		{"passthrough", "K", "K", false},
		{"trimmed", "  01  ", "01", false},
		{"invalid rejected", `bad"}`, "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeGradeLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeGradeLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("SanitizeGradeLevel(%q) = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}
