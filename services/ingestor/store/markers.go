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
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadMarkerName is the file dropped into a set's data directory
// after a successful upload. Its content is the upload timestamp.
const UploadMarkerName = ".upload_complete"

// IsUploaded reports whether a set directory carries an upload marker.
func IsUploaded(setDir string) bool {
	_, err := os.Stat(filepath.Join(setDir, UploadMarkerName))
	return err == nil
}

// MarkUploaded writes the upload marker with the current time.
func MarkUploaded(setDir string) error {
	timestamp := time.Now().Format(time.RFC3339)
	return os.WriteFile(filepath.Join(setDir, UploadMarkerName), []byte(timestamp+"\n"), 0640)
}

// UploadTimestamp returns the recorded upload time, or "" when the
// set was never uploaded or the marker is unreadable.
func UploadTimestamp(setDir string) string {
	data, err := os.ReadFile(filepath.Join(setDir, UploadMarkerName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
