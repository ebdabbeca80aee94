// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/AleutianAI/AleutianStandards/cmd/standards/config"
	"github.com/AleutianAI/AleutianStandards/cmd/standards/datastore"
	"github.com/spf13/cobra"
)

func runStatus(cmd *cobra.Command, args []string) {
	dataDir := config.Global.ResolvedDataDir()
	statuses, err := datastore.ListDownloadedSets(dataDir)
	if err != nil {
		log.Fatalf("Error listing downloaded sets: %v", err)
	}
	if len(statuses) == 0 {
		fmt.Printf("No standard sets downloaded yet (data dir: %s)\n", dataDir)
		return
	}

	processed, uploaded := 0, 0
	fmt.Printf("%-40s %-10s %-12s %-10s %-9s %s\n",
		"SET", "SUBJECT", "GRADES", "PROCESSED", "UPLOADED", "TITLE")
	for _, s := range statuses {
		if s.Processed {
			processed++
		}
		if s.Uploaded {
			uploaded++
		}
		fmt.Printf("%-40s %-10s %-12s %-10s %-9s %s\n",
			s.SetID, s.Subject, strings.Join(s.EducationLevels, ","),
			yesNo(s.Processed), yesNo(s.Uploaded), s.Title)
	}
	fmt.Printf("\nTotal: %d sets, %d processed, %d uploaded\n", len(statuses), processed, uploaded)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
