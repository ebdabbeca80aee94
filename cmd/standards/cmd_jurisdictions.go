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
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/AleutianAI/AleutianStandards/cmd/standards/config"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/csp"
	"github.com/spf13/cobra"
)

// newCSPClient builds an API client from the config plus the
// CSP_API_KEY environment variable.
func newCSPClient() (*csp.Client, error) {
	apiKey := os.Getenv("CSP_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("CSP_API_KEY is not set; get a key at https://commonstandardsproject.com")
	}
	return csp.NewClient(csp.Config{
		APIKey:            apiKey,
		BaseURL:           config.Global.CSP.BaseURL,
		DataDir:           config.Global.ResolvedDataDir(),
		RequestsPerMinute: config.Global.CSP.RequestsPerMinute,
		MaxRetries:        config.Global.CSP.MaxRetries,
	})
}

func runJurisdictions(cmd *cobra.Command, args []string) {
	client, err := newCSPClient()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	jurisdictions, err := client.Jurisdictions(context.Background(), jurisdictionSearch, jurisdictionType, forceRefresh)
	if err != nil {
		log.Fatalf("Error listing jurisdictions: %v", err)
	}
	if len(jurisdictions) == 0 {
		fmt.Println("No jurisdictions matched.")
		return
	}

	fmt.Printf("Found %d jurisdictions:\n", len(jurisdictions))
	for _, j := range jurisdictions {
		fmt.Printf("  %-40s %-14s %s\n", j.ID, j.Type, j.Title)
	}
}

func runJurisdictionShow(cmd *cobra.Command, args []string) {
	client, err := newCSPClient()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	details, err := client.JurisdictionDetails(context.Background(), args[0], forceRefresh)
	if err != nil {
		log.Fatalf("Error fetching jurisdiction %s: %v", args[0], err)
	}

	fmt.Printf("%s (%s, %s)\n", details.Title, details.ID, details.Type)
	fmt.Printf("Standard sets: %d\n", len(details.StandardSets))
	for _, ref := range details.StandardSets {
		levels := strings.Join(ref.EducationLevels, ",")
		fmt.Printf("  %-40s %-10s [%s] %s\n", ref.ID, ref.Subject, levels, ref.Title)
	}
}
