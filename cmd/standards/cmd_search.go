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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianStandards/cmd/standards/config"
	"github.com/AleutianAI/AleutianStandards/services/ingestor/store"
	"github.com/spf13/cobra"
)

// queryEnvelope mirrors the ingestor's search and lookup response.
type queryEnvelope struct {
	Success   bool            `json:"success"`
	Results   json.RawMessage `json:"results"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type,omitempty"`
}

func ingestorURL(path string) string {
	return strings.TrimRight(config.Global.IngestorURL, "/") + path
}

func runSearch(cmd *cobra.Command, args []string) {
	activity := strings.Join(args, " ")
	postBody, err := json.Marshal(map[string]any{
		"activity":    activity,
		"max_results": searchMaxResults,
		"grade":       searchGrade,
	})
	if err != nil {
		log.Fatalf("Error encoding the search request: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(ingestorURL("/v1/standards/search"), "application/json", bytes.NewBuffer(postBody))
	if err != nil {
		log.Fatalf("Error reaching the ingestor: %v", err)
	}
	defer resp.Body.Close()

	env := decodeEnvelope(resp)
	if !env.Success {
		fmt.Printf("%s (%s)\n", env.Message, env.ErrorType)
		return
	}

	var results []store.SearchResult
	if err := json.Unmarshal(env.Results, &results); err != nil {
		log.Fatalf("Error parsing search results: %v", err)
	}
	fmt.Println(env.Message)
	for i, r := range results {
		fmt.Printf("\n%d. %s (score %.3f)\n", i+1, r.RecordID, r.Score)
		if r.StatementNotation != "" {
			fmt.Printf("   Notation: %s\n", r.StatementNotation)
		}
		fmt.Printf("   Set: %s | Subject: %s | Grades: %s\n",
			r.StandardSetTitle, r.Subject, strings.Join(r.EducationLevels, ","))
		fmt.Printf("   %s\n", r.Content)
	}
}

func runLookup(cmd *cobra.Command, args []string) {
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(ingestorURL("/v1/standards/" + url.PathEscape(args[0])))
	if err != nil {
		log.Fatalf("Error reaching the ingestor: %v", err)
	}
	defer resp.Body.Close()

	env := decodeEnvelope(resp)
	if !env.Success {
		fmt.Printf("%s (%s)\n", env.Message, env.ErrorType)
		return
	}

	// Pretty-print the full record.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, env.Results, "", "  "); err != nil {
		log.Fatalf("Error formatting the record: %v", err)
	}
	fmt.Println(env.Message)
	fmt.Println(pretty.String())
}

func decodeEnvelope(resp *http.Response) queryEnvelope {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading the response: %v", err)
	}
	var env queryEnvelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		log.Fatalf("Unexpected response, status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return env
}
