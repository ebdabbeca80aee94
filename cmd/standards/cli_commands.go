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
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "standards",
		Short: "A CLI to manage curriculum standards data",
		Long: `Standards is a tool for downloading curriculum standards from the
				Common Standards Project, flattening their hierarchies into
				self-describing records, and loading them into the vector index.`,
	}

	// --- Jurisdiction commands ---
	jurisdictionsCmd = &cobra.Command{
		Use:   "jurisdictions",
		Short: "List the jurisdictions available from the Common Standards Project",
		Run:   runJurisdictions,
	}
	jurisdictionSearch string
	jurisdictionType   string
	forceRefresh       bool

	jurisdictionShowCmd = &cobra.Command{
		Use:   "jurisdiction [jurisdiction-id]",
		Short: "Show one jurisdiction and the standard sets it publishes",
		Args:  cobra.ExactArgs(1),
		Run:   runJurisdictionShow,
	}

	// --- Set commands: download, process, upload, pipeline ---
	setsCmd = &cobra.Command{
		Use:   "sets",
		Short: "Download, process, and upload standard sets",
	}
	downloadCmd = &cobra.Command{
		Use:   "download [set-id]",
		Short: "Download standard sets by id or by jurisdiction with filters",
		Long: `Downloads a single standard set by id, or every set of a jurisdiction
				that matches the given filters. All filters combine with AND logic.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runDownload,
	}
	downloadJurisdiction string
	dryRun               bool
	filterLevels         string
	filterStatus         string
	filterYear           string
	filterTitle          string
	filterSubject        string

	processCmd = &cobra.Command{
		Use:   "process [set-id]",
		Short: "Flatten a downloaded standard set into processed.json",
		Args:  cobra.ExactArgs(1),
		Run:   runProcess,
	}
	uploadCmd = &cobra.Command{
		Use:   "upload [set-id]",
		Short: "Upload downloaded standard sets to the ingestor service",
		Args:  cobra.MaximumNArgs(1),
		Run:   runUpload,
	}
	uploadAll bool

	pipelineCmd = &cobra.Command{
		Use:   "pipeline",
		Short: "Download, process, and upload every matching set of a jurisdiction",
		Run:   runPipeline,
	}
	pipelineWorkers int

	// --- Query commands ---
	searchCmd = &cobra.Command{
		Use:   "search [activity description]",
		Short: "Find curriculum standards matching a classroom activity",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	searchMaxResults int
	searchGrade      string

	lookupCmd = &cobra.Command{
		Use:   "lookup [standard-id]",
		Short: "Fetch the full record of one standard by its identifier",
		Args:  cobra.ExactArgs(1),
		Run:   runLookup,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "List downloaded standard sets and their pipeline state",
		Run:   runStatus,
	}
)

func init() {
	rootCmd.AddCommand(jurisdictionsCmd)
	jurisdictionsCmd.Flags().StringVar(&jurisdictionSearch, "search", "", "Case-insensitive substring match on the title")
	jurisdictionsCmd.Flags().StringVar(&jurisdictionType, "type", "", "Filter by type (e.g., state, organization)")
	jurisdictionsCmd.Flags().BoolVar(&forceRefresh, "force", false, "Bypass the local cache")
	rootCmd.AddCommand(jurisdictionShowCmd)
	jurisdictionShowCmd.Flags().BoolVar(&forceRefresh, "force", false, "Bypass the local cache")

	rootCmd.AddCommand(setsCmd)
	setsCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadJurisdiction, "jurisdiction", "", "Download every matching set of this jurisdiction")
	downloadCmd.Flags().BoolVar(&forceRefresh, "force", false, "Re-download even when cached")
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be downloaded without downloading")
	downloadCmd.Flags().StringVar(&filterLevels, "education-levels", "", "Comma-separated grade levels (e.g., '03,04,05')")
	downloadCmd.Flags().StringVar(&filterStatus, "publication-status", "", "Publication status filter (e.g., 'Published')")
	downloadCmd.Flags().StringVar(&filterYear, "valid-year", "", "Valid year filter (e.g., '2017')")
	downloadCmd.Flags().StringVar(&filterTitle, "title", "", "Partial title match (case-insensitive)")
	downloadCmd.Flags().StringVar(&filterSubject, "subject", "", "Partial subject match (case-insensitive)")
	setsCmd.AddCommand(processCmd)
	setsCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadAll, "all", false, "Upload every downloaded set that is not yet uploaded")
	setsCmd.AddCommand(pipelineCmd)
	pipelineCmd.Flags().StringVar(&downloadJurisdiction, "jurisdiction", "", "Jurisdiction to pull sets from (required)")
	pipelineCmd.Flags().IntVar(&pipelineWorkers, "workers", 4, "Sets processed in parallel")
	pipelineCmd.Flags().BoolVar(&forceRefresh, "force", false, "Re-download even when cached")
	pipelineCmd.Flags().StringVar(&filterLevels, "education-levels", "", "Comma-separated grade levels (e.g., '03,04,05')")
	pipelineCmd.Flags().StringVar(&filterStatus, "publication-status", "", "Publication status filter (e.g., 'Published')")
	pipelineCmd.Flags().StringVar(&filterYear, "valid-year", "", "Valid year filter (e.g., '2017')")
	pipelineCmd.Flags().StringVar(&filterTitle, "title", "", "Partial title match (case-insensitive)")
	pipelineCmd.Flags().StringVar(&filterSubject, "subject", "", "Partial subject match (case-insensitive)")

	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 5, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchGrade, "grade", "", "Restrict results to one grade level (e.g., '03', 'Pre-K')")
	rootCmd.AddCommand(lookupCmd)

	rootCmd.AddCommand(statusCmd)
}
