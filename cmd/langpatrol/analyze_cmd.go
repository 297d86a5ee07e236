package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/langpatrol/internal/cloudclient"
	"github.com/user/langpatrol/internal/engine"
	"github.com/user/langpatrol/internal/models"
)

type fileReport struct {
	File   string        `json:"file"`
	Report models.Report `json:"report"`
}

func newAnalyzeCmd() *cobra.Command {
	var (
		asJSON    bool
		outPath   string
		modelFlag string
	)

	cmd := &cobra.Command{
		Use:   "analyze <glob>",
		Short: "Analyze one or more prompt files matching a glob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := filepath.Glob(args[0])
			if err != nil {
				return fmt.Errorf("invalid glob %q: %w", args[0], err)
			}
			if len(matches) == 0 {
				return fmt.Errorf("no files matched %q", args[0])
			}

			analyzer := engine.NewAnalyzer(nil)
			apiKey := os.Getenv("LANGPATROL_API_KEY")
			apiBaseURL := os.Getenv("LANGPATROL_CLOUD_BASE_URL")
			var cloud *cloudclient.Client
			if apiKey != "" && apiBaseURL != "" {
				cloud = cloudclient.New(apiBaseURL, apiKey)
			}

			reports := make([]fileReport, 0, len(matches))
			for _, path := range matches {
				input, err := loadAnalyzeInput(path)
				if err != nil {
					return fmt.Errorf("load %s: %w", path, err)
				}
				if modelFlag != "" {
					input.Model = modelFlag
				}

				var report models.Report
				if cloud != nil && input.Options.APIKey != "" && input.Options.APIBaseURL != "" {
					report, err = cloud.Analyze(cmd.Context(), input)
					if err != nil {
						return fmt.Errorf("cloud analyze %s: %w", path, err)
					}
				} else {
					report = analyzer.Analyze(context.Background(), input)
				}
				reports = append(reports, fileReport{File: path, Report: report})
			}

			output := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer f.Close()
				output = f
			}

			if asJSON {
				enc := json.NewEncoder(output)
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			return writeTable(output, reports)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit a JSON array of {file, report} instead of a table")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to this path instead of stdout")
	cmd.Flags().StringVar(&modelFlag, "model", "", "override the target model for every matched file")

	return cmd
}

func loadAnalyzeInput(path string) (models.AnalyzeInput, error) {
	var input models.AnalyzeInput
	data, err := os.ReadFile(path)
	if err != nil {
		return input, err
	}
	if err := json.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("parse %s as AnalyzeInput JSON: %w", path, err)
	}
	return input, nil
}

func writeTable(w *os.File, reports []fileReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tISSUES\tHIGHEST SEVERITY\tEST TOKENS")
	for _, fr := range reports {
		highest := "-"
		for _, iss := range fr.Report.Issues {
			if iss.Severity == models.SeverityHigh {
				highest = "high"
				break
			}
			if iss.Severity == models.SeverityMedium && highest != "high" {
				highest = "medium"
			}
			if iss.Severity == models.SeverityLow && highest == "-" {
				highest = "low"
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n", fr.File, len(fr.Report.Issues), highest, fr.Report.Cost.EstInputTokens)
	}
	return tw.Flush()
}
