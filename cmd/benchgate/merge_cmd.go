package main

import (
	"fmt"
	"os"

	"github.com/benchgate/benchgate/pkg/report"
	"github.com/blagojts/viper"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func initMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "merge",
		Short:  "Combine partial result documents into one unified snapshot",
		PreRun: bindFlags,
		Run:    runMerge,
	}
	cmd.Flags().String("main", "", "Main suite result document (required)")
	cmd.Flags().String("cold", "", "Cold-start aggregate document (required)")
	cmd.Flags().String("cold-samples", "", "Cold-start raw samples document (skipped when the file does not exist)")
	cmd.Flags().String("out", "benchmark/results/latest.json", "Path for the merged snapshot")
	return cmd
}

func runMerge(cmd *cobra.Command, _ []string) {
	mainPath := viper.GetString("main")
	coldPath := viper.GetString("cold")
	if mainPath == "" || coldPath == "" {
		fatal("merge", errors.New("--main and --cold are required"))
	}

	// Every input is fully read and validated before any output is
	// written: a corrupt phase document must never yield a partially
	// merged snapshot. Most-specific phases come last, so their metric
	// keys win on collision.
	var docs []*report.Document
	for _, path := range []string{mainPath, coldPath} {
		doc, err := report.Load(path)
		if err != nil {
			fatal("merge", err)
		}
		docs = append(docs, doc)
	}
	if samplesPath := viper.GetString("cold-samples"); samplesPath != "" {
		if _, err := os.Stat(samplesPath); err == nil {
			doc, err := report.Load(samplesPath)
			if err != nil {
				fatal("merge", err)
			}
			docs = append(docs, doc)
		}
	}

	merged, err := report.Merge(docs)
	if err != nil {
		fatal("merge", err)
	}
	out := viper.GetString("out")
	if err := report.Write(out, merged); err != nil {
		fatal("merge", err)
	}
	fmt.Printf("[bench] wrote merged benchmark report: %s\n", out)
}
