package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/benchgate/benchgate/pkg/baseline"
	"github.com/benchgate/benchgate/pkg/gate"
	"github.com/benchgate/benchgate/pkg/render"
	"github.com/benchgate/benchgate/pkg/report"
	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
)

func initCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "compare",
		Short:  "Compare a snapshot against its baseline and decide the gate outcome",
		PreRun: bindFlags,
		Run:    runCompare,
	}
	cmd.Flags().String("current", "benchmark/results/latest.json", "Current merged snapshot")
	cmd.Flags().String("baseline", "", "Explicit baseline path, overriding platform selection")
	cmd.Flags().String("baseline-dir", baseline.DefaultDir, "Directory holding per-platform baseline documents")
	cmd.Flags().String("summary-out", "", "Write the Markdown summary to this file")
	cmd.Flags().String("rules", "", "YAML rule table overlaying the shipped margins and hard caps")
	cmd.Flags().String("mode", "", "Baseline mode: synthetic or real (default: the snapshot's own mode)")
	cmd.Flags().Bool("strict", false, "Fail when no baseline exists (default: strict under CI, lenient locally)")
	return cmd
}

func runCompare(cmd *cobra.Command, _ []string) {
	current, err := report.Load(viper.GetString("current"))
	if err != nil {
		fatal("compare", err)
	}

	rules := gate.DefaultRules()
	if rulesPath := viper.GetString("rules"); rulesPath != "" {
		rules, err = gate.LoadRules(rulesPath)
		if err != nil {
			fatal("compare", err)
		}
	}

	mode := viper.GetString("mode")
	if mode == "" {
		mode = current.Metadata.Mode
	}
	res, err := baseline.Resolve(
		viper.GetString("baseline"),
		viper.GetString("baseline-dir"),
		mode,
		runtime.GOOS,
	)
	if err != nil {
		fatal("compare", err)
	}

	outcome := gate.Compare(current, res, rules)
	gate.Finalize(outcome, strictness(cmd))

	if summaryOut := viper.GetString("summary-out"); summaryOut != "" {
		if err := render.WriteSummary(summaryOut, outcome); err != nil {
			fatal("compare", err)
		}
	}
	printOutcome(outcome)
	os.Exit(gate.ExitCode(outcome))
}

// strictness derives the strict flag: explicit flag or env beats the
// CI-presence default. The CI signal is consulted only when strict was
// never set explicitly.
func strictness(cmd *cobra.Command) bool {
	var explicit *bool
	if cmd.Flags().Changed("strict") || os.Getenv("BENCHGATE_STRICT") != "" {
		v := viper.GetBool("strict")
		explicit = &v
	}
	return gate.Strictness(explicit, os.Getenv("CI") != "")
}

func printOutcome(o *gate.Outcome) {
	if o.Skipped {
		fmt.Printf("[bench][WARN] %s\n", o.Rationale)
		fmt.Println("[bench] benchmark gate skipped")
		return
	}
	fmt.Println("[bench] comparing current against baseline")
	for _, row := range o.Rows {
		status := "OK"
		switch row.Violated {
		case gate.RuleMargin:
			status = "REGRESSION"
		case gate.RuleHardCap:
			status = "HARD-FAIL"
		}
		op := "<="
		if row.Direction == gate.HigherIsBetter {
			op = ">="
		}
		fmt.Printf("[bench] %s: baseline=%.4f current=%.4f allowed%s%.4f => %s\n",
			row.MetricKey, row.Baseline, row.Current, op, row.Threshold, status)
	}
	for _, key := range o.MissingInCurrent {
		fmt.Printf("[bench][WARN] missing metric in current report: %s\n", key)
	}
	if o.Rationale != "" {
		fmt.Printf("[bench] %s\n", o.Rationale)
	}
	if o.Passed {
		fmt.Println("[bench] benchmark gate passed")
	} else {
		fmt.Println("[bench] benchmark gate failed")
	}
}
