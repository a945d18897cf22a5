// benchgate is the benchmark regression gate: it samples latency from a
// subject binary, merges partial measurement documents into one
// snapshot, and compares that snapshot against a stored baseline under
// per-metric tolerances and hard caps. The CI caller reads the exit
// status of `benchgate compare`.
package main

import (
	"fmt"
	"os"

	"github.com/benchgate/benchgate/internal/utils"
	"github.com/blagojts/viper"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "benchgate",
	Short: "Benchmark regression gate: collect, merge, and compare latency snapshots",
}

func init() {
	utils.SetupEnv()
	rootCmd.AddCommand(initCollectCmd())
	rootCmd.AddCommand(initMergeCmd())
	rootCmd.AddCommand(initCompareCmd())
}

func main() {
	if err := utils.SetupConfigFile(); err != nil {
		fatal("config", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindFlags makes the executed command's flags visible to viper so that
// the explicit-flag > environment > default precedence holds. Binding
// happens per command at execution time; binding every command's flags
// up front would let identically named flags shadow each other.
func bindFlags(cmd *cobra.Command, _ []string) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fatal("config", err)
	}
}

// fatal prints the one-line stage diagnostic every fatal error carries
// before the non-zero exit.
func fatal(stage string, err error) {
	fmt.Fprintf(os.Stderr, "[bench] %s: %v\n", stage, err)
	os.Exit(1)
}
