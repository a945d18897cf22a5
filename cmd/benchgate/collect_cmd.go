package main

import (
	"context"
	"fmt"

	"github.com/benchgate/benchgate/internal/utils"
	"github.com/benchgate/benchgate/pkg/collect"
	"github.com/benchgate/benchgate/pkg/report"
	"github.com/blagojts/viper"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func initCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "collect",
		Short:  "Sample the subject binary and write partial result documents",
		PreRun: bindFlags,
		Run:    runCollect,
	}
	collect.Config{}.AddToFlagSet(cmd.Flags())
	cmd.Flags().String("out", "benchmark/results/cold.json", "Path for the aggregate partial document")
	cmd.Flags().String("samples-out", "benchmark/results/cold_samples.json", "Path for the raw-samples partial document")
	return cmd
}

func runCollect(cmd *cobra.Command, _ []string) {
	cfg := collect.Config{
		BinPath:       viper.GetString("bin"),
		BinArgs:       viper.GetStringSlice("bin-args"),
		Iterations:    viper.GetInt("iterations"),
		Family:        viper.GetString("family"),
		Mode:          viper.GetString("mode"),
		SamplesPerSec: viper.GetFloat64("samples-per-sec"),
		HDROut:        viper.GetString("hdr-out"),
		ProbeURL:      viper.GetString("probe-url"),
		RealRequired:  viper.GetBool("real-required"),
	}
	if cfg.BinPath == "" {
		fatal("collect", errors.New("--bin (or BENCHGATE_BIN) is required"))
	}
	if !utils.IsIn(cfg.Mode, report.ValidModes) {
		fatal("collect", errors.Errorf("invalid mode %q: must be synthetic or real", cfg.Mode))
	}

	collector := collect.NewCollector(cfg)
	agg, raw, err := collector.Run(context.Background())
	if err != nil {
		fatal("collect", err)
	}

	out := viper.GetString("out")
	samplesOut := viper.GetString("samples-out")
	if err := report.Write(out, agg); err != nil {
		fatal("collect", err)
	}
	if err := report.Write(samplesOut, raw); err != nil {
		fatal("collect", err)
	}
	fmt.Printf("[bench] collected %d %s samples: %s, %s\n",
		collector.Iterations(), cfg.Family, out, samplesOut)
}
