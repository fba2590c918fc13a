package main

import (
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/piwi3910/BinPacker/internal/engine"
	"github.com/piwi3910/BinPacker/internal/importer"
	"github.com/piwi3910/BinPacker/internal/metrics"
	"github.com/piwi3910/BinPacker/internal/model"
)

func newCompareCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare instance",
		Short: "Run every local search strategy on an instance and compare them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			bin, err := opts.bin()
			if err != nil {
				return err
			}
			res, err := importer.Load(args[0], bin)
			if err != nil {
				return err
			}
			logImport(res)

			recorder := metrics.NewRecorder()
			results := engine.CompareStrategies(cfg, res.Instance, model.Strategies(), recorder)
			printComparison(cmd.OutOrStdout(), results)
			klog.V(1).InfoS("Compared strategies", "instance", res.Instance.Name, "strategies", len(results))

			if cfg.MetricsFile != "" {
				return recorder.WriteTextfile(cfg.MetricsFile)
			}
			return nil
		},
	}
}
