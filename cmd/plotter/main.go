package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/report"
	"github.com/richiMarchi/latency-tester/quality-plotter/pkg/settings"
)

var (
	settingsFile string
	outputDir    string
)

var rootCmd = &cobra.Command{
	Use:   "plotter <benchmark-root>",
	Short: "Plot the quality and SCReAM logs of a benchmark run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
	SilenceUsage: true,
}

func run(root string) error {
	s, err := settings.Load(settingsFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		s.OutputDir = outputDir
	}
	klog.Infof("Benchmark root: %v", root)
	klog.Infof("Metrics: %v", s.Metrics)
	klog.Infof("Output: %v (%v)", s.OutputDir, s.Format)

	written, err := report.Run(root, s)
	klog.Infof("Wrote %d files", len(written))
	return err
}

func init() {
	rootCmd.Flags().StringVarP(&settingsFile, "config", "c", "", "YAML settings file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the charts, overrides the settings file")
	klog.InitFlags(nil)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		klog.Error(err)
		klog.Flush()
		os.Exit(1)
	}
}
