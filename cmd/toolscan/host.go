package main

import (
	"github.com/spf13/cobra"

	"github.com/holon-run/toolscan/pkg/inspect"
	"github.com/holon-run/toolscan/pkg/probe"
	"github.com/holon-run/toolscan/pkg/report"
	"github.com/holon-run/toolscan/pkg/runner"
	"github.com/holon-run/toolscan/pkg/target"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Inspect PATH and tool versions on this machine",
	Long: `Inspect the PATH of the current process and the version of every tool in
the allow-list, then print both as markdown tables.

A tool that is missing or prints no version aborts the run unless
--keep-going is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		prober := probe.NewProber(cfg.Tools, probe.Options{KeepGoing: keepGoing})
		insp := inspect.New(prober, report.Options{
			PathHeader:    "PATH entry",
			VersionHeader: "version",
		})

		rep, err := insp.Host(cmd.Context(), target.NewHost(runner.NewLocal()))
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), rep)
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)
}
