package main

import (
	"github.com/spf13/cobra"

	"github.com/holon-run/toolscan/pkg/inspect"
	holonlog "github.com/holon-run/toolscan/pkg/log"
	"github.com/holon-run/toolscan/pkg/preflight"
	"github.com/holon-run/toolscan/pkg/probe"
	"github.com/holon-run/toolscan/pkg/report"
	"github.com/holon-run/toolscan/pkg/runtime/docker"
)

var (
	imagesPlatform      = docker.PlatformAMD64
	imagesVerbose       bool
	imagesPull          bool
	imagesEngine        string
	imagesContainerName string
	imagesSkipPreflight bool
	imagesDrift         bool
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Compare PATH and tool versions across image tags",
	Long: `Start one container per configured image tag, strictly one at a time,
inspect its PATH and tool versions, and remove it again. The results of all
tags are merged into two comparison tables.

Examples:
  toolscan images
  toolscan images --platform linux/arm64 --pull
  toolscan images --engine cli --verbose
  toolscan images --config ./toolscan.yaml --drift`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if imagesVerbose {
			if err := initLogging(holonlog.LevelDebug); err != nil {
				return err
			}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("container-name") {
			cfg.ContainerName = imagesContainerName
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		kind, err := docker.ParseEngineKind(imagesEngine)
		if err != nil {
			return err
		}
		eng, err := newEngine(kind)
		if err != nil {
			return err
		}
		defer eng.close()

		ctx := cmd.Context()
		checker := preflight.NewChecker(preflight.Config{Skip: imagesSkipPreflight, Quiet: !imagesVerbose}, eng.checks...)
		if err := checker.Run(ctx); err != nil {
			return err
		}

		prober := probe.NewProber(cfg.Tools, probe.Options{KeepGoing: keepGoing})
		insp := inspect.New(prober, report.Options{Drift: imagesDrift})

		rep, err := insp.Images(ctx, eng.lifecycle, inspect.ImageOptions{
			Image:         cfg.Image,
			Tags:          cfg.Tags,
			ContainerName: cfg.ContainerName,
			Platform:      imagesPlatform,
			Pull:          imagesPull,
		})
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), rep)
	},
}

func init() {
	imagesCmd.Flags().Var(&imagesPlatform, "platform", "Target platform: linux/amd64 or linux/arm64")
	imagesCmd.Flags().BoolVarP(&imagesVerbose, "verbose", "v", false, "Log every container command")
	imagesCmd.Flags().BoolVar(&imagesPull, "pull", false, "Pull each image before inspecting it")
	imagesCmd.Flags().StringVar(&imagesEngine, "engine", "sdk", "Container engine access: sdk (Engine API) or cli (docker binary)")
	imagesCmd.Flags().StringVar(&imagesContainerName, "container-name", docker.DefaultContainerName, "Name of the inspection container")
	imagesCmd.Flags().BoolVar(&imagesSkipPreflight, "skip-preflight", false, "Skip the container engine checks")
	imagesCmd.Flags().BoolVar(&imagesDrift, "drift", false, "Add a column with the version range of rows that differ between tags")
	rootCmd.AddCommand(imagesCmd)
}
