package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holon-run/toolscan/pkg/config"
	holonlog "github.com/holon-run/toolscan/pkg/log"
)

var (
	configPath string
	logLevel   string
	pretty     bool
	keepGoing  bool
)

var rootCmd = &cobra.Command{
	Use:   "toolscan",
	Short: "Compare developer tool versions across Docker images and the host",
	Long: `toolscan reports the PATH and the versions of a fixed list of developer
tools, either on this machine (toolscan host) or inside each tag of a Docker
image (toolscan images). Results are printed as markdown tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := holonlog.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		return initLogging(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML file overriding image, tags, tools or container_name")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "progress", "Log level: debug, info, progress, minimal, warn, error")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Render the markdown report for the terminal")
	rootCmd.PersistentFlags().BoolVar(&keepGoing, "keep-going", false, "Report tools that cannot be resolved instead of aborting")
}

func initLogging(level holonlog.LogLevel) error {
	cfg := holonlog.DefaultConfig()
	cfg.Level = level
	if err := holonlog.Init(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	holonlog.Debug("configuration loaded", "image", cfg.Image, "tags", cfg.Tags, "tools", cfg.Tools)
	return cfg, nil
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer holonlog.Sync()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
