package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	// Global flags shared by all commands
	configFile   string
	lv2Path      string
	outputFormat string
	logLevel     string
	noColor      bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lv2meta",
		Short: "Inspect installed LV2 plugins",
		Long: color.CyanString(`lv2meta - LV2 plugin metadata browser

lv2meta discovers LV2 bundles on the search path (LV2_PATH) and answers
questions about the plugins they describe: names, ports, port ranges,
latency reporting, features and versions.

Plugin descriptions are loaded into a query engine, which is in-memory by
default and can be backed by SQLite or PostgreSQL (see lv2meta.yaml).`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./lv2meta.yaml or ~/.config/lv2meta/lv2meta.yaml)")
	flags.StringVar(&lv2Path, "lv2-path", "", "Bundle search path, overrides LV2_PATH")
	flags.StringVar(&outputFormat, "format", "", "Output format: table or json")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewInspectCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the lv2meta version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			if noColor {
				titleColor.DisableColor()
			}
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "lv2meta version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		// inspect has already explained a missing plugin
		if !errors.Is(err, ErrPluginNotFound) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
