package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/lv2meta/lv2meta/internal/cli/ui"
)

// ErrPluginNotFound is returned by inspect for a URI that is not installed
var ErrPluginNotFound = errors.New("plugin not found")

var inspectInteractive bool

// pickPlugin asks the user to choose one of uris
var pickPlugin = func(uris []string) (string, error) {
	var selected string
	prompt := &survey.Select{
		Message:  "Select a plugin:",
		Options:  uris,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [plugin-uri]",
		Short: "Show everything known about a plugin",
		Long: `Show the description of one plugin: its locations, name, version,
license and latency reporting, properties, hints and features, followed by
every port with its class, symbol, name, range and hints.

Ranges (minimum, maximum, default) are only shown for control ports.`,
		Example: `  # Inspect a plugin
  lv2meta inspect http://lv2plug.in/plugins/eg-amp

  # Choose the plugin from a list
  lv2meta inspect --interactive

  # Output in JSON format for tooling
  lv2meta inspect http://lv2plug.in/plugins/eg-amp --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInspectCommand,
	}

	cmd.Flags().BoolVarP(&inspectInteractive, "interactive", "i", false, "Select the plugin from a list")
	return cmd
}

func runInspectCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !inspectInteractive {
		return fmt.Errorf("inspect requires a plugin URI (or --interactive)")
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	uris := make([]string, 0, s.world.Len())
	for _, p := range s.world.Plugins() {
		uris = append(uris, p.URI())
	}

	var uri string
	if len(args) == 1 {
		uri = args[0]
	} else {
		if len(uris) == 0 {
			return fmt.Errorf("no plugins found on the search path")
		}
		if uri, err = pickPlugin(uris); err != nil {
			return err
		}
	}

	p, ok := s.world.Plugin(uri)
	if !ok {
		fmt.Fprint(cmd.ErrOrStderr(), ui.PluginNotFoundError(uri, ui.SuggestPlugins(uri, uris), s.noColor()))
		return fmt.Errorf("%w: %s", ErrPluginNotFound, uri)
	}

	rep, err := buildReport(ctx, s.resolver, p, s.logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if s.json() {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	renderReport(out, rep, s.noColor())
	return nil
}

func renderReport(w io.Writer, rep *pluginReport, noColor bool) {
	ui.Header(w, "<"+rep.URI+">", noColor)

	kv := ui.NewKeyValueTable(w, noColor)
	kv.AddRow("Name", orNone(rep.Name))
	kv.AddRow("Version", orNone(rep.Version))
	kv.AddRow("Bundle URI", rep.BundleURI)
	kv.AddRow("Library URI", orNone(rep.LibraryURI))
	kv.AddRow("Data URI", rep.DataURI)
	kv.AddRow("Verified", yesNo(rep.Verified))
	kv.AddRow("License", yesNo(rep.HasLicense))
	switch {
	case rep.LatencyPort != nil:
		kv.AddRow("Has latency", fmt.Sprintf("yes (port %d)", *rep.LatencyPort))
	case rep.HasLatency:
		kv.AddRow("Has latency", "yes")
	default:
		kv.AddRow("Has latency", "no")
	}
	kv.AddList("Properties", rep.Properties)
	kv.AddList("Hints", rep.Hints)
	kv.AddList("Required features", rep.RequiredFeatures)
	kv.AddList("Optional features", rep.OptionalFeatures)
	kv.Render()

	fmt.Fprintf(w, "\n# Ports: %d\n\n", len(rep.Ports))

	for _, port := range rep.Ports {
		section := ui.NewSection(w, fmt.Sprintf("Port %d", port.Index), noColor)
		section.AddLine("Class: %s", port.Class)
		section.AddLine("Symbol: %s", orNone(port.Symbol))
		section.AddLine("Name: %s", orNone(port.Name))
		if port.control {
			section.AddLine("Minimum: %s", formatFloat(port.Minimum))
			section.AddLine("Maximum: %s", formatFloat(port.Maximum))
			section.AddLine("Default: %s", formatFloat(port.Default))
		}
		section.AddLine("Properties: %s", joinOrNone(port.Properties))
		section.AddLine("Hints: %s", joinOrNone(port.Hints))
		section.Render()
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func joinOrNone(values []string) string {
	return orNone(strings.Join(values, ", "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatFloat(v *float64) string {
	if v == nil {
		return "(none)"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
